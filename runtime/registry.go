package runtime

import (
	"chat-live/contract"
	"chat-live/domain"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

var _ contract.IRegistry = (*Registry)(nil)

type Set map[string]struct{}

// Registry tracks the live push connections of every chat.
// It holds no delivery state: streams never read from it.
type Registry struct {
	log         *slog.Logger
	mu          sync.RWMutex
	sessions    map[string]domain.SessionID // map connection -> session
	chatMembers map[domain.ChatID]Set       // map chat to connections
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		log:         log,
		sessions:    make(map[string]domain.SessionID),
		chatMembers: make(map[domain.ChatID]Set),
	}
}

// Register records a new connection and returns its identifier.
// Two live connections sharing a named session would race on the same cursor,
// which is logged but allowed.
func (r *Registry) Register(chatID domain.ChatID, sessionID domain.SessionID) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	connectionID := uuid.NewString()
	if !sessionID.IsAnonymous() {
		for existing := range r.chatMembers[chatID] {
			if r.sessions[existing] == sessionID {
				r.log.Warn("Session already streaming", "chat_id", chatID, "session_id", sessionID.String())
				break
			}
		}
	}
	r.sessions[connectionID] = sessionID

	if _, ok := r.chatMembers[chatID]; !ok {
		r.chatMembers[chatID] = make(Set)
	}
	r.chatMembers[chatID][connectionID] = struct{}{}
	return connectionID
}

// Unregister removes a connection and ensures no empty sets are left in the
// chat map to prevent memory leaks over time.
func (r *Registry) Unregister(chatID domain.ChatID, connectionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, connectionID)

	if members, ok := r.chatMembers[chatID]; ok {
		delete(members, connectionID)

		// If no one is left in the chat, remove the chat entry entirely
		if len(members) == 0 {
			delete(r.chatMembers, chatID)
		}
	}
}

func (r *Registry) CountForChat(chatID domain.ChatID) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.chatMembers[chatID])
}

// Snapshot returns the number of live connections per chat.
func (r *Registry) Snapshot() map[domain.ChatID]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[domain.ChatID]int, len(r.chatMembers))
	for chatID, members := range r.chatMembers {
		snapshot[chatID] = len(members)
	}
	return snapshot
}
