package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// SessionID identifies one viewing session across reconnect attempts.
// An empty SessionID is anonymous: its position lives only as long as the stream.
type SessionID string

func NewSessionID() SessionID {
	return SessionID(uuid.NewString())
}

func (s SessionID) IsAnonymous() bool {
	return s == ""
}

func (s SessionID) String() string {
	return string(s)
}

// CursorName is the cursor store name of this session's position in one chat.
// A session following several chats keeps one position per chat.
func (s SessionID) CursorName(chatID ChatID) string {
	return fmt.Sprintf("session:%d:%s", chatID, s)
}
