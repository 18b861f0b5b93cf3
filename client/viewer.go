// Package client follows one chat over the message stream and keeps the
// received messages in memory. Reconnections reuse the same session id, so the
// server resumes right after the last acknowledged message.
package client

import (
	"chat-live/domain"
	chatErrors "chat-live/errors"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/tmaxmax/go-sse"
)

const errorEventName = "error"

type Option func(*Viewer)

// WithOnMessage registers a callback run for every decoded message, after it
// was appended to the local list.
func WithOnMessage(fn func(domain.Message)) Option {
	return func(v *Viewer) { v.onMessage = fn }
}

func WithHTTPClient(c *http.Client) Option {
	return func(v *Viewer) { v.httpClient = c }
}

func WithLogger(log *slog.Logger) Option {
	return func(v *Viewer) { v.log = log }
}

// WithSessionID replaces the generated session id, to resume a session
// started by a previous process.
func WithSessionID(id domain.SessionID) Option {
	return func(v *Viewer) { v.sessionID = id }
}

// WithRetry sets the first reconnection delay and the retry budget.
// maxRetries zero retries forever.
func WithRetry(initial time.Duration, maxRetries int) Option {
	return func(v *Viewer) {
		v.backoff.InitialInterval = initial
		v.backoff.MaxRetries = maxRetries
	}
}

// Viewer is the client side of one chat page.
type Viewer struct {
	baseURL    string
	userID     domain.UserID
	chatID     domain.ChatID
	sessionID  domain.SessionID
	log        *slog.Logger
	httpClient *http.Client
	backoff    sse.Backoff
	onMessage  func(domain.Message)

	mu       sync.Mutex
	messages []domain.Message
}

func NewViewer(baseURL string, userID domain.UserID, chatID domain.ChatID, opts ...Option) *Viewer {
	v := &Viewer{
		baseURL:    baseURL,
		userID:     userID,
		chatID:     chatID,
		sessionID:  domain.NewSessionID(),
		log:        slog.Default(),
		httpClient: http.DefaultClient,
		backoff: sse.Backoff{
			InitialInterval: 500 * time.Millisecond,
			Multiplier:      1.5,
			MaxInterval:     10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

func (v *Viewer) SessionID() domain.SessionID {
	return v.sessionID
}

// URL is the stream address. It is the same for every attempt.
func (v *Viewer) URL() string {
	return fmt.Sprintf("%s/users/%d/chats/%d/messages?sessionId=%s",
		v.baseURL, v.userID, v.chatID, url.QueryEscape(v.sessionID.String()))
}

// Run connects and blocks until ctx is done, the server reports a feed
// failure or the retries are exhausted. A cancelled ctx returns nil.
func (v *Viewer) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, v.URL(), http.NoBody)
	if err != nil {
		return fmt.Errorf("build stream request: %w", err)
	}

	client := &sse.Client{
		HTTPClient:        v.httpClient,
		Backoff:           v.backoff,
		ResponseValidator: validateResponse,
		OnRetry: func(err error, next time.Duration) {
			v.log.Warn("Stream interrupted, reconnecting", "session_id", v.sessionID.String(), "in", next, "error", err)
		},
	}
	conn := client.NewConnection(request)

	var failure error
	conn.SubscribeEvent(v.chatID.EventName(), func(ev sse.Event) {
		var message domain.Message
		if err := json.Unmarshal([]byte(ev.Data), &message); err != nil {
			v.log.Warn("Dropping undecodable frame", "id", ev.LastEventID, "error", err)
			return
		}
		v.append(message)
	})
	conn.SubscribeEvent(errorEventName, func(ev sse.Event) {
		var body struct {
			Error string `json:"error"`
		}
		_ = json.Unmarshal([]byte(ev.Data), &body)
		failure = fmt.Errorf("%w: %s", chatErrors.ErrFeedUnavailable, body.Error)
		cancel()
	})

	v.log.Info("Connecting", "url", v.URL())
	err = conn.Connect()
	switch {
	case failure != nil:
		return failure
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		return nil
	default:
		return err
	}
}

// Messages returns a copy of the received messages in arrival order.
func (v *Viewer) Messages() []domain.Message {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]domain.Message(nil), v.messages...)
}

func (v *Viewer) append(message domain.Message) {
	v.mu.Lock()
	v.messages = append(v.messages, message)
	v.mu.Unlock()
	if v.onMessage != nil {
		v.onMessage(message)
	}
}

// validateResponse rejects a missing chat or user for good.
func validateResponse(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", chatErrors.ErrNotFound, resp.Request.URL.Path)
	}
	return sse.DefaultValidator(resp)
}
