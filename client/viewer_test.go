package client

import (
	"chat-live/domain"
	chatErrors "chat-live/errors"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/tmaxmax/go-sse"
)

// flakyServer drops the first connection after one frame and keeps the
// second one open. It records what every attempt asked for.
type flakyServer struct {
	mu           sync.Mutex
	sessions     []string
	lastEventIDs []string
}

func (f *flakyServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.sessions = append(f.sessions, r.URL.Query().Get("sessionId"))
	f.lastEventIDs = append(f.lastEventIDs, r.Header.Get("Last-Event-ID"))
	attempt := len(f.sessions)
	f.mu.Unlock()

	session, err := sse.Upgrade(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	switch attempt {
	case 1:
		_ = session.Send(frame(domain.Message{ID: 1, ChatID: 7, Text: "first"}))
		_ = session.Flush()
	default:
		_ = session.Send(frame(domain.Message{ID: 2, ChatID: 7, Text: "second"}))
		_ = session.Flush()
		<-r.Context().Done()
	}
}

func (f *flakyServer) attempts() ([]string, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sessions...), append([]string(nil), f.lastEventIDs...)
}

func frame(message domain.Message) *sse.Message {
	data, _ := json.Marshal(message)
	m := &sse.Message{ID: sse.ID(message.ID.String()), Type: sse.Type(message.ChatID.EventName())}
	m.AppendData(string(data))
	return m
}

func TestViewer_Reconnects_With_Same_Session(t *testing.T) {
	req := require.New(t)
	fake := &flakyServer{}
	server := httptest.NewServer(fake)
	defer server.Close()

	received := make(chan domain.Message, 4)
	viewer := NewViewer(server.URL, 1, 7,
		WithHTTPClient(server.Client()),
		WithRetry(10*time.Millisecond, 0),
		WithOnMessage(func(m domain.Message) { received <- m }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- viewer.Run(ctx) }()

	// When the first connection drops after one frame
	for _, text := range []string{"first", "second"} {
		select {
		case m := <-received:
			req.Equal(text, m.Text)
		case <-time.After(2 * time.Second):
			req.FailNow("missing frame " + text)
		}
	}

	// Then the retry reused the URL and announced the last frame
	sessions, lastEventIDs := fake.attempts()
	req.Len(sessions, 2)
	req.Equal(viewer.SessionID().String(), sessions[0])
	req.Equal(sessions[0], sessions[1])
	req.Equal([]string{"", "1"}, lastEventIDs)
	req.Equal([]domain.MessageID{1, 2}, ids(viewer.Messages()))

	cancel()
	req.NoError(<-done)
}

func TestViewer_Error_Frame_Ends_Run(t *testing.T) {
	req := require.New(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := sse.Upgrade(w, r)
		req.NoError(err)
		m := &sse.Message{Type: sse.Type(errorEventName)}
		m.AppendData(`{"error":"change feed unavailable: disk gone"}`)
		_ = session.Send(m)
		_ = session.Flush()
	}))
	defer server.Close()

	viewer := NewViewer(server.URL, 1, 7, WithHTTPClient(server.Client()), WithRetry(10*time.Millisecond, 0))

	err := viewer.Run(context.Background())

	req.ErrorIs(err, chatErrors.ErrFeedUnavailable)
	req.ErrorContains(err, "disk gone")
	req.Empty(viewer.Messages())
}

func TestViewer_Not_Found_Is_Not_Retried(t *testing.T) {
	req := require.New(t)
	var calls int
	var mu sync.Mutex
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"not found: chat"}`))
	}))
	defer server.Close()

	viewer := NewViewer(server.URL, 1, 99, WithHTTPClient(server.Client()), WithRetry(10*time.Millisecond, 0))

	err := viewer.Run(context.Background())

	req.ErrorIs(err, chatErrors.ErrNotFound)
	mu.Lock()
	defer mu.Unlock()
	req.Equal(1, calls)
}

func TestViewer_Messages_Returns_A_Copy(t *testing.T) {
	req := require.New(t)
	viewer := NewViewer("http://localhost", 1, 1, WithSessionID("s1"))
	viewer.append(domain.Message{ID: 1, Text: "hi"})

	messages := viewer.Messages()
	messages[0].Text = "changed"

	req.Equal("hi", viewer.Messages()[0].Text)
	req.Equal("http://localhost/users/1/chats/1/messages?sessionId=s1", viewer.URL())
}

func ids(messages []domain.Message) []domain.MessageID {
	out := make([]domain.MessageID, 0, len(messages))
	for _, m := range messages {
		out = append(out, m.ID)
	}
	return out
}
