package server

import (
	"chat-live/domain"
	"chat-live/errors"
	"chat-live/mocks"
	"chat-live/observability"
	"chat-live/repositories"
	"chat-live/runtime"
	"chat-live/services"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"github.com/tmaxmax/go-sse"
	"go.uber.org/mock/gomock"
)

const waitFor = 2 * time.Second

type liveAPI struct {
	server     *httptest.Server
	store      *repositories.Store
	cursors    *repositories.CursorRepository
	registry   *runtime.Registry
	monitoring *observability.MonitoringManager
	alice      domain.User
	bob        domain.User
	chat       domain.Chat
}

func newLiveAPI(t *testing.T) liveAPI {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	store := repositories.NewStore(db, log, time.Hour, nil)
	cursors := repositories.NewCursorRepository(db, log, time.Hour)
	monitoring := observability.NewMonitoringManager(log, observability.NewMetrics())
	registry := runtime.NewRegistry(log)
	handler := NewHandler(log,
		services.NewIngestService(log, store.Messages, nil, monitoring),
		services.NewReadService(log, store.Users, store.Chats, store.Messages, nil),
		runtime.NewSubscriber(log, store.Feed, cursors, 0, 0),
		registry,
		monitoring,
	)
	server := httptest.NewServer(NewRouter(log, handler, nil))
	t.Cleanup(server.Close)

	ctx := context.Background()
	alice, err := store.Users.CreateUser(ctx, "Alice")
	req.NoError(err)
	bob, err := store.Users.CreateUser(ctx, "Bob")
	req.NoError(err)
	chat, err := store.Chats.CreateChat(ctx, []domain.UserID{alice.ID, bob.ID})
	req.NoError(err)

	return liveAPI{
		server:     server,
		store:      store,
		cursors:    cursors,
		registry:   registry,
		monitoring: monitoring,
		alice:      alice,
		bob:        bob,
		chat:       chat,
	}
}

func (a liveAPI) post(t *testing.T, user domain.User, text string) {
	t.Helper()
	target := fmt.Sprintf("%s/users/%d/chats/%d", a.server.URL, user.ID, a.chat.ID)
	resp, err := http.PostForm(target, url.Values{"text": {text}})
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
}

// openStream connects to the message stream and forwards its frames.
// The returned cancel function disconnects the client.
func openStream(t *testing.T, target string) (<-chan sse.Event, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(request)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	events := make(chan sse.Event, 16)
	go func() {
		defer close(events)
		defer func() { _ = resp.Body.Close() }()
		for ev, err := range sse.Read(resp.Body, nil) {
			if err != nil {
				return
			}
			events <- ev
		}
	}()
	return events, cancel
}

func nextEvent(t *testing.T, events <-chan sse.Event) sse.Event {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "stream closed")
		return ev
	case <-time.After(waitFor):
		require.FailNow(t, "no frame received")
		return sse.Event{}
	}
}

func (a liveAPI) streamURL(user domain.User, sessionID string) string {
	target := fmt.Sprintf("%s/users/%d/chats/%d/messages", a.server.URL, user.ID, a.chat.ID)
	if sessionID != "" {
		target += "?sessionId=" + sessionID
	}
	return target
}

func TestStreamMessages_Pushes_Frames(t *testing.T) {
	req := require.New(t)
	api := newLiveAPI(t)

	// Given Alice listening on the chat
	events, _ := openStream(t, api.streamURL(api.alice, "s1"))

	// When Bob posts a message
	api.post(t, api.bob, "hi")

	// Then one frame named after the chat carries it
	ev := nextEvent(t, events)
	req.Equal(api.chat.ID.EventName(), ev.Type)
	req.Equal("1", ev.LastEventID)

	var message domain.Message
	req.NoError(json.Unmarshal([]byte(ev.Data), &message))
	req.Equal("hi", message.Text)
	req.Equal(api.chat.ID, message.ChatID)
	req.Equal(domain.Author{ID: api.bob.ID, Name: "Bob"}, message.Author)
	req.Equal(1, api.registry.CountForChat(api.chat.ID))
	req.Equal(int64(1), api.monitoring.GetLatest().ActiveStreams)
}

func TestStreamMessages_Skips_History_For_New_Session(t *testing.T) {
	req := require.New(t)
	api := newLiveAPI(t)
	api.post(t, api.alice, "before")

	events, _ := openStream(t, api.streamURL(api.bob, ""))
	api.post(t, api.alice, "after")

	var message domain.Message
	req.NoError(json.Unmarshal([]byte(nextEvent(t, events).Data), &message))
	req.Equal("after", message.Text)
}

func TestStreamMessages_Resumes_Session(t *testing.T) {
	req := require.New(t)
	api := newLiveAPI(t)

	// Given a session that received one message then disconnected
	events, disconnect := openStream(t, api.streamURL(api.alice, "s1"))
	api.post(t, api.bob, "hi")
	req.Equal("1", nextEvent(t, events).LastEventID)
	req.Eventually(func() bool {
		seq, found, err := api.cursors.Load(context.Background(), domain.SessionID("s1").CursorName(api.chat.ID))
		return err == nil && found && seq == 1
	}, waitFor, 10*time.Millisecond)
	disconnect()
	req.Eventually(func() bool { return api.registry.CountForChat(api.chat.ID) == 0 }, waitFor, 10*time.Millisecond)

	// When messages are posted while it is away
	api.post(t, api.bob, "missed")
	api.post(t, api.bob, "missed too")

	// Then reconnecting with the same session delivers them in order
	events, _ = openStream(t, api.streamURL(api.alice, "s1"))
	var texts []string
	for range 2 {
		var message domain.Message
		req.NoError(json.Unmarshal([]byte(nextEvent(t, events).Data), &message))
		texts = append(texts, message.Text)
	}
	req.Equal([]string{"missed", "missed too"}, texts)
}

func TestStreamMessages_Client_Disconnect_Releases_Stream(t *testing.T) {
	req := require.New(t)
	api := newLiveAPI(t)

	_, disconnect := openStream(t, api.streamURL(api.alice, ""))
	req.Eventually(func() bool { return api.registry.CountForChat(api.chat.ID) == 1 }, waitFor, 10*time.Millisecond)

	disconnect()

	req.Eventually(func() bool {
		return api.registry.CountForChat(api.chat.ID) == 0 && api.monitoring.GetLatest().ActiveStreams == 0
	}, waitFor, 10*time.Millisecond)
}

func TestStreamMessages_Unknown_Chat_Is_Not_Found(t *testing.T) {
	req := require.New(t)
	api := newLiveAPI(t)

	resp, err := http.Get(fmt.Sprintf("%s/users/%d/chats/99/messages", api.server.URL, api.alice.ID))
	req.NoError(err)
	defer func() { _ = resp.Body.Close() }()

	req.Equal(http.StatusNotFound, resp.StatusCode)
	req.Equal("application/json", resp.Header.Get("Content-Type"))
	req.Zero(api.registry.CountForChat(99))
}

func TestStreamMessages_Feed_Failure_Sends_Error_Frame(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	api := newMockedAPI(t)
	stream := mocks.NewMockIStream(ctrl)

	// Given a feed that fails on the first read
	api.reads.EXPECT().EnsureChatAndUser(gomock.Any(), domain.UserID(1), domain.ChatID(1)).Return(nil)
	api.subscriber.EXPECT().Subscribe(gomock.Any(), domain.ChatID(1), domain.SessionID("s1")).Return(stream, stream.Stop)
	api.registry.EXPECT().Register(domain.ChatID(1), domain.SessionID("s1")).Return("conn-1")
	stream.EXPECT().Next(gomock.Any()).
		Return(domain.Message{}, fmt.Errorf("%w: read feed: disk gone", errors.ErrFeedUnavailable))

	// Then the stream is released once the error frame is written
	stream.EXPECT().Stop()
	unregistered := make(chan struct{})
	api.registry.EXPECT().Unregister(domain.ChatID(1), "conn-1").Do(func(domain.ChatID, string) { close(unregistered) })

	server := httptest.NewServer(api.router)
	defer server.Close()
	events, _ := openStream(t, server.URL+"/users/1/chats/1/messages?sessionId=s1")

	ev := nextEvent(t, events)
	req.Equal(errorEventName, ev.Type)
	var body errorResponse
	req.NoError(json.Unmarshal([]byte(ev.Data), &body))
	req.Contains(body.Error, "disk gone")

	select {
	case <-unregistered:
	case <-time.After(waitFor):
		req.Fail("connection was not unregistered")
	}
	_, open := <-events
	req.False(open)
}

func TestStreamMessages_Acknowledges_After_Flush(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	api := newMockedAPI(t)
	stream := mocks.NewMockIStream(ctrl)
	message := domain.Message{ID: 5, ChatID: 1, UserID: 2, Text: "hi", Author: domain.Author{ID: 2, Name: "Bob"}}

	api.reads.EXPECT().EnsureChatAndUser(gomock.Any(), domain.UserID(1), domain.ChatID(1)).Return(nil)
	api.subscriber.EXPECT().Subscribe(gomock.Any(), domain.ChatID(1), domain.SessionID("s1")).Return(stream, stream.Stop)
	api.registry.EXPECT().Register(domain.ChatID(1), domain.SessionID("s1")).Return("conn-1")

	// Given one message then a stopped stream
	// Then the message is acknowledged between the two pulls
	gomock.InOrder(
		stream.EXPECT().Next(gomock.Any()).Return(message, nil),
		stream.EXPECT().Ack(gomock.Any()).Return(nil),
		stream.EXPECT().Next(gomock.Any()).Return(domain.Message{}, errors.ErrStreamStopped),
	)
	stream.EXPECT().Stop()
	unregistered := make(chan struct{})
	api.registry.EXPECT().Unregister(domain.ChatID(1), "conn-1").Do(func(domain.ChatID, string) { close(unregistered) })

	server := httptest.NewServer(api.router)
	defer server.Close()
	events, _ := openStream(t, server.URL+"/users/1/chats/1/messages?sessionId=s1")

	ev := nextEvent(t, events)
	req.Equal("message-1", ev.Type)
	req.Equal("5", ev.LastEventID)

	select {
	case <-unregistered:
	case <-time.After(waitFor):
		req.Fail("connection was not unregistered")
	}
}
