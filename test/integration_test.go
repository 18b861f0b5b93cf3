package test

import (
	"chat-live/client"
	"chat-live/domain"
	domainsearch "chat-live/domain/search"
	httpserver "chat-live/infrastructure/http/server"
	"chat-live/infrastructure/search"
	"chat-live/moderation"
	"chat-live/observability"
	"chat-live/repositories"
	"chat-live/runtime"
	"chat-live/runtime/workers"
	"chat-live/services"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

type stack struct {
	server     *httptest.Server
	monitoring *observability.MonitoringManager
}

// newStack wires the server the way cmd/server does, on temporary storage.
func newStack(t *testing.T) stack {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Reduced to 16 Mo for testing
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).
		WithLoggingLevel(badger.ERROR).
		WithValueLogFileSize(16 << 20))
	req.NoError(err)
	writer, err := search.Open(t.TempDir())
	req.NoError(err)

	store := repositories.NewStore(db, log, time.Hour, nil)
	cursors := repositories.NewCursorRepository(db, log, 10*time.Minute)
	index := search.NewMessageIndex(writer, log)
	monitoring := observability.NewMonitoringManager(log, observability.NewMetrics())
	moderator, err := moderation.NewModerator([]string{"darn"}, '*', log)
	req.NoError(err)

	ctx, cancel := context.WithCancel(context.Background())
	sup := workers.NewSupervisor(log).WithRestartDelay(10 * time.Millisecond)
	sup.Add(workers.NewIndexerWorker(log, store.Feed, cursors, index, monitoring, time.Minute))
	supDone := make(chan struct{})
	go func() {
		defer close(supDone)
		sup.Run(ctx)
	}()

	handler := httpserver.NewHandler(log,
		services.NewIngestService(log, store.Messages, moderator, monitoring),
		services.NewReadService(log, store.Users, store.Chats, store.Messages, index),
		runtime.NewSubscriber(log, store.Feed, cursors, 0, time.Minute),
		runtime.NewRegistry(log),
		monitoring,
	)
	server := httptest.NewUnstartedServer(httpserver.NewRouter(log, handler, nil))
	server.Config.BaseContext = func(_ net.Listener) context.Context { return ctx }
	server.Start()

	// Clean everything at the end of the test
	t.Cleanup(func() {
		cancel()
		server.Close()
		<-supDone
		_ = writer.Close()
		_ = db.Close()
	})

	alice, err := store.Users.CreateUser(ctx, "Alice")
	req.NoError(err)
	bob, err := store.Users.CreateUser(ctx, "Bob")
	req.NoError(err)
	_, err = store.Chats.CreateChat(ctx, []domain.UserID{alice.ID, bob.ID})
	req.NoError(err)

	return stack{server: server, monitoring: monitoring}
}

func (s stack) post(t *testing.T, userID domain.UserID, text string) domain.Message {
	t.Helper()
	resp, err := http.PostForm(fmt.Sprintf("%s/users/%d/chats/1", s.server.URL, userID), url.Values{"text": {text}})
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var message domain.Message
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&message))
	return message
}

func (s stack) follow(t *testing.T, ctx context.Context, userID domain.UserID, sessionID domain.SessionID) (*client.Viewer, <-chan domain.Message) {
	t.Helper()
	received := make(chan domain.Message, 64)
	viewer := client.NewViewer(s.server.URL, userID, 1,
		client.WithSessionID(sessionID),
		client.WithHTTPClient(s.server.Client()),
		client.WithRetry(20*time.Millisecond, 0),
		client.WithOnMessage(func(m domain.Message) { received <- m }),
	)
	go func() { _ = viewer.Run(ctx) }()
	return viewer, received
}

func waitStreams(t *testing.T, s stack, n int64) {
	t.Helper()
	require.Eventually(t, func() bool { return s.monitoring.GetLatest().ActiveStreams == n }, 2*time.Second, 10*time.Millisecond)
}

func Test_Scenario(t *testing.T) {
	req := require.New(t)
	s := newStack(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Given Alice(1) on chat 1 with session s1
	viewer, received := s.follow(t, ctx, 1, "s1")
	waitStreams(t, s, 1)

	// When Bob(2) posts "hi"
	posted := s.post(t, 2, "hi")

	// Then Alice's page shows it with Bob as author
	select {
	case m := <-received:
		req.Equal(posted.ID, m.ID)
		req.Equal("hi", m.Text)
		req.Equal(domain.Author{ID: 2, Name: "Bob"}, m.Author)
	case <-time.After(2 * time.Second):
		req.Fail("Timeout: message has never reached the viewer")
	}
	req.Len(viewer.Messages(), 1)
}

func Test_Scenario_Moderation_And_Search(t *testing.T) {
	req := require.New(t)
	s := newStack(t)

	// When a moderated word is posted
	posted := s.post(t, 1, "well darn the build is green")
	req.Equal("well **** the build is green", posted.Text)

	// Then the indexer makes it searchable
	req.Eventually(func() bool {
		resp, err := http.Get(s.server.URL + "/chats/1/search?q=build")
		if err != nil {
			return false
		}
		defer func() { _ = resp.Body.Close() }()
		var hits []domainsearch.Hit
		if json.NewDecoder(resp.Body).Decode(&hits) != nil {
			return false
		}
		return len(hits) == 1 && hits[0].MessageID == posted.ID
	}, 3*time.Second, 20*time.Millisecond)
}

func Test_Scenario_Concurrent_Sessions(t *testing.T) {
	req := require.New(t)
	s := newStack(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	const sessions, messages = 5, 20
	channels := make([]<-chan domain.Message, 0, sessions)
	for i := range sessions {
		_, received := s.follow(t, ctx, domain.UserID(i%2+1), domain.SessionID(fmt.Sprintf("s%d", i)))
		channels = append(channels, received)
	}
	waitStreams(t, s, sessions)

	// Given both users posting at the same time
	g := errgroup.Group{}
	for _, userID := range []domain.UserID{1, 2} {
		g.Go(func() error {
			for i := range messages / 2 {
				form := url.Values{"text": {fmt.Sprintf("user %d message %d", userID, i)}}
				resp, err := http.PostForm(fmt.Sprintf("%s/users/%d/chats/1", s.server.URL, userID), form)
				if err != nil {
					return err
				}
				_ = resp.Body.Close()
				if resp.StatusCode != http.StatusCreated {
					return fmt.Errorf("post returned %s", resp.Status)
				}
			}
			return nil
		})
	}
	req.NoError(g.Wait())

	// Then every session sees every message once, in the same order
	var reference []domain.MessageID
	for i, received := range channels {
		var ids []domain.MessageID
		for len(ids) < messages {
			select {
			case m := <-received:
				ids = append(ids, m.ID)
			case <-time.After(3 * time.Second):
				req.FailNow(fmt.Sprintf("session s%d got %d of %d messages", i, len(ids), messages))
			}
		}
		if reference == nil {
			reference = ids
			continue
		}
		req.Equal(reference, ids, "session s%d", i)
	}
}
