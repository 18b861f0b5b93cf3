package workers

import (
	"chat-live/domain"
	"chat-live/domain/event"
	"chat-live/mocks"
	"chat-live/observability"
	"chat-live/repositories"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type feedFixture struct {
	db      *badger.DB
	store   *repositories.Store
	cursors *repositories.CursorRepository
	chat    domain.Chat
	alice   domain.User
}

func newFeedFixture(t *testing.T) feedFixture {
	t.Helper()
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	t.Cleanup(func() { _ = db.Close() })

	store := repositories.NewStore(db, log, time.Hour, nil)
	ctx := context.Background()
	alice, err := store.Users.CreateUser(ctx, "Alice")
	req.NoError(err)
	chat, err := store.Chats.CreateChat(ctx, []domain.UserID{alice.ID})
	req.NoError(err)
	return feedFixture{
		db:      db,
		store:   store,
		cursors: repositories.NewCursorRepository(db, log, time.Hour),
		chat:    chat,
		alice:   alice,
	}
}

func (f feedFixture) post(t *testing.T, text string) domain.Message {
	t.Helper()
	message, err := f.store.Messages.CreateMessage(context.Background(), domain.NewMessage{
		ChatID: f.chat.ID, UserID: f.alice.ID, Text: text,
	})
	require.NoError(t, err)
	return message
}

// startWorker runs fn in the background until the test ends. The cleanup is
// registered after the fixture's, so fn has returned before the database closes.
func startWorker(t *testing.T, fn func(ctx context.Context)) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// collector records handled messages and can fail on demand.
type collector struct {
	mu       sync.Mutex
	messages []domain.MessageID
	failOnce bool
}

func (c *collector) handle(_ context.Context, changes []event.Change) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failOnce {
		c.failOnce = false
		return fmt.Errorf("downstream unavailable")
	}
	for _, change := range changes {
		c.messages = append(c.messages, change.Message.ID)
	}
	return nil
}

func (c *collector) ids() []domain.MessageID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]domain.MessageID(nil), c.messages...)
}

func TestFeedConsumer_Consumes_History_And_Live_Changes(t *testing.T) {
	req := require.New(t)
	f := newFeedFixture(t)
	sink := &collector{}

	// Given a message written before the consumer starts
	m1 := f.post(t, "before")

	consumer := NewFeedConsumer(slog.Default(), "test", f.store.Feed, f.cursors, 1, 0, sink.handle)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Run(ctx) }()

	// When another one is written while it runs
	m2 := f.post(t, "after")

	// Then both are handled in order and the cursor follows
	req.Eventually(func() bool { return len(sink.ids()) == 2 }, 2*time.Second, 10*time.Millisecond)
	req.Equal([]domain.MessageID{m1.ID, m2.ID}, sink.ids())

	cancel()
	req.NoError(<-done)

	seq, found, err := f.cursors.Load(context.Background(), "test")
	req.NoError(err)
	req.True(found)
	req.Equal(uint64(2), seq)
}

func TestFeedConsumer_Failed_Batch_Is_Retried_After_Restart(t *testing.T) {
	req := require.New(t)
	f := newFeedFixture(t)
	sink := &collector{failOnce: true}
	posted := f.post(t, "retry me")

	consumer := NewFeedConsumer(slog.Default(), "test", f.store.Feed, f.cursors, 0, 0, sink.handle)

	// When the handler fails, the worker returns the error for the supervisor
	err := consumer.Run(context.Background())
	req.ErrorContains(err, "downstream unavailable")
	_, found, err := f.cursors.Load(context.Background(), "test")
	req.NoError(err)
	req.False(found)

	// Then a restarted worker handles the same change again
	sup := NewSupervisor(slog.Default()).WithRestartDelay(time.Millisecond)
	startWorker(t, func(ctx context.Context) { sup.Add(consumer).Run(ctx) })
	req.Eventually(func() bool { return len(sink.ids()) == 1 }, 2*time.Second, 10*time.Millisecond)
	req.Equal([]domain.MessageID{posted.ID}, sink.ids())
}

func TestIndexerWorker_Indexes_With_Language(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	f := newFeedFixture(t)
	index := mocks.NewMockIMessageIndex(ctrl)
	monitoring := observability.NewMonitoringManager(slog.Default(), observability.NewMetrics())

	posted := f.post(t, "Bonjour tout le monde, comment allez-vous aujourd'hui ?")

	indexed := make(chan string, 1)
	index.EXPECT().Index(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, message domain.Message, lang string) error {
			req.Equal(posted.ID, message.ID)
			indexed <- lang
			return nil
		})

	worker := NewIndexerWorker(slog.Default(), f.store.Feed, f.cursors, index, monitoring, 0)
	startWorker(t, func(ctx context.Context) { _ = worker.Run(ctx) })

	select {
	case lang := <-indexed:
		req.Equal("fr", lang)
	case <-time.After(2 * time.Second):
		req.Fail("message was not indexed")
	}
	req.Eventually(func() bool { return monitoring.GetLatest().Indexed == 1 }, time.Second, 10*time.Millisecond)
}

func TestRelayWorker_Publishes_Batches(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	f := newFeedFixture(t)
	publisher := mocks.NewMockIPublisher(ctrl)
	monitoring := observability.NewMonitoringManager(slog.Default(), observability.NewMetrics())

	m1 := f.post(t, "one")
	m2 := f.post(t, "two")

	published := make(chan []domain.MessageID, 1)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, messages ...domain.Message) error {
			ids := make([]domain.MessageID, 0, len(messages))
			for _, m := range messages {
				ids = append(ids, m.ID)
			}
			published <- ids
			return nil
		})

	worker := NewRelayWorker(slog.Default(), f.store.Feed, f.cursors, publisher, monitoring, 0)
	startWorker(t, func(ctx context.Context) { _ = worker.Run(ctx) })

	select {
	case ids := <-published:
		req.Equal([]domain.MessageID{m1.ID, m2.ID}, ids)
	case <-time.After(2 * time.Second):
		req.Fail("messages were not relayed")
	}
	req.Eventually(func() bool { return monitoring.GetLatest().Relayed == 2 }, time.Second, 10*time.Millisecond)
}
