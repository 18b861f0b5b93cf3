package runtime

import (
	"chat-live/contract"
	"chat-live/domain"
	"chat-live/domain/event"
	"chat-live/errors"
	"context"
	"fmt"
	"iter"
	"log/slog"
	"sync"
	"time"
)

const (
	defaultBatchSize = 64
	// ackTimeout bounds a cursor write that outlives the caller's context.
	ackTimeout = 5 * time.Second
)

var (
	_ contract.ISubscriber = (*Subscriber)(nil)
	_ contract.IStream     = (*Stream)(nil)
)

// Subscriber turns the change feed into per-chat message streams.
// Named sessions keep their position in the cursor store so a later
// Subscribe with the same session resumes where the previous stream stopped.
type Subscriber struct {
	log             *slog.Logger
	feed            contract.IChangeFeed
	cursors         contract.ICursorStore
	batchSize       int
	refreshInterval time.Duration
}

// NewSubscriber builds a Subscriber. refreshInterval re-saves the cursor of an
// idle stream so it does not expire while the connection is still open;
// zero disables it.
func NewSubscriber(log *slog.Logger, feed contract.IChangeFeed, cursors contract.ICursorStore,
	batchSize int, refreshInterval time.Duration) *Subscriber {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &Subscriber{
		log:             log,
		feed:            feed,
		cursors:         cursors,
		batchSize:       batchSize,
		refreshInterval: refreshInterval,
	}
}

// Subscribe positions a stream on the feed and returns it with its stop function.
// The position is taken before returning: the stored cursor of a known session,
// otherwise the feed head. Any failure is kept and surfaces at the first Next.
func (s *Subscriber) Subscribe(ctx context.Context, chatID domain.ChatID, sessionID domain.SessionID) (contract.IStream, func()) {
	stream := &Stream{
		log:             s.log.With("chat_id", chatID, "session_id", sessionID.String()),
		feed:            s.feed,
		cursors:         s.cursors,
		chatID:          chatID,
		sessionID:       sessionID,
		cursorName:      cursorName(chatID, sessionID),
		filter:          event.MessagesCreatedIn(chatID),
		batchSize:       s.batchSize,
		refreshInterval: s.refreshInterval,
		done:            make(chan struct{}),
	}
	stream.position(ctx)
	return stream, stream.Stop
}

// Stream is a lazy, non replayable sequence of messages created in one chat.
// Next must be called from a single goroutine; Stop may be called from any.
//
// A message returned by Next is acknowledged by Ack or, at the latest, by the
// following call to Next, so a message whose delivery failed is replayed on
// resumption.
type Stream struct {
	log             *slog.Logger
	feed            contract.IChangeFeed
	cursors         contract.ICursorStore
	chatID          domain.ChatID
	sessionID       domain.SessionID
	cursorName      string // empty for anonymous sessions
	filter          event.Filter
	batchSize       int
	refreshInterval time.Duration

	read     uint64 // last sequence fetched from the feed
	acked    uint64 // last sequence acknowledged
	unacked  uint64 // sequence returned by Next, not yet acknowledged
	pending  []event.Change
	err      error
	done     chan struct{}
	stopOnce sync.Once
}

func (s *Stream) position(ctx context.Context) {
	head, err := s.feed.Head(ctx)
	if err != nil {
		s.err = feedUnavailable(fmt.Errorf("read feed head: %w", err))
		return
	}

	start := head
	if s.cursorName != "" {
		seq, found, err := s.cursors.Load(ctx, s.cursorName)
		if err != nil {
			s.err = feedUnavailable(fmt.Errorf("load cursor: %w", err))
			return
		}
		switch {
		case found && seq <= head:
			start = seq
			s.log.Debug("Resuming session", "seq", seq, "head", head)
		case found:
			// The feed was reset underneath the session.
			s.log.Warn("Cursor ahead of feed head, restarting at head", "seq", seq, "head", head)
		default:
			s.log.Debug("New session", "head", head)
		}
		if err = s.cursors.Save(ctx, s.cursorName, start); err != nil {
			s.err = feedUnavailable(fmt.Errorf("save cursor: %w", err))
			return
		}
	}
	s.read, s.acked = start, start
}

// Next acknowledges the previously returned message and blocks until the next
// one is available. It returns ctx.Err() when ctx is done, ErrStreamStopped
// after Stop and a wrapped ErrFeedUnavailable when the feed or the cursor
// store fails. Feed failures are sticky.
func (s *Stream) Next(ctx context.Context) (domain.Message, error) {
	if s.stopped() {
		return domain.Message{}, errors.ErrStreamStopped
	}
	if s.err != nil {
		return domain.Message{}, s.err
	}
	if err := s.Ack(ctx); err != nil {
		return domain.Message{}, err
	}
	if err := ctx.Err(); err != nil {
		return domain.Message{}, err
	}

	var refresh <-chan time.Time
	if s.refreshInterval > 0 && s.cursorName != "" {
		ticker := time.NewTicker(s.refreshInterval)
		defer ticker.Stop()
		refresh = ticker.C
	}

	for {
		if len(s.pending) > 0 {
			change := s.pending[0]
			s.pending = s.pending[1:]
			s.unacked = change.Seq
			return change.Message, nil
		}

		// Take the wake-up channel before reading so an append landing
		// between the read and the wait is not missed.
		changed := s.feed.Changed()
		changes, err := s.feed.ReadFrom(ctx, s.read, s.filter, s.batchSize)
		if err != nil {
			if ctx.Err() != nil {
				return domain.Message{}, ctx.Err()
			}
			s.err = feedUnavailable(fmt.Errorf("read feed: %w", err))
			return domain.Message{}, s.err
		}
		if len(changes) > 0 {
			s.pending = changes
			s.read = changes[len(changes)-1].Seq
			continue
		}

		select {
		case <-changed:
		case <-refresh:
			if err = s.save(ctx, s.acked); err != nil {
				return domain.Message{}, err
			}
		case <-ctx.Done():
			return domain.Message{}, ctx.Err()
		case <-s.done:
			return domain.Message{}, errors.ErrStreamStopped
		}
	}
}

// Messages adapts Next to a range loop. The sequence ends after the first error,
// which is yielded.
func (s *Stream) Messages(ctx context.Context) iter.Seq2[domain.Message, error] {
	return Messages(ctx, s)
}

// Stop releases the stream. The stored cursor is kept for resumption.
func (s *Stream) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
		s.log.Debug("Stream stopped")
	})
}

// Ack records the message last returned by Next as delivered. It is a no-op
// when nothing is pending. The write is not cancelled with ctx: a frame the
// client already received must not be replayed because it went away right after.
func (s *Stream) Ack(ctx context.Context) error {
	if s.unacked == 0 {
		return nil
	}
	if err := s.save(ctx, s.unacked); err != nil {
		return err
	}
	s.acked, s.unacked = s.unacked, 0
	return nil
}

func (s *Stream) save(ctx context.Context, seq uint64) error {
	if s.cursorName == "" {
		return nil
	}
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ackTimeout)
	defer cancel()
	if err := s.cursors.Save(saveCtx, s.cursorName, seq); err != nil {
		s.err = feedUnavailable(fmt.Errorf("save cursor: %w", err))
		return s.err
	}
	return nil
}

func cursorName(chatID domain.ChatID, sessionID domain.SessionID) string {
	if sessionID.IsAnonymous() {
		return ""
	}
	return sessionID.CursorName(chatID)
}

func (s *Stream) stopped() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Messages adapts any stream to a range loop.
func Messages(ctx context.Context, stream contract.IStream) iter.Seq2[domain.Message, error] {
	return func(yield func(domain.Message, error) bool) {
		for {
			message, err := stream.Next(ctx)
			if err != nil {
				yield(domain.Message{}, err)
				return
			}
			if !yield(message, nil) {
				return
			}
		}
	}
}

func feedUnavailable(err error) error {
	return fmt.Errorf("%w: %w", errors.ErrFeedUnavailable, err)
}
