//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-live/domain"
	"chat-live/domain/event"
	"chat-live/domain/search"
	"context"
	"reflect"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Stop()
}

type WorkerName string

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// IChangeFeed is the ordered, resumable record of store mutations.
// ReadFrom returns changes with Seq strictly greater than after, in Seq order.
// The channel returned by Changed is closed on the next append.
type IChangeFeed interface {
	Head(ctx context.Context) (uint64, error)
	ReadFrom(ctx context.Context, after uint64, filter event.Filter, limit int) ([]event.Change, error)
	Changed() <-chan struct{}
}

// ICursorStore keeps named feed positions for a bounded retention window.
type ICursorStore interface {
	Load(ctx context.Context, name string) (uint64, bool, error)
	Save(ctx context.Context, name string, seq uint64) error
	Delete(ctx context.Context, name string) error
}

// IStream is a lazy sequence of messages created in one chat.
// Next blocks until a message is available, ctx is done or the stream is stopped.
type IStream interface {
	Next(ctx context.Context) (domain.Message, error)
	// Ack records the message last returned by Next as delivered.
	Ack(ctx context.Context) error
	Stop()
}

type ISubscriber interface {
	Subscribe(ctx context.Context, chatID domain.ChatID, sessionID domain.SessionID) (IStream, func())
}

type IRegistry interface {
	Register(chatID domain.ChatID, sessionID domain.SessionID) string
	Unregister(chatID domain.ChatID, connectionID string)
	CountForChat(chatID domain.ChatID) int
	Snapshot() map[domain.ChatID]int
}

type IMessageIndex interface {
	Index(ctx context.Context, message domain.Message, lang string) error
	Search(ctx context.Context, query search.Query) ([]search.Hit, error)
}

type IPublisher interface {
	Publish(ctx context.Context, messages ...domain.Message) error
	Close() error
}
