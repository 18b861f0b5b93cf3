package event

import (
	"chat-live/domain"
	"fmt"
)

// ChangeType is the kind of mutation recorded in the change feed.
// Values are bit flags so a filter can ask for several kinds at once.
type ChangeType int

const (
	Create ChangeType = 1 << iota
	Update
	Delete

	All = Create | Update | Delete
)

func (t ChangeType) String() string {
	switch t {
	case Create:
		return "create"
	case Update:
		return "update"
	case Delete:
		return "delete"
	default:
		return fmt.Sprintf("change(%d)", int(t))
	}
}

// Namespace names the entity a change belongs to.
type Namespace string

const MessageNamespace Namespace = "message"

// Change is one entry of the change feed. Seq is global and strictly increasing.
type Change struct {
	Seq       uint64
	Type      ChangeType
	Namespace Namespace
	ChatID    domain.ChatID
	Message   domain.Message
}

// Filter selects changes from the feed. A zero ChatID matches every chat.
type Filter struct {
	Types  ChangeType
	ChatID domain.ChatID
}

// MessagesCreatedIn matches message creations of one chat.
func MessagesCreatedIn(chatID domain.ChatID) Filter {
	return Filter{Types: Create, ChatID: chatID}
}

// AllMessagesCreated matches message creations of every chat.
func AllMessagesCreated() Filter {
	return Filter{Types: Create}
}

func (f Filter) Match(c Change) bool {
	if f.Types != 0 && f.Types&c.Type == 0 {
		return false
	}
	return f.ChatID == 0 || f.ChatID == c.ChatID
}
