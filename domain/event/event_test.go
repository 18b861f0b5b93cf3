package event

import (
	"chat-live/domain"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFilter_Match(t *testing.T) {
	req := require.New(t)
	created := Change{Seq: 1, Type: Create, Namespace: MessageNamespace, ChatID: domain.ChatID(7)}

	// Given a filter scoped to chat 7
	// Then only creations of chat 7 match
	req.True(MessagesCreatedIn(7).Match(created))
	req.False(MessagesCreatedIn(8).Match(created))

	// Given a feed-wide filter
	// Then every chat matches
	req.True(AllMessagesCreated().Match(created))

	// Given a filter asking only for deletions
	// Then a creation does not match
	req.False(Filter{Types: Delete}.Match(created))
	req.True(Filter{Types: All}.Match(created))
}

func TestChangeType_String(t *testing.T) {
	req := require.New(t)
	req.Equal("create", Create.String())
	req.Equal("delete", Delete.String())
	req.Equal("change(8)", ChangeType(8).String())
}
