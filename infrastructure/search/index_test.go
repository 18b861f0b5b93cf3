package search

import (
	"chat-live/domain"
	domainsearch "chat-live/domain/search"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newIndex(t *testing.T) *MessageIndex {
	t.Helper()
	writer, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewMessageIndex(writer, slog.Default())
}

func TestMessageIndex_Search(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newIndex(t)
	now := time.Now().UTC()

	// Given messages in two chats and two languages
	messages := []struct {
		message domain.Message
		lang    string
	}{
		{domain.Message{ID: 1, ChatID: 1, UserID: 1, Text: "the invoice is ready", CreatedAt: now}, "en"},
		{domain.Message{ID: 2, ChatID: 1, UserID: 2, Text: "la facture invoice est prête", CreatedAt: now}, "fr"},
		{domain.Message{ID: 3, ChatID: 2, UserID: 1, Text: "another invoice elsewhere", CreatedAt: now}, "en"},
		{domain.Message{ID: 4, ChatID: 1, UserID: 1, Text: "nothing to see", CreatedAt: now}, "en"},
	}
	for _, m := range messages {
		req.NoError(index.Index(ctx, m.message, m.lang))
	}

	// When searching one chat
	hits, err := index.Search(ctx, domainsearch.Query{Terms: "invoice", ChatID: 1})

	// Then only its matching messages come back
	req.NoError(err)
	ids := make([]domain.MessageID, 0, len(hits))
	for _, hit := range hits {
		req.Equal(domain.ChatID(1), hit.ChatID)
		req.Positive(hit.Score)
		ids = append(ids, hit.MessageID)
	}
	req.ElementsMatch([]domain.MessageID{1, 2}, ids)

	// When also filtering on language
	hits, err = index.Search(ctx, domainsearch.Query{Terms: "invoice", ChatID: 1, Lang: "fr"})
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(domain.MessageID(2), hits[0].MessageID)
	req.Equal(domain.UserID(2), hits[0].UserID)
	req.Equal("fr", hits[0].Lang)
	req.Equal("la facture invoice est prête", hits[0].Text)
	req.True(now.Equal(hits[0].CreatedAt))
}

func TestMessageIndex_Reindex_Replaces_Document(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()
	index := newIndex(t)

	message := domain.Message{ID: 1, ChatID: 1, UserID: 1, Text: "hello world", CreatedAt: time.Now()}
	req.NoError(index.Index(ctx, message, "en"))
	req.NoError(index.Index(ctx, message, "en"))

	hits, err := index.Search(ctx, domainsearch.Query{Terms: "hello", Limit: 10})
	req.NoError(err)
	req.Len(hits, 1)
}
