package search

import (
	"chat-live/contract"
	"chat-live/domain"
	domainsearch "chat-live/domain/search"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/blugelabs/bluge"
)

const (
	fieldMessageID = "message_id"
	fieldChatID    = "chat_id"
	fieldUserID    = "user_id"
	fieldText      = "text"
	fieldLang      = "lang"
	fieldCreatedAt = "created_at"
)

var _ contract.IMessageIndex = (*MessageIndex)(nil)

// MessageIndex is a Bluge full-text index of chat messages.
// The document id is the message id, so indexing the same message twice
// replaces the previous document.
type MessageIndex struct {
	writer *bluge.Writer
	log    *slog.Logger
}

func NewMessageIndex(writer *bluge.Writer, log *slog.Logger) *MessageIndex {
	return &MessageIndex{writer: writer, log: log}
}

// Open opens (or creates) an on-disk index at path.
func Open(path string) (*bluge.Writer, error) {
	writer, err := bluge.OpenWriter(bluge.DefaultConfig(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open bluge writer: %w", err)
	}
	return writer, nil
}

func (m *MessageIndex) Index(_ context.Context, message domain.Message, lang string) error {
	doc := bluge.NewDocument(message.ID.String())
	doc.AddField(bluge.NewKeywordField(fieldMessageID, message.ID.String()).StoreValue())
	doc.AddField(bluge.NewKeywordField(fieldChatID, message.ChatID.String()).StoreValue())
	doc.AddField(bluge.NewKeywordField(fieldUserID, message.UserID.String()).StoreValue())
	doc.AddField(bluge.NewTextField(fieldText, message.Text).StoreValue())
	doc.AddField(bluge.NewKeywordField(fieldLang, lang).StoreValue())
	doc.AddField(bluge.NewKeywordField(fieldCreatedAt, message.CreatedAt.UTC().Format(time.RFC3339Nano)).StoreValue())

	if err := m.writer.Update(doc.ID(), doc); err != nil {
		return fmt.Errorf("index message %d: %w", message.ID, err)
	}
	return nil
}

// Search matches query.Terms against the message text, optionally restricted
// to one chat and one language. Hits are ordered by score.
func (m *MessageIndex) Search(ctx context.Context, query domainsearch.Query) ([]domainsearch.Hit, error) {
	reader, err := m.writer.Reader()
	if err != nil {
		return nil, fmt.Errorf("open index reader: %w", err)
	}
	defer func() { _ = reader.Close() }()

	q := bluge.NewBooleanQuery().AddMust(bluge.NewMatchQuery(query.Terms).SetField(fieldText))
	if query.ChatID != 0 {
		q.AddMust(bluge.NewTermQuery(query.ChatID.String()).SetField(fieldChatID))
	}
	if query.Lang != "" {
		q.AddMust(bluge.NewTermQuery(query.Lang).SetField(fieldLang))
	}

	limit := query.Limit
	if limit <= 0 {
		limit = domainsearch.DefaultLimit
	}

	matches, err := reader.Search(ctx, bluge.NewTopNSearch(limit, q))
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query.Terms, err)
	}

	hits := make([]domainsearch.Hit, 0, limit)
	match, err := matches.Next()
	for err == nil && match != nil {
		hit := domainsearch.Hit{Score: match.Score}
		var visitErr error
		err = match.VisitStoredFields(func(field string, value []byte) bool {
			visitErr = decodeField(&hit, field, value)
			return visitErr == nil
		})
		if err == nil {
			err = visitErr
		}
		if err != nil {
			break
		}
		hits = append(hits, hit)
		match, err = matches.Next()
	}
	if err != nil {
		return nil, fmt.Errorf("read search results: %w", err)
	}

	m.log.Debug("Search done", "terms", query.Terms, "chat_id", query.ChatID, "hits", len(hits))
	return hits, nil
}

func decodeField(hit *domainsearch.Hit, field string, value []byte) error {
	var err error
	switch field {
	case fieldMessageID:
		var id int64
		id, err = strconv.ParseInt(string(value), 10, 64)
		hit.MessageID = domain.MessageID(id)
	case fieldChatID:
		var id int64
		id, err = strconv.ParseInt(string(value), 10, 64)
		hit.ChatID = domain.ChatID(id)
	case fieldUserID:
		var id int64
		id, err = strconv.ParseInt(string(value), 10, 64)
		hit.UserID = domain.UserID(id)
	case fieldText:
		hit.Text = string(value)
	case fieldLang:
		hit.Lang = string(value)
	case fieldCreatedAt:
		hit.CreatedAt, err = time.Parse(time.RFC3339Nano, string(value))
	}
	if err != nil {
		return fmt.Errorf("decode stored field %s: %w", field, err)
	}
	return nil
}
