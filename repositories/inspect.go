package repositories

import (
	"fmt"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Entry is a readable rendering of one stored key, for the inspector tools.
type Entry struct {
	Key       string
	Kind      string
	ID        string
	Timestamp string
	Detail    string
}

const noTimestamp = "--:--:--"

// DescribeEntry decodes a raw key/value pair. Values that fail to decode keep
// their size as detail and are reported as RAW.
func DescribeEntry(key string, val []byte) Entry {
	entry := Entry{
		Key:       key,
		Kind:      "RAW",
		ID:        "-",
		Timestamp: noTimestamp,
		Detail:    fmt.Sprintf("Size: %d bytes", len(val)),
	}

	switch {
	case strings.HasPrefix(key, userPrefix):
		if u, err := decodeUser(val); err == nil {
			entry.Kind, entry.ID, entry.Detail = "USER", fmt.Sprint(u.ID), u.Name
		}
	case strings.HasPrefix(key, chatPrefix):
		if c, err := decodeChat(val); err == nil {
			entry.Kind, entry.ID = "CHAT", fmt.Sprint(c.ID)
			entry.Detail = fmt.Sprintf("participants=%v", c.Participants)
		}
	case strings.HasPrefix(key, memberPrefix):
		entry.Kind = "MEMBER"
		entry.Detail = strings.TrimPrefix(key, memberPrefix)
	case strings.HasPrefix(key, msgPrefix):
		if m, err := decodeMessage(val); err == nil {
			entry.Kind, entry.ID = "MESSAGE", fmt.Sprint(m.ID)
			entry.Timestamp = m.CreatedAt.Format(time.TimeOnly)
			entry.Detail = fmt.Sprintf("chat=%d %s: %s", m.ChatID, m.AuthorName, m.Text)
		}
	case strings.HasPrefix(key, feedPrefix), strings.HasPrefix(key, "feedc:"):
		if c, err := decodeChange(val); err == nil {
			entry.Kind, entry.ID = "FEED", fmt.Sprint(c.Seq)
			entry.Timestamp = c.Message.CreatedAt.Format(time.TimeOnly)
			entry.Detail = fmt.Sprintf("%s message=%d chat=%d", c.Namespace, c.Message.ID, c.Message.ChatID)
		}
	case strings.HasPrefix(key, cursorPrefix), strings.HasPrefix(key, "counter:"):
		if v, err := decodeCounter(val); err == nil {
			entry.Kind = "CURSOR"
			if strings.HasPrefix(key, "counter:") {
				entry.Kind = "COUNTER"
			}
			entry.ID = key[strings.Index(key, ":")+1:]
			entry.Detail = fmt.Sprint(v)
		}
	}
	return entry
}

// ScanEntries describes every key starting with prefix, in key order.
// limit <= 0 means no limit.
func ScanEntries(db *badger.DB, prefix string, limit int) ([]Entry, error) {
	var entries []Entry
	err := db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			if limit > 0 && len(entries) == limit {
				return nil
			}
			item := it.Item()
			err := item.Value(func(val []byte) error {
				entries = append(entries, DescribeEntry(string(item.Key()), val))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan prefix %q: %w", prefix, err)
	}
	return entries, nil
}
