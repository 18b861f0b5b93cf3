package search

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSearchQuery(t *testing.T) {
	req := require.New(t)

	tests := []struct {
		name  string
		input string
		terms string
		lang  string
		limit int
	}{
		{"plain terms", "hello world", "hello world", "", DefaultLimit},
		{"command and flags", `/find "invoice" --lang FR --limit 5`, "invoice", "fr", 5},
		{"invalid limit keeps default", "hi --limit zero", "hi", "", DefaultLimit},
		{"dangling flag is a term", "hi --lang", "hi --lang", "", DefaultLimit},
		{"empty", "", "", "", DefaultLimit},
	}

	for _, tt := range tests {
		q := NewSearchQuery(tt.input)
		req.Equal(tt.terms, q.Terms, "test=%s", tt.name)
		req.Equal(tt.lang, q.Lang, "test=%s", tt.name)
		req.Equal(tt.limit, q.Limit, "test=%s", tt.name)
		req.Equal(tt.input, q.RawInput, "test=%s", tt.name)
	}
}
