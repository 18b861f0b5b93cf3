package search

import (
	"chat-live/domain"
	"strconv"
	"strings"
	"time"
)

const DefaultLimit = 10

// Query represents the structured parameters for a message search.
// It decouples the raw input from the actual index requirements.
type Query struct {
	RawInput string        // The original input from the user
	Terms    string        // The actual text to search in the index
	ChatID   domain.ChatID // Target chat, zero for every chat
	Lang     string        // ISO 639-1 filter, empty for any language
	Limit    int           // Pagination: number of results
}

// Hit is one search result.
type Hit struct {
	MessageID domain.MessageID `json:"messageId"`
	ChatID    domain.ChatID    `json:"chatId"`
	UserID    domain.UserID    `json:"userId"`
	Text      string           `json:"text"`
	Lang      string           `json:"lang"`
	CreatedAt time.Time        `json:"createdAt"`
	Score     float64          `json:"score"`
}

// NewSearchQuery parses a raw string to extract command-line style arguments.
// Example: /find "invoice" --lang fr --limit 5
func NewSearchQuery(input string) Query {
	query := Query{
		RawInput: input,
		Limit:    DefaultLimit,
	}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		// Handle flags like --lang fr or --limit 5
		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			switch key {
			case "lang":
				query.Lang = strings.ToLower(val)
			case "limit":
				if n, err := strconv.Atoi(val); err == nil && n > 0 {
					query.Limit = n
				}
			}
			i++ // Skip the value part in next iteration
			continue
		}

		// If it's not a flag, it's a search term
		if !strings.HasPrefix(part, "/") {
			textTerms = append(textTerms, strings.Trim(part, `"`))
		}
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}
