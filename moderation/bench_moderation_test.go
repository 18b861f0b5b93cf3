package moderation

import (
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func Test_Moderation_Benchmark(t *testing.T) {
	req := require.New(t)
	wordCount := 100_000

	words := make([]string, 0, wordCount)
	for i := 0; i < wordCount; i++ {
		words = append(words, fmt.Sprintf("word%dx", i))
	}

	// Given a large dictionary
	startBuild := time.Now()
	mod, err := NewModerator(words, '*', slog.Default())
	req.NoError(err)
	t.Logf("Building AC automaton with %d words: %v", wordCount, time.Since(startBuild))

	// When a message with one forbidden word is censored
	startCensor := time.Now()
	content, found := mod.Censor("hello word42x how are you")
	t.Logf("Censoring one message: %v", time.Since(startCensor))

	// Then only that word is masked, reported in its normalized form
	req.Equal("hello ******* how are you", content)
	req.Equal([]string{"worda2x"}, found)
}

func TestModerator_No_Words(t *testing.T) {
	req := require.New(t)

	// Given an empty dictionary
	mod, err := NewModerator(nil, '*', slog.Default())
	req.NoError(err)

	// Then text is left untouched
	content, found := mod.Censor("anything goes")
	req.Equal("anything goes", content)
	req.Nil(found)
}
