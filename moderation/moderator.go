package moderation

import (
	"log/slog"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
	"github.com/samber/lo"
)

// Moderator masks forbidden words in message text before it is stored.
// Matching ignores case, punctuation, spacing and common leet substitutions.
// A masked span covers every rune of the posted text between the first and
// the last matched rune.
type Moderator struct {
	machine *goahocorasick.Machine
	mask    rune
	log     *slog.Logger
}

// folded is the searchable form of a text: positions[i] is the index, in the
// posted runes, of folded rune runes[i].
type folded struct {
	runes     []rune
	positions []int
}

// NewModerator builds the automaton once. Words that fold to nothing are
// dropped, and an empty list yields a moderator that never masks.
func NewModerator(words []string, mask rune, log *slog.Logger) (*Moderator, error) {
	moderator := &Moderator{mask: mask, log: log}

	patterns := lo.FilterMap(words, func(word string, _ int) ([]rune, bool) {
		f := fold(word)
		return f.runes, len(f.runes) > 0
	})
	if len(patterns) == 0 {
		return moderator, nil
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, err
	}
	moderator.machine = machine
	return moderator, nil
}

// Censor returns the masked text and the folded dictionary words it hit, in
// order of appearance. hits is nil when the text is clean.
func (m *Moderator) Censor(text string) (masked string, hits []string) {
	if m.machine == nil {
		return text, nil
	}
	f := fold(text)
	if len(f.runes) == 0 {
		return text, nil
	}

	terms := m.machine.MultiPatternSearch(f.runes, false)
	if len(terms) == 0 {
		return text, nil
	}

	out := []rune(text)
	for _, term := range terms {
		last := term.Pos + len(term.Word) - 1
		if term.Pos < 0 || last >= len(f.positions) {
			continue
		}
		for i := f.positions[term.Pos]; i <= f.positions[last]; i++ {
			out[i] = m.mask
		}
		hits = append(hits, string(term.Word))
	}

	if len(hits) > 0 {
		m.log.Debug("Message censored", "hits", len(hits))
	}
	return string(out), hits
}

func fold(text string) folded {
	src := []rune(text)
	f := folded{
		runes:     make([]rune, 0, len(src)),
		positions: make([]int, 0, len(src)),
	}
	for i, r := range src {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		f.runes = append(f.runes, unicode.ToLower(r))
		f.positions = append(f.positions, i)
	}
	return f
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	}
	return r
}
