// Package hint renders the progressively revealed masked word shown to
// guessers. Spaces are never masked; they render as a double space so word
// boundaries stay visible.
package hint

import (
	"math/rand"
	"strings"
)

type Hint struct {
	word     []rune
	revealed []bool
	interval int
	total    int
	rng      *rand.Rand
}

// New seeds a hint from the secret word. totalSeconds is the round length;
// the reveal interval is totalSeconds / max(len(word)-1, 1).
func New(word string, totalSeconds int, rng *rand.Rand) *Hint {
	runes := []rune(word)
	revealed := make([]bool, len(runes))
	for i, r := range runes {
		if r == ' ' {
			revealed[i] = true
		}
	}

	div := len(runes) - 1
	if div < 1 {
		div = 1
	}
	interval := totalSeconds / div
	if interval < 1 {
		interval = 1
	}

	return &Hint{
		word:     runes,
		revealed: revealed,
		interval: interval,
		total:    totalSeconds,
		rng:      rng,
	}
}

// Masked renders the current hint: one token per rune, "_" when hidden, the
// character when revealed, "  " for a literal space, joined by single spaces.
func (h *Hint) Masked() string {
	tokens := make([]string, len(h.word))
	for i, r := range h.word {
		switch {
		case r == ' ':
			tokens[i] = "  "
		case h.revealed[i]:
			tokens[i] = string(r)
		default:
			tokens[i] = "_"
		}
	}
	return strings.Join(tokens, " ")
}

// Tick is called once per elapsed second. On seconds that land on the reveal
// interval (strictly inside the round) it uncovers one random still-hidden
// letter and reports a change.
func (h *Hint) Tick(elapsed int) bool {
	if elapsed <= 0 || elapsed >= h.total {
		return false
	}
	if elapsed%h.interval != 0 {
		return false
	}

	hidden := make([]int, 0, len(h.word))
	for i, r := range h.revealed {
		if !r {
			hidden = append(hidden, i)
		}
	}
	if len(hidden) == 0 {
		return false
	}

	h.revealed[hidden[h.rng.Intn(len(hidden))]] = true
	return true
}

// RevealedCount reports how many non-space letters are currently uncovered.
func (h *Hint) RevealedCount() int {
	n := 0
	for i, r := range h.word {
		if r != ' ' && h.revealed[i] {
			n++
		}
	}
	return n
}
