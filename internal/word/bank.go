package word

import (
	"errors"
	"math/rand"
	"os"
	"strings"
	"sync"
)

// ChoiceCount is how many words the drawer gets to pick from.
const ChoiceCount = 3

var ErrEmptyBank = errors.New("word bank empty after parsing")

// Bank holds the guessable word list. The zero value is unusable; use New or
// NewFromFile.
type Bank struct {
	mu    sync.Mutex
	words []string
	rng   *rand.Rand
}

func New(words []string, rng *rand.Rand) (*Bank, error) {
	tmp := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w != "" {
			tmp = append(tmp, w)
		}
	}
	if len(tmp) == 0 {
		return nil, ErrEmptyBank
	}
	return &Bank{words: tmp, rng: rng}, nil
}

// NewFromFile loads a newline-separated word list, one word per line.
func NewFromFile(path string, rng *rand.Rand) (*Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(strings.Split(string(data), "\n"), rng)
}

// Default returns a bank backed by the built-in word list.
func Default(rng *rand.Rand) *Bank {
	b, _ := New(defaultWords, rng)
	return b
}

// Choices returns n distinct random words. If the bank holds fewer than n
// words it returns all of them in random order.
func (b *Bank) Choices(n int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	if n > len(b.words) {
		n = len(b.words)
	}
	out := make([]string, 0, n)
	for _, idx := range b.rng.Perm(len(b.words))[:n] {
		out = append(out, b.words[idx])
	}
	return out
}

func (b *Bank) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.words)
}
