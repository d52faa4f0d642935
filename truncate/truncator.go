package truncate

import (
	"fmt"

	"github.com/randalmurphal/summarize/tokens"
)

// Strategy defines how text is truncated.
type Strategy int

const (
	// Hard keeps the first N words, cutting mid-sentence if needed.
	Hard Strategy = iota

	// Sentence keeps whole sentences that fit within N words.
	Sentence
)

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case Hard:
		return "hard"
	case Sentence:
		return "sentence"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// ParseStrategy converts a configuration name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "hard":
		return Hard, nil
	case "sentence":
		return Sentence, nil
	default:
		return Hard, fmt.Errorf("unknown truncation strategy %q, expected hard or sentence", name)
	}
}

// Truncator limits text to a word count.
type Truncator struct {
	counter  tokens.Counter
	strategy Strategy
}

// New creates a truncator with the given strategy.
func New(strategy Strategy) *Truncator {
	return &Truncator{
		counter:  tokens.NewWordCounter(),
		strategy: strategy,
	}
}

// NewHard creates a truncator that cuts at the word limit.
func NewHard() *Truncator {
	return New(Hard)
}

// NewSentence creates a truncator that cuts at sentence boundaries.
func NewSentence() *Truncator {
	return New(Sentence)
}

// Truncate reduces text to at most maxWords words.
// Returns the truncated text and whether truncation occurred.
// A maxWords <= 0 returns the text unchanged.
func (t *Truncator) Truncate(text string, maxWords int) (string, bool) {
	if maxWords <= 0 || t.counter.FitsInLimit(text, maxWords) {
		return text, false
	}

	switch t.strategy {
	case Sentence:
		return truncateSentences(text, maxWords), true
	default:
		return truncateWords(text, maxWords), true
	}
}

// Strategy returns the truncator's strategy.
func (t *Truncator) Strategy() Strategy {
	return t.strategy
}
