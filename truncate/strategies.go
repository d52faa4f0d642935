package truncate

import (
	"strings"
	"unicode"
)

// truncateWords keeps the first maxWords words joined by single spaces.
func truncateWords(text string, maxWords int) string {
	words := strings.Fields(text)
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return strings.Join(words, " ")
}

// truncateSentences accumulates whole sentences until the next one would
// push the word count past maxWords.
func truncateSentences(text string, maxWords int) string {
	var sb strings.Builder
	count := 0

	for _, sentence := range splitSentences(text) {
		n := len(strings.Fields(sentence))
		if count+n > maxWords {
			break
		}
		if sb.Len() > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(sentence)
		count += n
	}

	return sb.String()
}

// splitSentences splits on '.', '!' or '?' followed by whitespace.
// The terminator stays with its sentence; the whitespace is dropped.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) || i+1 >= len(runes) || !unicode.IsSpace(runes[i+1]) {
			continue
		}
		if s := strings.TrimSpace(string(runes[start : i+1])); s != "" {
			sentences = append(sentences, s)
		}
		j := i + 1
		for j < len(runes) && unicode.IsSpace(runes[j]) {
			j++
		}
		start = j
		i = j - 1
	}

	if start < len(runes) {
		if s := strings.TrimSpace(string(runes[start:])); s != "" {
			sentences = append(sentences, s)
		}
	}

	return sentences
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// ToWords truncates text to the first maxWords words.
func ToWords(text string, maxWords int) string {
	result, _ := NewHard().Truncate(text, maxWords)
	return result
}

// ToSentences truncates text to whole sentences within maxWords words.
func ToSentences(text string, maxWords int) string {
	result, _ := NewSentence().Truncate(text, maxWords)
	return result
}
