// Package truncate limits text to a word budget.
//
// Two strategies are available and are never mixed:
//
//   - Hard: keep exactly the first N words.
//   - Sentence: keep whole sentences while they fit in N words, dropping
//     everything from the first sentence that would overflow.
//
// # Basic Usage
//
//	tr := truncate.New(truncate.Sentence)
//	result, truncated := tr.Truncate(summary, 150)
//
// For one-off truncation:
//
//	result := truncate.ToWords(text, 500)      // hard cut
//	result := truncate.ToSentences(text, 150)  // sentence boundaries only
//
// A limit <= 0 disables truncation.
//
// Sentences end at '.', '!' or '?' followed by whitespace. Abbreviations such
// as "e.g. this" are treated as sentence ends.
package truncate
