// Package tokens provides word and token counting and context window checks.
//
// Token estimation is based on the rule-of-thumb that approximately 4 characters
// equals 1 token for English text. This provides a fast estimation without
// loading the model's tokenizer.
//
// # Counter
//
// The Counter interface provides counting methods:
//
//	counter := tokens.NewEstimatingCounter()
//	count := counter.Count("Hello, world!")     // ~3 tokens
//	fits := counter.FitsInLimit("text", 1000)   // true if <= 1000 tokens
//
// Word limits use the WordCounter, which counts whitespace-separated fields:
//
//	words := tokens.CountWords("one two  three") // 3
//
// # Window
//
// Window checks a prompt and its output budget against a model's context size:
//
//	w := tokens.NewWindow(4096)
//	w.Fits(prompt, 200)        // prompt tokens + 200 <= 4096
//	w.Remaining(prompt)        // tokens left for generation
package tokens
