// Package prompt builds summarization prompts.
//
// A prompt is an instruction, the text to summarize, and a trailing cue
// marker that nudges the model to emit only the summary:
//
//	Summarize the following in bullet points.
//
//	<text>
//
//	Summary:
//
// The instruction comes from a fixed catalog of styles or, when given, a
// caller-supplied custom prompt that replaces it entirely.
//
//	p, err := prompt.Build(text, prompt.Options{Style: prompt.Bullet})
//
// Styles form a closed set. Parse user input with ParseStyle, which reports
// ErrUnsupportedStyle, or ParseStyleOrDefault, which falls back to Default.
package prompt
