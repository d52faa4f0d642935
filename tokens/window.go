package tokens

// DefaultContextSize is the context window used when none is configured.
// Matches the n_ctx the local runtime is initialized with by default.
const DefaultContextSize = 4096

// Window checks prompts against a model context window.
type Window struct {
	// Size is the total number of tokens the model can attend to,
	// prompt and generated output combined.
	Size int

	counter Counter
}

// NewWindow creates a window of the given size using the estimating counter.
// A size <= 0 uses DefaultContextSize.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = DefaultContextSize
	}
	return &Window{
		Size:    size,
		counter: NewEstimatingCounter(),
	}
}

// WithCounter sets a custom token counter.
func (w *Window) WithCounter(counter Counter) *Window {
	w.counter = counter
	return w
}

// PromptTokens returns the estimated token count of prompt.
func (w *Window) PromptTokens(prompt string) int {
	return w.counter.Count(prompt)
}

// FitsPrompt returns true if the prompt alone fits in the window.
func (w *Window) FitsPrompt(prompt string) bool {
	return w.counter.FitsInLimit(prompt, w.Size)
}

// Fits returns true if the prompt plus maxOutput generated tokens fit.
func (w *Window) Fits(prompt string, maxOutput int) bool {
	return w.counter.Count(prompt)+maxOutput <= w.Size
}

// Remaining returns the tokens left for generation after the prompt.
func (w *Window) Remaining(prompt string) int {
	remaining := w.Size - w.counter.Count(prompt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
