package provider

import "time"

// DefaultStop is the end-of-sequence marker used by llama-family instruct models.
const DefaultStop = "</s>"

// Request configures a text completion call.
// This is the backend-agnostic request format used by every provider.
type Request struct {
	// Prompt is the full completion prompt, sent verbatim.
	Prompt string `json:"prompt"`

	// Model overrides the provider's configured model for this request.
	// Ignored by backends that hold a single loaded model.
	Model string `json:"model,omitempty"`

	// MaxTokens limits the generated output length.
	// 0 leaves the limit to the backend.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Stop lists sequences at which generation ends.
	// The stop sequence itself is not part of the returned text.
	Stop []string `json:"stop,omitempty"`

	// Temperature controls randomness (0.0 = deterministic).
	// 0 leaves the backend default in place.
	Temperature float64 `json:"temperature,omitempty"`
}

// Validate checks that the request can be sent.
func (r Request) Validate() error {
	if r.Prompt == "" {
		return ErrInvalidRequest
	}
	if r.MaxTokens < 0 {
		return ErrInvalidRequest
	}
	return nil
}

// Response is the output of a completion call.
type Response struct {
	// Text is the generated text with surrounding whitespace removed.
	Text string `json:"text"`

	// Model is the model that produced the text, if the backend reports it.
	Model string `json:"model,omitempty"`

	// FinishReason indicates why generation stopped.
	// Common values: "stop", "length".
	FinishReason string `json:"finish_reason,omitempty"`

	// Usage tracks token consumption, when the backend reports it.
	Usage TokenUsage `json:"usage"`

	// Duration is the wall time of the call.
	Duration time.Duration `json:"duration"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add combines token usage from another TokenUsage.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}
