package summarize

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/randalmurphal/summarize/prompt"
	"github.com/randalmurphal/summarize/provider"
	"github.com/randalmurphal/summarize/tokens"
	"github.com/randalmurphal/summarize/truncate"
)

// DefaultMaxTokens is the generation budget used when a request sets none.
const DefaultMaxTokens = 200

// ErrFileNotFound indicates the input file does not exist.
var ErrFileNotFound = errors.New("file not found")

// Request describes one summary run.
type Request struct {
	// Text is the input to summarize.
	Text string

	// Style selects the catalog instruction. Ignored when CustomPrompt is set.
	Style prompt.Style

	// CustomPrompt replaces the style instruction entirely.
	CustomPrompt string

	// MaxTokens is the generation budget. 0 means DefaultMaxTokens.
	MaxTokens int

	// MaxInputWords hard-cuts the input before prompting. 0 means no limit.
	MaxInputWords int

	// MaxOutputWords trims the generated summary. 0 means no limit.
	MaxOutputWords int

	// OutputTrim selects how the output is trimmed.
	OutputTrim truncate.Strategy
}

// Result is the outcome of a summary run.
type Result struct {
	// Text is the final summary.
	Text string

	// InputTruncated is true if the input was cut to MaxInputWords.
	InputTruncated bool

	// OutputTruncated is true if the summary was cut to MaxOutputWords.
	OutputTruncated bool

	// Prompt is the exact prompt sent to the backend.
	Prompt string

	// Model is the model reported by the backend.
	Model string

	Usage    provider.TokenUsage
	Duration time.Duration

	// RunID identifies this run in log records.
	RunID string
}

// Summarizer wires a backend to the prompt and trimming stages.
// It holds no per-run state and can be reused across runs.
type Summarizer struct {
	client provider.Client
	window *tokens.Window
	logger *slog.Logger
}

// Option configures a Summarizer.
type Option func(*Summarizer)

// WithWindow sets the context window the prompt is checked against.
func WithWindow(w *tokens.Window) Option {
	return func(s *Summarizer) { s.window = w }
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Summarizer) { s.logger = l }
}

// New creates a Summarizer backed by client.
func New(client provider.Client, opts ...Option) *Summarizer {
	s := &Summarizer{
		client: client,
		window: tokens.NewWindow(tokens.DefaultContextSize),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Summarize runs the pipeline for req.
func (s *Summarizer) Summarize(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.NewString()
	log := s.logger.With(slog.String("run_id", runID))

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}

	res := &Result{RunID: runID}

	text := req.Text
	if req.MaxInputWords > 0 {
		text, res.InputTruncated = truncate.NewHard().Truncate(text, req.MaxInputWords)
		if res.InputTruncated {
			log.Debug("input truncated",
				slog.Int("words", tokens.CountWords(req.Text)),
				slog.Int("max_words", req.MaxInputWords))
		}
	}

	p, err := prompt.Build(text, prompt.Options{Style: req.Style, CustomPrompt: req.CustomPrompt})
	if err != nil {
		return nil, err
	}
	res.Prompt = p

	promptTokens := s.window.PromptTokens(p)
	if !s.window.FitsPrompt(p) {
		return nil, fmt.Errorf("%w: prompt is ~%d tokens, window is %d",
			provider.ErrContextTooLong, promptTokens, s.window.Size)
	}
	if !s.window.Fits(p, maxTokens) {
		log.Warn("prompt leaves less room than max tokens",
			slog.Int("prompt_tokens", promptTokens),
			slog.Int("max_tokens", maxTokens),
			slog.Int("remaining", s.window.Remaining(p)))
	}

	log.Debug("requesting summary",
		slog.String("provider", s.client.Provider()),
		slog.String("style", req.Style.String()),
		slog.Bool("custom_prompt", req.CustomPrompt != ""),
		slog.Int("prompt_tokens", promptTokens),
		slog.Int("max_tokens", maxTokens))

	resp, err := s.client.Complete(ctx, provider.Request{
		Prompt:    p,
		MaxTokens: maxTokens,
		Stop:      []string{provider.DefaultStop},
	})
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	out := strings.TrimSpace(resp.Text)
	if out == "" {
		return nil, fmt.Errorf("generate summary: %w", provider.ErrEmptyOutput)
	}

	if req.MaxOutputWords > 0 {
		out, res.OutputTruncated = truncate.New(req.OutputTrim).Truncate(out, req.MaxOutputWords)
		if res.OutputTruncated {
			log.Debug("output truncated",
				slog.String("strategy", req.OutputTrim.String()),
				slog.Int("max_words", req.MaxOutputWords))
		}
	}

	res.Text = out
	res.Model = resp.Model
	res.Usage = resp.Usage
	res.Duration = resp.Duration

	log.Debug("summary complete",
		slog.Int("words", tokens.CountWords(out)),
		slog.Duration("duration", resp.Duration))

	return res, nil
}

// SummarizeFile reads path and summarizes its contents with the rest of req.
func (s *Summarizer) SummarizeFile(ctx context.Context, path string, req Request) (*Result, error) {
	text, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	req.Text = text
	return s.Summarize(ctx, req)
}

// ReadFile reads an input file as UTF-8 text.
// A missing file is reported as ErrFileNotFound.
func ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
