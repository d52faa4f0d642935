package local

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/randalmurphal/summarize/provider"
)

// Client implements provider.Client for a resident local model runtime.
type Client struct {
	cfg    Config
	runner *Runner

	mu      sync.Mutex // Protects runner lifecycle
	started bool
}

// NewClient creates a new local model client.
// The runner process is not started until the first request.
func NewClient(opts ...Option) *Client {
	c := &Client{
		cfg: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.cfg = c.cfg.WithDefaults()
	return c
}

// NewClientWithConfig creates a new local model client from a Config.
func NewClientWithConfig(cfg Config) *Client {
	return &Client{
		cfg: cfg.WithDefaults(),
	}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Complete implements provider.Client.
// Starts the runner if not already running.
func (c *Client) Complete(ctx context.Context, req provider.Request) (*provider.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, provider.NewError("local", "complete", err)
	}

	if err := c.ensureStarted(ctx); err != nil {
		return nil, provider.NewError("local", "start", fmt.Errorf("%w: %v", provider.ErrUnavailable, err))
	}

	proto := c.runner.Protocol()
	if proto == nil {
		return nil, provider.NewError("local", "complete", fmt.Errorf("%w: runner not running", provider.ErrUnavailable))
	}

	params := CompleteParams{
		Prompt:      req.Prompt,
		MaxTokens:   req.MaxTokens,
		Stop:        req.Stop,
		Temperature: req.Temperature,
	}

	callCtx := ctx
	if c.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.cfg.RequestTimeout)
		defer cancel()
	}

	start := time.Now()
	var result CompleteResult
	resultCh := make(chan error, 1)

	go func() {
		resultCh <- proto.Call("complete", params, &result)
	}()

	select {
	case <-callCtx.Done():
		return nil, provider.NewError("local", "complete", callCtx.Err())
	case err := <-resultCh:
		if err != nil {
			return nil, provider.NewError("local", "complete", c.classify(err))
		}
	}

	// Cut again in case the runtime ignored stop sequences.
	text := strings.TrimSpace(provider.CutAtStop(result.Text(), req.Stop))
	if text == "" {
		return nil, provider.NewError("local", "complete", provider.ErrEmptyOutput)
	}

	model := result.Model
	if model == "" {
		model = c.cfg.Model
	}

	return &provider.Response{
		Text:         text,
		Model:        model,
		FinishReason: result.FinishReason(),
		Duration:     time.Since(start),
		Usage: provider.TokenUsage{
			InputTokens:  result.Usage.PromptTokens,
			OutputTokens: result.Usage.CompletionTokens,
			TotalTokens:  result.Usage.TotalTokens,
		},
	}, nil
}

// Provider implements provider.Client.
func (c *Client) Provider() string {
	return "local"
}

// Close implements provider.Client.
// Stops the runner process if running.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.runner != nil {
		err := c.runner.Stop()
		c.runner = nil
		c.started = false
		return err
	}
	return nil
}

// classify maps runner failures onto provider sentinels.
func (c *Client) classify(err error) error {
	var rpcErr *RPCError
	if errors.As(err, &rpcErr) && rpcErr.Code == CodeContextOverflow {
		return fmt.Errorf("%w: %v", provider.ErrContextTooLong, rpcErr)
	}
	if rpcErr != nil {
		return err
	}
	// Anything other than an RPC error means the pipe broke.
	return fmt.Errorf("%w: %v", provider.ErrUnavailable, err)
}

// ensureStarted starts the runner if not already running.
// A runner that exited since the last call is restarted.
func (c *Client) ensureStarted(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started && c.runner != nil && c.runner.IsRunning() {
		return nil
	}

	if c.started && c.runner != nil {
		slog.Warn("model runner exited, restarting",
			slog.String("model", c.cfg.Model),
			slog.Any("exit_error", c.runner.ExitError()))
		_ = c.runner.Stop()
		c.runner = nil
		c.started = false
	}

	if err := c.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	c.runner = NewRunner(c.cfg)
	if err := c.runner.Start(ctx); err != nil {
		c.runner = nil
		return err
	}

	c.started = true
	return nil
}
