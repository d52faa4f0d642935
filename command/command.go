package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/randalmurphal/summarize/provider"
)

// Client implements provider.Client by running one process per request.
type Client struct {
	cfg Config
}

// NewClient creates a subprocess client. With no options it runs
// "ollama run mistral".
func NewClient(opts ...Option) *Client {
	c := &Client{}
	for _, opt := range opts {
		opt(c)
	}
	c.cfg = c.cfg.WithDefaults()
	return c
}

// NewClientWithConfig creates a subprocess client from a Config.
func NewClientWithConfig(cfg Config) *Client {
	return &Client{cfg: cfg.WithDefaults()}
}

// Config returns the effective configuration.
func (c *Client) Config() Config {
	return c.cfg
}

// Complete implements provider.Client.
func (c *Client) Complete(ctx context.Context, req provider.Request) (*provider.Response, error) {
	if err := req.Validate(); err != nil {
		return nil, provider.NewError("command", "complete", err)
	}
	if err := c.cfg.Validate(); err != nil {
		return nil, provider.NewError("command", "complete", fmt.Errorf("%w: %v", provider.ErrUnavailable, err))
	}

	start := time.Now()

	cmdCtx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		cmdCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	model := c.cfg.Model
	if req.Model != "" {
		model = req.Model
	}

	cmd := exec.CommandContext(cmdCtx, c.cfg.Command, c.buildArgs(model)...)
	cmd.Dir = c.cfg.WorkDir
	cmd.Env = c.buildEnv()
	cmd.Stdin = strings.NewReader(req.Prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running model command",
		slog.String("command", c.cfg.Command),
		slog.Any("args", cmd.Args[1:]),
		slog.Int("prompt_bytes", len(req.Prompt)))

	if err := cmd.Run(); err != nil {
		if isNotFound(err) {
			return nil, provider.NewError("command", "start",
				fmt.Errorf("%w: %s", provider.ErrCommandNotFound, c.cfg.Command))
		}
		if cmdCtx.Err() != nil {
			return nil, provider.NewError("command", "complete", cmdCtx.Err())
		}
		return nil, provider.NewError("command", "complete",
			fmt.Errorf("%s failed: %w\nstderr: %s", c.cfg.Command, err, strings.TrimSpace(stderr.String())))
	}

	text := strings.TrimSpace(provider.CutAtStop(stdout.String(), req.Stop))
	if text == "" {
		return nil, provider.NewError("command", "complete", provider.ErrEmptyOutput)
	}

	return &provider.Response{
		Text:         text,
		Model:        model,
		FinishReason: "stop",
		Duration:     time.Since(start),
	}, nil
}

// Provider implements provider.Client.
func (c *Client) Provider() string {
	return "command"
}

// Close implements provider.Client. There is nothing to release.
func (c *Client) Close() error {
	return nil
}

func (c *Client) buildArgs(model string) []string {
	args := make([]string, 0, len(c.cfg.Args)+1)
	args = append(args, c.cfg.Args...)
	if model != "" {
		args = append(args, model)
	}
	return args
}

// buildEnv returns nil to inherit the parent environment when no extras are set.
func (c *Client) buildEnv() []string {
	if len(c.cfg.Env) == 0 {
		return nil
	}
	env := os.Environ()
	for k, v := range c.cfg.Env {
		env = append(env, k+"="+v)
	}
	return env
}

func isNotFound(err error) bool {
	return errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist)
}
