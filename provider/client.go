// Package provider defines the unified interface for local inference backends.
//
// Summarization logic depends only on Client, so the backend can be swapped
// without touching prompting or trimming:
//
//   - "local": a resident model runtime that loads the model once per process
//   - "command": an external command run once per request with the prompt on stdin
//
// # Usage
//
// Import the backends and create a client through the registry:
//
//	import _ "github.com/randalmurphal/summarize/providers"
//
//	client, err := provider.New("command", provider.Config{
//	    Command: "ollama",
//	    Args:    []string{"run"},
//	    Model:   "mistral",
//	})
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	resp, err := client.Complete(ctx, provider.Request{
//	    Prompt:    p,
//	    MaxTokens: 200,
//	    Stop:      []string{provider.DefaultStop},
//	})
package provider

import (
	"context"
	"strings"
)

// Client is the capability every inference backend provides.
type Client interface {
	// Complete sends the prompt and blocks until the full output is available.
	// An empty generation is reported as ErrEmptyOutput.
	Complete(ctx context.Context, req Request) (*Response, error)

	// Provider returns the backend name (e.g., "local", "command").
	Provider() string

	// Close releases any resources held by the client.
	// For the resident runtime this stops the runner process.
	Close() error
}

// CutAtStop truncates text at the earliest occurrence of any stop sequence.
// Backends that cannot pass stop sequences to the model apply them afterwards.
func CutAtStop(text string, stop []string) string {
	cut := len(text)
	for _, s := range stop {
		if s == "" {
			continue
		}
		if i := strings.Index(text, s); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut]
}
