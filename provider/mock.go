package provider

import (
	"context"
	"strings"
	"sync"
)

// MockClient is a test double for Client.
// It supports fixed responses, sequential responses, and custom handlers.
type MockClient struct {
	mu           sync.Mutex
	responses    []string
	responseIdx  int
	err          error
	completeFunc func(ctx context.Context, req Request) (*Response, error)
	closed       bool

	// Calls tracks all requests for assertions.
	Calls []Request
}

// NewMockClient creates a mock that returns a fixed response.
func NewMockClient(response string) *MockClient {
	return &MockClient{responses: []string{response}}
}

// WithResponses configures sequential responses.
// Cycles back to the beginning after exhausting all responses.
func (m *MockClient) WithResponses(responses ...string) *MockClient {
	m.responses = responses
	return m
}

// WithError configures the mock to always return an error.
func (m *MockClient) WithError(err error) *MockClient {
	m.err = err
	return m
}

// WithCompleteFunc sets a custom handler for Complete calls.
// This takes precedence over fixed responses.
func (m *MockClient) WithCompleteFunc(fn func(ctx context.Context, req Request) (*Response, error)) *MockClient {
	m.completeFunc = fn
	return m
}

// Complete implements Client.
func (m *MockClient) Complete(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, req)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	if m.completeFunc != nil {
		return m.completeFunc(ctx, req)
	}
	if m.err != nil {
		return nil, m.err
	}

	text := ""
	if len(m.responses) > 0 {
		text = m.responses[m.responseIdx%len(m.responses)]
		m.responseIdx++
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, NewError("mock", "complete", ErrEmptyOutput)
	}

	return &Response{
		Text:         text,
		Model:        "mock",
		FinishReason: "stop",
	}, nil
}

// Provider implements Client.
func (m *MockClient) Provider() string {
	return "mock"
}

// Close implements Client.
func (m *MockClient) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// CallCount returns the number of Complete calls.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Closed reports whether Close was called.
func (m *MockClient) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
