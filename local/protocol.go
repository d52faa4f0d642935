package local

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
)

// JSON-RPC 2.0 protocol types for runner communication.

const jsonrpcVersion = "2.0"

// Request is a JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int64  `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
	ID      int64           `json:"id"`
}

// Notification is a JSON-RPC 2.0 notification (no ID, no response expected).
type Notification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// RPCError is a JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("RPC error %d: %s (data: %s)", e.Code, e.Message, string(e.Data))
	}
	return fmt.Sprintf("RPC error %d: %s", e.Code, e.Message)
}

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Application-specific error codes (range -32000 to -32099).
const (
	CodeModelError      = -32000 // Model raised during generation
	CodeModelNotLoaded  = -32001 // complete called before a successful init
	CodeContextOverflow = -32002 // Prompt exceeds n_ctx
)

// InitParams are the parameters for the "init" RPC method.
type InitParams struct {
	ModelPath   string `json:"model_path"`
	Model       string `json:"model,omitempty"`
	ContextSize int    `json:"n_ctx"`
	GPULayers   int    `json:"n_gpu_layers"`
}

// InitResult is the result of an "init" RPC call.
type InitResult struct {
	Ready   bool   `json:"ready"`
	Version string `json:"version,omitempty"`
	Message string `json:"message,omitempty"`
}

// CompleteParams are the parameters for the "complete" RPC method.
type CompleteParams struct {
	Prompt      string   `json:"prompt"`
	MaxTokens   int      `json:"max_tokens,omitempty"`
	Stop        []string `json:"stop,omitempty"`
	Temperature float64  `json:"temperature,omitempty"`
}

// CompleteResult is the result of a "complete" RPC call.
// The shape follows llama-cpp-python's completion object.
type CompleteResult struct {
	Choices []Choice    `json:"choices"`
	Model   string      `json:"model,omitempty"`
	Usage   UsageResult `json:"usage"`
}

// Choice is one generated completion.
type Choice struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
}

// UsageResult tracks token usage.
type UsageResult struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ShutdownResult is the result of a "shutdown" RPC call.
type ShutdownResult struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// LogParams are the parameters of a "log" notification.
type LogParams struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Protocol handles JSON-RPC encoding/decoding over stdio.
type Protocol struct {
	reader  *bufio.Reader
	writer  io.Writer
	writeMu sync.Mutex
	readMu  sync.Mutex
	nextID  int64
}

// NewProtocol creates a new JSON-RPC protocol handler.
func NewProtocol(r io.Reader, w io.Writer) *Protocol {
	return &Protocol{
		reader: bufio.NewReader(r),
		writer: w,
	}
}

// Call sends a request and waits for its response.
// The result is unmarshaled into the provided value.
// Notifications and non-JSON lines received while waiting are skipped.
func (p *Protocol) Call(method string, params, result any) error {
	id := atomic.AddInt64(&p.nextID, 1)

	req := Request{
		JSONRPC: jsonrpcVersion,
		Method:  method,
		Params:  params,
		ID:      id,
	}

	if err := p.send(req); err != nil {
		return fmt.Errorf("send request: %w", err)
	}

	// Hold the read lock for the whole loop so no other reader steals our response
	p.readMu.Lock()
	defer p.readMu.Unlock()

	for {
		line, err := p.reader.ReadBytes('\n')
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		line = bytes.TrimSpace(line)
		if len(line) == 0 || line[0] != '{' {
			if len(line) > 0 {
				slog.Debug("runner stdout", slog.String("line", string(line)))
			}
			continue
		}

		var msg struct {
			ID *int64 `json:"id"`
		}
		if err := json.Unmarshal(line, &msg); err != nil {
			return fmt.Errorf("parse message: %w", err)
		}

		if msg.ID == nil {
			handleNotification(line)
			continue
		}

		var resp Response
		if err := json.Unmarshal(line, &resp); err != nil {
			return fmt.Errorf("parse response: %w", err)
		}

		// Stale response from a call abandoned on timeout
		if resp.ID != id {
			continue
		}

		if resp.Error != nil {
			return resp.Error
		}

		if result != nil && len(resp.Result) > 0 {
			if err := json.Unmarshal(resp.Result, result); err != nil {
				return fmt.Errorf("unmarshal result: %w", err)
			}
		}

		return nil
	}
}

// send marshals and writes a message.
func (p *Protocol) send(msg any) error {
	p.writeMu.Lock()
	defer p.writeMu.Unlock()

	// Stop sequences like "</s>" must reach the runner unescaped.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(msg); err != nil {
		return err
	}

	_, err := p.writer.Write(buf.Bytes())
	return err
}

// handleNotification forwards runner log notifications to slog.
func handleNotification(line []byte) {
	var notif Notification
	if err := json.Unmarshal(line, &notif); err != nil {
		return
	}
	if notif.Method != "log" {
		return
	}

	var params LogParams
	if err := json.Unmarshal(notif.Params, &params); err != nil {
		return
	}
	slog.Debug("runner log",
		slog.String("level", params.Level),
		slog.String("message", params.Message))
}

// Text returns the first choice's text, or "" if there are no choices.
func (r *CompleteResult) Text() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Text
}

// FinishReason returns the first choice's finish reason.
func (r *CompleteResult) FinishReason() string {
	if len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].FinishReason
}
