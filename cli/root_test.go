package cli

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/summarize/provider"
)

type harness struct {
	app    *App
	out    *bytes.Buffer
	errOut *bytes.Buffer
	mock   *provider.MockClient

	mu      sync.Mutex
	configs []provider.Config
}

func newHarness(t *testing.T, response string) *harness {
	t.Helper()

	for _, k := range []string{
		"SUMMARIZE_BACKEND", "SUMMARIZE_MODEL", "SUMMARIZE_MODEL_PATH",
		"SUMMARIZE_RUNNER_PATH", "SUMMARIZE_COMMAND", "SUMMARIZE_TIMEOUT",
		"SUMMARIZE_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	h := &harness{
		out:    &bytes.Buffer{},
		errOut: &bytes.Buffer{},
		mock:   provider.NewMockClient(response),
	}
	h.app = &App{
		Out: h.out,
		Err: h.errOut,
		NewClient: func(cfg provider.Config) (provider.Client, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.configs = append(h.configs, cfg)
			return h.mock, nil
		},
		WatchDebounce: 20 * time.Millisecond,
	}
	return h
}

func (h *harness) run(args ...string) int {
	return h.app.Run(context.Background(), args)
}

func (h *harness) factoryCalls() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.configs)
}

func inputFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "article.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRun_List(t *testing.T) {
	h := newHarness(t, "unused")

	code := h.run("list")

	assert.Equal(t, ExitOK, code)
	out := h.out.String()
	assert.Contains(t, out, "Available styles:")
	assert.Contains(t, out, "meeting_notes")
	assert.Contains(t, out, "Give 3 catchy news-style headlines.")
	assert.Zero(t, h.factoryCalls(), "list must not construct a backend")
	assert.Zero(t, h.mock.CallCount())
}

func TestRun_NoInput(t *testing.T) {
	h := newHarness(t, "unused")

	code := h.run()

	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, h.errOut.String(), "Please provide a .txt file or use 'list'")
	assert.Zero(t, h.factoryCalls())
}

func TestRun_FileNotFound(t *testing.T) {
	h := newHarness(t, "unused")
	path := filepath.Join(t.TempDir(), "missing.txt")

	code := h.run(path)

	assert.Equal(t, ExitNotFound, code)
	assert.Contains(t, h.errOut.String(), "File not found: "+path)
	assert.Zero(t, h.factoryCalls())
	assert.Zero(t, h.mock.CallCount())
}

func TestRun_UnsupportedStyle(t *testing.T) {
	h := newHarness(t, "unused")
	path := inputFile(t, "text")

	code := h.run(path, "--style", "haiku")

	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, h.errOut.String(), "unsupported style")
	assert.Contains(t, h.errOut.String(), "summarize list")
	assert.Zero(t, h.mock.CallCount())
}

func TestRun_Summary(t *testing.T) {
	h := newHarness(t, "The cat sat on the mat.")
	path := inputFile(t, "A long article about a cat.")

	code := h.run(path, "--style", "bullet")

	require.Equal(t, ExitOK, code, h.errOut.String())
	assert.Equal(t, "\nSummary:\nThe cat sat on the mat.\n", h.out.String())
	assert.Contains(t, h.errOut.String(), "Generating summary using mistral...")

	require.Equal(t, 1, h.mock.CallCount())
	call := h.mock.Calls[0]
	assert.Equal(t, "Summarize the following in bullet points.\n\nA long article about a cat.\n\nSummary:", call.Prompt)
	assert.Equal(t, 200, call.MaxTokens)
	assert.Equal(t, []string{provider.DefaultStop}, call.Stop)

	require.Equal(t, 1, h.factoryCalls())
	cfg := h.configs[0]
	assert.Equal(t, "command", cfg.Provider)
	assert.Equal(t, "ollama", cfg.Command)
	assert.Equal(t, []string{"run"}, cfg.Args)
	assert.True(t, h.mock.Closed(), "backend closed after the run")
}

func TestRun_CustomPromptOverridesStyle(t *testing.T) {
	h := newHarness(t, "ok")
	path := inputFile(t, "body")

	code := h.run(path, "--style", "snarky", "--custom-prompt", "List every name mentioned.")

	require.Equal(t, ExitOK, code, h.errOut.String())
	assert.Equal(t, "List every name mentioned.\n\nbody\n\nSummary:", h.mock.Calls[0].Prompt)
}

func TestRun_InputTrimming(t *testing.T) {
	h := newHarness(t, "ok")
	path := inputFile(t, "one two three four five six seven")

	code := h.run(path, "--max-words", "3")

	require.Equal(t, ExitOK, code, h.errOut.String())
	assert.Contains(t, h.mock.Calls[0].Prompt, "\n\none two three\n\n")
	assert.Contains(t, h.errOut.String(), "input was truncated")
}

func TestRun_OutputTrimFollowsMaxTokens(t *testing.T) {
	h := newHarness(t, "Short first. This second sentence is much longer than the limit.")
	path := inputFile(t, "text")

	code := h.run(path, "--max-tokens", "5")

	require.Equal(t, ExitOK, code, h.errOut.String())
	assert.Equal(t, 5, h.mock.Calls[0].MaxTokens)
	assert.Contains(t, h.out.String(), "Short first.\n")
	assert.NotContains(t, h.out.String(), "second sentence")
}

func TestRun_OutputTrimDisabled(t *testing.T) {
	full := "Short first. This second sentence is much longer than the limit."
	h := newHarness(t, full)
	path := inputFile(t, "text")

	code := h.run(path, "--max-tokens", "5", "--max-output-words", "0")

	require.Equal(t, ExitOK, code, h.errOut.String())
	assert.Contains(t, h.out.String(), full)
}

func TestRun_HardOutputTrim(t *testing.T) {
	h := newHarness(t, "one two three four five six")
	path := inputFile(t, "text")

	code := h.run(path, "--max-output-words", "4", "--output-trim", "hard")

	require.Equal(t, ExitOK, code, h.errOut.String())
	assert.Contains(t, h.out.String(), "one two three four\n")
}

func TestRun_BackendFailure(t *testing.T) {
	h := newHarness(t, "")
	h.mock.WithError(provider.NewError("command", "start", provider.ErrCommandNotFound))
	path := inputFile(t, "text")

	code := h.run(path)

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, h.errOut.String(), "Error:")
	assert.Contains(t, h.errOut.String(), "command not found")
	assert.Empty(t, h.out.String())
}

func TestRun_EmptyOutput(t *testing.T) {
	h := newHarness(t, "   ")
	path := inputFile(t, "text")

	code := h.run(path)

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, h.errOut.String(), "empty output")
}

func TestRun_FactoryError(t *testing.T) {
	h := newHarness(t, "ok")
	h.app.NewClient = func(provider.Config) (provider.Client, error) {
		return nil, errors.New("model_path is required")
	}
	path := inputFile(t, "text")

	code := h.run(path)

	assert.Equal(t, ExitFailure, code)
	assert.Contains(t, h.errOut.String(), "model_path is required")
}

func TestRun_UsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown flag", args: []string{"--nope"}},
		{name: "too many arguments", args: []string{"a.txt", "b.txt"}},
		{name: "bad output trim", args: []string{"a.txt", "--output-trim", "words"}},
		{name: "unknown backend", args: []string{"a.txt", "--backend", "cloud"}},
		{name: "local without model path", args: []string{"a.txt", "--backend", "local"}},
		{name: "negative max words", args: []string{"a.txt", "--max-words", "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, "ok")
			code := h.run(tt.args...)
			assert.Equal(t, ExitUsage, code, h.errOut.String())
			assert.Zero(t, h.mock.CallCount())
		})
	}
}

func TestRun_FlagsOverrideConfigFile(t *testing.T) {
	h := newHarness(t, "ok")
	cfgPath := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
backend = "command"
command = "llm"
model = "phi3"
style = "tweet"
`), 0o644))
	path := inputFile(t, "text")

	code := h.run(path, "--config", cfgPath, "--model", "mistral:instruct", "--command", "ollama run", "--timeout", "30s")

	require.Equal(t, ExitOK, code, h.errOut.String())
	cfg := h.configs[0]
	assert.Equal(t, "mistral:instruct", cfg.Model)
	assert.Equal(t, "ollama", cfg.Command)
	assert.Equal(t, []string{"run"}, cfg.Args)
	assert.Equal(t, 30*time.Second, cfg.Timeout)

	// style comes from the file
	assert.True(t, strings.HasPrefix(h.mock.Calls[0].Prompt, "Summarize in under 280 characters."))
}

func TestRun_ReadsInputOnce(t *testing.T) {
	h := newHarness(t, "ok")
	path := inputFile(t, "The original article text.")

	// The file is gone by the time the backend exists; the first summary
	// must use the text read during the input check.
	factory := h.app.NewClient
	h.app.NewClient = func(cfg provider.Config) (provider.Client, error) {
		require.NoError(t, os.Remove(path))
		return factory(cfg)
	}

	code := h.run(path)

	require.Equal(t, ExitOK, code, h.errOut.String())
	require.Equal(t, 1, h.mock.CallCount())
	assert.Contains(t, h.mock.Calls[0].Prompt, "The original article text.")
}

func TestRun_CustomCommandHasNoModel(t *testing.T) {
	h := newHarness(t, "ok")
	path := inputFile(t, "text")

	code := h.run(path, "--command", "llama-cli -m /models/m.gguf -f /dev/stdin")

	require.Equal(t, ExitOK, code, h.errOut.String())
	require.Len(t, h.configs, 1)
	cfg := h.configs[0]
	assert.Equal(t, "command", cfg.Provider)
	assert.Equal(t, "llama-cli", cfg.Command)
	assert.Equal(t, []string{"-m", "/models/m.gguf", "-f", "/dev/stdin"}, cfg.Args)
	assert.Empty(t, cfg.Model, "a custom command must not get the ollama model appended")
	assert.Contains(t, h.errOut.String(), "Generating summary using llama-cli...")
}

func TestRun_LocalBackendConfig(t *testing.T) {
	h := newHarness(t, "ok")
	t.Setenv("SUMMARIZE_RUNNER_PATH", "/opt/summarize/runner.py")
	path := inputFile(t, "text")

	code := h.run(path, "--backend", "local", "--model-path", "/models/mistral-7b-instruct.Q4_K_M.gguf")

	require.Equal(t, ExitOK, code, h.errOut.String())
	cfg := h.configs[0]
	assert.Equal(t, "local", cfg.Provider)
	assert.Equal(t, "/models/mistral-7b-instruct.Q4_K_M.gguf", cfg.ModelPath)
	assert.Equal(t, "/opt/summarize/runner.py", cfg.GetStringOption("runner_path", ""))
	assert.Equal(t, -1, cfg.GPULayers)
	assert.Contains(t, h.errOut.String(), "Generating summary using mistral-7b-instruct.Q4_K_M...")
}

func TestRun_Verbose(t *testing.T) {
	h := newHarness(t, "ok")
	path := inputFile(t, "text")

	code := h.run(path, "-v")

	require.Equal(t, ExitOK, code, h.errOut.String())
	assert.Contains(t, h.errOut.String(), "level=DEBUG")
	assert.Contains(t, h.errOut.String(), "run_id=")
}

func TestRun_Watch(t *testing.T) {
	h := newHarness(t, "ok")
	path := inputFile(t, "first version")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan int, 1)
	go func() {
		done <- h.app.Run(ctx, []string{path, "--watch"})
	}()

	require.Eventually(t, func() bool { return h.mock.CallCount() >= 1 }, 3*time.Second, 10*time.Millisecond)

	// The watch starts after the first run; keep saving until it is noticed.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("second version"), 0o644)
		return h.mock.CallCount() >= 2
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case code := <-done:
		assert.Equal(t, ExitOK, code)
	case <-time.After(3 * time.Second):
		t.Fatal("watch did not stop on cancel")
	}

	assert.Equal(t, 1, h.factoryCalls(), "backend is created once and reused")
}
