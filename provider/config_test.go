package provider

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "command", cfg.Provider)
	assert.Equal(t, "ollama", cfg.Command)
	assert.Equal(t, []string{"run"}, cfg.Args)
	assert.Equal(t, -1, cfg.GPULayers)
	assert.Zero(t, cfg.Timeout, "no timeout by default")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid config", cfg: Config{Provider: "local"}},
		{name: "missing provider", cfg: Config{}, wantErr: true},
		{name: "negative context size", cfg: Config{Provider: "local", ContextSize: -1}, wantErr: true},
		{name: "negative timeout", cfg: Config{Provider: "local", Timeout: -time.Second}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_LoadFromEnv(t *testing.T) {
	t.Setenv("SUMMARIZE_BACKEND", "local")
	t.Setenv("SUMMARIZE_MODEL", "mistral-7b")
	t.Setenv("SUMMARIZE_MODEL_PATH", "/models/mistral.gguf")
	t.Setenv("SUMMARIZE_RUNNER_PATH", "/opt/runner.py")
	t.Setenv("SUMMARIZE_COMMAND", "llama-cli")
	t.Setenv("SUMMARIZE_ARGS", "-m  model.gguf")
	t.Setenv("SUMMARIZE_CONTEXT_SIZE", "8192")
	t.Setenv("SUMMARIZE_TIMEOUT", "10m")

	cfg := Config{}
	cfg.LoadFromEnv()

	assert.Equal(t, "local", cfg.Provider)
	assert.Equal(t, "mistral-7b", cfg.Model)
	assert.Equal(t, "/models/mistral.gguf", cfg.ModelPath)
	assert.Equal(t, "/opt/runner.py", cfg.GetStringOption("runner_path", ""))
	assert.Equal(t, "llama-cli", cfg.Command)
	assert.Equal(t, []string{"-m", "model.gguf"}, cfg.Args)
	assert.Equal(t, 8192, cfg.ContextSize)
	assert.Equal(t, 10*time.Minute, cfg.Timeout)
}

func TestConfig_LoadFromEnv_IgnoresBadNumbers(t *testing.T) {
	t.Setenv("SUMMARIZE_CONTEXT_SIZE", "lots")
	t.Setenv("SUMMARIZE_TIMEOUT", "soon")

	cfg := Config{ContextSize: 2048, Timeout: time.Minute}
	cfg.LoadFromEnv()

	assert.Equal(t, 2048, cfg.ContextSize)
	assert.Equal(t, time.Minute, cfg.Timeout)
}

func TestConfig_WithMethods(t *testing.T) {
	cfg := Config{}.WithProvider("local").WithModel("phi3")
	assert.Equal(t, "local", cfg.Provider)
	assert.Equal(t, "phi3", cfg.Model)

	original := Config{Options: map[string]any{"a": "1"}}
	updated := original.WithOption("b", "2")
	assert.Nil(t, original.GetOption("b"), "WithOption must not modify the receiver's map")
	assert.Equal(t, "1", updated.GetStringOption("a", ""))
	assert.Equal(t, "2", updated.GetStringOption("b", ""))
}

func TestConfig_GetOptions(t *testing.T) {
	cfg := Config{
		Options: map[string]any{
			"string_opt": "hello",
			"int_opt":    42,
			"int64_opt":  int64(7),
			"float_opt":  3.14,
		},
	}

	assert.Equal(t, "hello", cfg.GetStringOption("string_opt", ""))
	assert.Equal(t, "default", cfg.GetStringOption("missing", "default"))
	assert.Equal(t, "default", cfg.GetStringOption("int_opt", "default"))
	assert.Equal(t, 42, cfg.GetIntOption("int_opt", 0))
	assert.Equal(t, 7, cfg.GetIntOption("int64_opt", 0))
	assert.Equal(t, 3, cfg.GetIntOption("float_opt", 0))
	assert.Equal(t, 100, cfg.GetIntOption("missing", 100))
	assert.Nil(t, Config{}.GetOption("anything"))
}
