package provider

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds configuration for creating an inference client.
// Common fields apply to all providers; use Options for provider-specific settings.
type Config struct {
	// Provider is the name of the backend to use.
	// Required. Values: "local", "command"
	Provider string `json:"provider" yaml:"provider" toml:"provider"`

	// Model is the model name (command backend) or a label for the loaded
	// model (local backend).
	Model string `json:"model" yaml:"model" toml:"model"`

	// ModelPath is the model file loaded by the local runtime, e.g. a GGUF file.
	ModelPath string `json:"model_path" yaml:"model_path" toml:"model_path"`

	// Command is the executable run per request by the command backend.
	Command string `json:"command" yaml:"command" toml:"command"`

	// Args are passed to Command before the model name.
	Args []string `json:"args" yaml:"args" toml:"args"`

	// ContextSize is the model context window in tokens.
	// 0 uses the backend default.
	ContextSize int `json:"context_size" yaml:"context_size" toml:"context_size"`

	// GPULayers is the number of layers offloaded to the GPU by the local
	// runtime. -1 offloads all layers.
	GPULayers int `json:"gpu_layers" yaml:"gpu_layers" toml:"gpu_layers"`

	// Timeout bounds a single completion. 0 means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" toml:"timeout"`

	// WorkDir is the working directory for spawned processes.
	WorkDir string `json:"work_dir" yaml:"work_dir" toml:"work_dir"`

	// Env provides additional environment variables for spawned processes.
	Env map[string]string `json:"env" yaml:"env" toml:"env"`

	// Options holds provider-specific configuration.
	//
	// Local:
	//   - "runner_path": string (runner script, default the bundled llama_runner.py)
	//   - "python_path": string (interpreter, default "python3")
	//   - "startup_timeout": string (duration, default "30s")
	Options map[string]any `json:"options" yaml:"options" toml:"options"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider:  "command",
		Command:   "ollama",
		Args:      []string{"run"},
		GPULayers: -1,
	}
}

// LoadFromEnv populates config fields from environment variables.
// Environment variables use the SUMMARIZE_ prefix and take precedence over
// existing values.
//
// Supported variables:
//   - SUMMARIZE_BACKEND: Provider name
//   - SUMMARIZE_MODEL: Model name
//   - SUMMARIZE_MODEL_PATH: Model file for the local runtime
//   - SUMMARIZE_RUNNER_PATH: Runner script for the local runtime
//   - SUMMARIZE_COMMAND: Command for the command backend
//   - SUMMARIZE_ARGS: Space-separated arguments for the command backend
//   - SUMMARIZE_CONTEXT_SIZE: Context window in tokens
//   - SUMMARIZE_TIMEOUT: Timeout duration (e.g., "5m")
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("SUMMARIZE_BACKEND"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("SUMMARIZE_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("SUMMARIZE_MODEL_PATH"); v != "" {
		c.ModelPath = v
	}
	if v := os.Getenv("SUMMARIZE_RUNNER_PATH"); v != "" {
		*c = c.WithOption("runner_path", v)
	}
	if v := os.Getenv("SUMMARIZE_COMMAND"); v != "" {
		c.Command = v
	}
	if v := os.Getenv("SUMMARIZE_ARGS"); v != "" {
		c.Args = strings.Fields(v)
	}
	if v := os.Getenv("SUMMARIZE_CONTEXT_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ContextSize = n
		}
	}
	if v := os.Getenv("SUMMARIZE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		}
	}
}

// FromEnv creates a Config from environment variables with defaults.
func FromEnv() Config {
	cfg := DefaultConfig()
	cfg.LoadFromEnv()
	return cfg
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Provider == "" {
		return fmt.Errorf("provider is required")
	}
	if c.ContextSize < 0 {
		return fmt.Errorf("context_size must be >= 0, got %d", c.ContextSize)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	return nil
}

// WithProvider returns a copy of the config with the specified provider.
func (c Config) WithProvider(provider string) Config {
	c.Provider = provider
	return c
}

// WithModel returns a copy of the config with the specified model.
func (c Config) WithModel(model string) Config {
	c.Model = model
	return c
}

// WithOption returns a copy of the config with the specified option set.
func (c Config) WithOption(key string, value any) Config {
	newOpts := make(map[string]any, len(c.Options)+1)
	for k, v := range c.Options {
		newOpts[k] = v
	}
	newOpts[key] = value
	c.Options = newOpts
	return c
}

// GetOption retrieves a provider-specific option by key.
func (c Config) GetOption(key string) any {
	if c.Options == nil {
		return nil
	}
	return c.Options[key]
}

// GetStringOption retrieves a string option, returning defaultVal if not set.
func (c Config) GetStringOption(key, defaultVal string) string {
	if v, ok := c.GetOption(key).(string); ok {
		return v
	}
	return defaultVal
}

// GetIntOption retrieves an int option, returning defaultVal if not set.
// Accepts the numeric types YAML, TOML and JSON decoders produce.
func (c Config) GetIntOption(key string, defaultVal int) int {
	switch v := c.GetOption(key).(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return defaultVal
}
