package local

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/randalmurphal/summarize/tokens"
)

// Config holds local runtime configuration.
type Config struct {
	// RunnerPath is the runner executable or script.
	// Scripts ending in ".py" are started with PythonPath.
	// Default: the bundled llama-cpp-python runner, installed under the
	// user cache directory on first start.
	RunnerPath string `json:"runner_path" yaml:"runner_path"`

	// RunnerArgs are extra arguments passed to the runner.
	RunnerArgs []string `json:"runner_args" yaml:"runner_args"`

	// PythonPath is the interpreter for ".py" runners.
	// Default: "python3"
	PythonPath string `json:"python_path" yaml:"python_path"`

	// ModelPath is the model file the runner loads.
	// Required.
	ModelPath string `json:"model_path" yaml:"model_path"`

	// Model is a display label for the loaded model.
	// Default: the base name of ModelPath.
	Model string `json:"model" yaml:"model"`

	// ContextSize is passed to the runner as n_ctx.
	// Default: 4096.
	ContextSize int `json:"context_size" yaml:"context_size"`

	// GPULayers is passed to the runner as n_gpu_layers. -1 offloads all layers.
	GPULayers int `json:"gpu_layers" yaml:"gpu_layers"`

	// StartupTimeout bounds runner start plus model load.
	// Default: 30 seconds.
	StartupTimeout time.Duration `json:"startup_timeout" yaml:"startup_timeout"`

	// RequestTimeout bounds a single completion. 0 means no timeout.
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout"`

	// WorkDir is the working directory for the runner process.
	WorkDir string `json:"work_dir" yaml:"work_dir"`

	// Env provides additional environment variables for the runner.
	Env map[string]string `json:"env" yaml:"env"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		PythonPath:     "python3",
		ContextSize:    tokens.DefaultContextSize,
		GPULayers:      -1,
		StartupTimeout: 30 * time.Second,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model_path is required")
	}
	if c.ContextSize < 0 {
		return fmt.Errorf("context_size must be >= 0")
	}
	if c.StartupTimeout < 0 {
		return fmt.Errorf("startup_timeout must be >= 0")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request_timeout must be >= 0")
	}
	return nil
}

// WithDefaults returns a copy of the config with defaults applied for unset fields.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()

	if c.PythonPath == "" {
		c.PythonPath = defaults.PythonPath
	}
	if c.ContextSize == 0 {
		c.ContextSize = defaults.ContextSize
	}
	if c.StartupTimeout == 0 {
		c.StartupTimeout = defaults.StartupTimeout
	}
	if c.Model == "" && c.ModelPath != "" {
		c.Model = strings.TrimSuffix(filepath.Base(c.ModelPath), filepath.Ext(c.ModelPath))
	}

	return c
}

// command returns the executable and arguments that start the runner.
func (c Config) command() (string, []string) {
	if strings.HasSuffix(c.RunnerPath, ".py") {
		return c.PythonPath, append([]string{c.RunnerPath}, c.RunnerArgs...)
	}
	return c.RunnerPath, c.RunnerArgs
}

// Option configures a local Client.
type Option func(*Client)

// WithRunnerPath sets the runner executable or script.
func WithRunnerPath(path string) Option {
	return func(c *Client) { c.cfg.RunnerPath = path }
}

// WithRunnerArgs sets extra runner arguments.
func WithRunnerArgs(args ...string) Option {
	return func(c *Client) { c.cfg.RunnerArgs = args }
}

// WithPythonPath sets the interpreter for ".py" runners.
func WithPythonPath(path string) Option {
	return func(c *Client) { c.cfg.PythonPath = path }
}

// WithModelPath sets the model file to load.
func WithModelPath(path string) Option {
	return func(c *Client) { c.cfg.ModelPath = path }
}

// WithModel sets the model display label.
func WithModel(model string) Option {
	return func(c *Client) { c.cfg.Model = model }
}

// WithContextSize sets n_ctx.
func WithContextSize(n int) Option {
	return func(c *Client) { c.cfg.ContextSize = n }
}

// WithGPULayers sets n_gpu_layers.
func WithGPULayers(n int) Option {
	return func(c *Client) { c.cfg.GPULayers = n }
}

// WithStartupTimeout sets the runner startup timeout.
func WithStartupTimeout(d time.Duration) Option {
	return func(c *Client) { c.cfg.StartupTimeout = d }
}

// WithRequestTimeout sets the per-completion timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Client) { c.cfg.RequestTimeout = d }
}

// WithWorkDir sets the working directory for the runner.
func WithWorkDir(dir string) Option {
	return func(c *Client) { c.cfg.WorkDir = dir }
}

// WithEnv adds environment variables for the runner process.
func WithEnv(env map[string]string) Option {
	return func(c *Client) {
		if c.cfg.Env == nil {
			c.cfg.Env = make(map[string]string)
		}
		for k, v := range env {
			c.cfg.Env[k] = v
		}
	}
}
