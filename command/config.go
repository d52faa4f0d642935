package command

import (
	"fmt"
	"time"
)

// Config holds subprocess backend configuration.
type Config struct {
	// Command is the executable to run.
	// Default: "ollama"
	Command string `json:"command" yaml:"command"`

	// Args are passed before the model name.
	// Default: ["run"]
	Args []string `json:"args" yaml:"args"`

	// Model is appended as the last argument when set.
	// Default: DefaultModel when Command is DefaultCommand, otherwise none.
	Model string `json:"model" yaml:"model"`

	// Timeout bounds a single run. 0 means no timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// WorkDir is the working directory for the command.
	WorkDir string `json:"work_dir" yaml:"work_dir"`

	// Env provides additional environment variables.
	Env map[string]string `json:"env" yaml:"env"`
}

// Defaults for the ollama invocation.
const (
	DefaultCommand = "ollama"
	DefaultModel   = "mistral"
)

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Command: DefaultCommand,
		Args:    []string{"run"},
		Model:   DefaultModel,
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Command == "" {
		return fmt.Errorf("command is required")
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0")
	}
	return nil
}

// WithDefaults returns a copy of the config with defaults applied for unset fields.
// Args and Model are only defaulted for the default command; any other
// command is run exactly as configured.
func (c Config) WithDefaults() Config {
	defaults := DefaultConfig()
	if c.Command == "" {
		c.Command = defaults.Command
	}
	if c.Command != DefaultCommand {
		return c
	}
	if c.Args == nil {
		c.Args = defaults.Args
	}
	if c.Model == "" {
		c.Model = defaults.Model
	}
	return c
}

// Option configures a Client.
type Option func(*Client)

// WithCommand sets the executable.
func WithCommand(name string) Option {
	return func(c *Client) { c.cfg.Command = name }
}

// WithArgs sets the arguments passed before the model name.
func WithArgs(args ...string) Option {
	return func(c *Client) { c.cfg.Args = args }
}

// WithModel sets the model name appended to the arguments.
func WithModel(model string) Option {
	return func(c *Client) { c.cfg.Model = model }
}

// WithTimeout sets the per-run timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.cfg.Timeout = d }
}

// WithWorkDir sets the working directory.
func WithWorkDir(dir string) Option {
	return func(c *Client) { c.cfg.WorkDir = dir }
}

// WithEnv adds environment variables for the command.
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
