// Package config loads summarize settings from a YAML or TOML file and the
// environment.
//
// Precedence, lowest first: built-in defaults, the config file, SUMMARIZE_*
// environment variables, command-line flags. Flags are applied by the caller.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/randalmurphal/summarize/command"
	"github.com/randalmurphal/summarize/prompt"
	"github.com/randalmurphal/summarize/provider"
	"github.com/randalmurphal/summarize/summarize"
	"github.com/randalmurphal/summarize/tokens"
	"github.com/randalmurphal/summarize/truncate"
)

// Backend names understood by Validate.
const (
	BackendLocal   = "local"
	BackendCommand = "command"
)

// Config is the on-disk configuration.
type Config struct {
	// Backend selects the inference backend: "local" or "command".
	Backend string `yaml:"backend" toml:"backend"`

	// Model is the model name for the command backend, or a label for the
	// local runtime.
	Model string `yaml:"model" toml:"model"`

	// Local runtime settings.
	ModelPath   string `yaml:"model_path" toml:"model_path"`
	// RunnerPath defaults to the bundled llama-cpp-python runner.
	RunnerPath  string `yaml:"runner_path" toml:"runner_path"`
	PythonPath  string `yaml:"python_path" toml:"python_path"`
	ContextSize int    `yaml:"context_size" toml:"context_size"`
	GPULayers   int    `yaml:"gpu_layers" toml:"gpu_layers"`

	// Command backend settings.
	Command string   `yaml:"command" toml:"command"`
	Args    []string `yaml:"args" toml:"args"`

	// Timeout bounds a single backend call. 0 means no timeout.
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`

	// Summary defaults.
	Style          string `yaml:"style" toml:"style"`
	MaxTokens      int    `yaml:"max_tokens" toml:"max_tokens"`
	MaxInputWords  int    `yaml:"max_words" toml:"max_words"`
	MaxOutputWords *int   `yaml:"max_output_words" toml:"max_output_words"`
	OutputTrim     string `yaml:"output_trim" toml:"output_trim"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `yaml:"log_level" toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend:     BackendCommand,
		PythonPath:  "python3",
		ContextSize: tokens.DefaultContextSize,
		GPULayers:   -1,
		Command:     command.DefaultCommand,
		Args:        []string{"run"},
		Style:       prompt.Default.String(),
		MaxTokens:   summarize.DefaultMaxTokens,
		OutputTrim:  truncate.Sentence.String(),
		LogLevel:    "warn",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/summarize/config.yaml, falling back
// to ~/.config when XDG_CONFIG_HOME is unset.
func DefaultPath() (string, error) {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "summarize", "config.yaml"), nil
}

// Load builds a Config from defaults, the file at path and the environment.
// An empty path means DefaultPath, which may be absent. An explicit path
// must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("resolve config path: %w", err)
		}
		path = p
	}

	if err := cfg.decodeFile(path); err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			slog.Debug("no config file", slog.String("path", path))
		} else {
			return nil, err
		}
	}

	cfg.LoadFromEnv()
	return &cfg, nil
}

func (c *Config) decodeFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if _, err := toml.Decode(string(data), c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	case ".yaml", ".yml", "":
		if err := yaml.Unmarshal(data, c); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return fmt.Errorf("unsupported config format %q, expected .yaml, .yml or .toml", ext)
	}

	slog.Debug("loaded config file", slog.String("path", path))
	return nil
}

// LoadFromEnv overrides fields from SUMMARIZE_* environment variables.
//
// Supported variables:
//   - SUMMARIZE_BACKEND
//   - SUMMARIZE_MODEL
//   - SUMMARIZE_MODEL_PATH
//   - SUMMARIZE_RUNNER_PATH
//   - SUMMARIZE_COMMAND: executable, optionally followed by arguments
//   - SUMMARIZE_TIMEOUT: duration (e.g., "5m")
//   - SUMMARIZE_LOG_LEVEL
func (c *Config) LoadFromEnv() {
	if v := os.Getenv("SUMMARIZE_BACKEND"); v != "" {
		c.Backend = v
	}
	if v := os.Getenv("SUMMARIZE_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("SUMMARIZE_MODEL_PATH"); v != "" {
		c.ModelPath = v
	}
	if v := os.Getenv("SUMMARIZE_RUNNER_PATH"); v != "" {
		c.RunnerPath = v
	}
	if v := os.Getenv("SUMMARIZE_COMMAND"); v != "" {
		c.SetCommand(v)
	}
	if v := os.Getenv("SUMMARIZE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.Timeout = d
		} else {
			slog.Warn("ignoring invalid SUMMARIZE_TIMEOUT", slog.String("value", v))
		}
	}
	if v := os.Getenv("SUMMARIZE_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
}

// SetCommand sets Command and Args from a command line such as
// "llama-cli -m model.gguf". A single word keeps the existing Args only if
// the executable is unchanged.
func (c *Config) SetCommand(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	if len(fields) == 1 && fields[0] == c.Command {
		return
	}
	c.Command = fields[0]
	c.Args = fields[1:]
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendLocal:
		if c.ModelPath == "" {
			return errors.New("model_path is required for the local backend")
		}
	case BackendCommand:
		if c.Command == "" {
			return errors.New("command is required for the command backend")
		}
	default:
		return fmt.Errorf("%w: %q", provider.ErrUnknownProvider, c.Backend)
	}

	if _, err := truncate.ParseStrategy(c.OutputTrim); err != nil {
		return err
	}
	if c.Style != "" {
		if _, err := prompt.ParseStyle(c.Style); err != nil {
			return err
		}
	}
	if _, err := c.Level(); err != nil {
		return err
	}

	if c.MaxTokens < 0 {
		return fmt.Errorf("max_tokens must be >= 0, got %d", c.MaxTokens)
	}
	if c.MaxInputWords < 0 {
		return fmt.Errorf("max_words must be >= 0, got %d", c.MaxInputWords)
	}
	if c.MaxOutputWords != nil && *c.MaxOutputWords < 0 {
		return fmt.Errorf("max_output_words must be >= 0, got %d", *c.MaxOutputWords)
	}
	if c.ContextSize < 0 {
		return fmt.Errorf("context_size must be >= 0, got %d", c.ContextSize)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must be >= 0, got %v", c.Timeout)
	}
	return nil
}

// Level parses LogLevel. An empty level is warn.
func (c *Config) Level() (slog.Level, error) {
	if c.LogLevel == "" {
		return slog.LevelWarn, nil
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// OutputWords returns the output word limit. When max_output_words is unset
// it follows the token budget.
func (c *Config) OutputWords() int {
	if c.MaxOutputWords != nil {
		return *c.MaxOutputWords
	}
	return c.MaxTokens
}

// SummaryRequest returns the summary settings as a request without text.
// Call Validate first; invalid style or trim names fall back to defaults.
func (c *Config) SummaryRequest() summarize.Request {
	strategy, err := truncate.ParseStrategy(c.OutputTrim)
	if err != nil {
		strategy = truncate.Sentence
	}
	return summarize.Request{
		Style:          prompt.ParseStyleOrDefault(c.Style),
		MaxTokens:      c.MaxTokens,
		MaxInputWords:  c.MaxInputWords,
		MaxOutputWords: c.OutputWords(),
		OutputTrim:     strategy,
	}
}

// ProviderConfig converts the backend settings for provider.New.
func (c *Config) ProviderConfig() provider.Config {
	cfg := provider.Config{
		Provider:    c.Backend,
		Model:       c.Model,
		ModelPath:   expandHome(c.ModelPath),
		Command:     c.Command,
		Args:        c.Args,
		ContextSize: c.ContextSize,
		GPULayers:   c.GPULayers,
		Timeout:     c.Timeout,
	}
	if c.RunnerPath != "" {
		cfg = cfg.WithOption("runner_path", expandHome(c.RunnerPath))
	}
	if c.PythonPath != "" {
		cfg = cfg.WithOption("python_path", c.PythonPath)
	}
	return cfg
}

// ModelLabel is the name shown in the progress line.
func (c *Config) ModelLabel() string {
	if c.Backend == BackendLocal && c.ModelPath != "" {
		base := filepath.Base(c.ModelPath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}
	if c.Model != "" {
		return c.Model
	}
	if c.Backend == BackendCommand && c.Command != "" {
		if c.Command == command.DefaultCommand {
			return command.DefaultModel
		}
		return filepath.Base(c.Command)
	}
	return c.Backend
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}
