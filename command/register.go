package command

import (
	"github.com/randalmurphal/summarize/provider"
)

func init() {
	provider.Register("command", newFromProviderConfig)
}

// newFromProviderConfig creates a Client from a provider.Config.
func newFromProviderConfig(cfg provider.Config) (provider.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return NewClientWithConfig(Config{
		Command: cfg.Command,
		Args:    cfg.Args,
		Model:   cfg.Model,
		Timeout: cfg.Timeout,
		WorkDir: cfg.WorkDir,
		Env:     cfg.Env,
	}), nil
}
