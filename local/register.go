package local

import (
	"time"

	"github.com/randalmurphal/summarize/provider"
)

func init() {
	provider.Register("local", newFromProviderConfig)
}

// newFromProviderConfig creates a local Client from a provider.Config.
func newFromProviderConfig(cfg provider.Config) (provider.Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	localCfg := Config{
		ModelPath:      cfg.ModelPath,
		Model:          cfg.Model,
		ContextSize:    cfg.ContextSize,
		GPULayers:      cfg.GPULayers,
		RequestTimeout: cfg.Timeout,
		WorkDir:        cfg.WorkDir,
		Env:            cfg.Env,
	}

	if cfg.Options != nil {
		localCfg.RunnerPath = cfg.GetStringOption("runner_path", "")
		localCfg.PythonPath = cfg.GetStringOption("python_path", "")

		if timeout := cfg.GetStringOption("startup_timeout", ""); timeout != "" {
			if d, err := time.ParseDuration(timeout); err == nil {
				localCfg.StartupTimeout = d
			}
		}
	}

	localCfg = localCfg.WithDefaults()
	if err := localCfg.Validate(); err != nil {
		return nil, err
	}

	return NewClientWithConfig(localCfg), nil
}
