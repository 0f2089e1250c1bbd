package sidecache

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvConfig is the environment surface for engine options.
type EnvConfig struct {
	NodeID            string        `env:"SIDECACHE_NODE_ID"`
	CompressThreshold int           `env:"SIDECACHE_COMPRESS_THRESHOLD" envDefault:"1024"`
	SweepInterval     time.Duration `env:"SIDECACHE_SWEEP_INTERVAL" envDefault:"60s"`
	Disabled          bool          `env:"SIDECACHE_DISABLED" envDefault:"false"`
}

// OptionsFromEnv builds Options from SIDECACHE_* environment variables.
// Codec, Logger, Hooks and Broadcast still need to be set by the caller.
func OptionsFromEnv() (Options, error) {
	cfg, err := env.ParseAs[EnvConfig]()
	if err != nil {
		return Options{}, err
	}
	return Options{
		NodeID:            cfg.NodeID,
		CompressThreshold: cfg.CompressThreshold,
		SweepInterval:     cfg.SweepInterval,
		Disabled:          cfg.Disabled,
	}, nil
}
