package sidecache

import (
	"testing"
	"time"
)

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("SIDECACHE_NODE_ID", "node-42")
	t.Setenv("SIDECACHE_COMPRESS_THRESHOLD", "2048")
	t.Setenv("SIDECACHE_SWEEP_INTERVAL", "30s")
	t.Setenv("SIDECACHE_DISABLED", "true")

	opts, err := OptionsFromEnv()
	if err != nil {
		t.Fatalf("OptionsFromEnv: %v", err)
	}
	if opts.NodeID != "node-42" || opts.CompressThreshold != 2048 ||
		opts.SweepInterval != 30*time.Second || !opts.Disabled {
		t.Fatalf("unexpected options: %+v", opts)
	}
}

func TestOptionsFromEnvDefaults(t *testing.T) {
	opts, err := OptionsFromEnv()
	if err != nil {
		t.Fatalf("OptionsFromEnv: %v", err)
	}
	if opts.CompressThreshold != 1024 || opts.SweepInterval != time.Minute || opts.Disabled {
		t.Fatalf("unexpected defaults: %+v", opts)
	}
}
