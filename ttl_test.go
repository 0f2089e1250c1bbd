package sidecache

import (
	"testing"
	"time"
)

func TestFixedTTLModes(t *testing.T) {
	e := newTestEngine(t, nil)

	cases := map[TTLMode]time.Duration{
		TTLImmediate: 5 * time.Minute,
		TTLShort:     30 * time.Minute,
		TTLMedium:    2 * time.Hour,
		TTLLong:      6 * time.Hour,
	}
	for mode, want := range cases {
		if got := e.DynamicTTL("k", mode); got != want {
			t.Fatalf("mode %q: got %v want %v", mode, got, want)
		}
	}

	// fixed modes must not touch the visit counter
	e.visitMu.Lock()
	visits := e.visits["k"]
	e.visitMu.Unlock()
	if visits != 0 {
		t.Fatalf("fixed modes incremented the visit counter: %d", visits)
	}
}

func TestDynamicTTLTiers(t *testing.T) {
	e := newTestEngine(t, nil)

	// first visit: longest tier
	if got := e.DynamicTTL("hot", TTLDynamic); got != 6*time.Hour {
		t.Fatalf("call 1: got %v want 6h", got)
	}
	// calls 2-6: medium tier
	for i := 2; i <= 6; i++ {
		if got := e.DynamicTTL("hot", TTLDynamic); got != 2*time.Hour {
			t.Fatalf("call %d: got %v want 2h", i, got)
		}
	}
	// call 7 onward: hot key, short tier
	for i := 7; i <= 10; i++ {
		if got := e.DynamicTTL("hot", TTLDynamic); got != 30*time.Minute {
			t.Fatalf("call %d: got %v want 30m", i, got)
		}
	}

	// counters are per key
	if got := e.DynamicTTL("cold", TTLDynamic); got != 6*time.Hour {
		t.Fatalf("fresh key: got %v want 6h", got)
	}
}
