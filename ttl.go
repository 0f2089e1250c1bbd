package sidecache

import "time"

// TTLMode selects how DynamicTTL computes a key's time-to-live.
type TTLMode string

const (
	TTLImmediate TTLMode = "immediate" // 5m
	TTLShort     TTLMode = "short"     // 30m
	TTLMedium    TTLMode = "medium"    // 2h
	TTLLong      TTLMode = "long"      // 6h
	TTLDynamic   TTLMode = "dynamic"   // adapts to per-key visit frequency
)

const (
	ttlImmediate = 5 * time.Minute
	ttlShort     = 30 * time.Minute
	ttlMedium    = 2 * time.Hour
	ttlLong      = 6 * time.Hour
)

// DynamicTTL returns the TTL for key under mode. Fixed modes return their
// constant tier. Dynamic mode counts visits: frequently revisited keys are
// assumed more likely to change and get a short TTL, first-time keys the
// longest one.
func (e *engine) DynamicTTL(key string, mode TTLMode) time.Duration {
	switch mode {
	case TTLImmediate:
		return ttlImmediate
	case TTLShort:
		return ttlShort
	case TTLMedium:
		return ttlMedium
	case TTLLong:
		return ttlLong
	}

	e.visitMu.Lock()
	prior := e.visits[key]
	e.visits[key] = prior + 1
	e.visitMu.Unlock()

	switch {
	case prior > 5:
		return ttlShort
	case prior >= 1:
		return ttlMedium
	default:
		return ttlLong
	}
}
