package sidecache

// Eviction reasons reported through Hooks.EntryEvicted.
const (
	EvictExpired = "expired"
	EvictDecode  = "decode_error"
)

// Hooks are lightweight callbacks for high-signal engine events.
// Implementations MUST be cheap and non-blocking; the engine calls them on
// hot paths. Wrap with hooks/async when a sink may stall.
type Hooks interface {
	// A set was dropped because the key embeds "undefined"/"null".
	InvalidKey(key string)

	// Serialization or compression failed and the value was stored raw.
	CompressionFallback(key string, err error)

	// An entry was evicted on read. reason is EvictExpired or EvictDecode.
	EntryEvicted(key, reason string)

	// The background sweep reclaimed expired entries.
	Swept(removed int)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) InvalidKey(string)                {}
func (NopHooks) CompressionFallback(string, error) {}
func (NopHooks) EntryEvicted(string, string)      {}
func (NopHooks) Swept(int)                        {}
