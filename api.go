package sidecache

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/sidecache/codec"
)

// BroadcastFunc propagates a locally-originated mutation to peer nodes.
// The engine never calls it while holding internal locks, so a slow peer
// transport cannot block unrelated cache reads. Implementations must not
// call back into the originating engine except through ApplySync.
type BroadcastFunc func(ctx context.Context, msg SyncMessage)

// Cache is the in-process cache engine API.
// All methods are safe for concurrent use.
type Cache interface {
	// Set stores value under key and returns value unchanged. Keys containing
	// the substrings "undefined" or "null" are rejected (logged, no-op) to
	// stop malformed lookups from poisoning the cache. ttl <= 0 means no
	// expiration. internal marks the write as the application of a remote
	// sync message and suppresses rebroadcast.
	Set(ctx context.Context, key string, value any, ttl time.Duration, internal bool) any

	// Get returns the live value for key. Entries past their expiry are
	// evicted and reported as absent; undecodable compressed entries are
	// evicted and treated as misses rather than surfacing an error.
	Get(key string) (any, bool)

	// Delete removes key and reports whether an entry existed.
	// Deletes are always broadcast; remote application goes through
	// ApplySync, which does not re-enter this method.
	Delete(ctx context.Context, key string) bool

	// InvalidateByPrefix removes every entry whose key starts with prefix,
	// broadcasting one invalidate message per removed key. Returns the
	// number of removed entries.
	InvalidateByPrefix(ctx context.Context, prefix string) int

	// KeysWithPrefix lists the live keys under prefix.
	KeysWithPrefix(prefix string) []string

	// DynamicTTL returns the TTL for key under the given mode. TTLDynamic
	// adapts per key: hot keys are kept fresh with short TTLs, cold keys
	// are cached longer to amortize lookup cost.
	DynamicTTL(key string, mode TTLMode) time.Duration

	// SetBroadcast registers the hook used to propagate mutations to peers.
	SetBroadcast(fn BroadcastFunc)

	// ApplySync applies a message received from a peer without rebroadcasting.
	ApplySync(msg SyncMessage)

	// Close stops the background expiration sweep. Idempotent.
	Close()
}

// Options tune the engine. Everything has a sensible default.
type Options struct {
	NodeID            string         // origin tag on broadcast messages; "" => random uuid
	Codec             c.Codec[any]   // serialization for the compressed path; nil => codec.JSON[any]
	Logger            Logger         // nil => NopLogger
	Hooks             Hooks          // nil => NopHooks
	Broadcast         BroadcastFunc  // may also be registered later via SetBroadcast
	CompressThreshold int            // bytes; 0 => 1024
	SweepInterval     time.Duration  // 0 => 1m
	Disabled          bool           // default false (enabled)
}

func New(opts Options) (Cache, error) {
	return newEngine(opts)
}
