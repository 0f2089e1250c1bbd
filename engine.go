package sidecache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	c "github.com/unkn0wn-root/sidecache/codec"
	"github.com/unkn0wn-root/sidecache/internal/compress"
)

const (
	defaultCompressThreshold = 1024
	defaultSweepInterval     = time.Minute
)

type entry struct {
	value      any    // raw value when not compressed
	payload    []byte // compressed encoding of the serialized value
	compressed bool
	expiresAt  int64 // unix millis; 0 => never
}

func (e entry) expired(nowMilli int64) bool {
	return e.expiresAt != 0 && e.expiresAt <= nowMilli
}

type engine struct {
	nodeID    string
	codec     c.Codec[any]
	log       Logger
	hooks     Hooks
	enabled   bool
	threshold int

	mu      sync.Mutex
	entries map[string]entry

	// visit counters for the adaptive TTL policy; never decremented
	visitMu sync.Mutex
	visits  map[string]int

	bcastMu   sync.RWMutex
	broadcast BroadcastFunc

	now func() time.Time

	sweepInterval time.Duration
	ticker        *time.Ticker
	stopCh        chan struct{}
	closeWg       sync.WaitGroup
	closeOnce     sync.Once
}

func newEngine(opts Options) (*engine, error) {
	e := &engine{
		nodeID:    coalesce(opts.NodeID, uuid.NewString()),
		log:       coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:     coalesce[Hooks](opts.Hooks, NopHooks{}),
		enabled:   !opts.Disabled,
		threshold: coalesce(opts.CompressThreshold, defaultCompressThreshold),
		entries:   make(map[string]entry),
		visits:    make(map[string]int),
		broadcast: opts.Broadcast,
		now:       time.Now,

		sweepInterval: coalesce(opts.SweepInterval, defaultSweepInterval),
	}
	if opts.Codec != nil {
		e.codec = opts.Codec
	} else {
		e.codec = c.JSON[any]{}
	}

	if e.enabled {
		e.ticker = time.NewTicker(e.sweepInterval)
		e.stopCh = make(chan struct{})
		e.closeWg.Add(1)
		go e.sweepLoop()
	}
	return e, nil
}

func (e *engine) Close() {
	e.closeOnce.Do(func() {
		if e.stopCh != nil {
			close(e.stopCh)
			e.closeWg.Wait()
			if e.ticker != nil {
				e.ticker.Stop()
			}
		}
	})
}

func (e *engine) Set(ctx context.Context, key string, value any, ttl time.Duration, internal bool) any {
	if !e.enabled {
		return value
	}
	if malformedKey(key) {
		e.log.Warn("set dropped (malformed key)", Fields{"key": key})
		e.hooks.InvalidKey(key)
		return value
	}

	ent := entry{value: value}
	if raw, err := e.codec.Encode(value); err != nil {
		// store raw; a cache-layer defect must not surface to the caller
		e.hooks.CompressionFallback(key, err)
		e.log.Debug("encode failed; storing raw", Fields{"key": key, "err": err})
	} else if len(raw) > e.threshold {
		if packed, cerr := compress.Encode(raw); cerr != nil {
			e.hooks.CompressionFallback(key, cerr)
			e.log.Debug("compression failed; storing raw", Fields{"key": key, "err": cerr})
		} else {
			ent = entry{payload: packed, compressed: true}
		}
	}

	if ttl > 0 {
		ent.expiresAt = e.now().Add(ttl).UnixMilli()
	}

	e.mu.Lock()
	e.entries[key] = ent
	e.mu.Unlock()

	if !internal {
		e.emit(ctx, SyncMessage{
			Action:    ActionSet,
			Key:       key,
			Payload:   value,
			ExpiresAt: ent.expiresAt,
			Origin:    e.nodeID,
		})
	}
	return value
}

func (e *engine) Get(key string) (any, bool) {
	if !e.enabled {
		return nil, false
	}
	e.mu.Lock()
	ent, ok := e.entries[key]
	if !ok {
		e.mu.Unlock()
		return nil, false
	}
	if ent.expired(e.now().UnixMilli()) {
		delete(e.entries, key)
		e.mu.Unlock()
		e.hooks.EntryEvicted(key, EvictExpired)
		return nil, false
	}
	if !ent.compressed {
		e.mu.Unlock()
		return ent.value, true
	}

	// decode inside the critical section so a concurrent overwrite
	// cannot be observed half-applied
	var v any
	raw, err := compress.Decode(ent.payload)
	if err == nil {
		v, err = e.codec.Decode(raw)
	}
	if err != nil {
		delete(e.entries, key) // self-heal: treat as a miss, never a decode error
		e.mu.Unlock()
		e.hooks.EntryEvicted(key, EvictDecode)
		e.log.Error("evicted undecodable entry", Fields{"key": key, "err": err})
		return nil, false
	}
	e.mu.Unlock()
	return v, true
}

func (e *engine) Delete(ctx context.Context, key string) bool {
	if !e.enabled {
		return false
	}
	e.mu.Lock()
	_, existed := e.entries[key]
	delete(e.entries, key)
	e.mu.Unlock()

	e.emit(ctx, SyncMessage{Action: ActionDelete, Key: key, Origin: e.nodeID})
	return existed
}

func (e *engine) InvalidateByPrefix(ctx context.Context, prefix string) int {
	if !e.enabled {
		return 0
	}
	e.mu.Lock()
	var removed []string
	for k := range e.entries {
		if strings.HasPrefix(k, prefix) {
			removed = append(removed, k)
		}
	}
	for _, k := range removed {
		delete(e.entries, k)
	}
	e.mu.Unlock()

	for _, k := range removed {
		e.emit(ctx, SyncMessage{Action: ActionInvalidate, Key: k, Origin: e.nodeID})
	}
	if len(removed) > 0 {
		e.log.Debug("prefix invalidation", Fields{"prefix": prefix, "removed": len(removed)})
	}
	return len(removed)
}

func (e *engine) KeysWithPrefix(prefix string) []string {
	if !e.enabled {
		return nil
	}
	nowMilli := e.now().UnixMilli()
	e.mu.Lock()
	var keys []string
	for k, ent := range e.entries {
		if strings.HasPrefix(k, prefix) && !ent.expired(nowMilli) {
			keys = append(keys, k)
		}
	}
	e.mu.Unlock()
	return keys
}

func (e *engine) SetBroadcast(fn BroadcastFunc) {
	e.bcastMu.Lock()
	e.broadcast = fn
	e.bcastMu.Unlock()
}

// emit invokes the broadcast hook outside the entry lock.
func (e *engine) emit(ctx context.Context, msg SyncMessage) {
	e.bcastMu.RLock()
	fn := e.broadcast
	e.bcastMu.RUnlock()
	if fn != nil {
		fn(ctx, msg)
	}
}

func (e *engine) sweepLoop() {
	defer e.closeWg.Done()
	for {
		select {
		case <-e.ticker.C:
			e.sweepExpired()
		case <-e.stopCh:
			return
		}
	}
}

// sweepExpired reclaims entries nobody re-reads; get-triggered eviction
// alone would never drop dead keys.
func (e *engine) sweepExpired() {
	nowMilli := e.now().UnixMilli()
	e.mu.Lock()
	removed := 0
	for k, ent := range e.entries {
		if ent.expired(nowMilli) {
			delete(e.entries, k)
			removed++
		}
	}
	e.mu.Unlock()

	if removed > 0 {
		e.hooks.Swept(removed)
		e.log.Debug("expiration sweep", Fields{"removed": removed})
	}
}

// malformedKey flags keys assembled from missing lookup parameters.
func malformedKey(key string) bool {
	return strings.Contains(key, "undefined") || strings.Contains(key, "null")
}
