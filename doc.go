// Package sidecache implements a process-local cache-aside engine with
// TTL-based expiration, usage-adaptive TTL policy, transparent compression
// of large payloads, prefix-based bulk invalidation, and a pluggable
// broadcast hook for multi-node cache coherence.
//
// Components:
//   - Cache: the engine itself. One instance per process; inject it into
//     every consumer instead of relying on ambient globals.
//   - Codec[V]: (de)serializes values for the compressed storage path.
//   - BroadcastFunc: propagates set/delete/invalidate events to peers.
//     Transport lives outside the engine (see bus/redisbus); the receiving
//     node applies messages through ApplySync so they are never rebroadcast.
//
// The coordinator subpackage layers cache-aside CRUD over a remote record
// store (recordstore.Store) on top of this engine, including an optimistic
// batched-write queue with list scaffolding.
//
// Read path:
//
//	v, ok := cache.Get(key)      // expired entries are evicted, never returned
//	if !ok { v = fetch(); cache.Set(ctx, key, v, cache.DynamicTTL(key, sidecache.TTLDynamic), false) }
package sidecache
