// Package asynchook decouples hook sinks from the engine's hot paths.
// Events are queued onto a bounded channel and delivered by workers; when
// the queue is full events are dropped rather than blocking a cache call.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{EvictEvery: 10})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	cache, _ := sidecache.New(sidecache.Options{Hooks: hooks})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/sidecache"
)

type Hooks struct {
	inner sidecache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ sidecache.Hooks = (*Hooks)(nil)

func New(inner sidecache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) InvalidKey(k string) { h.try(func() { h.inner.InvalidKey(k) }) }
func (h *Hooks) Swept(n int)         { h.try(func() { h.inner.Swept(n) }) }
func (h *Hooks) CompressionFallback(k string, err error) {
	h.try(func() { h.inner.CompressionFallback(k, err) })
}
func (h *Hooks) EntryEvicted(k, reason string) {
	h.try(func() { h.inner.EntryEvicted(k, reason) })
}
