package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/sidecache"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all.
	EvictEvery      uint64
	InvalidKeyEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	evictCtr      atomic.Uint64
	invalidKeyCtr atomic.Uint64
}

var _ sidecache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) InvalidKey(key string) {
	if h.l == nil || !sample(h.opts.InvalidKeyEvery, &h.invalidKeyCtr) {
		return
	}
	h.l.Warn("sidecache.invalid_key",
		"key", h.redact(key))
}

func (h *Hooks) CompressionFallback(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Debug("sidecache.compression_fallback",
		"key", h.redact(key),
		"err", err)
}

func (h *Hooks) EntryEvicted(key, reason string) {
	if h.l == nil || !sample(h.opts.EvictEvery, &h.evictCtr) {
		return
	}
	h.l.Debug("sidecache.entry_evicted",
		"key", h.redact(key),
		"reason", reason)
}

func (h *Hooks) Swept(removed int) {
	if h.l == nil {
		return
	}
	h.l.Debug("sidecache.sweep",
		"removed", removed)
}
