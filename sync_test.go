package sidecache

import (
	"context"
	"testing"
	"time"
)

func TestApplySyncSet(t *testing.T) {
	e := newTestEngine(t, nil)
	msgs := capture(e)

	base := time.Now()
	e.now = func() time.Time { return base }

	e.ApplySync(SyncMessage{
		Action:    ActionSet,
		Key:       "users:one:1",
		Payload:   map[string]any{"id": "1"},
		ExpiresAt: base.Add(time.Hour).UnixMilli(),
		Origin:    "node-b",
	})

	if _, ok := e.Get("users:one:1"); !ok {
		t.Fatalf("remote set should populate the cache")
	}
	if len(*msgs) != 0 {
		t.Fatalf("applying a remote message must not rebroadcast, got %d", len(*msgs))
	}

	// remaining TTL is carried over from the peer's expiry
	e.mu.Lock()
	ent := e.entries["users:one:1"]
	e.mu.Unlock()
	if ent.expiresAt != base.Add(time.Hour).UnixMilli() {
		t.Fatalf("expected peer expiry to be preserved, got %d", ent.expiresAt)
	}
}

func TestApplySyncExpiredPayloadIgnored(t *testing.T) {
	e := newTestEngine(t, nil)

	base := time.Now()
	e.now = func() time.Time { return base }
	e.ApplySync(SyncMessage{
		Action:    ActionSet,
		Key:       "stale",
		Payload:   "v",
		ExpiresAt: base.Add(-time.Minute).UnixMilli(),
		Origin:    "node-b",
	})
	if _, ok := e.Get("stale"); ok {
		t.Fatalf("already-expired remote payloads must be ignored")
	}
}

func TestApplySyncDeleteAndInvalidate(t *testing.T) {
	ctx := context.Background()
	e := newTestEngine(t, nil)

	e.Set(ctx, "a", "1", 0, false)
	e.Set(ctx, "b", "2", 0, false)
	msgs := capture(e)

	e.ApplySync(SyncMessage{Action: ActionDelete, Key: "a", Origin: "node-b"})
	e.ApplySync(SyncMessage{Action: ActionInvalidate, Key: "b", Origin: "node-b"})

	if _, ok := e.Get("a"); ok {
		t.Fatalf("remote delete not applied")
	}
	if _, ok := e.Get("b"); ok {
		t.Fatalf("remote invalidate not applied")
	}
	if len(*msgs) != 0 {
		t.Fatalf("remote removals must not rebroadcast, got %d", len(*msgs))
	}
}
