package sidecache

import (
	"context"
	"time"
)

// SyncAction identifies the mutation a SyncMessage carries.
type SyncAction string

const (
	ActionSet        SyncAction = "set"
	ActionDelete     SyncAction = "delete"
	ActionInvalidate SyncAction = "invalidate"
)

// SyncMessage is emitted for every externally-visible mutation that did not
// itself originate from a remote sync application. Origin carries the
// emitting node's id so transports can drop their own frames.
type SyncMessage struct {
	Action    SyncAction `json:"action" msgpack:"action"`
	Key       string     `json:"key" msgpack:"key"`
	Payload   any        `json:"payload,omitempty" msgpack:"payload,omitempty"`
	ExpiresAt int64      `json:"expiresAt,omitempty" msgpack:"expiresAt,omitempty"` // unix millis; 0 => never
	Origin    string     `json:"origin" msgpack:"origin"`
}

// ApplySync applies a peer's mutation locally without rebroadcasting it.
// Set messages keep the remaining TTL from the peer's ExpiresAt; already
// expired payloads are ignored. Delete and invalidate messages carry exact
// keys and are applied as silent removals.
func (e *engine) ApplySync(msg SyncMessage) {
	if !e.enabled {
		return
	}
	switch msg.Action {
	case ActionSet:
		var ttl time.Duration
		if msg.ExpiresAt > 0 {
			remaining := msg.ExpiresAt - e.now().UnixMilli()
			if remaining <= 0 {
				return
			}
			ttl = time.Duration(remaining) * time.Millisecond
		}
		e.Set(context.Background(), msg.Key, msg.Payload, ttl, true)
	case ActionDelete, ActionInvalidate:
		e.removeLocal(msg.Key)
	default:
		e.log.Warn("unknown sync action", Fields{"action": msg.Action, "key": msg.Key})
	}
}

func (e *engine) removeLocal(key string) {
	e.mu.Lock()
	delete(e.entries, key)
	e.mu.Unlock()
}
