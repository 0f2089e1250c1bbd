// Package recordstore defines the remote record store boundary consumed by
// the coordinator.
//
// Implementations are the system of record: the coordinator never hides a
// real backend failure behind a stale cache entry, so any non-NotFound error
// returned here is surfaced to callers uninterpreted. Retry policy, if any,
// belongs to the implementation, not to the coordinator.
package recordstore

import (
	"context"
	"errors"
	"fmt"
	"maps"
)

// TimeFormat is the timestamp layout used by the collection API.
const TimeFormat = "2006-01-02 15:04:05.000Z"

// ErrNotFound reports a point lookup miss. Callers treat it as a normal
// empty result, never as a failure.
var ErrNotFound = errors.New("recordstore: record not found")

// APIError is any non-404 failure reported by the remote store.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("recordstore: remote returned %d: %s", e.Status, e.Message)
}

// Record is a schemaless remote record. The store guarantees at least "id".
type Record map[string]any

// ID returns the record's id, or "" when absent.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Clone returns a shallow copy. Use it before handing a cached record to a
// caller so caller mutations cannot leak back into the cache.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	return maps.Clone(r)
}

// Query carries the optional read parameters of the collection API.
type Query struct {
	Filter string
	Sort   string
	Expand []string
}

// List is one page of records.
type List struct {
	Items      []Record `json:"items"`
	TotalItems int      `json:"totalItems"`
	TotalPages int      `json:"totalPages"`
	Page       int      `json:"page"`
	PerPage    int      `json:"perPage"`
}

// Store is the remote collection API.
type Store interface {
	// GetOne returns a single record, or ErrNotFound.
	GetOne(ctx context.Context, collection, id string, q Query) (Record, error)

	// GetList returns one page of records.
	GetList(ctx context.Context, collection string, page, limit int, q Query) (*List, error)

	// Create persists a new record and returns it with server-assigned fields.
	Create(ctx context.Context, collection string, data Record) (Record, error)

	// Update mutates an existing record and returns the updated view.
	Update(ctx context.Context, collection, id string, data Record, q Query) (Record, error)

	// Delete removes a record. ok=false without an error means the remote
	// reported the id does not exist.
	Delete(ctx context.Context, collection, id string) (ok bool, err error)
}
