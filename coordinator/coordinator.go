// Package coordinator implements a cache-aside CRUD façade over a remote
// record store, plus a deferred batch-write mode with optimistic
// list-scaffolding.
//
// Reads consult the cache first and repopulate it on miss. Writes either
// execute immediately, invalidating affected cache entries, or - in batch
// mode - are queued and reflected into already-cached list pages as
// scaffold placeholders until SaveChanges flushes the queue.
//
// Batch mode is instance-scoped: use one Coordinator per request or
// session and share the engine and store between them.
package coordinator

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/unkn0wn-root/sidecache"
	"github.com/unkn0wn-root/sidecache/recordstore"
)

var (
	ErrNilCache = errors.New("coordinator: cache is required")
	ErrNilStore = errors.New("coordinator: store is required")
)

type Config struct {
	Cache  sidecache.Cache
	Store  recordstore.Store
	Logger sidecache.Logger // nil => NopLogger
}

type Coordinator struct {
	cache sidecache.Cache
	store recordstore.Store
	log   sidecache.Logger

	mu    sync.Mutex
	batch bool
	queue []operation
}

type opKind int

const (
	opCreate opKind = iota
	opUpdate
	opDelete
)

// operation is one queued batch write.
type operation struct {
	kind       opKind
	collection string
	id         string
	data       recordstore.Record
}

// ListOptions shape a paginated read. Zero Page/Limit default to 1/10.
type ListOptions struct {
	Page   int
	Limit  int
	Filter string
	Sort   string
	Expand []string
}

func (o ListOptions) withDefaults() ListOptions {
	if o.Page <= 0 {
		o.Page = 1
	}
	if o.Limit <= 0 {
		o.Limit = 10
	}
	return o
}

// Page is one cached list result.
type Page struct {
	Items      []recordstore.Record `json:"items"`
	TotalItems int                  `json:"totalItems"`
	TotalPages int                  `json:"totalPages"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	CacheKey   string               `json:"cacheKey"`
}

func New(cfg Config) (*Coordinator, error) {
	if cfg.Cache == nil {
		return nil, ErrNilCache
	}
	if cfg.Store == nil {
		return nil, ErrNilStore
	}
	log := cfg.Logger
	if log == nil {
		log = sidecache.NopLogger{}
	}
	return &Coordinator{cache: cfg.Cache, store: cfg.Store, log: log}, nil
}

// Get returns the record, or (nil, nil) when the remote store has no such
// id. Any other remote failure is propagated unchanged.
func (c *Coordinator) Get(ctx context.Context, collection, id string, expand ...string) (recordstore.Record, error) {
	key := getKey(collection, id, expand)
	if v, ok := c.cache.Get(key); ok {
		if rec, ok := asRecord(v); ok {
			return withCacheKey(rec, key), nil
		}
		// unexpected cached shape; fall through and repopulate
		c.log.Warn("cached record had unexpected shape", sidecache.Fields{"key": key})
	}

	rec, err := c.store.GetOne(ctx, collection, id, recordstore.Query{Expand: expand})
	if errors.Is(err, recordstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	c.cache.Set(ctx, key, rec, c.cache.DynamicTTL(key, sidecache.TTLDynamic), false)
	return withCacheKey(rec, key), nil
}

// List returns one page of records. A cache hit short-circuits the remote
// call entirely.
func (c *Coordinator) List(ctx context.Context, collection string, opts ListOptions) (*Page, error) {
	opts = opts.withDefaults()
	key := listKey(collection, opts)
	if v, ok := c.cache.Get(key); ok {
		if page, ok := pageFromAny(v); ok {
			page.CacheKey = key
			return page, nil
		}
		c.log.Warn("cached page had unexpected shape", sidecache.Fields{"key": key})
	}

	res, err := c.store.GetList(ctx, collection, opts.Page, opts.Limit, recordstore.Query{
		Filter: opts.Filter,
		Sort:   opts.Sort,
		Expand: opts.Expand,
	})
	if err != nil {
		return nil, err
	}

	page := &Page{
		Items:      res.Items,
		TotalItems: res.TotalItems,
		TotalPages: res.TotalPages,
		Page:       opts.Page,
		Limit:      opts.Limit,
		CacheKey:   key,
	}
	c.cache.Set(ctx, key, page, c.cache.DynamicTTL(key, sidecache.TTLDynamic), false)
	// hand back a detached copy; the cached page must not alias a pointer
	// the caller may mutate
	return page.clone(), nil
}

// Create persists a new record. With batch mode active and useScaffold set,
// the write is queued and a locally synthesized scaffold is returned
// immediately; the scaffold is also prepended into every cached list page
// for the collection so optimistic readers observe the insert before it is
// durable.
func (c *Coordinator) Create(ctx context.Context, collection string, data recordstore.Record, useScaffold bool) (recordstore.Record, error) {
	c.mu.Lock()
	if c.batch && useScaffold {
		c.queue = append(c.queue, operation{kind: opCreate, collection: collection, data: data.Clone()})
		c.mu.Unlock()

		scaffold := newScaffold(data)
		c.prependToCachedLists(ctx, collection, scaffold)
		return scaffold, nil
	}
	c.mu.Unlock()

	rec, err := c.store.Create(ctx, collection, data)
	if err != nil {
		return nil, err
	}
	// a create can change any page's contents; list caches cannot be
	// surgically patched and are dropped wholesale
	c.cache.InvalidateByPrefix(ctx, listPrefix(collection))
	return rec, nil
}

// Update mutates a record. In batch mode the operation is queued and a
// partially-populated record (id plus the supplied fields) is returned
// without touching the remote store or the cache.
func (c *Coordinator) Update(ctx context.Context, collection, id string, data recordstore.Record, expand ...string) (recordstore.Record, error) {
	c.mu.Lock()
	if c.batch {
		c.queue = append(c.queue, operation{kind: opUpdate, collection: collection, id: id, data: data.Clone()})
		c.mu.Unlock()

		rec := data.Clone()
		if rec == nil {
			rec = recordstore.Record{}
		}
		rec["id"] = id
		return rec, nil
	}
	c.mu.Unlock()

	rec, err := c.store.Update(ctx, collection, id, data, recordstore.Query{Expand: expand})
	if err != nil {
		return nil, err
	}
	c.cache.Delete(ctx, getKey(collection, id, expand))
	c.cache.InvalidateByPrefix(ctx, listPrefix(collection))
	return rec, nil
}

// Delete removes a record. In batch mode the operation is queued and true
// is returned optimistically. Cache entries are only dropped when the
// remote reports an actual deletion.
func (c *Coordinator) Delete(ctx context.Context, collection, id string) (bool, error) {
	c.mu.Lock()
	if c.batch {
		c.queue = append(c.queue, operation{kind: opDelete, collection: collection, id: id})
		c.mu.Unlock()
		return true, nil
	}
	c.mu.Unlock()

	ok, err := c.store.Delete(ctx, collection, id)
	if err != nil || !ok {
		return ok, err
	}
	c.cache.Delete(ctx, getKey(collection, id, nil))
	c.cache.InvalidateByPrefix(ctx, listPrefix(collection))
	return true, nil
}

// SetBatch toggles batch mode. Enabling with a non-empty queue does not
// clear it; the queue only drains on SaveChanges.
func (c *Coordinator) SetBatch(enabled bool) {
	c.mu.Lock()
	c.batch = enabled
	c.mu.Unlock()
}

// SaveChanges flushes queued operations strictly in enqueue order through
// the non-batch code paths, so every flushed write performs its normal
// cache invalidation. The queue and batch mode are cleared up front; the
// first remote failure aborts the replay and propagates.
func (c *Coordinator) SaveChanges(ctx context.Context) error {
	c.mu.Lock()
	ops := c.queue
	c.queue = nil
	c.batch = false
	c.mu.Unlock()

	if len(ops) == 0 {
		return nil
	}
	c.log.Debug("flushing batch queue", sidecache.Fields{"ops": len(ops)})

	for _, op := range ops {
		var err error
		switch op.kind {
		case opCreate:
			_, err = c.Create(ctx, op.collection, op.data, false)
		case opUpdate:
			_, err = c.Update(ctx, op.collection, op.id, op.data)
		case opDelete:
			_, err = c.Delete(ctx, op.collection, op.id)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// newScaffold synthesizes an optimistic placeholder for a pending create.
func newScaffold(data recordstore.Record) recordstore.Record {
	scaffold := data.Clone()
	if scaffold == nil {
		scaffold = recordstore.Record{}
	}
	now := time.Now().UTC().Format(recordstore.TimeFormat)
	scaffold["id"] = "scaffold_" + uuid.NewString()
	scaffold["created"] = now
	scaffold["updated"] = now
	scaffold["scaffold"] = true
	return scaffold
}

// prependToCachedLists patches every cached list page of the collection so
// readers observe the scaffold before the create is durable.
func (c *Coordinator) prependToCachedLists(ctx context.Context, collection string, scaffold recordstore.Record) {
	for _, key := range c.cache.KeysWithPrefix(listPrefix(collection)) {
		v, ok := c.cache.Get(key)
		if !ok {
			continue
		}
		page, ok := pageFromAny(v)
		if !ok {
			continue
		}
		page.Items = append([]recordstore.Record{scaffold}, page.Items...)
		page.CacheKey = key
		// internal set: scaffold ids only exist on this node, so a peer
		// receiving the patched page could never reconcile it
		c.cache.Set(ctx, key, page, c.cache.DynamicTTL(key, sidecache.TTLDynamic), true)
	}
}

func withCacheKey(rec recordstore.Record, key string) recordstore.Record {
	out := rec.Clone()
	if out == nil {
		out = recordstore.Record{}
	}
	out["cacheKey"] = key
	return out
}
