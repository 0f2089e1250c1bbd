package coordinator

import (
	"slices"

	"github.com/unkn0wn-root/sidecache/recordstore"
)

// Cached values lose their Go types when they round-trip through the
// engine's compressed path or a sync transport: records and pages come back
// as generic maps. These helpers normalize both shapes.

func asRecord(v any) (recordstore.Record, bool) {
	switch r := v.(type) {
	case recordstore.Record:
		return r, true
	case map[string]any:
		return recordstore.Record(r), true
	}
	return nil, false
}

// clone returns a shallow copy with a detached Items slice. Every page
// handed to a caller goes through it; the cached entry must never share a
// mutable header with caller-held pages.
func (p *Page) clone() *Page {
	cp := *p
	cp.Items = slices.Clone(p.Items)
	return &cp
}

// pageFromAny rebuilds a Page from a cached value. The *Page case returns a
// copy so callers can patch Items without mutating the cached entry.
func pageFromAny(v any) (*Page, bool) {
	switch p := v.(type) {
	case *Page:
		return p.clone(), true
	case map[string]any:
		page := &Page{
			TotalItems: toInt(p["totalItems"]),
			TotalPages: toInt(p["totalPages"]),
			Page:       toInt(p["page"]),
			Limit:      toInt(p["limit"]),
		}
		rawItems, ok := p["items"].([]any)
		if !ok && p["items"] != nil {
			return nil, false
		}
		for _, it := range rawItems {
			rec, ok := asRecord(it)
			if !ok {
				return nil, false
			}
			page.Items = append(page.Items, rec)
		}
		return page, true
	}
	return nil, false
}

// toInt covers the numeric types JSON and msgpack decoders produce.
func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case uint64:
		return int(n)
	case float32:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}
