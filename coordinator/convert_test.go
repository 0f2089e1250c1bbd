package coordinator

import (
	"testing"

	"github.com/unkn0wn-root/sidecache/recordstore"
)

// Pages that round-trip through the compressed path come back as generic
// maps with float64 numbers; pageFromAny must rebuild them.
func TestPageFromDecodedMap(t *testing.T) {
	v := map[string]any{
		"items": []any{
			map[string]any{"id": "1", "title": "A"},
		},
		"totalItems": float64(7),
		"totalPages": float64(1),
		"page":       float64(1),
		"limit":      float64(10),
	}
	page, ok := pageFromAny(v)
	if !ok {
		t.Fatalf("pageFromAny rejected a decoded page")
	}
	if page.TotalItems != 7 || page.Page != 1 || page.Limit != 10 {
		t.Fatalf("unexpected page %+v", page)
	}
	if len(page.Items) != 1 || page.Items[0].ID() != "1" {
		t.Fatalf("unexpected items %v", page.Items)
	}
}

func TestPageFromAnyCopiesItems(t *testing.T) {
	orig := &Page{Items: []recordstore.Record{{"id": "1"}}}
	cp, ok := pageFromAny(orig)
	if !ok {
		t.Fatalf("pageFromAny rejected a typed page")
	}
	cp.Items = append([]recordstore.Record{{"id": "0"}}, cp.Items...)
	if len(orig.Items) != 1 {
		t.Fatalf("patching the copy must not mutate the cached page")
	}
}

func TestAsRecordShapes(t *testing.T) {
	if _, ok := asRecord("nope"); ok {
		t.Fatalf("non-map values are not records")
	}
	if r, ok := asRecord(map[string]any{"id": "1"}); !ok || r.ID() != "1" {
		t.Fatalf("decoded map should convert, r=%v ok=%v", r, ok)
	}
	if r, ok := asRecord(recordstore.Record{"id": "2"}); !ok || r.ID() != "2" {
		t.Fatalf("typed record should pass through, r=%v ok=%v", r, ok)
	}
}
