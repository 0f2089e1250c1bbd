package coordinator

import (
	"fmt"
	"strings"
)

// Cache keys join the non-empty parts of (collection, operation tag,
// id-or-page/limit/filter/sort, expand) with ":". This is the single source
// of truth for key shape: the code that populates an entry and the code
// that later reads or invalidates it must derive identical keys.
const keySep = ":"

func joinKey(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, keySep)
}

func getKey(collection, id string, expand []string) string {
	return joinKey(collection, "one", id, strings.Join(expand, ","))
}

func listKey(collection string, o ListOptions) string {
	scope := fmt.Sprintf("%d/%d/%s/%s", o.Page, o.Limit, o.Filter, o.Sort)
	return joinKey(collection, "list", scope, strings.Join(o.Expand, ","))
}

// listPrefix covers every cached page of the collection.
func listPrefix(collection string) string {
	return collection + keySep + "list"
}
