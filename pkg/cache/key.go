package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Key represents a unique identifier for a cached Socrata page.
type Key struct {
	// DatasetID is the Socrata dataset identifier (e.g., "wujg-7c2s").
	DatasetID string

	// QueryParams are the request query parameters ($limit, $offset, $where, $select).
	QueryParams url.Values
}

// String generates a deterministic cache key string.
// Format: soda:dataset-id:param1=val1:param2=val2
//
// Example:
//
//	soda:wujg-7c2s:$limit=25000:$offset=0
func (k Key) String() string {
	parts := []string{"soda", k.DatasetID}

	// Query params sorted for determinism.
	if len(k.QueryParams) > 0 {
		keys := make([]string, 0, len(k.QueryParams))
		for key := range k.QueryParams {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, k.QueryParams.Get(key)))
		}
	}

	return strings.Join(parts, ":")
}
