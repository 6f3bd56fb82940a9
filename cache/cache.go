// Package cache provides the read-through cache used by list-class reads.
//
// Entries are opaque byte payloads tagged with one or more invalidation
// groups. Invalidation is deliberately coarse: dropping a whole group on any
// write trades precision for a simple correctness argument, bounding
// staleness at "until the next write". Backends: an in-process memory cache
// and a Redis-backed cache for multi-instance deployments.
package cache

import (
	"context"
	"sort"
	"strings"
)

// Cache is the contract between the resource services and a cache backend.
// All methods must be safe for concurrent use.
type Cache interface {
	// Get returns the payload stored under key, and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key and associates it with the given
	// invalidation groups.
	Set(ctx context.Context, key string, value []byte, tags []string) error
	// InvalidateGroup drops every entry tagged with the group,
	// unconditionally. There is no partial invalidation by id or filter.
	InvalidateGroup(ctx context.Context, tag string) error
}

// Param is one component of a cache key. Params with empty values are
// treated as not supplied and never reach the key, so optional request
// parameters left at their zero value do not perturb it.
type Param struct {
	Name  string
	Value string
}

// Key derives a deterministic cache key from an operation name, the actor
// identity and the request parameters that were actually supplied. Params
// are sorted by name, making the key independent of argument order.
func Key(op, actor string, params ...Param) string {
	supplied := make([]Param, 0, len(params))
	for _, p := range params {
		if p.Value != "" {
			supplied = append(supplied, p)
		}
	}
	sort.Slice(supplied, func(i, j int) bool { return supplied[i].Name < supplied[j].Name })

	var b strings.Builder
	b.WriteString(op)
	b.WriteByte('|')
	b.WriteString(actor)
	for _, p := range supplied {
		b.WriteByte('|')
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(p.Value)
	}
	return b.String()
}
