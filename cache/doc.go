// Package cache defines the caching boundaries the catalog engine reads
// and writes through, plus constructors for the default in-process
// implementations.
//
// # Overview
//
// Two interfaces cover the engine's derived state:
//
//   - ItemCache: per-book attribute snapshots on a fixed expiry
//   - MemberSets: per-category member-id sets, with "confirmed empty"
//     kept distinct from "never computed"
//
// Both are projections of the primary store. Nothing in them is
// authoritative; expiry bounds how stale a projection can get, and the
// write path shortens that bound for the fields it touches.
//
// # Configuration
//
// Config sizes the backing caches and sets the three expiries: book
// snapshots, membership sets, and the shorter-lived empty-set marker.
// DefaultConfig returns the catalog defaults; Validate reports
// out-of-range values before any cache is built.
//
//	items, err := cache.NewItemCache(cache.DefaultConfig())
//	sets, err := cache.NewMemberSets(cache.DefaultConfig())
//
// The default implementations live in internal/cacheinfra and store
// msgpack-encoded snapshots in sharded in-memory caches.
package cache
