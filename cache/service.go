package cache

import (
	"context"

	"github.com/goliatone/go-catalog-cache/bookstore"
	"github.com/goliatone/go-catalog-cache/internal/cacheinfra"
)

// ItemCache holds per-book attribute snapshots with a fixed expiry.
// Implementations classify absent, expired, and corrupt entries as misses;
// the caller resolves misses against the primary store.
type ItemCache interface {
	// GetMany performs one batched read for all requested ids and returns
	// the hits keyed by id plus the ids that missed. A done context
	// degrades every id to a miss rather than blocking.
	GetMany(ctx context.Context, ids []int64) (map[int64]bookstore.Book, []int64, error)

	// Put stores a fresh snapshot. The write path calls this synchronously
	// after a successful store mutation.
	Put(ctx context.Context, book bookstore.Book) error

	// PutMany stores snapshots in one batch; used by async writeback.
	PutMany(ctx context.Context, books []bookstore.Book) error

	Delete(ctx context.Context, id int64) error
}

// SetLookup is the outcome of a batched membership-set read. Every
// requested category id lands in exactly one of the three buckets:
// cached members, confirmed empty, or missing.
type SetLookup = cacheinfra.SetLookup

// MemberSets holds per-category member-id sets, distinguishing "confirmed
// empty" from "never computed" so empty categories do not hammer the
// primary store.
type MemberSets interface {
	GetMany(ctx context.Context, categoryIDs []int64) (SetLookup, error)

	// StoreMembers records the DB-confirmed membership of one category.
	// An empty memberIDs slice stores the empty-set marker on a shorter
	// expiry than real sets.
	StoreMembers(ctx context.Context, categoryID int64, memberIDs []int64) error

	// Add inserts itemID into the category's set. Adding an id that is
	// already present is a no-op; adding to a set cached as empty replaces
	// the marker; adding to a set that was never computed is a no-op, and
	// the next query builds the full membership from the primary store.
	Add(ctx context.Context, categoryID, itemID int64) error

	// Remove drops itemID from the category's set. Removing from a set
	// that does not contain the id, or from a missing set, is a no-op.
	Remove(ctx context.Context, categoryID, itemID int64) error
}
