package cacheinfra

import (
	"context"
	"sync"

	"github.com/puzpuzpuz/xsync/v3"
	"github.com/viccon/sturdyc"
)

// emptySentinel is the reserved member id stored in place of an empty set.
// Category ids are small positive integers, so it can never collide with
// a real member list.
const emptySentinel int64 = -1

// SetLookup is the outcome of a batched membership-set read. Every
// requested category id lands in exactly one of the three buckets.
type SetLookup struct {
	// Members holds cached non-empty membership, keyed by category id.
	Members map[int64][]int64
	// Empty lists categories cached as confirmed empty.
	Empty []int64
	// Missing lists categories with no cached set at all.
	Missing []int64
}

// MemberSets keeps per-category member-id sets. Real sets and the
// confirmed-empty markers live in separate sturdyc namespaces because the
// marker carries a shorter expiry; a key is present in at most one of the
// two at a time.
type MemberSets struct {
	members *sturdyc.Client[[]int64]
	empty   *sturdyc.Client[[]int64]
	locks   *xsync.MapOf[int64, *sync.Mutex]
}

// NewMemberSets validates the configuration and builds the membership cache.
func NewMemberSets(cfg Config) (*MemberSets, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	opts := cfg.options()
	return &MemberSets{
		members: sturdyc.New[[]int64](cfg.Capacity, cfg.NumShards, cfg.SetTTL, cfg.EvictionPercentage, opts...),
		empty:   sturdyc.New[[]int64](cfg.Capacity, cfg.NumShards, cfg.EmptySetTTL, cfg.EvictionPercentage, opts...),
		locks:   xsync.NewMapOf[int64, *sync.Mutex](),
	}, nil
}

// GetMany classifies every requested category as cached members, confirmed
// empty, or missing, in one pass.
func (c *MemberSets) GetMany(ctx context.Context, categoryIDs []int64) (SetLookup, error) {
	lookup := SetLookup{Members: make(map[int64][]int64, len(categoryIDs))}
	if err := ctx.Err(); err != nil {
		lookup.Missing = append([]int64(nil), categoryIDs...)
		return lookup, nil
	}

	for _, catID := range categoryIDs {
		if ids, ok := c.members.Get(setKey(catID)); ok {
			if isSentinel(ids) {
				lookup.Empty = append(lookup.Empty, catID)
				continue
			}
			lookup.Members[catID] = append([]int64(nil), ids...)
			continue
		}
		if _, ok := c.empty.Get(setKey(catID)); ok {
			lookup.Empty = append(lookup.Empty, catID)
			continue
		}
		lookup.Missing = append(lookup.Missing, catID)
	}
	return lookup, nil
}

// StoreMembers records the DB-confirmed membership of one category. Zero
// members store the sentinel on the shorter expiry.
func (c *MemberSets) StoreMembers(ctx context.Context, categoryID int64, memberIDs []int64) error {
	unlock := c.lock(categoryID)
	defer unlock()

	key := setKey(categoryID)
	if len(memberIDs) == 0 {
		c.members.Delete(key)
		c.empty.Set(key, []int64{emptySentinel})
		return nil
	}
	c.empty.Delete(key)
	c.members.Set(key, dedupe(memberIDs))
	return nil
}

// Add inserts itemID into the category's set. Only sets the cache already
// knows are mutated: a set cached as empty gains its first member, while a
// set never computed stays missing. A missing set may have members the
// cache has not seen, so creating it here would publish a partial set as
// if it were the whole membership; the next query builds the full set from
// the store instead.
func (c *MemberSets) Add(ctx context.Context, categoryID, itemID int64) error {
	unlock := c.lock(categoryID)
	defer unlock()

	key := setKey(categoryID)
	if ids, ok := c.members.Get(key); ok {
		if isSentinel(ids) {
			c.members.Set(key, []int64{itemID})
			return nil
		}
		for _, id := range ids {
			if id == itemID {
				return nil
			}
		}
		c.members.Set(key, append(append([]int64(nil), ids...), itemID))
		return nil
	}
	if _, ok := c.empty.Get(key); ok {
		c.empty.Delete(key)
		c.members.Set(key, []int64{itemID})
	}
	return nil
}

// Remove drops itemID from the category's set. Removing the last member
// leaves the set confirmed empty; removing from a missing set is a no-op.
func (c *MemberSets) Remove(ctx context.Context, categoryID, itemID int64) error {
	unlock := c.lock(categoryID)
	defer unlock()

	key := setKey(categoryID)
	ids, ok := c.members.Get(key)
	if !ok || isSentinel(ids) {
		return nil
	}
	kept := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != itemID {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(ids) {
		return nil
	}
	if len(kept) == 0 {
		c.members.Delete(key)
		c.empty.Set(key, []int64{emptySentinel})
		return nil
	}
	c.members.Set(key, kept)
	return nil
}

// lock serializes read-modify-write cycles per category; contention stays
// fine-grained because every category has its own mutex.
func (c *MemberSets) lock(categoryID int64) func() {
	mu, _ := c.locks.LoadOrCompute(categoryID, func() *sync.Mutex { return &sync.Mutex{} })
	mu.Lock()
	return mu.Unlock
}

func isSentinel(ids []int64) bool {
	for _, id := range ids {
		if id == emptySentinel {
			return true
		}
	}
	return false
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
