package catalog

import (
	"context"
	"sort"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/bookstore"
	"github.com/goliatone/go-catalog-cache/cache"
)

// QueryByCategories answers a multi-category boolean query. Cached
// membership sets are read in one batch and folded first; categories with
// no cached set are resolved with exactly one store query and folded the
// same way, then written back off the request path. "No matches" is a
// normal empty result, never an error.
func (e *Engine) QueryByCategories(ctx context.Context, categoryIDs []int64, mode Mode) ([]bookstore.Book, error) {
	if mode != ModeAll && mode != ModeAny {
		return nil, errors.Errorf("catalog: unknown query mode %d", mode)
	}
	cats := dedupeIDs(categoryIDs)
	if len(cats) == 0 {
		return []bookstore.Book{}, nil
	}

	readCtx, cancel := e.readCtx(ctx)
	lookup, err := e.sets.GetMany(readCtx, cats)
	cancel()
	if err != nil {
		// Transient infra failure: treat every category as a miss.
		e.log.Warn("membership cache read failed", zap.Error(err))
		lookup = cache.SetLookup{Missing: cats}
	}

	// A confirmed-empty category forces an empty intersection before any
	// store round trip.
	if mode == ModeAll && len(lookup.Empty) > 0 {
		return []bookstore.Book{}, nil
	}

	fold := newFold(mode)
	for _, members := range lookup.Members {
		if fold.add(members) {
			return []bookstore.Book{}, nil
		}
	}

	if len(lookup.Missing) > 0 {
		fromDB, err := e.store.MemberIDsByCategories(ctx, lookup.Missing)
		if err != nil {
			return nil, errors.Wrap(err, "catalog: load category membership")
		}
		e.backfillSets(lookup.Missing, fromDB)
		for _, catID := range lookup.Missing {
			members := fromDB[catID]
			if len(members) == 0 {
				if mode == ModeAll {
					return []bookstore.Book{}, nil
				}
				continue
			}
			if fold.add(members) {
				return []bookstore.Book{}, nil
			}
		}
	}

	ids := fold.result()
	if len(ids) == 0 {
		return []bookstore.Book{}, nil
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	books, err := e.fetchByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	if viewerID, ok := ViewerFromContext(ctx); ok {
		if err := e.fillBorrowFlags(ctx, viewerID, books); err != nil {
			return nil, err
		}
	}
	return books, nil
}

// backfillSets schedules asynchronous writeback of DB-derived membership,
// one task per category with single-flight per category id so concurrent
// misses do not stampede the cache.
func (e *Engine) backfillSets(categoryIDs []int64, members map[int64][]int64) {
	for _, catID := range categoryIDs {
		if _, inFlight := e.backfilling.LoadOrStore(catID, struct{}{}); inFlight {
			continue
		}
		catID := catID
		ids := append([]int64(nil), members[catID]...)
		accepted := e.pool.Submit(func(ctx context.Context) {
			defer e.backfilling.Delete(catID)
			if err := e.sets.StoreMembers(ctx, catID, ids); err != nil {
				e.log.Warn("membership writeback failed",
					zap.Int64("category", catID), zap.Error(err))
			}
		})
		if !accepted {
			e.backfilling.Delete(catID)
		}
	}
}

// fold is the incremental AND/OR combiner. Sets are deduplicated as they
// are folded; add reports true once an intersection has provably emptied,
// letting callers short-circuit.
type fold struct {
	mode    Mode
	started bool
	ids     map[int64]struct{}
}

func newFold(mode Mode) *fold {
	return &fold{mode: mode, ids: make(map[int64]struct{})}
}

func (f *fold) add(members []int64) bool {
	set := make(map[int64]struct{}, len(members))
	for _, id := range members {
		set[id] = struct{}{}
	}

	if f.mode == ModeAny {
		for id := range set {
			f.ids[id] = struct{}{}
		}
		f.started = true
		return false
	}

	if !f.started {
		f.ids = set
		f.started = true
	} else {
		for id := range f.ids {
			if _, ok := set[id]; !ok {
				delete(f.ids, id)
			}
		}
	}
	return len(f.ids) == 0
}

func (f *fold) result() []int64 {
	if !f.started {
		return nil
	}
	out := make([]int64, 0, len(f.ids))
	for id := range f.ids {
		out = append(out, id)
	}
	return out
}
