// Package catalog implements a cache-aside read/write engine for a book
// catalog backed by a relational store.
//
// # Overview
//
// The engine answers three kinds of reads, each resolving candidate ids
// first and then batch-fetching full snapshots through the item cache:
//
//   - Paged listing in a stable global order, served by an in-process
//     ordinal index that is rebuilt from the store at startup
//   - Direct lookup by id
//   - Boolean category queries, combining per-category membership sets
//     with AND (ModeAll) or OR (ModeAny)
//
// Reads never fail because of cache trouble: a cache error or timeout
// degrades the affected ids to misses and the primary store answers.
//
// # Read Path
//
// fetchByIDs is the shared core:
//
//  1. One batched cache read classifies ids into hits and misses
//  2. One batched store read resolves exactly the misses
//  3. DB-sourced snapshots are written back off the request path
//  4. Results come back in candidate order, so a page is the same
//     whether it was served warm or cold
//
// Category queries follow the same shape one level up: cached membership
// sets fold first, every uncached category resolves with a single store
// query, and the derived sets are written back asynchronously with
// per-category single-flight. A category confirmed to be empty is cached
// as such on a shorter expiry, so repeated queries against it stop
// reaching the store.
//
// # Write Path
//
// Writes commit to the primary store first; no cache state changes until
// the commit succeeds. After a successful commit the book's snapshot is
// overwritten synchronously, so the writer's own next read observes the
// new state, while category membership reconciles asynchronously from
// the old/new category difference. Reconciliation only patches sets the
// cache already holds; a category with no cached set is left missing and
// the next query builds its full membership from the store. Membership
// mutations are idempotent, so a dropped or repeated reconciliation
// converges once set expiry passes.
//
// # Lending
//
// Borrow and Return transition a book between available and lent out,
// backed by a loan ledger in the store. Attaching a viewer id with
// WithViewer makes read paths mark which returned books that viewer
// currently has out.
//
// # Setup
//
// Most callers should assemble the engine through pkg/di:
//
//	container, err := di.NewContainer(store, di.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	defer container.Close()
//
//	eng := container.Engine()
//	if err := eng.Init(ctx); err != nil {
//		return err
//	}
//	total, books, err := eng.ListPage(ctx, 0, 20)
//
// Init performs the one-time ordinal index rebuild and may be retried if
// the store was unreachable.
package catalog
