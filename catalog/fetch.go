package catalog

import (
	"context"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/bookstore"
)

// ListPage returns one page of the catalog in ordinal order together with
// the authoritative total count. Ranges past the end return however many
// books exist; offset/limit validation is the only argument error. A
// viewer id attached with WithViewer fills the borrow flag per book.
func (e *Engine) ListPage(ctx context.Context, offset, limit int) (int, []bookstore.Book, error) {
	if offset < 0 || limit <= 0 {
		return 0, nil, errors.Errorf("catalog: invalid page offset=%d limit=%d", offset, limit)
	}

	ids := e.index.RangeByOffset(offset, limit)
	books, err := e.fetchByIDs(ctx, ids)
	if err != nil {
		return 0, nil, err
	}
	if viewerID, ok := ViewerFromContext(ctx); ok {
		if err := e.fillBorrowFlags(ctx, viewerID, books); err != nil {
			return 0, nil, err
		}
	}
	total, err := e.store.CountBooks(ctx)
	if err != nil {
		return 0, nil, errors.Wrap(err, "catalog: count books")
	}
	return total, books, nil
}

// GetByIDs batch-fetches books by id. Unknown ids are silently absent from
// the result. When a viewer id is attached to the context the borrow flag
// is filled per book.
func (e *Engine) GetByIDs(ctx context.Context, ids []int64) ([]bookstore.Book, error) {
	books, err := e.fetchByIDs(ctx, dedupeIDs(ids))
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

// BooksByDonor lists a donor's books straight from the primary store, most
// recently updated first, with display names filled.
func (e *Engine) BooksByDonor(ctx context.Context, donorID int64) ([]bookstore.Book, error) {
	books, err := e.store.BooksByDonor(ctx, donorID)
	if err != nil {
		return nil, errors.Wrap(err, "catalog: books by donor")
	}
	if err := e.fillCategoryNames(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// fetchByIDs is the cache-aside core: one batched cache read classifies
// hits and misses, one batched store read resolves exactly the misses, and
// DB-sourced snapshots are written back off the request path. The result
// preserves the order of ids so pagination stays a stable range view
// regardless of which entries happened to be cached.
func (e *Engine) fetchByIDs(ctx context.Context, ids []int64) ([]bookstore.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	readCtx, cancel := e.readCtx(ctx)
	hits, missing, err := e.items.GetMany(readCtx, ids)
	cancel()
	if err != nil {
		// Transient infra failure: fall through to the store for everything.
		e.log.Warn("item cache read failed", zap.Error(err))
		hits, missing = nil, ids
	}

	if len(missing) > 0 {
		fromDB, err := e.store.BooksByIDs(ctx, missing)
		if err != nil {
			return nil, errors.Wrap(err, "catalog: load books")
		}
		if err := e.fillCategoryNames(ctx, fromDB); err != nil {
			return nil, err
		}
		e.writeBack(fromDB)
		if hits == nil {
			hits = make(map[int64]bookstore.Book, len(fromDB))
		}
		for _, book := range fromDB {
			hits[book.ID] = book
		}
	}

	books := make([]bookstore.Book, 0, len(hits))
	for _, id := range ids {
		if book, ok := hits[id]; ok {
			books = append(books, book)
		}
	}
	return books, nil
}

// writeBack stores DB-sourced snapshots asynchronously; the read that
// produced them has already been satisfied, so failures only widen the
// staleness window.
func (e *Engine) writeBack(books []bookstore.Book) {
	if len(books) == 0 {
		return
	}
	snapshots := append([]bookstore.Book(nil), books...)
	e.pool.Submit(func(ctx context.Context) {
		if err := e.items.PutMany(ctx, snapshots); err != nil {
			e.log.Warn("item cache writeback failed",
				zap.Int("books", len(snapshots)), zap.Error(err))
		}
	})
}

// fillCategoryNames resolves every book's display names with a single
// category lookup across the whole batch.
func (e *Engine) fillCategoryNames(ctx context.Context, books []bookstore.Book) error {
	if len(books) == 0 {
		return nil
	}

	perBook := make([][]int64, len(books))
	var all []int64
	seen := make(map[int64]struct{})
	for i := range books {
		ids := bookstore.ParseCategoryIDs(books[i].CategoryIDs)
		perBook[i] = ids
		for _, id := range ids {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				all = append(all, id)
			}
		}
	}
	if len(all) == 0 {
		for i := range books {
			books[i].CategoryNames = ""
		}
		return nil
	}

	categories, err := e.store.CategoriesByIDs(ctx, all)
	if err != nil {
		return errors.Wrap(err, "catalog: resolve category names")
	}
	names := make(map[int64]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}

	for i := range books {
		parts := make([]string, 0, len(perBook[i]))
		for _, id := range perBook[i] {
			if name, ok := names[id]; ok {
				parts = append(parts, name)
			}
		}
		books[i].CategoryNames = strings.Join(parts, ",")
	}
	return nil
}

// fillBorrowFlags marks which of the books the viewer currently has out,
// using one batched ledger query.
func (e *Engine) fillBorrowFlags(ctx context.Context, viewerID int64, books []bookstore.Book) error {
	if len(books) == 0 {
		return nil
	}
	ids := make([]int64, len(books))
	for i := range books {
		ids[i] = books[i].ID
	}
	borrowed, err := e.store.BorrowedBookIDs(ctx, viewerID, ids)
	if err != nil {
		return errors.Wrap(err, "catalog: resolve borrow flags")
	}
	mine := make(map[int64]struct{}, len(borrowed))
	for _, id := range borrowed {
		mine[id] = struct{}{}
	}
	for i := range books {
		_, books[i].BorrowedByViewer = mine[books[i].ID]
	}
	return nil
}

func dedupeIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
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
