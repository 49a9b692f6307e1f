package catalog

import (
	"context"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/bookstore"
)

// RecordCreate persists a new book and brings the derived state along: the
// store commit comes first, then the ordinal index append, a synchronous
// snapshot write, and asynchronous category-set membership. A zero id is
// assigned before insert. Returns the id of the created book.
func (e *Engine) RecordCreate(ctx context.Context, book *bookstore.Book) (int64, error) {
	if book == nil {
		return 0, errors.New("catalog: nil book")
	}
	if book.ID == 0 {
		book.ID = bookstore.NewBookID()
	}

	if err := e.store.InsertBook(ctx, book); err != nil {
		return 0, errors.Wrap(err, "catalog: insert book")
	}

	e.index.Append(book.ID)
	e.refreshSnapshot(ctx, *book)
	e.applySetDiff(book.ID, nil, bookstore.ParseCategoryIDs(book.CategoryIDs))
	return book.ID, nil
}

// RecordFullUpdate replaces every mutable attribute of an existing book.
// The pre-update category set is read first, the store commit aborts the
// whole operation on failure with caches untouched, and readers observe
// the fresh snapshot as soon as this returns.
func (e *Engine) RecordFullUpdate(ctx context.Context, book *bookstore.Book) error {
	if book == nil || book.ID == 0 {
		return errors.New("catalog: update requires a book id")
	}

	before, err := e.store.BookByID(ctx, book.ID)
	if err != nil {
		return errors.Wrap(err, "catalog: read pre-update state")
	}
	if err := e.store.UpdateBook(ctx, book); err != nil {
		return errors.Wrap(err, "catalog: update book")
	}
	return e.refreshAfterWrite(ctx, book.ID, bookstore.ParseCategoryIDs(before.CategoryIDs))
}

// RecordPartialUpdate applies only the fields present in the patch. An
// empty patch is a successful no-op.
func (e *Engine) RecordPartialUpdate(ctx context.Context, id int64, patch bookstore.BookPatch) error {
	if id == 0 {
		return errors.New("catalog: update requires a book id")
	}
	if patch.IsZero() {
		return nil
	}

	before, err := e.store.BookByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "catalog: read pre-update state")
	}
	if err := e.store.UpdateBookFields(ctx, id, patch); err != nil {
		return errors.Wrap(err, "catalog: patch book")
	}
	return e.refreshAfterWrite(ctx, id, bookstore.ParseCategoryIDs(before.CategoryIDs))
}

// Delete removes a book from the store and every derived structure.
func (e *Engine) Delete(ctx context.Context, id int64) error {
	if id == 0 {
		return errors.New("catalog: delete requires a book id")
	}
	before, err := e.store.BookByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "catalog: read pre-delete state")
	}
	if err := e.store.DeleteBook(ctx, id); err != nil {
		return errors.Wrap(err, "catalog: delete book")
	}

	e.index.Remove(id)
	if err := e.items.Delete(ctx, id); err != nil {
		e.log.Warn("item cache delete failed", zap.Int64("book", id), zap.Error(err))
	}
	e.applySetDiff(id, bookstore.ParseCategoryIDs(before.CategoryIDs), nil)
	return nil
}

// refreshAfterWrite re-reads the post-update row, overwrites the snapshot
// synchronously so readers see the new value immediately, and reconciles
// category membership asynchronously from the old/new difference.
func (e *Engine) refreshAfterWrite(ctx context.Context, id int64, oldCategories []int64) error {
	fresh, err := e.store.BookByID(ctx, id)
	if err != nil {
		return errors.Wrap(err, "catalog: re-read after update")
	}
	e.refreshSnapshot(ctx, fresh)
	e.applySetDiff(id, oldCategories, bookstore.ParseCategoryIDs(fresh.CategoryIDs))
	return nil
}

// refreshSnapshot fills derived display fields and overwrites the item
// cache entry. The store commit has already happened, so cache trouble
// here is logged and swallowed; expiry will repair it.
func (e *Engine) refreshSnapshot(ctx context.Context, book bookstore.Book) {
	books := []bookstore.Book{book}
	if err := e.fillCategoryNames(ctx, books); err != nil {
		e.log.Warn("category name fill failed", zap.Int64("book", book.ID), zap.Error(err))
	}
	if err := e.items.Put(ctx, books[0]); err != nil {
		e.log.Warn("item cache refresh failed", zap.Int64("book", book.ID), zap.Error(err))
	}
}

// applySetDiff reconciles category membership after a write. Removals and
// additions run as one background task; both operations are idempotent and
// order-independent, so retries or interleavings cannot corrupt the sets.
func (e *Engine) applySetDiff(bookID int64, oldCategories, newCategories []int64) {
	toRemove := bookstore.DiffIDs(oldCategories, newCategories)
	toAdd := bookstore.DiffIDs(newCategories, oldCategories)
	if len(toRemove) == 0 && len(toAdd) == 0 {
		return
	}
	accepted := e.pool.Submit(func(ctx context.Context) {
		for _, catID := range toRemove {
			if err := e.sets.Remove(ctx, catID, bookID); err != nil {
				e.log.Warn("membership remove failed",
					zap.Int64("category", catID), zap.Int64("book", bookID), zap.Error(err))
			}
		}
		for _, catID := range toAdd {
			if err := e.sets.Add(ctx, catID, bookID); err != nil {
				e.log.Warn("membership add failed",
					zap.Int64("category", catID), zap.Int64("book", bookID), zap.Error(err))
			}
		}
	})
	if !accepted {
		e.log.Warn("membership reconcile dropped", zap.Int64("book", bookID))
	}
}
