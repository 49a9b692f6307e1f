package catalog

import (
	"context"

	"github.com/pkg/errors"

	"github.com/goliatone/go-catalog-cache/bookstore"
)

// ErrNotAvailable reports a borrow attempt against a book that is lent out
// or removed.
var ErrNotAvailable = errors.New("catalog: book not available")

// ErrNotBorrowed reports a return attempt without a matching active loan.
var ErrNotBorrowed = errors.New("catalog: no active loan for this book")

// Borrow lends a book to the viewer: status transition and ledger row in
// the store first, then a synchronous snapshot refresh so the new status
// is immediately visible to readers.
func (e *Engine) Borrow(ctx context.Context, viewerID, bookID int64) error {
	book, err := e.store.BookByID(ctx, bookID)
	if err != nil {
		return errors.Wrap(err, "catalog: borrow")
	}
	if book.Status != bookstore.StatusAvailable {
		return ErrNotAvailable
	}

	if err := e.store.UpdateBookStatus(ctx, bookID, bookstore.StatusLentOut); err != nil {
		return errors.Wrap(err, "catalog: mark book lent out")
	}
	if err := e.store.InsertBorrow(ctx, viewerID, bookID); err != nil {
		return errors.Wrap(err, "catalog: record loan")
	}

	book.Status = bookstore.StatusLentOut
	e.refreshSnapshot(ctx, book)
	return nil
}

// Return ends the viewer's loan and restores availability.
func (e *Engine) Return(ctx context.Context, viewerID, bookID int64) error {
	removed, err := e.store.DeleteBorrow(ctx, viewerID, bookID)
	if err != nil {
		return errors.Wrap(err, "catalog: end loan")
	}
	if !removed {
		return ErrNotBorrowed
	}
	if err := e.store.UpdateBookStatus(ctx, bookID, bookstore.StatusAvailable); err != nil {
		return errors.Wrap(err, "catalog: mark book available")
	}

	book, err := e.store.BookByID(ctx, bookID)
	if err != nil {
		return errors.Wrap(err, "catalog: re-read after return")
	}
	e.refreshSnapshot(ctx, book)
	return nil
}
