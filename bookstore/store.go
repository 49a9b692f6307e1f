package bookstore

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound reports that the addressed book does not exist in the
// primary store.
var ErrNotFound = errors.New("bookstore: book not found")

// Store is the primary-store boundary the catalog engine depends on. The
// relational store is the only writer of truth; everything the cache
// layers hold is a disposable projection of what these methods return.
type Store interface {
	// AllBookIDs returns every book id in canonical order. Used once at
	// startup to seed the ordinal index.
	AllBookIDs(ctx context.Context) ([]int64, error)

	// BookByID returns a single book or ErrNotFound.
	BookByID(ctx context.Context, id int64) (Book, error)

	// BooksByIDs returns the books for the given ids in one query. Unknown
	// ids are silently absent from the result.
	BooksByIDs(ctx context.Context, ids []int64) ([]Book, error)

	CountBooks(ctx context.Context) (int, error)

	// BooksByDonor lists a donor's books, most recently updated first.
	BooksByDonor(ctx context.Context, donorID int64) ([]Book, error)

	InsertBook(ctx context.Context, book *Book) error

	// UpdateBook replaces every mutable column. Returns ErrNotFound when
	// the id does not exist.
	UpdateBook(ctx context.Context, book *Book) error

	// UpdateBookFields applies only the fields present in the patch.
	UpdateBookFields(ctx context.Context, id int64, patch BookPatch) error

	UpdateBookStatus(ctx context.Context, id int64, status Status) error

	DeleteBook(ctx context.Context, id int64) error

	// CategoriesByIDs resolves category display names in one query.
	CategoriesByIDs(ctx context.Context, ids []int64) ([]Category, error)

	// MemberIDsByCategories maps each requested category id to its true
	// member book-id set in one query. Every requested id is a key in the
	// result; categories with no members map to an empty slice.
	MemberIDsByCategories(ctx context.Context, categoryIDs []int64) (map[int64][]int64, error)

	// BorrowedBookIDs returns the subset of bookIDs currently on loan to
	// the given user.
	BorrowedBookIDs(ctx context.Context, userID int64, bookIDs []int64) ([]int64, error)

	InsertBorrow(ctx context.Context, userID, bookID int64) error

	// DeleteBorrow removes an active loan, reporting whether one existed.
	DeleteBorrow(ctx context.Context, userID, bookID int64) (bool, error)
}
