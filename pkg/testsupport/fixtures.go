package testsupport

import (
	"time"

	"github.com/goliatone/go-catalog-cache/bookstore"
)

// Book builds a catalog entry with sensible defaults for tests. The
// created time is staggered by id so donor listings have a stable order.
func Book(id int64, name string, categories ...int64) bookstore.Book {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(id) * time.Minute)
	return bookstore.Book{
		ID:          id,
		Name:        name,
		Author:      "author-" + name,
		Price:       9.99,
		Publisher:   "press",
		Status:      bookstore.StatusAvailable,
		CategoryIDs: bookstore.FormatCategoryIDs(categories),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// DonorBook builds a catalog entry owned by the given donor.
func DonorBook(id, donorID int64, name string, categories ...int64) bookstore.Book {
	book := Book(id, name, categories...)
	book.DonorID = donorID
	return book
}
