package bookstore

import (
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Status is the lifecycle state of a catalog entry. The cache layers treat
// it as an opaque attribute; only the borrow path interprets it.
type Status int

const (
	StatusAvailable Status = 0
	StatusLentOut   Status = 1
	StatusRemoved   Status = 2
)

// Book is a catalog entry as persisted by the primary store. CategoryIDs
// holds the store-owned loosely-serialized array form; use ParseCategoryIDs
// to get the typed set.
type Book struct {
	bun.BaseModel `bun:"table:book_info,alias:bi"`

	ID          int64     `bun:"id,pk" json:"id" msgpack:"id"`
	Name        string    `bun:"book_name" json:"bookName" msgpack:"bookName"`
	Author      string    `bun:"author" json:"author" msgpack:"author"`
	Price       float64   `bun:"price" json:"price" msgpack:"price"`
	Publisher   string    `bun:"publish" json:"publish" msgpack:"publish"`
	DonorID     int64     `bun:"donor_id" json:"donorId" msgpack:"donorId"`
	Status      Status    `bun:"status" json:"status" msgpack:"status"`
	CategoryIDs string    `bun:"category_ids" json:"categoryIds" msgpack:"categoryIds"`
	Tags        string    `bun:"tags" json:"tags" msgpack:"tags"`
	Description string    `bun:"description" json:"description" msgpack:"description"`
	CoverURL    string    `bun:"cover_url" json:"coverUrl" msgpack:"coverUrl"`
	CreatedAt   time.Time `bun:"create_time,nullzero" json:"createTime" msgpack:"createTime"`
	UpdatedAt   time.Time `bun:"update_time,nullzero" json:"updateTime" msgpack:"updateTime"`

	// Derived fields, never persisted.
	CategoryNames    string `bun:"-" json:"categoryNames" msgpack:"categoryNames"`
	BorrowedByViewer bool   `bun:"-" json:"isBorrowedByMe" msgpack:"-"`
}

// Category is a display name owned entirely by the primary store. The
// engine only ever reads categories.
type Category struct {
	bun.BaseModel `bun:"table:category,alias:c"`

	ID   int64  `bun:"id,pk" json:"id"`
	Name string `bun:"category_name" json:"categoryName"`
}

// BorrowRecord is an active loan. One row per (book, user) pair.
type BorrowRecord struct {
	bun.BaseModel `bun:"table:borrow_info,alias:bo"`

	BookID    int64     `bun:"book_id"`
	UserID    int64     `bun:"user_id"`
	CreatedAt time.Time `bun:"create_time,nullzero"`
}

// BorrowHistory is the append-only loan ledger.
type BorrowHistory struct {
	bun.BaseModel `bun:"table:borrow_history,alias:bh"`

	BookID    int64     `bun:"book_id"`
	UserID    int64     `bun:"user_id"`
	CreatedAt time.Time `bun:"create_time,nullzero"`
}

// BookPatch carries a partial update; nil fields are left untouched.
type BookPatch struct {
	Name        *string
	Author      *string
	Price       *float64
	Publisher   *string
	Status      *Status
	CategoryIDs *string
	Tags        *string
	Description *string
	CoverURL    *string
}

// IsZero reports whether the patch carries no fields at all.
func (p BookPatch) IsZero() bool {
	return p.Name == nil && p.Author == nil && p.Price == nil &&
		p.Publisher == nil && p.Status == nil && p.CategoryIDs == nil &&
		p.Tags == nil && p.Description == nil && p.CoverURL == nil
}

// NewBookID derives a fresh positive id by hashing a random UUID down to
// 63 bits. Ids are immutable once assigned, so collisions would surface as
// insert conflicts at the primary store.
func NewBookID() int64 {
	for {
		id := int64(xxhash.Sum64String(uuid.NewString()) & math.MaxInt64)
		if id != 0 {
			return id
		}
	}
}
