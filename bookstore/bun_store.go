package bookstore

import (
	"context"
	"database/sql"
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// BunStore implements Store over a bun-wrapped SQL database.
type BunStore struct {
	db *bun.DB
}

var _ Store = (*BunStore)(nil)

// OpenSQLite opens a sqlite-backed store (":memory:" works for tests and
// local runs).
func OpenSQLite(dsn string) (*BunStore, error) {
	sqldb, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "bookstore: open sqlite")
	}
	return NewBunStore(bun.NewDB(sqldb, sqlitedialect.New())), nil
}

// OpenPostgres opens a postgres-backed store via lib/pq.
func OpenPostgres(dsn string) (*BunStore, error) {
	sqldb, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "bookstore: open postgres")
	}
	return NewBunStore(bun.NewDB(sqldb, pgdialect.New())), nil
}

// NewBunStore wraps an already-configured bun database.
func NewBunStore(db *bun.DB) *BunStore {
	return &BunStore{db: db}
}

// DB exposes the underlying handle for migrations and tooling.
func (s *BunStore) DB() *bun.DB { return s.db }

// InitSchema creates the catalog tables when they do not exist yet.
func (s *BunStore) InitSchema(ctx context.Context) error {
	models := []any{
		(*Book)(nil),
		(*Category)(nil),
		(*BorrowRecord)(nil),
		(*BorrowHistory)(nil),
	}
	for _, model := range models {
		if _, err := s.db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return errors.Wrap(err, "bookstore: create table")
		}
	}
	return nil
}

func (s *BunStore) AllBookIDs(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := s.db.NewSelect().
		Model((*Book)(nil)).
		Column("id").
		Order("id ASC").
		Scan(ctx, &ids)
	if err != nil {
		return nil, errors.Wrap(err, "bookstore: query all book ids")
	}
	return ids, nil
}

func (s *BunStore) BookByID(ctx context.Context, id int64) (Book, error) {
	var book Book
	err := s.db.NewSelect().Model(&book).Where("bi.id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, ErrNotFound
	}
	if err != nil {
		return Book{}, errors.Wrapf(err, "bookstore: query book %d", id)
	}
	return book, nil
}

func (s *BunStore) BooksByIDs(ctx context.Context, ids []int64) ([]Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var books []Book
	err := s.db.NewSelect().
		Model(&books).
		Where("bi.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "bookstore: query books by ids")
	}
	return books, nil
}

func (s *BunStore) CountBooks(ctx context.Context) (int, error) {
	count, err := s.db.NewSelect().Model((*Book)(nil)).Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "bookstore: count books")
	}
	return count, nil
}

func (s *BunStore) BooksByDonor(ctx context.Context, donorID int64) ([]Book, error) {
	var books []Book
	err := s.db.NewSelect().
		Model(&books).
		Where("bi.donor_id = ?", donorID).
		Order("update_time DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "bookstore: query books by donor %d", donorID)
	}
	return books, nil
}

func (s *BunStore) InsertBook(ctx context.Context, book *Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now
	if _, err := s.db.NewInsert().Model(book).Exec(ctx); err != nil {
		return errors.Wrapf(err, "bookstore: insert book %d", book.ID)
	}
	return nil
}

func (s *BunStore) UpdateBook(ctx context.Context, book *Book) error {
	book.UpdatedAt = time.Now()
	res, err := s.db.NewUpdate().
		Model(book).
		Column("book_name", "author", "price", "publish", "donor_id",
			"status", "category_ids", "tags", "description", "cover_url",
			"update_time").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "bookstore: update book %d", book.ID)
	}
	return rowsOrNotFound(res)
}

func (s *BunStore) UpdateBookFields(ctx context.Context, id int64, patch BookPatch) error {
	if patch.IsZero() {
		return nil
	}
	q := s.db.NewUpdate().Model((*Book)(nil)).Where("id = ?", id)
	if patch.Name != nil {
		q = q.Set("book_name = ?", *patch.Name)
	}
	if patch.Author != nil {
		q = q.Set("author = ?", *patch.Author)
	}
	if patch.Price != nil {
		q = q.Set("price = ?", *patch.Price)
	}
	if patch.Publisher != nil {
		q = q.Set("publish = ?", *patch.Publisher)
	}
	if patch.Status != nil {
		q = q.Set("status = ?", *patch.Status)
	}
	if patch.CategoryIDs != nil {
		q = q.Set("category_ids = ?", *patch.CategoryIDs)
	}
	if patch.Tags != nil {
		q = q.Set("tags = ?", *patch.Tags)
	}
	if patch.Description != nil {
		q = q.Set("description = ?", *patch.Description)
	}
	if patch.CoverURL != nil {
		q = q.Set("cover_url = ?", *patch.CoverURL)
	}
	q = q.Set("update_time = ?", time.Now())
	res, err := q.Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "bookstore: patch book %d", id)
	}
	return rowsOrNotFound(res)
}

func (s *BunStore) UpdateBookStatus(ctx context.Context, id int64, status Status) error {
	res, err := s.db.NewUpdate().
		Model((*Book)(nil)).
		Set("status = ?", status).
		Set("update_time = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "bookstore: update status of book %d", id)
	}
	return rowsOrNotFound(res)
}

func (s *BunStore) DeleteBook(ctx context.Context, id int64) error {
	res, err := s.db.NewDelete().
		Model((*Book)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrapf(err, "bookstore: delete book %d", id)
	}
	return rowsOrNotFound(res)
}

func (s *BunStore) CategoriesByIDs(ctx context.Context, ids []int64) ([]Category, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var categories []Category
	err := s.db.NewSelect().
		Model(&categories).
		Where("c.id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "bookstore: query categories by ids")
	}
	return categories, nil
}

// MemberIDsByCategories expands the serialized category_ids column in one
// scan. The column holds a loose array form, so the expansion parses in Go
// instead of leaning on dialect-specific JSON table functions.
func (s *BunStore) MemberIDsByCategories(ctx context.Context, categoryIDs []int64) (map[int64][]int64, error) {
	members := make(map[int64][]int64, len(categoryIDs))
	for _, catID := range categoryIDs {
		members[catID] = []int64{}
	}
	if len(categoryIDs) == 0 {
		return members, nil
	}

	var books []Book
	err := s.db.NewSelect().
		Model(&books).
		Column("id", "category_ids").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "bookstore: scan category membership")
	}

	for _, book := range books {
		for _, catID := range ParseCategoryIDs(book.CategoryIDs) {
			if _, wanted := members[catID]; wanted {
				members[catID] = append(members[catID], book.ID)
			}
		}
	}
	return members, nil
}

func (s *BunStore) BorrowedBookIDs(ctx context.Context, userID int64, bookIDs []int64) ([]int64, error) {
	if len(bookIDs) == 0 {
		return nil, nil
	}
	var ids []int64
	err := s.db.NewSelect().
		Model((*BorrowRecord)(nil)).
		Column("book_id").
		Where("user_id = ?", userID).
		Where("book_id IN (?)", bun.In(bookIDs)).
		Scan(ctx, &ids)
	if err != nil {
		return nil, errors.Wrapf(err, "bookstore: query borrowed books of user %d", userID)
	}
	return ids, nil
}

func (s *BunStore) InsertBorrow(ctx context.Context, userID, bookID int64) error {
	now := time.Now()
	record := &BorrowRecord{BookID: bookID, UserID: userID, CreatedAt: now}
	history := &BorrowHistory{BookID: bookID, UserID: userID, CreatedAt: now}
	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(record).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(history).Exec(ctx)
		return err
	})
	if err != nil {
		return errors.Wrapf(err, "bookstore: record borrow of book %d", bookID)
	}
	return nil
}

func (s *BunStore) DeleteBorrow(ctx context.Context, userID, bookID int64) (bool, error) {
	res, err := s.db.NewDelete().
		Model((*BorrowRecord)(nil)).
		Where("user_id = ?", userID).
		Where("book_id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return false, errors.Wrapf(err, "bookstore: delete borrow of book %d", bookID)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "bookstore: rows affected")
	}
	return rows > 0, nil
}

func rowsOrNotFound(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "bookstore: rows affected")
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}
