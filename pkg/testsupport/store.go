// Package testsupport provides shared test doubles and fixture builders
// for the catalog packages.
package testsupport

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/goliatone/go-catalog-cache/bookstore"
)

// StoreMock is an in-memory bookstore.Store that records every method
// call, so tests can assert both results and the number of primary-store
// round trips a code path performed.
type StoreMock struct {
	mu         sync.Mutex
	calls      []string
	fail       map[string]error
	books      map[int64]*bookstore.Book
	order      []int64
	categories map[int64]string
	borrows    map[[2]int64]bool
}

// NewStoreMock returns an empty store.
func NewStoreMock() *StoreMock {
	return &StoreMock{
		fail:       make(map[string]error),
		books:      make(map[int64]*bookstore.Book),
		categories: make(map[int64]string),
		borrows:    make(map[[2]int64]bool),
	}
}

// Seed loads books directly into the store without recording calls.
// Insertion order becomes the canonical order for AllBookIDs.
func (m *StoreMock) Seed(books ...bookstore.Book) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range books {
		book := books[i]
		if _, ok := m.books[book.ID]; !ok {
			m.order = append(m.order, book.ID)
		}
		m.books[book.ID] = &book
	}
}

// SeedCategories loads category display names without recording calls.
func (m *StoreMock) SeedCategories(names map[int64]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, name := range names {
		m.categories[id] = name
	}
}

// FailWith forces the named method to return err on every call until
// ClearFail. Pass the exact method name, e.g. "UpdateBook".
func (m *StoreMock) FailWith(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fail[method] = err
}

// ClearFail removes a forced failure.
func (m *StoreMock) ClearFail(method string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.fail, method)
}

// Calls returns the recorded method names in call order.
func (m *StoreMock) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// CallCount reports how many times the named method was called.
func (m *StoreMock) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == method {
			n++
		}
	}
	return n
}

// ClearCalls resets the recorded call log, keeping all data.
func (m *StoreMock) ClearCalls() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = nil
}

// record logs the call and returns any forced failure. Callers must hold
// no locks; record takes the mutex itself.
func (m *StoreMock) record(method string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, method)
	return m.fail[method]
}

func (m *StoreMock) AllBookIDs(ctx context.Context) ([]int64, error) {
	if err := m.record("AllBookIDs"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]int64(nil), m.order...), nil
}

func (m *StoreMock) BookByID(ctx context.Context, id int64) (bookstore.Book, error) {
	if err := m.record("BookByID"); err != nil {
		return bookstore.Book{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.books[id]
	if !ok {
		return bookstore.Book{}, bookstore.ErrNotFound
	}
	return *book, nil
}

func (m *StoreMock) BooksByIDs(ctx context.Context, ids []int64) ([]bookstore.Book, error) {
	if err := m.record("BooksByIDs"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bookstore.Book, 0, len(ids))
	for _, id := range ids {
		if book, ok := m.books[id]; ok {
			out = append(out, *book)
		}
	}
	return out, nil
}

func (m *StoreMock) CountBooks(ctx context.Context) (int, error) {
	if err := m.record("CountBooks"); err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.order), nil
}

func (m *StoreMock) BooksByDonor(ctx context.Context, donorID int64) ([]bookstore.Book, error) {
	if err := m.record("BooksByDonor"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []bookstore.Book
	for _, id := range m.order {
		if book := m.books[id]; book.DonorID == donorID {
			out = append(out, *book)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *StoreMock) InsertBook(ctx context.Context, book *bookstore.Book) error {
	if err := m.record("InsertBook"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = time.Now()
	}
	book.UpdatedAt = book.CreatedAt
	stored := *book
	if _, ok := m.books[stored.ID]; !ok {
		m.order = append(m.order, stored.ID)
	}
	m.books[stored.ID] = &stored
	return nil
}

func (m *StoreMock) UpdateBook(ctx context.Context, book *bookstore.Book) error {
	if err := m.record("UpdateBook"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.books[book.ID]
	if !ok {
		return bookstore.ErrNotFound
	}
	updated := *book
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	m.books[book.ID] = &updated
	return nil
}

func (m *StoreMock) UpdateBookFields(ctx context.Context, id int64, patch bookstore.BookPatch) error {
	if err := m.record("UpdateBookFields"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.books[id]
	if !ok {
		return bookstore.ErrNotFound
	}
	if patch.Name != nil {
		book.Name = *patch.Name
	}
	if patch.Author != nil {
		book.Author = *patch.Author
	}
	if patch.Price != nil {
		book.Price = *patch.Price
	}
	if patch.Publisher != nil {
		book.Publisher = *patch.Publisher
	}
	if patch.Status != nil {
		book.Status = *patch.Status
	}
	if patch.CategoryIDs != nil {
		book.CategoryIDs = *patch.CategoryIDs
	}
	if patch.Tags != nil {
		book.Tags = *patch.Tags
	}
	if patch.Description != nil {
		book.Description = *patch.Description
	}
	if patch.CoverURL != nil {
		book.CoverURL = *patch.CoverURL
	}
	book.UpdatedAt = time.Now()
	return nil
}

func (m *StoreMock) UpdateBookStatus(ctx context.Context, id int64, status bookstore.Status) error {
	if err := m.record("UpdateBookStatus"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	book, ok := m.books[id]
	if !ok {
		return bookstore.ErrNotFound
	}
	book.Status = status
	book.UpdatedAt = time.Now()
	return nil
}

func (m *StoreMock) DeleteBook(ctx context.Context, id int64) error {
	if err := m.record("DeleteBook"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.books[id]; !ok {
		return bookstore.ErrNotFound
	}
	delete(m.books, id)
	for i, existing := range m.order {
		if existing == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *StoreMock) CategoriesByIDs(ctx context.Context, ids []int64) ([]bookstore.Category, error) {
	if err := m.record("CategoriesByIDs"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]bookstore.Category, 0, len(ids))
	for _, id := range ids {
		if name, ok := m.categories[id]; ok {
			out = append(out, bookstore.Category{ID: id, Name: name})
		}
	}
	return out, nil
}

func (m *StoreMock) MemberIDsByCategories(ctx context.Context, categoryIDs []int64) (map[int64][]int64, error) {
	if err := m.record("MemberIDsByCategories"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	members := make(map[int64][]int64, len(categoryIDs))
	for _, catID := range categoryIDs {
		members[catID] = []int64{}
	}
	for _, id := range m.order {
		for _, catID := range bookstore.ParseCategoryIDs(m.books[id].CategoryIDs) {
			if existing, ok := members[catID]; ok {
				members[catID] = append(existing, id)
			}
		}
	}
	return members, nil
}

func (m *StoreMock) BorrowedBookIDs(ctx context.Context, userID int64, bookIDs []int64) ([]int64, error) {
	if err := m.record("BorrowedBookIDs"); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []int64
	for _, bookID := range bookIDs {
		if m.borrows[[2]int64{userID, bookID}] {
			out = append(out, bookID)
		}
	}
	return out, nil
}

func (m *StoreMock) InsertBorrow(ctx context.Context, userID, bookID int64) error {
	if err := m.record("InsertBorrow"); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.borrows[[2]int64{userID, bookID}] = true
	return nil
}

func (m *StoreMock) DeleteBorrow(ctx context.Context, userID, bookID int64) (bool, error) {
	if err := m.record("DeleteBorrow"); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := [2]int64{userID, bookID}
	if !m.borrows[key] {
		return false, nil
	}
	delete(m.borrows, key)
	return true, nil
}
