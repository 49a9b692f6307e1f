package di

import (
	"context"
	"testing"

	"github.com/goliatone/go-catalog-cache/bookstore"
	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/pkg/testsupport"
)

func TestNewContainerWithDefaults(t *testing.T) {
	store := testsupport.NewStoreMock()
	store.Seed(
		testsupport.Book(1, "a", 1),
		testsupport.Book(2, "b", 1),
	)
	store.SeedCategories(map[int64]string{1: "fiction"})

	c, err := NewContainerWithDefaults(store)
	if err != nil {
		t.Fatalf("NewContainerWithDefaults: %v", err)
	}
	defer c.Close()

	if c.Engine() == nil || c.ItemCache() == nil || c.MemberSets() == nil {
		t.Fatal("container returned nil components")
	}

	ctx := context.Background()
	eng := c.Engine()
	if err := eng.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	total, books, err := eng.ListPage(ctx, 0, 10)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 2 || len(books) != 2 {
		t.Fatalf("total=%d len=%d, want 2 and 2", total, len(books))
	}

	results, err := eng.QueryByCategories(ctx, []int64{1}, catalog.ModeAll)
	if err != nil {
		t.Fatalf("QueryByCategories: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("query got %d books, want 2", len(results))
	}
}

func TestNewContainerEndToEndWrite(t *testing.T) {
	store := testsupport.NewStoreMock()
	c, err := NewContainerWithDefaults(store)
	if err != nil {
		t.Fatalf("NewContainerWithDefaults: %v", err)
	}
	defer c.Close()

	ctx := context.Background()
	eng := c.Engine()
	if err := eng.Init(ctx); err != nil {
		t.Fatalf("Init: %v", err)
	}

	book := bookstore.Book{Name: "added"}
	id, err := eng.RecordCreate(ctx, &book)
	if err != nil {
		t.Fatalf("RecordCreate: %v", err)
	}

	got, err := eng.GetByIDs(ctx, []int64{id})
	if err != nil {
		t.Fatalf("GetByIDs: %v", err)
	}
	if len(got) != 1 || got[0].Name != "added" {
		t.Errorf("got %+v", got)
	}
}

func TestNewContainerRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Cache.Capacity = 0
	if _, err := NewContainer(testsupport.NewStoreMock(), cfg); err == nil {
		t.Error("invalid cache config accepted")
	}

	cfg = DefaultConfig()
	cfg.Engine.FetchTimeout = 0
	if _, err := NewContainer(testsupport.NewStoreMock(), cfg); err == nil {
		t.Error("invalid engine config accepted")
	}
}

func TestCloseIsIdempotent(t *testing.T) {
	c, err := NewContainerWithDefaults(testsupport.NewStoreMock())
	if err != nil {
		t.Fatalf("NewContainerWithDefaults: %v", err)
	}
	c.Close()
	c.Close()
}
