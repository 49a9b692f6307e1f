package catalog

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/internal/ordinal"
	"github.com/goliatone/go-catalog-cache/internal/tasks"
	"github.com/goliatone/go-catalog-cache/pkg/testsupport"
)

// syncRunner executes submitted tasks inline so writeback and membership
// reconciliation are deterministic in tests.
type syncRunner struct{}

func (syncRunner) Submit(task tasks.Func) bool {
	task(context.Background())
	return true
}

// rejectRunner drops every task, modeling a saturated background queue.
type rejectRunner struct{}

func (rejectRunner) Submit(task tasks.Func) bool { return false }

// countingRunner runs tasks inline and counts submissions.
type countingRunner struct {
	submitted int
}

func (r *countingRunner) Submit(task tasks.Func) bool {
	r.submitted++
	task(context.Background())
	return true
}

func newTestEngine(t *testing.T, store *testsupport.StoreMock) *Engine {
	t.Helper()

	items, err := cache.NewItemCache(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("NewItemCache: %v", err)
	}
	sets, err := cache.NewMemberSets(cache.DefaultConfig())
	if err != nil {
		t.Fatalf("NewMemberSets: %v", err)
	}
	eng, err := New(store, items, sets, ordinal.New(), syncRunner{}, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := eng.Init(context.Background()); err != nil {
		t.Fatalf("Init: %v", err)
	}
	store.ClearCalls()
	return eng
}

func TestNewRequiresDependencies(t *testing.T) {
	store := testsupport.NewStoreMock()
	items, _ := cache.NewItemCache(cache.DefaultConfig())
	sets, _ := cache.NewMemberSets(cache.DefaultConfig())
	index := ordinal.New()

	if _, err := New(nil, items, sets, index, syncRunner{}, DefaultConfig(), nil); err == nil {
		t.Error("nil store accepted")
	}
	if _, err := New(store, nil, sets, index, syncRunner{}, DefaultConfig(), nil); err == nil {
		t.Error("nil item cache accepted")
	}
	if _, err := New(store, items, nil, index, syncRunner{}, DefaultConfig(), nil); err == nil {
		t.Error("nil member sets accepted")
	}
	if _, err := New(store, items, sets, nil, syncRunner{}, DefaultConfig(), nil); err == nil {
		t.Error("nil index accepted")
	}
	if _, err := New(store, items, sets, index, nil, DefaultConfig(), nil); err == nil {
		t.Error("nil pool accepted")
	}
	if _, err := New(store, items, sets, index, syncRunner{}, Config{}, nil); err == nil {
		t.Error("zero config accepted")
	}
}

func TestInitSeedsIndexOnce(t *testing.T) {
	store := testsupport.NewStoreMock()
	store.Seed(
		testsupport.Book(1, "a"),
		testsupport.Book(2, "b"),
	)
	eng := newTestEngine(t, store)

	if got := eng.Count(); got != 2 {
		t.Fatalf("Count() = %d, want 2", got)
	}

	// A second Init after success is a no-op.
	if err := eng.Init(context.Background()); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if got := store.CallCount("AllBookIDs"); got != 0 {
		t.Errorf("second Init hit the store %d times", got)
	}
}

func TestInitIsRetryable(t *testing.T) {
	store := testsupport.NewStoreMock()
	store.Seed(testsupport.Book(1, "a"))

	items, _ := cache.NewItemCache(cache.DefaultConfig())
	sets, _ := cache.NewMemberSets(cache.DefaultConfig())
	eng, err := New(store, items, sets, ordinal.New(), syncRunner{}, DefaultConfig(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	store.FailWith("AllBookIDs", errors.New("db down"))
	if err := eng.Init(context.Background()); err == nil {
		t.Fatal("Init with failing store succeeded")
	}

	store.ClearFail("AllBookIDs")
	if err := eng.Init(context.Background()); err != nil {
		t.Fatalf("retried Init: %v", err)
	}
	if got := eng.Count(); got != 1 {
		t.Errorf("Count() = %d, want 1", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v", err)
	}
	if err := (Config{}).Validate(); err == nil {
		t.Error("zero FetchTimeout should not validate")
	}
}

func TestWithViewerRoundTrip(t *testing.T) {
	ctx := WithViewer(context.Background(), 7)
	if id, ok := ViewerFromContext(ctx); !ok || id != 7 {
		t.Errorf("ViewerFromContext = %d, %v", id, ok)
	}

	if _, ok := ViewerFromContext(context.Background()); ok {
		t.Error("viewer reported on a bare context")
	}

	// A zero viewer id attaches nothing.
	ctx = WithViewer(context.Background(), 0)
	if _, ok := ViewerFromContext(ctx); ok {
		t.Error("zero viewer id should not attach")
	}
}
