package catalog

import (
	"context"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/bookstore"
	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/internal/ordinal"
	"github.com/goliatone/go-catalog-cache/internal/tasks"
)

// Mode selects how a multi-category query combines membership sets.
type Mode int

const (
	// ModeAll intersects the requested categories (logical AND).
	ModeAll Mode = 1
	// ModeAny unions the requested categories (logical OR).
	ModeAny Mode = 2
)

// Submitter dispatches fire-and-forget background work. *tasks.Pool is the
// production implementation.
type Submitter interface {
	Submit(task tasks.Func) bool
}

// Config holds the engine's own knobs; cache sizing lives in cache.Config.
type Config struct {
	// FetchTimeout bounds foreground batched cache reads. On expiry the
	// engine degrades to treating every id as a miss and falls through to
	// the primary store.
	FetchTimeout time.Duration
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{FetchTimeout: 2 * time.Second}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.FetchTimeout, validation.Required, validation.Min(time.Duration(1))),
	)
}

// Engine is the catalog's cache-aside read/write orchestrator. It resolves
// candidate ids through the ordinal index or the category membership sets,
// batch-fetches snapshots through the item cache with primary-store
// fallback, and keeps both caches consistent with the store after writes.
type Engine struct {
	store bookstore.Store
	items cache.ItemCache
	sets  cache.MemberSets
	index *ordinal.Index
	pool  Submitter
	log   *zap.Logger
	cfg   Config

	// backfilling guards category-set writeback with per-category
	// single-flight, so concurrent misses on one category do not stampede
	// the cache with duplicate writes.
	backfilling *xsync.MapOf[int64, struct{}]

	initMu sync.Mutex
	seeded bool
}

// New wires an engine. A nil logger is replaced with a no-op one.
func New(store bookstore.Store, items cache.ItemCache, sets cache.MemberSets, index *ordinal.Index, pool Submitter, cfg Config, log *zap.Logger) (*Engine, error) {
	if store == nil || items == nil || sets == nil || index == nil || pool == nil {
		return nil, errors.New("catalog: store, caches, index and pool are all required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "catalog: invalid config")
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		store:       store,
		items:       items,
		sets:        sets,
		index:       index,
		pool:        pool,
		log:         log,
		cfg:         cfg,
		backfilling: xsync.NewMapOf[int64, struct{}](),
	}, nil
}

// Init rebuilds the ordinal index from the primary store. The full scan
// runs once; repeated calls after a successful seed are no-ops, and a
// failed seed may be retried.
func (e *Engine) Init(ctx context.Context) error {
	e.initMu.Lock()
	defer e.initMu.Unlock()
	if e.seeded {
		return nil
	}
	ids, err := e.store.AllBookIDs(ctx)
	if err != nil {
		return errors.Wrap(err, "catalog: seed ordinal index")
	}
	e.index.Rebuild(ids)
	e.seeded = true
	e.log.Info("ordinal index rebuilt", zap.Int("books", len(ids)))
	return nil
}

// Count reports the number of books known to the ordinal index. The read
// is served from memory and never blocks, so it takes no context.
func (e *Engine) Count() int {
	return e.index.Size()
}

// readCtx derives the bounded context for foreground batched cache reads.
func (e *Engine) readCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, e.cfg.FetchTimeout)
}
