package di

import (
	"go.uber.org/zap"

	"github.com/goliatone/go-catalog-cache/bookstore"
	"github.com/goliatone/go-catalog-cache/cache"
	"github.com/goliatone/go-catalog-cache/catalog"
	"github.com/goliatone/go-catalog-cache/internal/ordinal"
	"github.com/goliatone/go-catalog-cache/internal/tasks"
)

// Config aggregates everything the container needs to assemble an engine.
type Config struct {
	Cache  cache.Config
	Engine catalog.Config
	// Workers and QueueDepth size the background backfill pool;
	// non-positive values use the pool defaults.
	Workers    int
	QueueDepth int
	// Logger defaults to a no-op logger when nil.
	Logger *zap.Logger
}

// DefaultConfig returns a Config populated with the catalog defaults.
func DefaultConfig() Config {
	return Config{
		Cache:  cache.DefaultConfig(),
		Engine: catalog.DefaultConfig(),
	}
}

// Container owns the engine and the shared infrastructure behind it.
// Construction wires the item cache, membership sets, ordinal index, and
// background pool around the provided primary store.
type Container struct {
	engine *catalog.Engine
	items  cache.ItemCache
	sets   cache.MemberSets
	pool   *tasks.Pool
	log    *zap.Logger
}

// NewContainer assembles a container around a primary store.
func NewContainer(store bookstore.Store, cfg Config) (*Container, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	items, err := cache.NewItemCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	sets, err := cache.NewMemberSets(cfg.Cache)
	if err != nil {
		return nil, err
	}

	pool := tasks.New(cfg.Workers, cfg.QueueDepth, log)
	engine, err := catalog.New(store, items, sets, ordinal.New(), pool, cfg.Engine, log)
	if err != nil {
		pool.Close()
		return nil, err
	}

	return &Container{
		engine: engine,
		items:  items,
		sets:   sets,
		pool:   pool,
		log:    log,
	}, nil
}

// NewContainerWithDefaults assembles a container with default settings.
func NewContainerWithDefaults(store bookstore.Store) (*Container, error) {
	return NewContainer(store, DefaultConfig())
}

// Engine returns the catalog engine.
func (c *Container) Engine() *catalog.Engine { return c.engine }

// ItemCache returns the shared item snapshot cache.
func (c *Container) ItemCache() cache.ItemCache { return c.items }

// MemberSets returns the shared category membership cache.
func (c *Container) MemberSets() cache.MemberSets { return c.sets }

// Close drains the background pool. Call it when the embedding process
// shuts down so pending cache writeback completes.
func (c *Container) Close() {
	c.pool.Close()
}
