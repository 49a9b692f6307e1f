package cache

import (
	"time"

	"github.com/goliatone/go-catalog-cache/internal/cacheinfra"
)

// Config exposes cache configuration options for consumers of the cache package.
type Config struct {
	// Capacity bounds the entry count of each cache namespace.
	Capacity int
	// NumShards sets the shard count for concurrent access.
	NumShards int
	// EvictionPercentage is the share of entries evicted at capacity, 1-100.
	EvictionPercentage int
	// ItemTTL bounds the staleness of book snapshots.
	ItemTTL time.Duration
	// SetTTL bounds the staleness of non-empty category membership sets.
	SetTTL time.Duration
	// EmptySetTTL is the shorter expiry of the confirmed-empty marker, so
	// empty categories get re-checked against the store periodically.
	EmptySetTTL time.Duration
	// EvictionInterval sets how often expired entries are collected.
	// Zero uses the backend default.
	EvictionInterval time.Duration
}

// DefaultConfig returns a Config populated with the catalog defaults.
func DefaultConfig() Config {
	return convertFromInternal(cacheinfra.DefaultConfig())
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	return c.toInternal().Validate()
}

// NewItemCache constructs the default item snapshot cache.
func NewItemCache(cfg Config) (ItemCache, error) {
	return cacheinfra.NewItemCache(cfg.toInternal())
}

// NewMemberSets constructs the default category membership cache.
func NewMemberSets(cfg Config) (MemberSets, error) {
	return cacheinfra.NewMemberSets(cfg.toInternal())
}

func (c Config) toInternal() cacheinfra.Config {
	return cacheinfra.Config{
		Capacity:           c.Capacity,
		NumShards:          c.NumShards,
		EvictionPercentage: c.EvictionPercentage,
		ItemTTL:            c.ItemTTL,
		SetTTL:             c.SetTTL,
		EmptySetTTL:        c.EmptySetTTL,
		EvictionInterval:   c.EvictionInterval,
	}
}

func convertFromInternal(cfg cacheinfra.Config) Config {
	return Config{
		Capacity:           cfg.Capacity,
		NumShards:          cfg.NumShards,
		EvictionPercentage: cfg.EvictionPercentage,
		ItemTTL:            cfg.ItemTTL,
		SetTTL:             cfg.SetTTL,
		EmptySetTTL:        cfg.EmptySetTTL,
		EvictionInterval:   cfg.EvictionInterval,
	}
}
