package cacheinfra

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/viccon/sturdyc"
)

// Config holds the settings shared by the sturdyc-backed cache namespaces.
type Config struct {
	// Capacity bounds the entry count of each namespace. Must be > 0.
	Capacity int

	// NumShards sets the shard count for concurrent access. Higher values
	// improve concurrency at some memory overhead. Must be > 0.
	NumShards int

	// EvictionPercentage is the share of entries evicted when a namespace
	// reaches capacity. Must be between 1 and 100.
	EvictionPercentage int

	// ItemTTL is the expiry of book snapshots. Expiry, not explicit
	// invalidation, is the staleness bound for fields the write path does
	// not touch.
	ItemTTL time.Duration

	// SetTTL is the expiry of non-empty category membership sets.
	SetTTL time.Duration

	// EmptySetTTL is the shorter expiry of confirmed-empty markers.
	EmptySetTTL time.Duration

	// EvictionInterval sets how often expired entries are collected.
	// Zero uses the sturdyc default.
	EvictionInterval time.Duration
}

// DefaultConfig returns the catalog defaults: snapshot expiry of ten
// minutes, membership sets of an hour, empty markers of five minutes.
func DefaultConfig() Config {
	return Config{
		Capacity:           10000,
		NumShards:          256,
		EvictionPercentage: 10,
		ItemTTL:            10 * time.Minute,
		SetTTL:             time.Hour,
		EmptySetTTL:        5 * time.Minute,
	}
}

// Validate checks if the configuration values are valid.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Capacity, validation.Required, validation.Min(1)),
		validation.Field(&c.NumShards, validation.Required, validation.Min(1)),
		validation.Field(&c.EvictionPercentage, validation.Required, validation.Min(1), validation.Max(100)),
		validation.Field(&c.ItemTTL, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.SetTTL, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.EmptySetTTL, validation.Required, validation.Min(time.Duration(1))),
		validation.Field(&c.EvictionInterval, validation.Min(time.Duration(0))),
	)
}

func (c Config) options() []sturdyc.Option {
	var options []sturdyc.Option
	if c.EvictionInterval > 0 {
		options = append(options, sturdyc.WithEvictionInterval(c.EvictionInterval))
	}
	return options
}
