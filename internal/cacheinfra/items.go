package cacheinfra

import (
	"context"

	"github.com/viccon/sturdyc"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/goliatone/go-catalog-cache/bookstore"
)

// ItemCache stores msgpack-encoded book snapshots in a sturdyc client.
// Encoding on the way in means cached state can never be mutated through
// a returned struct, and a blob that fails to decode classifies as a miss
// instead of poisoning readers.
type ItemCache struct {
	client *sturdyc.Client[[]byte]
}

// NewItemCache validates the configuration and builds the snapshot cache.
func NewItemCache(cfg Config) (*ItemCache, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	client := sturdyc.New[[]byte](
		cfg.Capacity,
		cfg.NumShards,
		cfg.ItemTTL,
		cfg.EvictionPercentage,
		cfg.options()...,
	)
	return &ItemCache{client: client}, nil
}

// GetMany reads all requested ids in one pass. Absent, empty, and corrupt
// entries come back in the missing list; corrupt entries are dropped so
// the next writeback replaces them. A done context degrades every id to a
// miss so callers fall through to the primary store instead of blocking.
func (c *ItemCache) GetMany(ctx context.Context, ids []int64) (map[int64]bookstore.Book, []int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, append([]int64(nil), ids...), nil
	}

	hits := make(map[int64]bookstore.Book, len(ids))
	var missing []int64
	for _, id := range ids {
		blob, ok := c.client.Get(itemKey(id))
		if !ok || len(blob) == 0 {
			missing = append(missing, id)
			continue
		}
		var book bookstore.Book
		if err := msgpack.Unmarshal(blob, &book); err != nil {
			c.client.Delete(itemKey(id))
			missing = append(missing, id)
			continue
		}
		hits[id] = book
	}
	return hits, missing, nil
}

// Put stores one snapshot.
func (c *ItemCache) Put(ctx context.Context, book bookstore.Book) error {
	blob, err := msgpack.Marshal(book)
	if err != nil {
		return err
	}
	c.client.Set(itemKey(book.ID), blob)
	return nil
}

// PutMany stores snapshots in one batch.
func (c *ItemCache) PutMany(ctx context.Context, books []bookstore.Book) error {
	for _, book := range books {
		if err := c.Put(ctx, book); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a snapshot.
func (c *ItemCache) Delete(ctx context.Context, id int64) error {
	c.client.Delete(itemKey(id))
	return nil
}

// Size reports the current entry count, for tests and introspection.
func (c *ItemCache) Size() int {
	return c.client.Size()
}
