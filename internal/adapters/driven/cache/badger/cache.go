// Package badger implements the provider response cache on BadgerDB.
// Entries expire through Badger's native per-key TTL.
package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/custodia-labs/stockthemes/internal/core/ports/driven"
)

// Ensure Cache implements the interface.
var _ driven.ResponseCache = (*Cache)(nil)

// deleteBatch bounds keys deleted per transaction.
const deleteBatch = 1000

// Cache is a persistent response cache.
type Cache struct {
	db *badger.DB
}

// Open opens or creates a cache in dir. An empty dir keeps the cache in memory.
func Open(dir string) (*Cache, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badger: open %s: %w", dir, err)
	}
	return &Cache{db: db}, nil
}

// Get returns a copy of the cached value. Expired keys are misses.
func (c *Cache) Get(_ context.Context, key string) ([]byte, bool, error) {
	var val []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("badger: get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value. A ttl <= 0 stores without expiry.
func (c *Cache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	err := c.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			e = e.WithTTL(ttl)
		}
		return txn.SetEntry(e)
	})
	if err != nil {
		return fmt.Errorf("badger: set %s: %w", key, err)
	}
	return nil
}

// Clear deletes every key starting with prefix and returns how many were
// removed. An empty prefix clears the whole cache.
func (c *Cache) Clear(ctx context.Context, prefix string) (int, error) {
	var keys [][]byte
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		p := []byte(prefix)
		for it.Seek(p); it.ValidForPrefix(p); it.Next() {
			keys = append(keys, it.Item().KeyCopy(nil))
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("badger: scan %q: %w", prefix, err)
	}

	deleted := 0
	for start := 0; start < len(keys); start += deleteBatch {
		if err := ctx.Err(); err != nil {
			return deleted, err
		}
		batch := keys[start:min(start+deleteBatch, len(keys))]
		err := c.db.Update(func(txn *badger.Txn) error {
			for _, k := range batch {
				if err := txn.Delete(k); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return deleted, fmt.Errorf("badger: clear %q: %w", prefix, err)
		}
		deleted += len(batch)
	}
	return deleted, nil
}

// Close flushes and closes the database.
func (c *Cache) Close() error {
	return c.db.Close()
}
