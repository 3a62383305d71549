package storage

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedDB keeps recently read values of the wrapped DB in an LRU cache.
// Node encodings are content-addressed and never change once written, so
// most reads during trie traversals are served from memory. Writes go
// through to the wrapped DB and refresh the cache.
type CachedDB struct {
	DB
	cache *lru.Cache[string, []byte]
}

// NewCachedDB wraps db with an LRU cache holding up to size values.
func NewCachedDB(db DB, size int) (*CachedDB, error) {
	cache, err := lru.New[string, []byte](size)
	if err != nil {
		return nil, err
	}
	return &CachedDB{DB: db, cache: cache}, nil
}

// Get implements the DB interface. Misses are not cached.
func (c *CachedDB) Get(key []byte) ([]byte, error) {
	if val, ok := c.cache.Get(string(key)); ok {
		return val, nil
	}
	val, err := c.DB.Get(key)
	if err != nil || val == nil {
		return val, err
	}
	c.cache.Add(string(key), val)
	return val, nil
}

// Put implements the DB interface.
func (c *CachedDB) Put(key []byte, value []byte) error {
	if err := c.DB.Put(key, value); err != nil {
		c.cache.Remove(string(key))
		return err
	}
	c.cache.Add(string(key), value)
	return nil
}

// Delete implements the DB interface.
func (c *CachedDB) Delete(key []byte) error {
	c.cache.Remove(string(key))
	return c.DB.Delete(key)
}

// WriteBatch implements the DB interface. Keys touched by the batch are
// evicted so that the next read observes the stored state.
func (c *CachedDB) WriteBatch(batch *Batch) error {
	err := c.DB.WriteBatch(batch)
	_ = batch.Replay(func(op Operation) error {
		c.cache.Remove(string(op.Key))
		return nil
	})
	return err
}

// Len returns the number of cached values.
func (c *CachedDB) Len() int {
	return c.cache.Len()
}
