package storage

import (
	"sync"
)

// MemoryDB is a simple implementation of the `DB` interface that is used for
// tests and proof verification. It does not write values in persistent storage.
type MemoryDB struct {
	mut           sync.RWMutex
	keyValueStore map[string][]byte
}

// NewMemoryDB returns a pointer to an empty MemoryDB.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		keyValueStore: make(map[string][]byte),
	}
}

func (db *MemoryDB) Get(key []byte) ([]byte, error) {
	db.mut.RLock()
	defer db.mut.RUnlock()
	return db.keyValueStore[string(key)], nil
}

func (db *MemoryDB) Put(key []byte, value []byte) error {
	db.mut.Lock()
	db.keyValueStore[string(key)] = value
	db.mut.Unlock()
	return nil
}

func (db *MemoryDB) Delete(key []byte) error {
	db.mut.Lock()
	delete(db.keyValueStore, string(key))
	db.mut.Unlock()
	return nil
}

// WriteBatch implements the DB interface. Never returns an error.
func (db *MemoryDB) WriteBatch(batch *Batch) error {
	db.mut.Lock()
	defer db.mut.Unlock()
	return batch.Replay(func(op Operation) error {
		if op.Delete {
			delete(db.keyValueStore, string(op.Key))
		} else {
			db.keyValueStore[string(op.Key)] = op.Value
		}
		return nil
	})
}

// Len returns the number of stored keys.
func (db *MemoryDB) Len() int {
	db.mut.RLock()
	defer db.mut.RUnlock()
	return len(db.keyValueStore)
}

// Close implements the DB interface, it's a no-op.
func (db *MemoryDB) Close() error {
	return nil
}
