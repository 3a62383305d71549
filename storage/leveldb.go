package storage

import (
	"errors"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/filter"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDBStore is the on-disk store backed by LevelDB.
type LevelDBStore struct {
	keyValueDB *leveldb.DB
}

// NewLevelDBStore returns a new LevelDBStore object that will
// initialize the database found at the given path.
func NewLevelDBStore(cfg LevelDBOptions) (*LevelDBStore, error) {
	var opts = new(opt.Options)
	if cfg.ReadOnly {
		opts.ReadOnly = true
		opts.ErrorIfMissing = true
	}
	opts.Filter = filter.NewBloomFilter(10)

	db, err := leveldb.OpenFile(cfg.DataDirectoryPath, opts)
	if err != nil {
		return nil, err
	}

	return NewLevelDBStoreFromDB(db), nil
}

// NewLevelDBStoreFromDB wraps an already opened LevelDB.
func NewLevelDBStoreFromDB(levelDB *leveldb.DB) *LevelDBStore {
	return &LevelDBStore{keyValueDB: levelDB}
}

func (s *LevelDBStore) Get(key []byte) ([]byte, error) {
	value, err := s.keyValueDB.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, nil
	}
	return value, err
}

func (s *LevelDBStore) Put(key []byte, value []byte) error {
	return s.keyValueDB.Put(key, value, nil)
}

func (s *LevelDBStore) Delete(key []byte) error {
	return s.keyValueDB.Delete(key, nil)
}

// WriteBatch implements the DB interface, the batch is applied atomically.
func (s *LevelDBStore) WriteBatch(batch *Batch) error {
	lb := new(leveldb.Batch)
	_ = batch.Replay(func(op Operation) error {
		if op.Delete {
			lb.Delete(op.Key)
		} else {
			lb.Put(op.Key, op.Value)
		}
		return nil
	})
	return s.keyValueDB.Write(lb, nil)
}

// Close implements the DB interface.
func (s *LevelDBStore) Close() error {
	return s.keyValueDB.Close()
}
