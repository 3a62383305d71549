package storage

import (
	"fmt"

	"go.uber.org/zap"
)

// DB is the key-value store trie nodes are persisted in. Keys are node
// digests plus a few reserved lookup keys for named roots.
type DB interface {
	// Get must not return an error if there is no value associated with a
	// key; it returns nil, nil instead.
	Get(key []byte) (value []byte, err error)

	Put(key []byte, value []byte) error

	Delete(key []byte) error

	// WriteBatch applies all operations recorded in batch atomically if the
	// backend supports it, in order otherwise.
	WriteBatch(batch *Batch) error

	Close() error
}

// Operation is a single put or delete recorded in a Batch.
type Operation struct {
	Delete bool
	Key    []byte
	Value  []byte
}

// Batch collects writes to be applied with DB.WriteBatch.
type Batch struct {
	operations []Operation
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Put(key []byte, value []byte) {
	b.operations = append(b.operations, Operation{
		Key:   key,
		Value: value,
	})
}

func (b *Batch) Delete(key []byte) {
	b.operations = append(b.operations, Operation{
		Delete: true,
		Key:    key,
	})
}

// Len returns the number of recorded operations.
func (b *Batch) Len() int {
	return len(b.operations)
}

// Replay calls f for every recorded operation in order, stopping at the
// first error.
func (b *Batch) Replay(f func(op Operation) error) error {
	for _, op := range b.operations {
		if err := f(op); err != nil {
			return err
		}
	}
	return nil
}

// Reset drops all recorded operations.
func (b *Batch) Reset() {
	b.operations = b.operations[:0]
}

// NewStore creates storage with preselected in configuration database type,
// wrapped by the optional cache and metrics layers.
func NewStore(cfg DBConfiguration, log *zap.Logger) (DB, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		db  DB
		err error
	)
	switch cfg.Type {
	case InMemoryDB, "":
		db = NewMemoryDB()
		log.Info("opened in-memory store")
	case LevelDB:
		db, err = NewLevelDBStore(cfg.LevelDBOptions)
		if err == nil {
			log.Info("opened LevelDB store",
				zap.String("path", cfg.LevelDBOptions.DataDirectoryPath),
				zap.Bool("readonly", cfg.LevelDBOptions.ReadOnly))
		}
	case BoltDB:
		db, err = NewBoltDBStore(cfg.BoltDBOptions)
		if err == nil {
			log.Info("opened BoltDB store",
				zap.String("path", cfg.BoltDBOptions.FilePath),
				zap.Bool("readonly", cfg.BoltDBOptions.ReadOnly))
		}
	default:
		return nil, fmt.Errorf("unknown storage: %s", cfg.Type)
	}
	if err != nil {
		return nil, err
	}

	if cfg.CacheSize > 0 {
		db, err = NewCachedDB(db, cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		log.Debug("enabled node cache", zap.Int("size", cfg.CacheSize))
	}
	if cfg.Metrics {
		db = NewMetricsDB(db, nil)
		log.Debug("enabled store metrics")
	}
	return db, nil
}
