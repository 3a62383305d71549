package mpt

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/veritas-L2/mpt/storage"
)

// rootKeyPrefix prefixes the store keys of named roots. Node keys are
// 32-byte digests, so the two never collide.
const rootKeyPrefix = "root:"

func rootKey(name string) []byte {
	return []byte(rootKeyPrefix + name)
}

// SaveRoot commits the trie and records its root digest under name, in the
// same batch as the committed nodes.
func (t *Trie) SaveRoot(name string) (common.Hash, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	batch := storage.NewBatch()
	root, hash := t.commitNodes(batch)
	batch.Put(rootKey(name), hash.Bytes())
	if err := t.flush(batch, root, hash); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// LoadRoot returns the root digest recorded under name, and false if there
// is none.
func LoadRoot(db storage.DB, name string) (common.Hash, bool, error) {
	val, err := db.Get(rootKey(name))
	if err != nil {
		return common.Hash{}, false, fmt.Errorf("trie: store get root %q: %w", name, err)
	}
	if val == nil {
		return common.Hash{}, false, nil
	}
	if len(val) != HashLength {
		return common.Hash{}, false, fmt.Errorf("%w: root %q has %d bytes", ErrInvalidData, name, len(val))
	}
	return common.BytesToHash(val), true, nil
}

// OpenNamedTrie opens the trie whose root was saved under name. An unknown
// name gives an empty trie.
func OpenNamedTrie(db storage.DB, name string) (*Trie, error) {
	root, ok, err := LoadRoot(db, name)
	if err != nil {
		return nil, err
	}
	if !ok {
		return NewTrie(db), nil
	}
	return NewTrieWithRoot(db, root), nil
}

// DeleteRoot forgets the root saved under name. The nodes it refers to stay
// in the store.
func DeleteRoot(db storage.DB, name string) error {
	if err := db.Delete(rootKey(name)); err != nil {
		return fmt.Errorf("trie: store delete root %q: %w", name, err)
	}
	return nil
}
