package ethproof

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"

	"github.com/veritas-L2/mpt"
	"github.com/veritas-L2/mpt/storage"
)

// DeriveListRoot returns the root of the trie mapping rlp(i) to items[i],
// which is how blocks commit to their transactions and receipts. items are
// the consensus encodings of the list elements.
func DeriveListRoot(items [][]byte) (common.Hash, error) {
	tr := mpt.NewTrie(storage.NewMemoryDB())
	for i, item := range items {
		key, err := rlp.EncodeToBytes(uint(i))
		if err != nil {
			return common.Hash{}, err
		}
		if err := tr.Insert(key, item); err != nil {
			return common.Hash{}, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return tr.Root()
}

// Hasher builds list roots in memory. It can be passed to
// go-ethereum's types.DeriveSha.
type Hasher struct {
	trie *mpt.Trie
}

func NewHasher() *Hasher {
	h := &Hasher{}
	h.Reset()
	return h
}

func (h *Hasher) Reset() {
	h.trie = mpt.NewTrie(storage.NewMemoryDB())
}

// Update inserts a key value pair; both slices are copied.
func (h *Hasher) Update(key, value []byte) error {
	return h.trie.Insert(key, value)
}

func (h *Hasher) Hash() common.Hash {
	root, err := h.trie.Root()
	if err != nil {
		// the in-memory store never fails
		panic(err)
	}
	return root
}
