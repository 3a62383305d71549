package mpt

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/veritas-L2/mpt/storage"
)

// committer collects the encodings of all nodes that are referenced by
// digest into a batch.
type committer struct {
	batch *storage.Batch
}

// commit returns the reference a parent holds to n: a HashNode when the
// encoding of n is at least HashLength bytes long, the collapsed node itself
// otherwise.
func (c *committer) commit(n Node) Node {
	switch n.(type) {
	case EmptyNode, HashNode:
		return n
	}

	collapsed := c.commitChildren(n)
	enc := EncodeNode(collapsed)
	if len(enc) < HashLength {
		return collapsed
	}
	return c.store(enc)
}

// commitChildren returns a copy of n whose children are replaced by the
// references commit produces for them.
func (c *committer) commitChildren(n Node) Node {
	switch n := n.(type) {
	case EmptyNode, HashNode, *LeafNode:
		return n
	case *ExtensionNode:
		return NewExtensionNode(n.Path, c.commit(n.Next))
	case *BranchNode:
		branch := n.copy()
		for i, child := range n.Children {
			branch.Children[i] = c.commit(child)
		}
		return branch
	default:
		panic("invalid MPT node type")
	}
}

func (c *committer) store(enc []byte) HashNode {
	h := Keccak256(enc)
	c.batch.Put(h.Bytes(), enc)
	return HashNode(h)
}

// Commit writes every node changed since the last commit to the store and
// returns the new root digest. The root node is always stored, whatever the
// size of its encoding, so the trie can be reopened with NewTrieWithRoot.
//
// After Commit the in-memory trie keeps the root node and the embedded nodes
// around it; subtrees referenced by digest are dropped and read back from
// the store when needed.
func (t *Trie) Commit() (common.Hash, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	batch := storage.NewBatch()
	root, hash := t.commitNodes(batch)
	if err := t.flush(batch, root, hash); err != nil {
		return common.Hash{}, err
	}
	return hash, nil
}

// Root returns the root digest of the trie, committing pending changes
// first. An empty trie has EmptyRootHash.
func (t *Trie) Root() (common.Hash, error) {
	return t.Commit()
}

// commitNodes records the pending changes into batch and returns the
// collapsed root together with its digest. The trie is not modified.
func (t *Trie) commitNodes(batch *storage.Batch) (Node, common.Hash) {
	if !t.dirty {
		return t.root, t.rootHash
	}

	switch root := t.root.(type) {
	case EmptyNode:
		return Empty, EmptyRootHash
	case HashNode:
		return root, root.Hash()
	}

	c := &committer{batch: batch}
	collapsed := c.commitChildren(t.root)
	return collapsed, c.store(EncodeNode(collapsed)).Hash()
}

// flush writes batch and, once it is stored, makes root the current state.
func (t *Trie) flush(batch *storage.Batch, root Node, hash common.Hash) error {
	if batch.Len() > 0 {
		if err := t.db.WriteBatch(batch); err != nil {
			return fmt.Errorf("trie: store commit: %w", err)
		}
	}
	t.root = root
	t.rootHash = hash
	t.dirty = false
	return nil
}
