package mpt

import (
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/veritas-L2/mpt/storage"
)

// Trie is an in-memory view of a Merkle Patricia Trie using RLP encoding and
// Keccak256 digests, backed by a storage.DB that holds committed nodes.
//
// Parts of the trie that have not been touched since it was opened or last
// committed are HashNodes and are loaded from db when a traversal reaches
// them. Get, Has, Prove and Iterate never change the trie and may run
// concurrently; Insert, Delete, Commit and Root are exclusive.
type Trie struct {
	mu sync.RWMutex

	db   storage.DB
	root Node
	// rootHash is the root the trie was opened at or last committed to.
	rootHash common.Hash
	dirty    bool
}

// NewTrie returns an empty Trie backed by db.
func NewTrie(db storage.DB) *Trie {
	return &Trie{
		db:       db,
		root:     Empty,
		rootHash: EmptyRootHash,
	}
}

// NewTrieWithRoot returns a Trie whose content is the committed trie with
// the given root. Nothing is read from db until the trie is accessed.
func NewTrieWithRoot(db storage.DB, root common.Hash) *Trie {
	t := NewTrie(db)
	if root != EmptyRootHash && root != (common.Hash{}) {
		t.root = HashNode(root)
		t.rootHash = root
	}
	return t
}

// Copy returns an independent trie sharing all nodes with t. Since nodes are
// never modified in place, changes to either trie are invisible to the other.
func (t *Trie) Copy() *Trie {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return &Trie{
		db:       t.db,
		root:     t.root,
		rootHash: t.rootHash,
		dirty:    t.dirty,
	}
}

// Get returns the value associated with key in the Trie, or nil if there is
// none. A missing key is not an error.
func (t *Trie) Get(key []byte) ([]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	value, err := t.get(t.root, NibblesFromBytes(key), key)
	if err != nil {
		return nil, err
	}
	return common.CopyBytes(value), nil
}

// Has reports whether key is present in the Trie.
func (t *Trie) Has(key []byte) (bool, error) {
	value, err := t.Get(key)
	return value != nil, err
}

func (t *Trie) get(node Node, nibbles []Nibble, key []byte) ([]byte, error) {
	traversed := 0
	for {
		switch n := node.(type) {
		case EmptyNode:
			return nil, nil

		case *LeafNode:
			if !equalNibbles(n.Key, nibbles[traversed:]) {
				return nil, nil
			}
			return n.Value, nil

		case *ExtensionNode:
			// E 01020304
			//   010203
			if !hasPrefix(nibbles[traversed:], n.Path) {
				return nil, nil
			}
			traversed += len(n.Path)
			node = n.Next

		case *BranchNode:
			if traversed == len(nibbles) {
				return n.Value, nil
			}
			node = n.Children[nibbles[traversed]]
			traversed++

		case HashNode:
			resolved, _, err := t.resolveHash(n, nibbles[:traversed], key)
			if err != nil {
				return nil, err
			}
			node = resolved

		default:
			panic("invalid MPT node type")
		}
	}
}

// Insert adds a key value pair to the Trie, replacing any previous value of
// key. Inserting an empty value deletes key, because an empty value can not
// be told apart from no value once encoded.
func (t *Trie) Insert(key []byte, value []byte) error {
	if len(value) == 0 {
		_, err := t.Delete(key)
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	root, err := t.insert(t.root, nil, NibblesFromBytes(key), common.CopyBytes(value), key)
	if err != nil {
		return err
	}
	t.root = root
	t.dirty = true
	return nil
}

// In general, when inserting into a MPT
// if you stopped at an empty node, you add a new leaf node with the remaining path and replace the empty node with the new leaf node
// if you stopped at a leaf node, you need to convert it to a branch node, possibly wrapped in an extension node for the shared nibbles, holding the old and the new leaf
// if you stopped at an extension node, you convert it to another extension node with shorter path and create a new branch and leaves
//
// insert returns the node replacing node. prefix holds the nibbles traversed
// so far and is only used for error reporting.
func (t *Trie) insert(node Node, prefix, nibbles []Nibble, value []byte, key []byte) (Node, error) {
	switch n := node.(type) {
	case EmptyNode:
		return NewLeafNode(nibbles, value), nil

	case *LeafNode:
		matched := PrefixMatchedLen(n.Key, nibbles)

		// if all matched, update value even if the value are equal
		if matched == len(nibbles) && matched == len(n.Key) {
			return NewLeafNode(n.Key, value), nil
		}

		branch := NewBranchNode()
		// L 01020304 hello
		// + 010203   world
		if matched == len(n.Key) {
			branch.SetValue(n.Value)
		} else {
			branch.SetBranch(n.Key[matched], NewLeafNode(n.Key[matched+1:], n.Value))
		}

		// L 01020304 hello
		// + 010203040506 world
		if matched == len(nibbles) {
			branch.SetValue(value)
		} else {
			branch.SetBranch(nibbles[matched], NewLeafNode(nibbles[matched+1:], value))
		}

		// if there is matched nibbles, an extension node will be created
		if matched > 0 {
			return NewExtensionNode(nibbles[:matched], branch), nil
		}
		// when there no matched nibble, there is no need to keep the extension node
		return branch, nil

	case *ExtensionNode:
		matched := PrefixMatchedLen(n.Path, nibbles)
		if matched == len(n.Path) {
			next, err := t.insert(n.Next, concatNibbles(prefix, n.Path), nibbles[matched:], value, key)
			if err != nil {
				return nil, err
			}
			return NewExtensionNode(n.Path, next), nil
		}

		// E 01020304
		// + 010203 good
		branch := NewBranchNode()
		branchNibble, extRemainingNibbles := n.Path[matched], n.Path[matched+1:]
		if len(extRemainingNibbles) == 0 {
			// E 0102030
			// + 010203 good
			branch.SetBranch(branchNibble, n.Next)
		} else {
			// E 01020304
			// + 010203 good
			branch.SetBranch(branchNibble, NewExtensionNode(extRemainingNibbles, n.Next))
		}

		if matched == len(nibbles) {
			branch.SetValue(value)
		} else {
			branch.SetBranch(nibbles[matched], NewLeafNode(nibbles[matched+1:], value))
		}

		// if there is no shared extension nibbles any more, then we don't need
		// the extension node any more
		// E 01020304
		// + 1234 good
		if matched == 0 {
			return branch, nil
		}
		return NewExtensionNode(nibbles[:matched], branch), nil

	case *BranchNode:
		branch := n.copy()
		if len(nibbles) == 0 {
			branch.SetValue(value)
			return branch, nil
		}

		b, remaining := nibbles[0], nibbles[1:]
		child, err := t.insert(n.Children[b], concatNibbles(prefix, []Nibble{b}), remaining, value, key)
		if err != nil {
			return nil, err
		}
		branch.SetBranch(b, child)
		return branch, nil

	case HashNode:
		resolved, _, err := t.resolveHash(n, prefix, key)
		if err != nil {
			return nil, err
		}
		return t.insert(resolved, prefix, nibbles, value, key)

	default:
		panic("invalid MPT node type")
	}
}

// Delete removes key from the Trie. It reports whether the key was present;
// deleting a missing key is a no-op.
func (t *Trie) Delete(key []byte) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	root, deleted, err := t.delete(t.root, nil, NibblesFromBytes(key), key)
	if err != nil || !deleted {
		return false, err
	}
	t.root = root
	t.dirty = true
	return true, nil
}

// delete returns the node replacing node and whether anything was removed
// below it. Whatever is returned is already normalized: no branch with a
// single entry and no extension followed by an extension or a leaf.
func (t *Trie) delete(node Node, prefix, nibbles []Nibble, key []byte) (Node, bool, error) {
	switch n := node.(type) {
	case EmptyNode:
		return n, false, nil

	case *LeafNode:
		if !equalNibbles(n.Key, nibbles) {
			return n, false, nil
		}
		return Empty, true, nil

	case *ExtensionNode:
		if !hasPrefix(nibbles, n.Path) {
			return n, false, nil
		}
		next, deleted, err := t.delete(n.Next, concatNibbles(prefix, n.Path), nibbles[len(n.Path):], key)
		if err != nil || !deleted {
			return n, false, err
		}

		switch next := next.(type) {
		case EmptyNode:
			return Empty, true, nil
		case *ExtensionNode:
			// E 0102 + E 0304 => E 01020304
			return NewExtensionNode(concatNibbles(n.Path, next.Path), next.Next), true, nil
		case *LeafNode:
			// E 0102 + L 0304 => L 01020304
			return NewLeafNode(concatNibbles(n.Path, next.Key), next.Value), true, nil
		default:
			return NewExtensionNode(n.Path, next), true, nil
		}

	case *BranchNode:
		branch := n.copy()
		if len(nibbles) == 0 {
			if !n.HasValue() {
				return n, false, nil
			}
			branch.RemoveValue()
		} else {
			b, remaining := nibbles[0], nibbles[1:]
			child, deleted, err := t.delete(n.Children[b], concatNibbles(prefix, []Nibble{b}), remaining, key)
			if err != nil || !deleted {
				return n, false, err
			}
			branch.SetBranch(b, child)
		}

		normalized, err := t.collapseBranch(branch, prefix, key)
		if err != nil {
			return nil, false, err
		}
		return normalized, true, nil

	case HashNode:
		resolved, _, err := t.resolveHash(n, prefix, key)
		if err != nil {
			return nil, false, err
		}
		return t.delete(resolved, prefix, nibbles, key)

	default:
		panic("invalid MPT node type")
	}
}

// collapseBranch turns a branch that lost an entry into the smallest node
// holding the same content.
func (t *Trie) collapseBranch(branch *BranchNode, prefix []Nibble, key []byte) (Node, error) {
	count, index := 0, -1
	for i, child := range branch.Children {
		if !IsEmptyNode(child) {
			count++
			index = i
		}
	}

	switch {
	case count == 0 && !branch.HasValue():
		return Empty, nil
	case count == 0:
		// B [] value => L "" value
		return NewLeafNode([]Nibble{}, branch.Value), nil
	case count > 1 || branch.HasValue():
		return branch, nil
	}

	// exactly one child and no value: merge the branch nibble into the child
	b := Nibble(index)
	child := branch.Children[index]
	if h, ok := child.(HashNode); ok {
		resolved, _, err := t.resolveHash(h, concatNibbles(prefix, []Nibble{b}), key)
		if err != nil {
			return nil, err
		}
		child = resolved
	}

	switch child := child.(type) {
	case *LeafNode:
		return NewLeafNode(concatNibbles([]Nibble{b}, child.Key), child.Value), nil
	case *ExtensionNode:
		return NewExtensionNode(concatNibbles([]Nibble{b}, child.Path), child.Next), nil
	case *BranchNode:
		return NewExtensionNode([]Nibble{b}, child), nil
	default:
		panic("invalid MPT node type")
	}
}

// resolveHash loads the node stored under h. It returns the decoded node
// together with its encoding. The trie itself is not changed.
func (t *Trie) resolveHash(h HashNode, prefix []Nibble, key []byte) (Node, []byte, error) {
	missing := func(err error) error {
		return &MissingNodeError{
			NodeHash: h.Hash(),
			Path:     concatNibbles(prefix),
			RootHash: t.rootHash,
			Key:      common.CopyBytes(key),
			Err:      err,
		}
	}

	enc, err := t.db.Get(h.Hash().Bytes())
	if err != nil {
		return nil, nil, missing(fmt.Errorf("trie: store get: %w", err))
	}
	if enc == nil {
		return nil, nil, missing(nil)
	}

	node, err := DecodeNode(enc)
	if err != nil {
		return nil, nil, missing(err)
	}
	if _, ok := node.(EmptyNode); ok {
		return nil, nil, missing(fmt.Errorf("%w: stored empty node", ErrInvalidData))
	}
	return node, enc, nil
}
