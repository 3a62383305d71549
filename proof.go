package mpt

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Prove returns a Merkle proof for key: the encoding of the root node
// followed by the encodings of all nodes on the path to key that their
// parent references by digest, in root to leaf order. Embedded nodes travel
// inside their parent's encoding.
//
// The proof is also valid when key is absent, in which case it ends at the
// node where the path diverges from key. It is checked against the digest
// Root returns for the current content of the trie.
func (t *Trie) Prove(key []byte) ([][]byte, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	nibbles := NibblesFromBytes(key)
	proof := make([][]byte, 0, 8)

	node, err := t.proofNode(t.root, nil, key, &proof, true)
	if err != nil {
		return nil, err
	}

	traversed := 0
	for {
		switch n := node.(type) {
		case EmptyNode, *LeafNode:
			return proof, nil

		case *ExtensionNode:
			if !hasPrefix(nibbles[traversed:], n.Path) {
				return proof, nil
			}
			traversed += len(n.Path)
			node = n.Next

		case *BranchNode:
			if traversed == len(nibbles) {
				return proof, nil
			}
			node = n.Children[nibbles[traversed]]
			traversed++

		default:
			panic("invalid MPT node type")
		}

		node, err = t.proofNode(node, nibbles[:traversed], key, &proof, false)
		if err != nil {
			return nil, err
		}
	}
}

// proofNode appends the encoding of node to proof if it is referenced by
// digest, or unconditionally for the root, and returns node resolved.
func (t *Trie) proofNode(node Node, prefix []Nibble, key []byte, proof *[][]byte, isRoot bool) (Node, error) {
	if h, ok := node.(HashNode); ok {
		resolved, enc, err := t.resolveHash(h, prefix, key)
		if err != nil {
			return nil, err
		}
		*proof = append(*proof, common.CopyBytes(enc))
		return resolved, nil
	}

	if !isRoot && IsEmptyNode(node) {
		return node, nil
	}
	enc := EncodeNode(node)
	if isRoot || len(enc) >= HashLength {
		*proof = append(*proof, enc)
	}
	return node, nil
}

// VerifyProof checks proof against root and returns the value it proves for
// key, or nil if it proves that key is absent. No store is needed.
//
// The entries are consumed in order: each must hash to the digest its
// parent refers to, the first one to root, and the walk must end exactly at
// the last entry. Any other proof is rejected with an error wrapping
// ErrInvalidProof.
func VerifyProof(root common.Hash, key []byte, proof [][]byte) ([]byte, error) {
	nibbles := NibblesFromBytes(key)
	wanted := root
	traversed := 0

	for i := 0; ; i++ {
		if i >= len(proof) {
			return nil, fmt.Errorf("%w: missing node %x at entry %d", ErrInvalidProof, wanted, i)
		}
		enc := proof[i]
		if got := Keccak256(enc); got != wanted {
			return nil, fmt.Errorf("%w: bad hash at entry %d: have %x, want %x", ErrInvalidProof, i, got, wanted)
		}
		node, err := DecodeNode(enc)
		if err != nil {
			return nil, fmt.Errorf("%w: entry %d: %v", ErrInvalidProof, i, err)
		}

		var (
			value []byte
			done  bool
		)
		// follow embedded nodes until the walk ends or hits the next digest
	walk:
		for {
			switch n := node.(type) {
			case EmptyNode:
				done = true
				break walk

			case *LeafNode:
				if equalNibbles(n.Key, nibbles[traversed:]) {
					value = n.Value
				}
				done = true
				break walk

			case *ExtensionNode:
				if !hasPrefix(nibbles[traversed:], n.Path) {
					done = true
					break walk
				}
				traversed += len(n.Path)
				node = n.Next

			case *BranchNode:
				if traversed == len(nibbles) {
					value = n.Value
					done = true
					break walk
				}
				node = n.Children[nibbles[traversed]]
				traversed++

			case HashNode:
				wanted = n.Hash()
				break walk

			default:
				panic("invalid MPT node type")
			}
		}

		if done {
			if rest := len(proof) - i - 1; rest > 0 {
				return nil, fmt.Errorf("%w: %d unused entries", ErrInvalidProof, rest)
			}
			return common.CopyBytes(value), nil
		}
	}
}
