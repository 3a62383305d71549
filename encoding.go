package mpt

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
)

// Slots is the raw, not yet RLP encoded, list form of a node.
type Slots = []interface{}

// emptyNodeRaw is what an EmptyNode and an empty branch slot encode to.
var emptyNodeRaw = []byte{}

// EncodeNode returns the canonical RLP encoding of n. Children are embedded
// when their own encoding is shorter than HashLength and referenced by their
// Keccak256 digest otherwise. No store access is needed: HashNode children
// are referenced by the digest they carry.
//
// EncodeNode panics when given a HashNode, whose encoding is unknown until it
// is resolved.
func EncodeNode(n Node) []byte {
	var raw interface{}

	switch n := n.(type) {
	case EmptyNode:
		raw = emptyNodeRaw
	case *LeafNode, *ExtensionNode, *BranchNode:
		raw = nodeSlots(n)
	case HashNode:
		panic("can't encode hash node")
	default:
		panic("invalid MPT node type")
	}

	enc, err := rlp.EncodeToBytes(raw)
	if err != nil {
		// SAFETY: slots only hold byte slices and raw values.
		panic(err)
	}

	return enc
}

// nodeSlots returns the list form of a leaf, extension or branch node.
func nodeSlots(n Node) Slots {
	switch n := n.(type) {
	case *LeafNode:
		return Slots{EncodeCompact(n.Key, true), n.Value}
	case *ExtensionNode:
		return Slots{EncodeCompact(n.Path, false), childRef(n.Next)}
	case *BranchNode:
		slots := make(Slots, 17)
		for i := 0; i < 16; i++ {
			slots[i] = childRef(n.Children[i])
		}
		if n.Value == nil {
			slots[16] = emptyNodeRaw
		} else {
			slots[16] = n.Value
		}
		return slots
	default:
		panic("invalid MPT node type")
	}
}

// childRef returns how a parent refers to n: the empty string, a digest, or
// the embedded encoding of n itself.
func childRef(n Node) interface{} {
	switch n := n.(type) {
	case EmptyNode:
		return emptyNodeRaw
	case HashNode:
		return n.Hash().Bytes()
	default:
		enc := EncodeNode(n)
		// it has to be ">=", rather than ">", so that when decoded, an
		// embedded node can be told apart from a digest by its length.
		if len(enc) >= HashLength {
			return Keccak256(enc).Bytes()
		}
		return rlp.RawValue(enc)
	}
}

// DecodeNode decodes the canonical encoding of a single node. Children that
// are referenced by digest come back as HashNodes; embedded children are
// decoded in place.
func DecodeNode(buf []byte) (Node, error) {
	kind, val, rest, err := rlp.Split(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if len(rest) > 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after node", ErrInvalidData, len(rest))
	}

	switch kind {
	case rlp.List:
		return decodeList(val)
	case rlp.String:
		if len(val) == 0 {
			return Empty, nil
		}
	}
	return nil, fmt.Errorf("%w: node is not a list", ErrInvalidData)
}

func decodeList(elems []byte) (Node, error) {
	c, err := rlp.CountValues(elems)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	switch c {
	case 2:
		return decodeShort(elems)
	case 17:
		return decodeFull(elems)
	default:
		return nil, fmt.Errorf("%w: invalid number of list elements: %d", ErrInvalidData, c)
	}
}

// decodeShort decodes a leaf or an extension node, which differ only by the
// hex-prefix flag.
func decodeShort(elems []byte) (Node, error) {
	kbuf, rest, err := rlp.SplitString(elems)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	key, isLeafNode, err := DecodeCompact(kbuf)
	if err != nil {
		return nil, err
	}

	if isLeafNode {
		val, _, err := rlp.SplitString(rest)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid value node: %v", ErrInvalidData, err)
		}
		return NewLeafNode(key, common.CopyBytes(val)), nil
	}

	if len(key) == 0 {
		return nil, fmt.Errorf("%w: extension node with empty path", ErrInvalidData)
	}
	next, _, err := decodeRef(rest)
	if err != nil {
		return nil, err
	}
	if IsEmptyNode(next) {
		return nil, fmt.Errorf("%w: extension node without child", ErrInvalidData)
	}
	return NewExtensionNode(key, next), nil
}

func decodeFull(elems []byte) (Node, error) {
	branch := NewBranchNode()
	for i := 0; i < 16; i++ {
		child, rest, err := decodeRef(elems)
		if err != nil {
			return nil, fmt.Errorf("branch slot %d: %w", i, err)
		}
		branch.Children[i] = child
		elems = rest
	}

	val, _, err := rlp.SplitString(elems)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid branch value: %v", ErrInvalidData, err)
	}
	if len(val) > 0 {
		branch.Value = common.CopyBytes(val)
	}
	return branch, nil
}

// decodeRef decodes a child reference at the head of buf.
func decodeRef(buf []byte) (Node, []byte, error) {
	kind, val, rest, err := rlp.Split(buf)
	if err != nil {
		return nil, buf, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}

	switch {
	case kind == rlp.List:
		// embedded node, its encoding must be smaller than a digest.
		if size := len(buf) - len(rest); size >= HashLength {
			return nil, buf, fmt.Errorf("%w: oversized embedded node (size %d, want < %d)", ErrInvalidData, size, HashLength)
		}
		n, err := decodeList(val)
		return n, rest, err
	case kind == rlp.String && len(val) == 0:
		return Empty, rest, nil
	case kind == rlp.String && len(val) == HashLength:
		return HashNode(common.BytesToHash(val)), rest, nil
	default:
		return nil, nil, fmt.Errorf("%w: invalid RLP string size %d (want 0 or %d)", ErrInvalidData, len(val), HashLength)
	}
}
