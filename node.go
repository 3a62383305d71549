package mpt

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// NodeType represents node type.
type NodeType byte

// Node types definitions.
const (
	EmptyT NodeType = iota
	LeafT
	ExtensionT
	BranchT
	HashT
)

func (t NodeType) String() string {
	switch t {
	case EmptyT:
		return "empty"
	case LeafT:
		return "leaf"
	case ExtensionT:
		return "extension"
	case BranchT:
		return "branch"
	case HashT:
		return "hash"
	default:
		return fmt.Sprintf("NodeType(%d)", byte(t))
	}
}

// Node is one of EmptyNode, *LeafNode, *ExtensionNode, *BranchNode or
// HashNode. Every traversal switches over exactly these five and panics on
// anything else.
//
// Nodes reachable from a trie root are never modified. Mutations build new
// nodes along the touched path and leave the old ones to whoever still holds
// them, so nodes may be shared freely between tries and readers.
type Node interface {
	Type() NodeType
}

//////////////////////////
// Empty node definitions
//////////////////////////

// EmptyNode marks the absence of a node. It is the only valid content of an
// unused branch slot.
type EmptyNode struct{}

// Empty is the EmptyNode singleton.
var Empty = EmptyNode{}

func (EmptyNode) Type() NodeType { return EmptyT }

func IsEmptyNode(node Node) bool {
	_, ok := node.(EmptyNode)
	return ok
}

//////////////////////////
// Leaf node definitions
//////////////////////////

type LeafNode struct {
	// Key is the remaining path below the parent.
	Key   []Nibble
	Value []byte
}

func NewLeafNode(key []Nibble, value []byte) *LeafNode {
	return &LeafNode{
		Key:   key,
		Value: value,
	}
}

func NewLeafNodeFromBytes(key, value []byte) *LeafNode {
	return NewLeafNode(NibblesFromBytes(key), value)
}

func (*LeafNode) Type() NodeType { return LeafT }

///////////////////////////////
// Extension node definitions
///////////////////////////////

type ExtensionNode struct {
	Path []Nibble
	Next Node
}

func NewExtensionNode(nibbles []Nibble, next Node) *ExtensionNode {
	return &ExtensionNode{
		Path: nibbles,
		Next: next,
	}
}

func (*ExtensionNode) Type() NodeType { return ExtensionT }

///////////////////////////
// Branch node definitions
///////////////////////////

type BranchNode struct {
	Children [16]Node
	// Value is set for a key ending exactly at this branch, nil otherwise.
	Value []byte
}

func NewBranchNode() *BranchNode {
	b := &BranchNode{}
	for i := range b.Children {
		b.Children[i] = Empty
	}
	return b
}

func (*BranchNode) Type() NodeType { return BranchT }

func (b *BranchNode) SetBranch(nibble Nibble, node Node) {
	b.Children[int(nibble)] = node
}

func (b *BranchNode) RemoveBranch(nibble Nibble) {
	b.Children[int(nibble)] = Empty
}

func (b *BranchNode) SetValue(value []byte) {
	b.Value = value
}

func (b *BranchNode) RemoveValue() {
	b.Value = nil
}

func (b *BranchNode) HasValue() bool {
	return b.Value != nil
}

// copy returns a shallow copy that can be modified without affecting b.
func (b *BranchNode) copy() *BranchNode {
	cpy := *b
	return &cpy
}

/////////////////////////
// Hash node definitions
/////////////////////////

// HashNode refers to a node stored under its Keccak256 digest.
type HashNode common.Hash

func (HashNode) Type() NodeType { return HashT }

func (h HashNode) Hash() common.Hash { return common.Hash(h) }
