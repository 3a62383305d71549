package mpt

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func newVerbCoinBranch() *BranchNode {
	leaf := NewLeafNode([]Nibble{5, 0, 6}, []byte("coin"))

	b := NewBranchNode()
	b.SetBranch(0, leaf)
	b.SetValue([]byte("verb")) // set the value for verb
	return b
}

func TestLeafNode(t *testing.T) {
	l := NewLeafNodeFromBytes([]byte{1, 2, 3, 4}, []byte("verb"))
	require.Equal(t, "2bafd1eef58e8707569b7c70eb2f91683136910606ba7e31d07572b8b67bf5c6",
		fmt.Sprintf("%x", Keccak256(EncodeNode(l))))
}

func TestBranch(t *testing.T) {
	b := newVerbCoinBranch()

	require.Equal(t, "ddc882350684636f696e8080808080808080808080808080808476657262",
		fmt.Sprintf("%x", EncodeNode(b)))
	require.Equal(t, "d757709f08f7a81da64a969200e59ff7e6cd6b06674c3f668ce151e84298aa79",
		fmt.Sprintf("%x", Keccak256(EncodeNode(b))))
	require.Equal(t, "c37ec985b7a88c2c62beb268750efe657c36a585beb435eb9f43b839846682ce",
		fmt.Sprintf("%x", Keccak256(EncodeNode(b.Children[0]))))

	t.Run("should fill unused slots with the empty node", func(t *testing.T) {
		for i := 1; i < 16; i++ {
			require.Equal(t, Empty, b.Children[i])
		}
		b.RemoveBranch(0)
		require.Equal(t, Empty, b.Children[0])
		b.RemoveValue()
		require.False(t, b.HasValue())
	})
}

func TestExtensionNode(t *testing.T) {
	ns, err := FromNibbleBytes([]byte{0, 1, 0, 2, 0, 3, 0, 4})
	require.NoError(t, err)
	e := NewExtensionNode(ns, newVerbCoinBranch())
	require.Equal(t, "e4850001020304ddc882350684636f696e8080808080808080808080808080808476657262",
		fmt.Sprintf("%x", EncodeNode(e)))
	require.Equal(t, "64d67c5318a714d08de6958c0e63a05522642f3f1087c6fd68a97837f203d359",
		fmt.Sprintf("%x", Keccak256(EncodeNode(e))))
}

func TestNodeType(t *testing.T) {
	require.Equal(t, EmptyT, Empty.Type())
	require.Equal(t, LeafT, NewLeafNode(nil, []byte{1}).Type())
	require.Equal(t, ExtensionT, NewExtensionNode([]Nibble{1}, Empty).Type())
	require.Equal(t, BranchT, NewBranchNode().Type())
	require.Equal(t, HashT, HashNode(EmptyRootHash).Type())
	require.Equal(t, "extension", ExtensionT.String())
	require.Equal(t, "NodeType(9)", NodeType(9).String())
}
