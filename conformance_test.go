package mpt

import (
	"bytes"
	"math/rand"
	"sort"
	"testing"

	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/stretchr/testify/require"
)

// hashedPairs returns pairs with 32-byte keys, sorted by key.
func hashedPairs(rng *rand.Rand, n int) []kv {
	pairs := randomPairs(rng, n)
	for i := range pairs {
		pairs[i].k = string(Keccak256([]byte(pairs[i].k)).Bytes())
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].k < pairs[j].k })
	return pairs
}

func stackTrieRoot(t *testing.T, pairs []kv) []byte {
	st := trie.NewStackTrie(nil)
	for _, p := range pairs {
		require.NoError(t, st.Update([]byte(p.k), []byte(p.v)))
	}
	return st.Hash().Bytes()
}

func TestStackTrieConformance(t *testing.T) {
	rng := rand.New(rand.NewSource(8))

	for _, n := range []int{1, 2, 3, 16, 17, 100, 1000} {
		pairs := hashedPairs(rng, n)
		require.Equal(t, stackTrieRoot(t, pairs), rootOf(t, pairs...).Bytes(), "%d pairs", n)
	}

	t.Run("should match after deletions", func(t *testing.T) {
		pairs := hashedPairs(rng, 500)
		tr, _ := newTestTrie(t, pairs...)
		_, err := tr.Commit()
		require.NoError(t, err)

		var kept []kv
		for i, p := range pairs {
			if i%3 == 0 {
				_, err := tr.Delete([]byte(p.k))
				require.NoError(t, err)
				continue
			}
			kept = append(kept, p)
		}
		root, err := tr.Root()
		require.NoError(t, err)
		require.Equal(t, stackTrieRoot(t, kept), root.Bytes())
	})

	t.Run("should match with short values", func(t *testing.T) {
		pairs := hashedPairs(rng, 300)
		for i := range pairs {
			pairs[i].v = pairs[i].v[:1]
		}
		require.Equal(t, stackTrieRoot(t, pairs), rootOf(t, pairs...).Bytes())
	})
}

func TestProofConformance(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	pairs := hashedPairs(rng, 300)
	tr, _ := newTestTrie(t, pairs...)
	root, err := tr.Commit()
	require.NoError(t, err)

	verify := func(key []byte, proof [][]byte) []byte {
		proofDB := memorydb.New()
		for _, enc := range proof {
			require.NoError(t, proofDB.Put(Keccak256(enc).Bytes(), enc))
		}
		val, err := trie.VerifyProof(root, key, proofDB)
		require.NoError(t, err)
		return val
	}

	t.Run("should produce proofs go-ethereum accepts", func(t *testing.T) {
		for _, p := range pairs[:100] {
			proof, err := tr.Prove([]byte(p.k))
			require.NoError(t, err)
			require.True(t, bytes.Equal([]byte(p.v), verify([]byte(p.k), proof)))
		}
	})

	t.Run("should produce absence proofs go-ethereum accepts", func(t *testing.T) {
		for i := 0; i < 50; i++ {
			key := Keccak256([]byte{byte(i), 0xff, 0xfe}).Bytes()
			proof, err := tr.Prove(key)
			require.NoError(t, err)
			require.Nil(t, verify(key, proof))

			val, err := VerifyProof(root, key, proof)
			require.NoError(t, err)
			require.Nil(t, val)
		}
	})
}
