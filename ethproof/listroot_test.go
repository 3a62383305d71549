package ethproof

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/stretchr/testify/require"

	"github.com/veritas-L2/mpt"
)

func newTransactions(n int) types.Transactions {
	recipient := common.HexToAddress("0x897c3dec007e1bcd7b8dcc1f304c2246eea68537")
	txs := make(types.Transactions, n)
	for i := range txs {
		txs[i] = types.NewTx(&types.LegacyTx{
			Nonce:    uint64(0x144 + i),
			GasPrice: big.NewInt(0x3fcf6e43c5),
			Gas:      0x493e0,
			To:       &recipient,
			Value:    big.NewInt(int64(i)),
			Data:     common.FromHex("6b038dca0000000000000000000000004f2604aac91114ae3b3d0be485d407d02b24480b"),
			V:        big.NewInt(0x26),
			R:        big.NewInt(int64(1000 + i)),
			S:        big.NewInt(int64(2000 + i)),
		})
	}
	return txs
}

func TestDeriveListRoot(t *testing.T) {
	for _, n := range []int{0, 1, 2, 127, 128, 129, 300} {
		txs := newTransactions(n)
		expected := types.DeriveSha(txs, trie.NewStackTrie(nil))

		items := make([][]byte, n)
		for i, tx := range txs {
			enc, err := tx.MarshalBinary()
			require.NoError(t, err)
			items[i] = enc
		}
		root, err := DeriveListRoot(items)
		require.NoError(t, err)
		require.Equal(t, expected, root, "%d transactions", n)

		require.Equal(t, expected, types.DeriveSha(txs, NewHasher()), "%d transactions", n)
	}

	t.Run("should give the empty root for no items", func(t *testing.T) {
		root, err := DeriveListRoot(nil)
		require.NoError(t, err)
		require.Equal(t, mpt.EmptyRootHash, root)
		require.Equal(t, types.EmptyTxsHash, root)
	})
}
