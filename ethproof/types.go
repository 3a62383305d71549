// Package ethproof verifies Ethereum state data with Merkle Patricia Trie
// proofs: account and storage proofs as returned by eth_getProof (EIP-1186),
// storage slot positions of Solidity variables and list roots of
// transactions and receipts.
package ethproof

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/veritas-L2/mpt"
)

// EmptyCodeHash is the code hash of accounts without code.
var EmptyCodeHash = crypto.Keccak256Hash(nil)

// StorageStateResult is the result of an eth_getProof call.
type StorageStateResult struct {
	Address      common.Address  `json:"address"`
	Nonce        hexutil.Uint64  `json:"nonce"`
	Balance      *hexutil.Big    `json:"balance"`
	StorageHash  common.Hash     `json:"storageHash"`
	CodeHash     common.Hash     `json:"codeHash"`
	StorageProof []StorageProof  `json:"storageProof"`
	AccountProof []hexutil.Bytes `json:"accountProof"`
}

// StorageProof proves the value of a single storage slot.
type StorageProof struct {
	Key   HexNibbles      `json:"key"`
	Value HexNibbles      `json:"value"`
	Proof []hexutil.Bytes `json:"proof"`
}

// HexNibbles is a big-endian number printed as hex without leading zeros,
// the way nodes report storage keys and values.
type HexNibbles []byte

func (n HexNibbles) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("0x%v",
		new(big.Int).SetBytes(n).Text(16))), nil
}

func (n *HexNibbles) UnmarshalText(input []byte) error {
	input = bytes.TrimPrefix(input, []byte("0x"))
	v, ok := new(big.Int).SetString(string(input), 16)
	if !ok {
		return fmt.Errorf("invalid hex input")
	}
	*n = v.Bytes()
	return nil
}

type EthGetProofResponse struct {
	Result StorageStateResult `json:"result"`
}

// Account is the value stored in the world state trie under the hash of an
// address.
type Account struct {
	Nonce    uint64
	Balance  *uint256.Int
	Root     common.Hash // root of the storage trie
	CodeHash common.Hash
}

// NewEmptyAccount returns the state of an address that was never touched.
func NewEmptyAccount() *Account {
	return &Account{
		Balance:  new(uint256.Int),
		Root:     mpt.EmptyRootHash,
		CodeHash: EmptyCodeHash,
	}
}

// Encode returns the RLP encoding of a.
func (a *Account) Encode() ([]byte, error) {
	return rlp.EncodeToBytes(a)
}

// DecodeAccount decodes the RLP encoding of an account.
func DecodeAccount(enc []byte) (*Account, error) {
	var a Account
	if err := rlp.DecodeBytes(enc, &a); err != nil {
		return nil, fmt.Errorf("invalid account: %w", err)
	}
	return &a, nil
}

// AccountKey returns the world state trie key of address.
func AccountKey(address common.Address) []byte {
	return crypto.Keccak256(address.Bytes())
}

// StorageKey returns the storage trie key of a slot.
func StorageKey(slot []byte) []byte {
	return crypto.Keccak256(common.LeftPadBytes(slot, 32))
}
