package ethproof

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"

	"github.com/veritas-L2/mpt"
)

// ErrMismatch is returned when a proof is valid but proves something other
// than what the result claims.
var ErrMismatch = errors.New("ethproof: claimed state does not match proof")

func proofBytes(proof []hexutil.Bytes) [][]byte {
	entries := make([][]byte, len(proof))
	for i := range proof {
		entries[i] = proof[i]
	}
	return entries
}

// VerifyAccountProof checks the account proof of result against stateRoot
// and the claimed account fields against the proven account. An address
// proven absent is an empty account.
func VerifyAccountProof(stateRoot common.Hash, address common.Address, result *StorageStateResult) (*Account, error) {
	enc, err := mpt.VerifyProof(stateRoot, AccountKey(address), proofBytes(result.AccountProof))
	if err != nil {
		return nil, fmt.Errorf("account %s: %w", address, err)
	}

	account := NewEmptyAccount()
	if enc != nil {
		account, err = DecodeAccount(enc)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", address, err)
		}
	}

	var claimed *uint256.Int
	if result.Balance != nil {
		var overflow bool
		claimed, overflow = uint256.FromBig(result.Balance.ToInt())
		if overflow {
			return nil, fmt.Errorf("%w: balance of %s overflows", ErrMismatch, address)
		}
	} else {
		claimed = new(uint256.Int)
	}

	switch {
	case uint64(result.Nonce) != account.Nonce:
		return nil, fmt.Errorf("%w: nonce of %s is %d, not %d", ErrMismatch, address, account.Nonce, result.Nonce)
	case !claimed.Eq(account.Balance):
		return nil, fmt.Errorf("%w: balance of %s is %s, not %s", ErrMismatch, address, account.Balance, claimed)
	case result.StorageHash != account.Root:
		return nil, fmt.Errorf("%w: storage hash of %s is %x, not %x", ErrMismatch, address, account.Root, result.StorageHash)
	case result.CodeHash != account.CodeHash:
		return nil, fmt.Errorf("%w: code hash of %s is %x, not %x", ErrMismatch, address, account.CodeHash, result.CodeHash)
	}
	return account, nil
}

// VerifyStorageProof checks that sp proves its value under storageRoot. A
// zero value must come with a proof of absence.
func VerifyStorageProof(storageRoot common.Hash, sp StorageProof) error {
	verified, err := mpt.VerifyProof(storageRoot, StorageKey(sp.Key), proofBytes(sp.Proof))
	if err != nil {
		return fmt.Errorf("slot %x: %w", []byte(sp.Key), err)
	}

	var expected []byte
	if len(sp.Value) > 0 {
		expected, err = rlp.EncodeToBytes([]byte(sp.Value))
		if err != nil {
			return fmt.Errorf("fail to encode value: %w", err)
		}
	}
	if !bytes.Equal(verified, expected) {
		return fmt.Errorf("%w: slot %x holds %x, not %x", ErrMismatch, []byte(sp.Key), verified, expected)
	}
	return nil
}

// Verify checks the account proof and all storage proofs of r against
// stateRoot, returning the proven account.
func (r *StorageStateResult) Verify(stateRoot common.Hash) (*Account, error) {
	account, err := VerifyAccountProof(stateRoot, r.Address, r)
	if err != nil {
		return nil, err
	}
	for _, sp := range r.StorageProof {
		if err := VerifyStorageProof(account.Root, sp); err != nil {
			return nil, err
		}
	}
	return account, nil
}
