package ethproof

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// GetSlotForMapKey returns the storage slot of mapping[keyInMap] for a
// mapping declared at slotIndexForMap. keyInMap must already be padded the
// way Solidity pads the key type.
func GetSlotForMapKey(keyInMap []byte, slotIndexForMap int) common.Hash {
	return crypto.Keccak256Hash(
		keyInMap,
		common.LeftPadBytes(big.NewInt(int64(slotIndexForMap)).Bytes(), 32),
	)
}

// GetSlotForERC20TokenHolder returns the slot of the balance of tokenHolder
// in a token contract whose balances mapping lives at slotIndexForHoldersMap.
func GetSlotForERC20TokenHolder(slotIndexForHoldersMap int, tokenHolder common.Address) common.Hash {
	return GetSlotForMapKey(common.LeftPadBytes(tokenHolder[:], 32), slotIndexForHoldersMap)
}

// GetSlotForArrayItem returns the slot of array[indexInArray] for a dynamic
// array declared at slotIndexForArray whose items take itemSize slots each.
// Slot arithmetic wraps around at 2^256.
func GetSlotForArrayItem(slotIndexForArray int, indexInArray int, itemSize int) common.Hash {
	start := crypto.Keccak256Hash(common.LeftPadBytes(big.NewInt(int64(slotIndexForArray)).Bytes(), 32))
	pos := new(uint256.Int).SetBytes32(start[:])
	offset := new(uint256.Int).Mul(uint256.NewInt(uint64(indexInArray)), uint256.NewInt(uint64(itemSize)))
	pos.Add(pos, offset)
	return pos.Bytes32()
}
