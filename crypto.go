package mpt

import (
	"hash"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

// HashLength is the size of a node digest. Encodings shorter than this are
// embedded in their parent instead of being referenced by digest.
const HashLength = common.HashLength

// EmptyRootHash is the root of an empty trie, Keccak256(rlp("")).
var EmptyRootHash = common.HexToHash("56e81f171bcc55a6ff8345e692c0f86e5b48e01b996cadc001622fb5e363b421")

type keccakState interface {
	hash.Hash
	Read([]byte) (int, error)
}

var hasherPool = sync.Pool{New: func() any { return sha3.NewLegacyKeccak256() }}

// Keccak256 returns the Keccak256 hash of data.
func Keccak256(data ...[]byte) common.Hash {
	d := hasherPool.Get().(keccakState)
	defer hasherPool.Put(d)

	d.Reset()
	for _, b := range data {
		d.Write(b)
	}
	var h common.Hash
	d.Read(h[:])
	return h
}
