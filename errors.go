package mpt

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

var (
	// ErrInvalidData is returned for malformed RLP or hex-prefix encodings.
	ErrInvalidData = errors.New("trie: invalid data")

	// ErrInvalidProof is returned by VerifyProof for any proof that does not
	// check out against the claimed root.
	ErrInvalidProof = errors.New("trie: invalid proof")
)

// MissingNodeError is returned when a hash reference met during a traversal
// cannot be loaded from the store, either because the store does not have it
// or because the stored bytes do not decode.
type MissingNodeError struct {
	NodeHash common.Hash // hash of the missing node
	Path     []Nibble    // nibbles traversed before reaching the node
	RootHash common.Hash // root the trie was opened at or last committed to
	Key      []byte      // key being looked up, if any
	Err      error       // underlying store or decode error, may be nil
}

func (err *MissingNodeError) Error() string {
	if err.Err != nil {
		return fmt.Sprintf("trie: missing node %x (path %x, root %x): %v", err.NodeHash, NibblesAsBytes(err.Path), err.RootHash, err.Err)
	}
	return fmt.Sprintf("trie: missing node %x (path %x, root %x)", err.NodeHash, NibblesAsBytes(err.Path), err.RootHash)
}

func (err *MissingNodeError) Unwrap() error {
	return err.Err
}

// NibblesAsBytes returns one byte per nibble, which prints nicely with %x.
func NibblesAsBytes(ns []Nibble) []byte {
	buf := make([]byte, len(ns))
	for i, n := range ns {
		buf[i] = byte(n)
	}
	return buf
}
