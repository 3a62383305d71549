package mpt

import (
	"fmt"
)

type Nibble byte

func IsNibble(nibble byte) bool {
	n := int(nibble)
	// 0-9 && a-f
	return n >= 0 && n < 16
}

func FromNibbleByte(n byte) (Nibble, error) {
	if !IsNibble(n) {
		return 0, fmt.Errorf("non-nibble byte: %v", n)
	}
	return Nibble(n), nil
}

// FromNibbleBytes converts a slice of bytes, each holding a single nibble,
// into a nibble path.
func FromNibbleBytes(nibbles []byte) ([]Nibble, error) {
	ns := make([]Nibble, 0, len(nibbles))
	for _, n := range nibbles {
		nibble, err := FromNibbleByte(n)
		if err != nil {
			return nil, fmt.Errorf("contains non-nibble byte: %w", err)
		}
		ns = append(ns, nibble)
	}
	return ns, nil
}

func NibblesFromByte(b byte) []Nibble {
	return []Nibble{
		Nibble(b >> 4),
		Nibble(b % 16),
	}
}

// NibblesFromBytes splits a key into nibbles, most significant half first.
func NibblesFromBytes(bs []byte) []Nibble {
	ns := make([]Nibble, 0, len(bs)*2)
	for _, b := range bs {
		ns = append(ns, NibblesFromByte(b)...)
	}
	return ns
}

func FromString(s string) []Nibble {
	return NibblesFromBytes([]byte(s))
}

// NibblesToBytes packs a slice of nibbles into bytes, two per byte.
// The nibble slice must have an even length.
func NibblesToBytes(ns []Nibble) []byte {
	buf := make([]byte, 0, len(ns)/2)

	for i := 0; i+1 < len(ns); i += 2 {
		b := byte(ns[i]<<4) + byte(ns[i+1])
		buf = append(buf, b)
	}

	return buf
}

// EncodeCompact returns the hex-prefix encoding of ns.
//
// From https://ethereum.org/en/developers/docs/data-structures-and-encoding/patricia-merkle-trie/:
//
//	hex char    bits    |    node type partial     path length
//	----------------------------------------------------------
//	   0        0000    |       extension              even
//	   1        0001    |       extension              odd
//	   2        0010    |   terminating (leaf)         even
//	   3        0011    |   terminating (leaf)         odd
func EncodeCompact(ns []Nibble, isLeafNode bool) []byte {
	var flag byte
	if isLeafNode {
		flag = 2
	}

	buf := make([]byte, len(ns)/2+1)
	if len(ns)%2 > 0 {
		// odd: the first nibble shares the byte with the flag
		buf[0] = (flag+1)<<4 | byte(ns[0])
		ns = ns[1:]
	} else {
		buf[0] = flag << 4
	}

	for i := 0; i < len(ns); i += 2 {
		buf[1+i/2] = byte(ns[i])<<4 | byte(ns[i+1])
	}

	return buf
}

// DecodeCompact reverses EncodeCompact, returning the path and whether it
// belongs to a leaf node.
func DecodeCompact(compact []byte) (ns []Nibble, isLeafNode bool, err error) {
	if len(compact) == 0 {
		return nil, false, fmt.Errorf("%w: empty hex-prefix path", ErrInvalidData)
	}

	flag, first := compact[0]>>4, Nibble(compact[0]&0x0f)
	if flag > 3 {
		return nil, false, fmt.Errorf("%w: invalid hex-prefix flag %d", ErrInvalidData, flag)
	}
	isLeafNode = flag&2 != 0
	odd := flag&1 != 0

	ns = make([]Nibble, 0, len(compact)*2-1)
	if odd {
		ns = append(ns, first)
	} else if first != 0 {
		return nil, false, fmt.Errorf("%w: non-zero hex-prefix padding %d", ErrInvalidData, first)
	}
	ns = append(ns, NibblesFromBytes(compact[1:])...)

	return ns, isLeafNode, nil
}

// [0,1,2,3], [0,1,2] => 3
// [0,1,2,3], [0,1,2,3] => 4
// [0,1,2,3], [0,1,2,3,4] => 4
func PrefixMatchedLen(node1 []Nibble, node2 []Nibble) int {
	matched := 0
	for i := 0; i < len(node1) && i < len(node2); i++ {
		n1, n2 := node1[i], node2[i]
		if n1 == n2 {
			matched++
		} else {
			break
		}
	}

	return matched
}

func hasPrefix(ns []Nibble, prefix []Nibble) bool {
	return len(ns) >= len(prefix) && PrefixMatchedLen(ns, prefix) == len(prefix)
}

func equalNibbles(a, b []Nibble) bool {
	return len(a) == len(b) && PrefixMatchedLen(a, b) == len(a)
}

// concatNibbles always allocates, so the result never aliases its inputs.
func concatNibbles(parts ...[]Nibble) []Nibble {
	size := 0
	for _, p := range parts {
		size += len(p)
	}
	ns := make([]Nibble, 0, size)
	for _, p := range parts {
		ns = append(ns, p...)
	}
	return ns
}
