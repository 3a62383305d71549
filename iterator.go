package mpt

// Iterate calls fn for every key value pair of the trie in ascending key
// order until fn returns false. Committed subtrees are read from the store
// without being kept in memory.
//
// fn must not modify the trie; the slices it receives are its own.
func (t *Trie) Iterate(fn func(key, value []byte) bool) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	_, err := t.iterate(t.root, nil, fn)
	return err
}

// iterate walks node below prefix and reports whether the walk should go on.
func (t *Trie) iterate(node Node, prefix []Nibble, fn func(key, value []byte) bool) (bool, error) {
	switch n := node.(type) {
	case EmptyNode:
		return true, nil

	case *LeafNode:
		key := concatNibbles(prefix, n.Key)
		return fn(NibblesToBytes(key), append([]byte(nil), n.Value...)), nil

	case *ExtensionNode:
		return t.iterate(n.Next, concatNibbles(prefix, n.Path), fn)

	case *BranchNode:
		// the value is the shortest key below the branch
		if n.HasValue() && !fn(NibblesToBytes(prefix), append([]byte(nil), n.Value...)) {
			return false, nil
		}
		for i, child := range n.Children {
			more, err := t.iterate(child, concatNibbles(prefix, []Nibble{Nibble(i)}), fn)
			if err != nil || !more {
				return false, err
			}
		}
		return true, nil

	case HashNode:
		resolved, _, err := t.resolveHash(n, prefix, nil)
		if err != nil {
			return false, err
		}
		return t.iterate(resolved, prefix, fn)

	default:
		panic("invalid MPT node type")
	}
}
