package trie

import (
	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/crypto"
)

// collapse replaces every child reference of n with either its encoded
// inline form (if under 32 bytes) or a hashNode, persisting any node whose
// encoding reaches 32 bytes into db. db may be nil to compute a hash
// preview without mutating storage.
func collapse(n node, db *Database) (node, error) {
	switch n := n.(type) {
	case *fullNode:
		cpy := n.copy()
		for i, child := range n.Children {
			if child == nil {
				continue
			}
			collapsedChild, err := collapseChild(child, db)
			if err != nil {
				return nil, err
			}
			cpy.Children[i] = collapsedChild
		}
		return cpy, nil

	case *shortNode:
		cpy := n.copy()
		if _, isValue := n.Val.(valueNode); !isValue && n.Val != nil {
			collapsedChild, err := collapseChild(n.Val, db)
			if err != nil {
				return nil, err
			}
			cpy.Val = collapsedChild
		}
		return cpy, nil

	default:
		return n, nil
	}
}

// collapseChild collapses n (recursively) and, if its encoding is 32 bytes
// or larger, stores it and returns a hashNode reference in its place.
func collapseChild(n node, db *Database) (node, error) {
	switch n.(type) {
	case hashNode, valueNode:
		return n, nil
	}
	collapsed, err := collapse(n, db)
	if err != nil {
		return nil, err
	}
	enc, err := encodeNode(collapsed)
	if err != nil {
		return nil, err
	}
	if len(enc) < 32 {
		return collapsed, nil
	}
	h := types.BytesToHash(crypto.Keccak256(enc))
	if db != nil {
		db.Put(h, enc)
	}
	return hashNode(h.Bytes()), nil
}

// hashRoot collapses n's children and returns both the collapsed root node
// and its RLP encoding, from which the caller derives the root hash. Unlike
// child references, the root is always addressed by hash regardless of its
// encoded size.
func hashRoot(n node, db *Database) (node, []byte, error) {
	if n == nil {
		enc, err := encodeNode(valueNode(nil))
		return valueNode(nil), enc, err
	}
	collapsed, err := collapse(n, db)
	if err != nil {
		return nil, nil, err
	}
	enc, err := encodeNode(collapsed)
	if err != nil {
		return nil, nil, err
	}
	return collapsed, enc, nil
}
