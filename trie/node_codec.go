package trie

import (
	"errors"
	"fmt"

	"github.com/execlayer/evmcore/rlp"
)

var errDecode = errors.New("trie: malformed node encoding")

// decodeNode reconstructs a node from its RLP encoding, the inverse of
// encodeNode. Lists of length 2 are short nodes (leaf or extension), lists
// of length 17 are full (branch) nodes.
func decodeNode(buf []byte) (node, error) {
	elems, err := rlp.SplitList(buf)
	if err != nil {
		return nil, err
	}
	switch len(elems) {
	case 2:
		return decodeShort(elems)
	case 17:
		return decodeFull(elems)
	default:
		return nil, fmt.Errorf("trie: invalid node list length %d", len(elems))
	}
}

func decodeShort(elems [][]byte) (node, error) {
	var keyBytes []byte
	if err := rlp.DecodeBytes(elems[0], &keyBytes); err != nil {
		return nil, err
	}
	key := compactToHex(keyBytes)
	if hasTerminator(key) {
		var val []byte
		if err := rlp.DecodeBytes(elems[1], &val); err != nil {
			return nil, err
		}
		return &shortNode{Key: key, Val: valueNode(val)}, nil
	}
	val, err := decodeRef(elems[1])
	if err != nil {
		return nil, err
	}
	return &shortNode{Key: key, Val: val}, nil
}

func decodeFull(elems [][]byte) (*fullNode, error) {
	n := &fullNode{}
	for i := 0; i < 16; i++ {
		ref, err := decodeRef(elems[i])
		if err != nil {
			return nil, err
		}
		n.Children[i] = ref
	}
	var val []byte
	if err := rlp.DecodeBytes(elems[16], &val); err != nil {
		return nil, err
	}
	if len(val) > 0 {
		n.Children[16] = valueNode(val)
	}
	return n, nil
}

func decodeRef(buf []byte) (node, error) {
	isList, err := rlp.IsList(buf)
	if err != nil {
		return nil, err
	}
	if isList {
		return decodeNode(buf)
	}
	var b []byte
	if err := rlp.DecodeBytes(buf, &b); err != nil {
		return nil, err
	}
	switch len(b) {
	case 0:
		return nil, nil
	case 32:
		return hashNode(b), nil
	default:
		return nil, fmt.Errorf("trie: invalid node reference length %d", len(b))
	}
}

// encodeNode returns the RLP encoding of a single node, with child
// references expected to already be collapsed (inline node or hashNode).
func encodeNode(n node) ([]byte, error) {
	switch n := n.(type) {
	case nil:
		return rlp.EncodeToBytes([]byte(nil))
	case *fullNode:
		var elems [17]interface{}
		for i, child := range n.Children {
			enc, err := encodeNode(child)
			if err != nil {
				return nil, err
			}
			elems[i] = rlp.RawValue(enc)
		}
		return rlp.EncodeToBytes(elems[:])
	case *shortNode:
		val, err := encodeNode(n.Val)
		if err != nil {
			return nil, err
		}
		return rlp.EncodeToBytes([]interface{}{hexToCompact(n.Key), rlp.RawValue(val)})
	case hashNode:
		return rlp.EncodeToBytes([]byte(n))
	case valueNode:
		return rlp.EncodeToBytes([]byte(n))
	default:
		return nil, fmt.Errorf("trie: unknown node type %T", n)
	}
}
