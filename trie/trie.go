package trie

import (
	"errors"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/crypto"
)

// ErrNotFound is returned by Get for keys with no value.
var ErrNotFound = errors.New("trie: key not found")

// Trie is a Merkle Patricia Trie: the Ethereum world-state trie, each
// account's storage trie, and the transaction/receipt/withdrawal tries all
// use the same structure, differing only in what they store at their
// leaves.
type Trie struct {
	root node
	db   *Database
}

// New returns an empty trie, or the trie rooted at root if one is given and
// root is not the empty-root sentinel.
func New(root types.Hash, db *Database) (*Trie, error) {
	t := &Trie{db: db}
	if root.IsZero() || root == types.EmptyRootHash {
		return t, nil
	}
	rootNode, err := t.resolveHash(root.Bytes())
	if err != nil {
		return nil, err
	}
	t.root = rootNode
	return t, nil
}

func (t *Trie) resolveHash(hash []byte) (node, error) {
	enc, ok := t.db.Get(types.BytesToHash(hash))
	if !ok {
		return nil, errors.New("trie: missing trie node " + types.BytesToHash(hash).Hex())
	}
	return decodeNode(enc)
}

func (t *Trie) resolve(n node) (node, error) {
	if hn, ok := n.(hashNode); ok {
		return t.resolveHash(hn)
	}
	return n, nil
}

// Get returns the value stored for key, or ErrNotFound.
func (t *Trie) Get(key []byte) ([]byte, error) {
	value, newroot, didResolve, err := t.get(t.root, keybytesToHex(key), 0)
	if err == nil && didResolve {
		t.root = newroot
	}
	return value, err
}

func (t *Trie) get(n node, key []byte, pos int) (value []byte, newnode node, didResolve bool, err error) {
	switch n := n.(type) {
	case nil:
		return nil, nil, false, ErrNotFound
	case valueNode:
		return n, n, false, nil
	case *shortNode:
		if len(key)-pos < len(n.Key) || !bytesEqual(n.Key, key[pos:pos+len(n.Key)]) {
			return nil, n, false, ErrNotFound
		}
		value, newnode, didResolve, err = t.get(n.Val, key, pos+len(n.Key))
		if err == nil && didResolve {
			cpy := n.copy()
			cpy.Val = newnode
			return value, cpy, true, nil
		}
		return value, n, didResolve, err
	case *fullNode:
		value, newnode, didResolve, err = t.get(n.Children[key[pos]], key, pos+1)
		if err == nil && didResolve {
			cpy := n.copy()
			cpy.Children[key[pos]] = newnode
			return value, cpy, true, nil
		}
		return value, n, didResolve, err
	case hashNode:
		child, err := t.resolveHash(n)
		if err != nil {
			return nil, n, true, err
		}
		value, newnode, _, err := t.get(child, key, pos)
		return value, newnode, true, err
	default:
		return nil, nil, false, errDecode
	}
}

// Update inserts or overwrites the value stored for key. An empty value
// behaves as Delete, matching go-ethereum's convention.
func (t *Trie) Update(key, value []byte) error {
	if len(value) == 0 {
		return t.Delete(key)
	}
	k := keybytesToHex(key)
	n, err := t.insert(t.root, nil, k, valueNode(value))
	if err != nil {
		return err
	}
	t.root = n
	return nil
}

func (t *Trie) insert(n node, prefix, key []byte, value node) (node, error) {
	if len(key) == 0 {
		return value, nil
	}
	switch n := n.(type) {
	case nil:
		return &shortNode{Key: append([]byte(nil), key...), Val: value}, nil

	case *shortNode:
		matchlen := prefixLen(key, n.Key)
		if matchlen == len(n.Key) {
			newVal, err := t.insert(n.Val, append(prefix, key[:matchlen]...), key[matchlen:], value)
			if err != nil {
				return nil, err
			}
			return &shortNode{Key: n.Key, Val: newVal}, nil
		}
		branch := &fullNode{}
		var err error
		branch.Children[n.Key[matchlen]], err = t.insert(nil, nil, n.Key[matchlen+1:], n.Val)
		if err != nil {
			return nil, err
		}
		branch.Children[key[matchlen]], err = t.insert(nil, nil, key[matchlen+1:], value)
		if err != nil {
			return nil, err
		}
		if matchlen == 0 {
			return branch, nil
		}
		return &shortNode{Key: append([]byte(nil), key[:matchlen]...), Val: branch}, nil

	case *fullNode:
		cpy := n.copy()
		child, err := t.resolve(cpy.Children[key[0]])
		if err != nil {
			return nil, err
		}
		cpy.Children[key[0]], err = t.insert(child, append(prefix, key[0]), key[1:], value)
		if err != nil {
			return nil, err
		}
		return cpy, nil

	case hashNode:
		resolved, err := t.resolveHash(n)
		if err != nil {
			return nil, err
		}
		return t.insert(resolved, prefix, key, value)

	default:
		return nil, errDecode
	}
}

// Delete removes the value stored for key, if any.
func (t *Trie) Delete(key []byte) error {
	k := keybytesToHex(key)
	n, err := t.delete(t.root, nil, k)
	if err != nil {
		return err
	}
	t.root = n
	return nil
}

func (t *Trie) delete(n node, prefix, key []byte) (node, error) {
	switch n := n.(type) {
	case nil:
		return nil, nil

	case valueNode:
		return nil, nil

	case *shortNode:
		matchlen := prefixLen(key, n.Key)
		if matchlen < len(n.Key) {
			return n, nil // key not present
		}
		if matchlen == len(key) {
			return nil, nil
		}
		child, err := t.resolve(n.Val)
		if err != nil {
			return nil, err
		}
		newChild, err := t.delete(child, append(prefix, key[:matchlen]...), key[matchlen:])
		if err != nil {
			return nil, err
		}
		switch newChild := newChild.(type) {
		case nil:
			return nil, nil
		case *shortNode:
			return &shortNode{Key: concatNibbles(n.Key, newChild.Key), Val: newChild.Val}, nil
		default:
			return &shortNode{Key: n.Key, Val: newChild}, nil
		}

	case *fullNode:
		cpy := n.copy()
		child, err := t.resolve(cpy.Children[key[0]])
		if err != nil {
			return nil, err
		}
		newChild, err := t.delete(child, append(prefix, key[0]), key[1:])
		if err != nil {
			return nil, err
		}
		cpy.Children[key[0]] = newChild

		used := -1
		count := 0
		for i, c := range cpy.Children {
			if c != nil {
				count++
				used = i
			}
		}
		if count == 1 && used != 16 {
			onlyChild, err := t.resolve(cpy.Children[used])
			if err != nil {
				return nil, err
			}
			if sn, ok := onlyChild.(*shortNode); ok {
				return &shortNode{Key: concatNibbles([]byte{byte(used)}, sn.Key), Val: sn.Val}, nil
			}
			return &shortNode{Key: []byte{byte(used)}, Val: cpy.Children[used]}, nil
		}
		if count == 1 && used == 16 {
			return &shortNode{Key: []byte{16}, Val: cpy.Children[16]}, nil
		}
		return cpy, nil

	case hashNode:
		resolved, err := t.resolveHash(n)
		if err != nil {
			return nil, err
		}
		return t.delete(resolved, prefix, key)

	default:
		return nil, errDecode
	}
}

func concatNibbles(a, b []byte) []byte {
	out := make([]byte, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Hash returns the root hash of the trie without persisting any nodes.
func (t *Trie) Hash() types.Hash {
	if t.root == nil {
		return types.EmptyRootHash
	}
	_, enc, err := hashRoot(t.root, nil)
	if err != nil {
		return types.EmptyRootHash
	}
	return types.BytesToHash(crypto.Keccak256(enc))
}

// Commit persists every dirty node reachable from the root into db (the
// trie's own db if none is given) and returns the resulting root hash.
func (t *Trie) Commit(db *Database) (types.Hash, error) {
	if db == nil {
		db = t.db
	}
	if t.root == nil {
		return types.EmptyRootHash, nil
	}
	_, enc, err := hashRoot(t.root, db)
	if err != nil {
		return types.Hash{}, err
	}
	h := types.BytesToHash(crypto.Keccak256(enc))
	db.Put(h, enc)
	t.root = hashNode(h.Bytes())
	t.db = db
	return h, nil
}
