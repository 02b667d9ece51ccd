package trie

import (
	"fmt"

	"github.com/execlayer/evmcore/core/types"
)

// node is any trie node kind: the four variants below, mirroring the
// Merkle Patricia Trie's canonical node shapes.
type node interface {
	fstring(indent string) string
}

// fullNode is a 16-way branch node (one slot per nibble) plus an optional
// value held by a key that terminates exactly at this branch.
type fullNode struct {
	Children [17]node // index 16 holds a terminating value, if any
}

// shortNode is either a leaf (Val is a valueNode) or an extension (Val is
// another node), compressing a run of nibbles with no branching.
type shortNode struct {
	Key []byte // hex-encoded, possibly terminated
	Val node
}

// hashNode is a reference to a node stored elsewhere in the database,
// addressed by its Keccak256 hash; encountered when a child is too large to
// inline and has been collapsed during a previous commit.
type hashNode []byte

// valueNode is a raw leaf value: the RLP-encoded account or the raw storage
// value, depending on which trie it lives in.
type valueNode []byte

func (n *fullNode) fstring(ind string) string {
	resp := "[\n" + ind + "  "
	for i, node := range n.Children {
		if node == nil {
			resp += fmt.Sprintf("%x: <nil> ", i)
			continue
		}
		resp += fmt.Sprintf("%x: %v", i, node.fstring(ind+"  "))
	}
	return resp + "\n" + ind + "]"
}
func (n *shortNode) fstring(ind string) string {
	return fmt.Sprintf("{%x: %v} ", n.Key, n.Val.fstring(ind+"  "))
}
func (n hashNode) fstring(string) string  { return fmt.Sprintf("<%x> ", []byte(n)) }
func (n valueNode) fstring(string) string { return fmt.Sprintf("%x ", []byte(n)) }

func (n *fullNode) copy() *fullNode {
	cpy := *n
	return &cpy
}
func (n *shortNode) copy() *shortNode {
	cpy := *n
	return &cpy
}

// keybytesToHex converts a raw key into its nibble representation with a
// trailing terminator nibble, the form every trie lookup operates on.
func keybytesToHex(key []byte) []byte {
	return addTerminator(nibblesFromBytes(key))
}

// HashFromAccount returns the storage-root placeholder for a brand-new
// account: the empty trie root.
func HashFromAccount() types.Hash { return types.EmptyRootHash }
