package trie

import (
	"sync"

	"github.com/execlayer/evmcore/core/types"
)

// Database is a content-addressed store of trie nodes keyed by their
// Keccak256 hash, the flat backing store every Trie commits its collapsed
// nodes into.
type Database struct {
	mu    sync.RWMutex
	nodes map[types.Hash][]byte
}

// NewDatabase returns an empty in-memory node database.
func NewDatabase() *Database {
	return &Database{nodes: make(map[types.Hash][]byte)}
}

func (db *Database) Get(hash types.Hash) ([]byte, bool) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	v, ok := db.nodes[hash]
	return v, ok
}

func (db *Database) Put(hash types.Hash, blob []byte) {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nodes[hash] = append([]byte(nil), blob...)
}

// Len reports the number of distinct node blobs stored, used by tests that
// check a commit actually persisted something.
func (db *Database) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.nodes)
}
