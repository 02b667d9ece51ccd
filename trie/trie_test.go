package trie

import (
	"bytes"
	"testing"

	"github.com/execlayer/evmcore/core/types"
)

func TestTrieNewEmpty(t *testing.T) {
	tr, err := New(types.Hash{}, NewDatabase())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := tr.Hash(); got != types.EmptyRootHash {
		t.Fatalf("Hash() of empty trie = %s, want EmptyRootHash", got)
	}
}

func TestTrieInsertGet(t *testing.T) {
	tr, _ := New(types.Hash{}, NewDatabase())

	if err := tr.Update([]byte("doe"), []byte("reindeer")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := tr.Update([]byte("dog"), []byte("puppy")); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if err := tr.Update([]byte("dogglesworth"), []byte("cat")); err != nil {
		t.Fatalf("Update: %v", err)
	}

	for key, want := range map[string]string{
		"doe":          "reindeer",
		"dog":          "puppy",
		"dogglesworth": "cat",
	} {
		got, err := tr.Get([]byte(key))
		if err != nil {
			t.Fatalf("Get(%q): %v", key, err)
		}
		if string(got) != want {
			t.Errorf("Get(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestTrieGetMissingKey(t *testing.T) {
	tr, _ := New(types.Hash{}, NewDatabase())
	tr.Update([]byte("dog"), []byte("puppy"))

	if _, err := tr.Get([]byte("cat")); err != ErrNotFound {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

func TestTrieUpdateOverwritesExistingKey(t *testing.T) {
	tr, _ := New(types.Hash{}, NewDatabase())
	tr.Update([]byte("dog"), []byte("puppy"))
	tr.Update([]byte("dog"), []byte("wolf"))

	got, err := tr.Get([]byte("dog"))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != "wolf" {
		t.Errorf("Get(dog) after overwrite = %q, want %q", got, "wolf")
	}
}

func TestTrieDeleteRemovesKey(t *testing.T) {
	tr, _ := New(types.Hash{}, NewDatabase())
	tr.Update([]byte("dog"), []byte("puppy"))
	tr.Update([]byte("doe"), []byte("reindeer"))

	if err := tr.Delete([]byte("dog")); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, err := tr.Get([]byte("dog")); err != ErrNotFound {
		t.Errorf("Get(dog) after delete error = %v, want ErrNotFound", err)
	}

	got, err := tr.Get([]byte("doe"))
	if err != nil || string(got) != "reindeer" {
		t.Errorf("Get(doe) after deleting a sibling key = %q, %v, want %q, nil", got, err, "reindeer")
	}
}

func TestTrieDeleteEverythingRestoresEmptyRoot(t *testing.T) {
	tr, _ := New(types.Hash{}, NewDatabase())
	tr.Update([]byte("dog"), []byte("puppy"))
	tr.Update([]byte("doe"), []byte("reindeer"))

	tr.Delete([]byte("dog"))
	tr.Delete([]byte("doe"))

	if got := tr.Hash(); got != types.EmptyRootHash {
		t.Errorf("Hash() after deleting every key = %s, want EmptyRootHash", got)
	}
}

func TestTrieCommitAndReopenRoundTrip(t *testing.T) {
	db := NewDatabase()
	tr, _ := New(types.Hash{}, db)
	tr.Update([]byte("doe"), []byte("reindeer"))
	tr.Update([]byte("dog"), []byte("puppy"))
	tr.Update([]byte("dogglesworth"), []byte("cat"))

	root, err := tr.Commit(db)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if root == types.EmptyRootHash {
		t.Fatal("Commit of a non-empty trie must not produce the empty root")
	}
	if db.Len() == 0 {
		t.Fatal("Commit must persist at least one node into the database")
	}

	reopened, err := New(root, db)
	if err != nil {
		t.Fatalf("New(root, db): %v", err)
	}
	for key, want := range map[string]string{
		"doe":          "reindeer",
		"dog":          "puppy",
		"dogglesworth": "cat",
	} {
		got, err := reopened.Get([]byte(key))
		if err != nil {
			t.Fatalf("Get(%q) on reopened trie: %v", key, err)
		}
		if string(got) != want {
			t.Errorf("Get(%q) on reopened trie = %q, want %q", key, got, want)
		}
	}
}

func TestTrieHashIsOrderIndependent(t *testing.T) {
	db1, db2 := NewDatabase(), NewDatabase()
	tr1, _ := New(types.Hash{}, db1)
	tr2, _ := New(types.Hash{}, db2)

	tr1.Update([]byte("doe"), []byte("reindeer"))
	tr1.Update([]byte("dog"), []byte("puppy"))

	tr2.Update([]byte("dog"), []byte("puppy"))
	tr2.Update([]byte("doe"), []byte("reindeer"))

	if tr1.Hash() != tr2.Hash() {
		t.Errorf("Hash() depends on insertion order: %s != %s", tr1.Hash(), tr2.Hash())
	}
}

func TestTrieGetOnNonexistentRootErrors(t *testing.T) {
	bogus := types.BytesToHash(bytes.Repeat([]byte{0xAB}, 32))
	if _, err := New(bogus, NewDatabase()); err == nil {
		t.Error("New with a root absent from the database should error")
	}
}
