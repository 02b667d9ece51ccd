// Package state implements the Ethereum world-state model: accounts,
// per-account storage, code, and the checkpointed journal that gives every
// frame snapshot/rollback semantics.
package state

import (
	"fmt"
	"sort"

	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/core/types"
	"github.com/execlayer/evmcore/crypto"
	"github.com/execlayer/evmcore/trie"
)

// stateObject is the in-memory working copy of one account: its committed
// account record plus any storage writes made since the last commit.
type stateObject struct {
	account types.Account
	code    []byte

	// dirtyStorage holds writes made since the account was loaded;
	// committedStorage holds the values last persisted to the account's
	// storage trie. A slot absent from both reads as zero (spec I5).
	dirtyStorage     map[types.Hash]types.Hash
	committedStorage map[types.Hash]types.Hash

	selfDestructed bool
	newlyCreated   bool // created by CREATE/CREATE2 in the current block (EIP-6780)
	touched        bool

	storageTrie *trie.Trie // lazily loaded on first storage read/write
}

func newStateObject() *stateObject {
	return &stateObject{
		account:          *types.NewEmptyAccount(),
		dirtyStorage:     make(map[types.Hash]types.Hash),
		committedStorage: make(map[types.Hash]types.Hash),
	}
}

func (o *stateObject) copy() *stateObject {
	cp := &stateObject{
		account:          *o.account.Copy(),
		code:             append([]byte(nil), o.code...),
		dirtyStorage:     make(map[types.Hash]types.Hash, len(o.dirtyStorage)),
		committedStorage: make(map[types.Hash]types.Hash, len(o.committedStorage)),
		selfDestructed:   o.selfDestructed,
		newlyCreated:     o.newlyCreated,
		touched:          o.touched,
		storageTrie:      o.storageTrie,
	}
	for k, v := range o.dirtyStorage {
		cp.dirtyStorage[k] = v
	}
	for k, v := range o.committedStorage {
		cp.committedStorage[k] = v
	}
	return cp
}

func (o *stateObject) empty() bool {
	return o.account.Nonce == 0 && o.account.Balance.IsZero() && o.codeHashEmpty()
}

func (o *stateObject) codeHashEmpty() bool {
	return types.Hash(types.BytesToHash(o.account.CodeHash)) == types.EmptyCodeHash
}

// StateDB is the journaled in-memory world state every frame, the message
// executor, and the state transition driver mutate. It is the concrete
// implementation of the account/storage/checkpoint interface the rest of
// this module depends on: get/set account, get/set storage,
// checkpoint/commit/rollback, and so on.
type StateDB struct {
	db      *trie.Database
	trie    *trie.Trie // the top-level account trie, keyed by Keccak256(address)
	objects map[types.Address]*stateObject

	journal    *journal
	logs       map[types.Hash][]*types.Log
	logSize    uint
	refund     uint64
	accessList *accessList

	transientStorage map[types.Address]map[types.Hash]types.Hash

	txHash  types.Hash
	txIndex int
}

// New opens a StateDB rooted at root (types.Hash{} for a brand-new, empty
// state), backed by db.
func New(root types.Hash, db *trie.Database) (*StateDB, error) {
	tr, err := trie.New(root, db)
	if err != nil {
		return nil, fmt.Errorf("state: open account trie: %w", err)
	}
	return &StateDB{
		db:               db,
		trie:             tr,
		objects:          make(map[types.Address]*stateObject),
		journal:          newJournal(),
		logs:             make(map[types.Hash][]*types.Log),
		accessList:       newAccessList(),
		transientStorage: make(map[types.Address]map[types.Hash]types.Hash),
	}, nil
}

func (s *StateDB) mustObject(addr types.Address) *stateObject {
	obj := s.objects[addr]
	if obj == nil {
		panic(fmt.Sprintf("state: journal reverted an unloaded account %s", addr.Hex()))
	}
	return obj
}

// getObject returns the loaded state object for addr, lazily pulling it
// from the account trie on first access. It never returns nil; an account
// absent from the trie loads as the canonical empty account.
func (s *StateDB) getObject(addr types.Address) *stateObject {
	if obj, ok := s.objects[addr]; ok {
		return obj
	}
	obj := newStateObject()
	if enc, err := s.trie.Get(crypto.Keccak256(addr.Bytes())); err == nil && len(enc) > 0 {
		acc, decErr := decodeAccount(enc)
		if decErr == nil {
			obj.account = *acc
		}
	}
	s.objects[addr] = obj
	return obj
}

func (s *StateDB) markTouched(addr types.Address) {
	obj := s.getObject(addr)
	if !obj.touched {
		s.journal.append(touchChange{addr: addr, prevTouch: obj.touched})
		obj.touched = true
	}
}

// --- Account operations ---

// CreateAccount resets addr to a freshly-created account, preserving any
// balance it already held (CALL-with-value can credit a not-yet-existing
// account before CREATE runs against it, per spec I7).
func (s *StateDB) CreateAccount(addr types.Address) {
	prev := s.objects[addr]
	// getObject loads addr from the trie when it is not cached yet.
	prevBalance := s.getObject(addr).account.Balance
	s.journal.append(resetObjectChange{addr: addr, prev: prev})
	obj := newStateObject()
	if prevBalance != nil {
		obj.account.Balance = new(uint256.Int).Set(prevBalance)
	}
	obj.newlyCreated = true
	s.objects[addr] = obj
	s.markTouched(addr)
}

func (s *StateDB) SubBalance(addr types.Address, amount *uint256.Int) {
	if amount.IsZero() {
		s.markTouched(addr)
		return
	}
	obj := s.getObject(addr)
	s.journal.append(balanceChange{addr: addr, prev: new(uint256.Int).Set(obj.account.Balance)})
	obj.account.Balance = new(uint256.Int).Sub(obj.account.Balance, amount)
	s.markTouched(addr)
}

func (s *StateDB) AddBalance(addr types.Address, amount *uint256.Int) {
	obj := s.getObject(addr)
	s.journal.append(balanceChange{addr: addr, prev: new(uint256.Int).Set(obj.account.Balance)})
	obj.account.Balance = new(uint256.Int).Add(obj.account.Balance, amount)
	s.markTouched(addr)
}

func (s *StateDB) GetBalance(addr types.Address) *uint256.Int {
	return new(uint256.Int).Set(s.getObject(addr).account.Balance)
}

func (s *StateDB) GetNonce(addr types.Address) uint64 { return s.getObject(addr).account.Nonce }

func (s *StateDB) SetNonce(addr types.Address, nonce uint64) {
	obj := s.getObject(addr)
	s.journal.append(nonceChange{addr: addr, prev: obj.account.Nonce})
	obj.account.Nonce = nonce
}

func (s *StateDB) GetCode(addr types.Address) []byte { return s.getObject(addr).code }

func (s *StateDB) SetCode(addr types.Address, code []byte) {
	obj := s.getObject(addr)
	s.journal.append(codeChange{addr: addr, prevCode: obj.code, prevHash: obj.account.CodeHash})
	obj.code = code
	if len(code) == 0 {
		obj.account.CodeHash = append([]byte(nil), types.EmptyCodeHash.Bytes()...)
	} else {
		obj.account.CodeHash = crypto.Keccak256(code)
	}
}

func (s *StateDB) GetCodeHash(addr types.Address) types.Hash {
	return types.BytesToHash(s.getObject(addr).account.CodeHash)
}

func (s *StateDB) GetCodeSize(addr types.Address) int { return len(s.getObject(addr).code) }

// --- Self-destruct ---

// SelfDestruct marks addr for deletion at the end of the transaction and
// zeroes its balance (the balance itself was already transferred to the
// beneficiary by the caller before this is invoked).
func (s *StateDB) SelfDestruct(addr types.Address) {
	obj := s.objects[addr]
	if obj == nil || obj.selfDestructed {
		return
	}
	s.journal.append(selfDestructChange{addr: addr, prevDestruct: obj.selfDestructed, prevBalance: new(uint256.Int).Set(obj.account.Balance)})
	obj.selfDestructed = true
	obj.account.Balance = new(uint256.Int)
}

func (s *StateDB) HasSelfDestructed(addr types.Address) bool {
	obj := s.objects[addr]
	return obj != nil && obj.selfDestructed
}

// --- Storage ---

func (s *StateDB) loadStorageTrie(obj *stateObject) *trie.Trie {
	if obj.storageTrie == nil {
		tr, err := trie.New(obj.account.Root, s.db)
		if err != nil {
			tr, _ = trie.New(types.EmptyRootHash, s.db)
		}
		obj.storageTrie = tr
	}
	return obj.storageTrie
}

func (s *StateDB) GetState(addr types.Address, key types.Hash) types.Hash {
	obj := s.getObject(addr)
	if v, ok := obj.dirtyStorage[key]; ok {
		return v
	}
	return s.GetCommittedState(addr, key)
}

func (s *StateDB) GetCommittedState(addr types.Address, key types.Hash) types.Hash {
	obj := s.getObject(addr)
	if v, ok := obj.committedStorage[key]; ok {
		return v
	}
	tr := s.loadStorageTrie(obj)
	enc, err := tr.Get(crypto.Keccak256(key.Bytes()))
	var v types.Hash
	if err == nil && len(enc) > 0 {
		var raw []byte
		if decodeRLPBytes(enc, &raw) {
			v = types.BytesToHash(raw)
		}
	}
	obj.committedStorage[key] = v
	return v
}

func (s *StateDB) SetState(addr types.Address, key, value types.Hash) {
	obj := s.getObject(addr)
	prev, exists := obj.dirtyStorage[key]
	if !exists {
		prev = s.GetCommittedState(addr, key)
	}
	s.journal.append(storageChange{addr: addr, key: key, prev: prev, prevExists: exists})
	obj.dirtyStorage[key] = value
	s.markTouched(addr)
}

// GetStorageRoot returns the (possibly stale, pre-commit) storage root last
// committed for addr.
func (s *StateDB) GetStorageRoot(addr types.Address) types.Hash {
	return s.getObject(addr).account.Root
}

// --- Existence predicates (spec I3, I7) ---

func (s *StateDB) Exist(addr types.Address) bool {
	if obj, ok := s.objects[addr]; ok {
		return !obj.empty() || obj.touched
	}
	enc, err := s.trie.Get(crypto.Keccak256(addr.Bytes()))
	return err == nil && len(enc) > 0
}

// Empty implements the EIP-161 "empty account" predicate (spec I3).
func (s *StateDB) Empty(addr types.Address) bool { return s.getObject(addr).empty() }

// --- Snapshot / rollback ---

func (s *StateDB) Snapshot() int { return s.journal.snapshot() }

func (s *StateDB) RevertToSnapshot(id int) { s.journal.revertTo(s, id) }

// --- Logs ---

func (s *StateDB) AddLog(log *types.Log) {
	log.TxHash = s.txHash
	log.TxIndex = uint(s.txIndex)
	log.Index = s.logSize
	s.journal.append(logChange{txHash: s.txHash, prevLen: len(s.logs[s.txHash])})
	s.logs[s.txHash] = append(s.logs[s.txHash], log)
	s.logSize++
}

func (s *StateDB) GetLogs(txHash types.Hash) []*types.Log { return s.logs[txHash] }

// SetTxContext records which transaction (and its index within the block)
// subsequent AddLog/warm-address calls should be attributed to.
func (s *StateDB) SetTxContext(txHash types.Hash, txIndex int) {
	s.txHash, s.txIndex = txHash, txIndex
}

// --- Refund counter ---

func (s *StateDB) AddRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	s.refund += gas
}

func (s *StateDB) SubRefund(gas uint64) {
	s.journal.append(refundChange{prev: s.refund})
	if gas > s.refund {
		panic(fmt.Sprintf("state: refund counter below zero (has %d, sub %d)", s.refund, gas))
	}
	s.refund -= gas
}

func (s *StateDB) GetRefund() uint64 { return s.refund }

// --- Access list ---

func (s *StateDB) AddAddressToAccessList(addr types.Address) {
	if !s.accessList.AddAddress(addr) {
		s.journal.append(accessListAddressChange{addr: addr})
	}
}

func (s *StateDB) AddSlotToAccessList(addr types.Address, slot types.Hash) {
	addrPresent, slotPresent := s.accessList.AddSlot(addr, slot)
	if !addrPresent {
		s.journal.append(accessListAddressChange{addr: addr})
	}
	if !slotPresent {
		s.journal.append(accessListSlotChange{addr: addr, slot: slot})
	}
}

func (s *StateDB) AddressInAccessList(addr types.Address) bool {
	return s.accessList.ContainsAddress(addr)
}

func (s *StateDB) SlotInAccessList(addr types.Address, slot types.Hash) (addrOk, slotOk bool) {
	return s.accessList.ContainsSlot(addr, slot)
}

// PrepareAccessList implements the access-list pre-warming a transaction's
// execution requires: the sender, the recipient (or the about-to-be-created contract address),
// every tx access-list entry, and, post-Shanghai (EIP-3651), the coinbase.
func (s *StateDB) PrepareAccessList(sender types.Address, dst *types.Address, precompiles []types.Address, list types.AccessList, coinbase *types.Address) {
	s.AddAddressToAccessList(sender)
	if dst != nil {
		s.AddAddressToAccessList(*dst)
	}
	for _, addr := range precompiles {
		s.AddAddressToAccessList(addr)
	}
	for _, entry := range list {
		s.AddAddressToAccessList(entry.Address)
		for _, key := range entry.StorageKeys {
			s.AddSlotToAccessList(entry.Address, key)
		}
	}
	if coinbase != nil {
		s.AddAddressToAccessList(*coinbase)
	}
}

// --- Transient storage (EIP-1153, Cancun+) ---

func (s *StateDB) GetTransientState(addr types.Address, key types.Hash) types.Hash {
	return s.transientStorage[addr][key]
}

func (s *StateDB) SetTransientState(addr types.Address, key, value types.Hash) {
	prev := s.transientStorage[addr][key]
	s.journal.append(transientStorageChange{addr: addr, key: key, prev: prev})
	if s.transientStorage[addr] == nil {
		s.transientStorage[addr] = make(map[types.Hash]types.Hash)
	}
	s.transientStorage[addr][key] = value
}

// --- EIP-158 empty-account sweep (spec I3) ---

// DeleteEmptyTouchedAccounts implements the EIP-158 end-of-transaction
// sweep: every account touched during the transaction that is now empty is
// removed from state entirely.
func (s *StateDB) DeleteEmptyTouchedAccounts() {
	addrs := make([]types.Address, 0, len(s.objects))
	for addr := range s.objects {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return lessAddr(addrs[i], addrs[j]) })
	for _, addr := range addrs {
		obj := s.objects[addr]
		if obj.touched && obj.empty() {
			delete(s.objects, addr)
			_ = s.trie.Delete(crypto.Keccak256(addr.Bytes()))
		}
	}
}

func lessAddr(a, b types.Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

// --- Commit ---

// Commit writes every dirty account (storage first, then the account
// record) into the account trie and returns the new state root. Self-
// destructed accounts are deleted outright. Called once per block, after
// all transactions and block-level finalization have run.
func (s *StateDB) Commit() (types.Hash, error) {
	addrs := make([]types.Address, 0, len(s.objects))
	for addr := range s.objects {
		addrs = append(addrs, addr)
	}
	sort.Slice(addrs, func(i, j int) bool { return lessAddr(addrs[i], addrs[j]) })

	for _, addr := range addrs {
		obj := s.objects[addr]
		key := crypto.Keccak256(addr.Bytes())
		if obj.selfDestructed || obj.empty() {
			if err := s.trie.Delete(key); err != nil && err != trie.ErrNotFound {
				return types.Hash{}, err
			}
			continue
		}
		if err := s.commitStorage(obj); err != nil {
			return types.Hash{}, err
		}
		enc := encodeAccount(&obj.account)
		if err := s.trie.Update(key, enc); err != nil {
			return types.Hash{}, err
		}
	}
	return s.trie.Commit(s.db)
}

func (s *StateDB) commitStorage(obj *stateObject) error {
	if len(obj.dirtyStorage) == 0 {
		return nil
	}
	tr := s.loadStorageTrie(obj)
	keys := make([]types.Hash, 0, len(obj.dirtyStorage))
	for k := range obj.dirtyStorage {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return lessAddr32(keys[i], keys[j]) })
	for _, key := range keys {
		value := obj.dirtyStorage[key]
		trieKey := crypto.Keccak256(key.Bytes())
		if value.IsZero() {
			if err := tr.Delete(trieKey); err != nil && err != trie.ErrNotFound {
				return err
			}
		} else {
			if err := tr.Update(trieKey, encodeStorageValue(value)); err != nil {
				return err
			}
		}
		obj.committedStorage[key] = value
		delete(obj.dirtyStorage, key)
	}
	root, err := tr.Commit(s.db)
	if err != nil {
		return err
	}
	obj.account.Root = root
	return nil
}

func lessAddr32(a, b types.Hash) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
