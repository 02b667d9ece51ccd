package vm

import "github.com/holiman/uint256"

// Memory is the EVM's byte-addressed, zero-initialized, monotonically
// growing working memory for one frame. Gas
// for expansion is charged by the interpreter before any read or write
// reaches Memory; Memory itself never charges gas.
type Memory struct {
	store []byte
}

// NewMemory returns a new, empty Memory.
func NewMemory() *Memory { return &Memory{} }

// Resize grows memory to at least size bytes, zero-filling the new region.
// It never shrinks: EVM memory is monotonically non-decreasing within a
// frame.
func (m *Memory) Resize(size uint64) {
	if uint64(len(m.store)) < size {
		m.store = append(m.store, make([]byte, size-uint64(len(m.store)))...)
	}
}

// Set copies value into memory at [offset, offset+len(value)). The caller
// must have already Resize'd memory to cover the range.
func (m *Memory) Set(offset, size uint64, value []byte) {
	if size == 0 {
		return
	}
	copy(m.store[offset:offset+size], value)
}

// Set32 writes val as a 32-byte big-endian word at offset.
func (m *Memory) Set32(offset uint64, val *uint256.Int) {
	word := val.Bytes32()
	copy(m.store[offset:offset+32], word[:])
}

// Get returns a fresh copy of memory contents in [offset, offset+size).
func (m *Memory) Get(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	out := make([]byte, size)
	copy(out, m.store[offset:offset+size])
	return out
}

// GetPtr returns a direct slice into memory's backing array, for
// opcodes (KECCAK256, CREATE, RETURN, LOG) that only read.
func (m *Memory) GetPtr(offset, size uint64) []byte {
	if size == 0 {
		return nil
	}
	return m.store[offset : offset+size]
}

// Len returns the current size of memory in bytes.
func (m *Memory) Len() int { return len(m.store) }

// Data returns the full backing slice.
func (m *Memory) Data() []byte { return m.store }

// Copy implements MCOPY (EIP-5656): copy size bytes from src to dst within
// the same memory, correctly handling overlap.
func (m *Memory) Copy(dst, src, size uint64) {
	if size == 0 {
		return
	}
	copy(m.store[dst:dst+size], m.store[src:src+size])
}
