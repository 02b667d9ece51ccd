package vm

import (
	"sync"

	"github.com/holiman/uint256"

	"github.com/execlayer/evmcore/params"
)

// Stack is the EVM operand stack: up to 1024 256-bit words.
type Stack struct {
	data []*uint256.Int
}

var stackPool = sync.Pool{
	New: func() interface{} { return &Stack{data: make([]*uint256.Int, 0, 16)} },
}

// NewStack returns an empty stack, reusing a pooled backing array to avoid
// allocating fresh per-frame scratch structures on every call.
func NewStack() *Stack {
	return stackPool.Get().(*Stack)
}

// ReturnStack releases st back to the pool for reuse by a later frame.
func ReturnStack(st *Stack) {
	st.data = st.data[:0]
	stackPool.Put(st)
}

func (st *Stack) push(v *uint256.Int) { st.data = append(st.data, v) }

// Push pushes v, returning ErrStackOverflow if the stack is already at its
// 1024-item limit.
func (st *Stack) Push(v *uint256.Int) error {
	if len(st.data) >= params.StackLimit {
		return ErrStackOverflow
	}
	st.push(v)
	return nil
}

// Pop removes and returns the top element. Callers are responsible for
// ensuring the stack is non-empty (the interpreter validates minStack
// before dispatch).
func (st *Stack) Pop() *uint256.Int {
	n := len(st.data) - 1
	v := st.data[n]
	st.data = st.data[:n]
	return v
}

// Peek returns the top element without removing it.
func (st *Stack) Peek() *uint256.Int { return st.data[len(st.data)-1] }

// Back returns the nth element from the top (0 = top), without removing it.
func (st *Stack) Back(n int) *uint256.Int { return st.data[len(st.data)-1-n] }

// Swap exchanges the top element with the nth element below it.
func (st *Stack) Swap(n int) {
	top := len(st.data) - 1
	st.data[top], st.data[top-n] = st.data[top-n], st.data[top]
}

// Dup duplicates the nth element from the top (1 = top) and pushes the copy.
func (st *Stack) Dup(n int) {
	st.push(new(uint256.Int).Set(st.data[len(st.data)-n]))
}

// Len returns the number of items currently on the stack.
func (st *Stack) Len() int { return len(st.data) }

// Data exposes the underlying slice, bottom to top, for tracing.
func (st *Stack) Data() []*uint256.Int { return st.data }
