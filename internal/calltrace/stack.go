package calltrace

import (
	"errors"
	"fmt"
	"sort"
)

// StackLimit bounds both the number of open frames and the children of a frame.
const StackLimit = 1024

var ErrCapacity = errors.New("calltrace: call stack limit exceeded")

// CapacityError is returned when a push would exceed StackLimit. Frame holds the
// rejected frame so the caller can decide what to do with it.
type CapacityError struct {
	Frame *Frame
	Len   int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("calltrace: call stack limit %d exceeded (len=%d)", StackLimit, e.Len)
}

func (e *CapacityError) Unwrap() error { return ErrCapacity }

// Stack records the open frames of a replay, innermost last. It is not safe for
// concurrent use; a replay drives it from a single goroutine.
type Stack struct {
	frames   []*Frame
	accounts map[string]struct{}
}

func NewStack() *Stack {
	return &Stack{accounts: make(map[string]struct{})}
}

func (s *Stack) Len() int { return len(s.frames) }

func (s *Stack) Push(f *Frame) error {
	if len(s.frames) >= StackLimit {
		return &CapacityError{Frame: f, Len: len(s.frames)}
	}
	s.frames = append(s.frames, f)
	s.touch(f)
	return nil
}

func (s *Stack) Prepend(f *Frame) error {
	if len(s.frames) >= StackLimit {
		return &CapacityError{Frame: f, Len: len(s.frames)}
	}
	s.frames = append([]*Frame{f}, s.frames...)
	s.touch(f)
	return nil
}

func (s *Stack) Pop() (*Frame, bool) {
	n := len(s.frames)
	if n == 0 {
		return nil, false
	}
	f := s.frames[n-1]
	s.frames[n-1] = nil
	s.frames = s.frames[:n-1]
	return f, true
}

// Root extracts the finished tree. It is only meaningful once every child has
// been attached and a single frame remains.
func (s *Stack) Root() (*Frame, bool) {
	return s.Pop()
}

func (s *Stack) Peek() (*Frame, bool) {
	if len(s.frames) == 0 {
		return nil, false
	}
	return s.frames[len(s.frames)-1], true
}

func (s *Stack) SetOutputs(values []Value) {
	s.top().Outputs = values
}

func (s *Stack) SetError(err *VMError) {
	s.top().Err = err
}

func (s *Stack) SetGasEnd(balance uint64) {
	s.top().Gas.CloseFrame(balance)
}

// SetRootGas replaces the gas accounting of the innermost frame, used when the
// VM reports the transaction level balance.
func (s *Stack) SetRootGas(start, end uint64) {
	g := MakeFrame(start)
	g.CloseFrame(end)
	s.top().Gas = g
}

func (s *Stack) AttachChild(child *Frame) {
	parent := s.top()
	if len(parent.Children) >= StackLimit {
		panic(fmt.Sprintf("calltrace: child limit exceeded in %s::%s", parent.Module, parent.Function))
	}
	parent.Children = append(parent.Children, child)
}

func (s *Stack) PrependChild(child *Frame) {
	parent := s.top()
	if len(parent.Children) >= StackLimit {
		panic(fmt.Sprintf("calltrace: child limit exceeded in %s::%s", parent.Module, parent.Function))
	}
	parent.Children = append([]*Frame{child}, parent.Children...)
}

// Merge appends the open frames of other. On error s is left untouched.
func (s *Stack) Merge(other *Stack) error {
	if other == nil || len(other.frames) == 0 {
		return nil
	}
	if total := len(s.frames) + len(other.frames); total > StackLimit {
		return &CapacityError{Len: total}
	}
	s.frames = append(s.frames, other.frames...)
	if s.accounts == nil {
		s.accounts = make(map[string]struct{}, len(other.accounts))
	}
	for account := range other.accounts {
		s.accounts[account] = struct{}{}
	}
	return nil
}

// Accounts returns the distinct accounts touched so far, sorted.
func (s *Stack) Accounts() []string {
	out := make([]string, 0, len(s.accounts))
	for account := range s.accounts {
		out = append(out, account)
	}
	sort.Strings(out)
	return out
}

func (s *Stack) top() *Frame {
	if len(s.frames) == 0 {
		panic("calltrace: operation on empty call stack")
	}
	return s.frames[len(s.frames)-1]
}

func (s *Stack) touch(f *Frame) {
	if s.accounts == nil {
		s.accounts = make(map[string]struct{})
	}
	if account := f.Account(); account != "" {
		s.accounts[account] = struct{}{}
	}
}
