package calltrace

import "strings"

// Frame is one recorded invocation. Children are sealed into the frame when it
// is closed and the frame itself is attached to its parent.
type Frame struct {
	PC            uint16
	CallerModule  string
	Module        string
	Function      string
	Inputs        []Value
	Outputs       []Value
	TypeArgs      []string
	Children      []*Frame
	FunctionIndex uint16
	Gas           GasInfo
	Err           *VMError
}

func NewFrame(caller, module, function string, fdef, pc uint16, gasStart uint64) *Frame {
	return &Frame{
		PC:            pc,
		CallerModule:  caller,
		Module:        module,
		Function:      function,
		FunctionIndex: fdef,
		Gas:           MakeFrame(gasStart),
	}
}

// Account returns the address part of the callee module id.
func (f *Frame) Account() string {
	return AccountOf(f.Module)
}

// Walk visits f and its descendants depth first, parents before children.
func (f *Frame) Walk(fn func(frame *Frame, depth int) bool) {
	f.walk(fn, 0)
}

func (f *Frame) walk(fn func(*Frame, int) bool, depth int) bool {
	if !fn(f, depth) {
		return false
	}
	for _, child := range f.Children {
		if !child.walk(fn, depth+1) {
			return false
		}
	}
	return true
}

// SplitModuleID splits "0x1::coin" into its account and module name.
func SplitModuleID(id string) (account, name string) {
	account, name, _ = strings.Cut(id, "::")
	return account, name
}

func AccountOf(moduleID string) string {
	account, _ := SplitModuleID(moduleID)
	return account
}
