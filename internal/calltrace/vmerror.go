package calltrace

import (
	"fmt"
	"strings"
)

// VMError is the terminal error reported by the VM for the frame it aborted in.
type VMError struct {
	StatusCode    uint64  `json:"status_code"`
	Status        string  `json:"status,omitempty"`
	SubStatus     *uint64 `json:"sub_status,omitempty"`
	Location      string  `json:"location,omitempty"`
	FunctionIndex *uint16 `json:"function_index,omitempty"`
	CodeOffset    *uint16 `json:"code_offset,omitempty"`
	Message       string  `json:"message,omitempty"`
}

func (e *VMError) Error() string {
	var b strings.Builder
	if e.Status != "" {
		b.WriteString(e.Status)
	} else {
		fmt.Fprintf(&b, "status %d", e.StatusCode)
	}
	if e.SubStatus != nil {
		fmt.Fprintf(&b, " (sub status %d)", *e.SubStatus)
	}
	if e.Location != "" {
		fmt.Fprintf(&b, " at %s", e.Location)
		if e.FunctionIndex != nil {
			fmt.Fprintf(&b, "::%d", *e.FunctionIndex)
		}
		if e.CodeOffset != nil {
			fmt.Fprintf(&b, "@%d", *e.CodeOffset)
		}
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	return b.String()
}
