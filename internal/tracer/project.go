package tracer

import "github.com/sentioxyz/aptos-core/internal/calltrace"

// CallTraceWithSource is the wire form of a resolved frame.
type CallTraceWithSource struct {
	FromModuleID string                `json:"from_module_id"`
	ModuleID     string                `json:"module_id"`
	FuncName     string                `json:"func_name"`
	Inputs       []any                 `json:"inputs"`
	ReturnValue  []any                 `json:"return_value"`
	TypeArgs     []string              `json:"type_args"`
	Calls        []CallTraceWithSource `json:"calls"`
	Location     *Location             `json:"location,omitempty"`
	GasUsed      uint64                `json:"gas_used"`
	PC           uint16                `json:"pc"`
	FdefIdx      uint16                `json:"fdef_idx"`
	Error        string                `json:"error,omitempty"`
}

// EmptyTrace is returned for transactions that do not invoke an entry function.
func EmptyTrace() CallTraceWithSource {
	return CallTraceWithSource{
		Inputs:      []any{},
		ReturnValue: []any{},
		TypeArgs:    []string{},
		Calls:       []CallTraceWithSource{},
	}
}

func Project(n *ResolvedFrame) CallTraceWithSource {
	if n == nil || n.Frame == nil {
		return EmptyTrace()
	}
	f := n.Frame
	out := CallTraceWithSource{
		FromModuleID: f.CallerModule,
		ModuleID:     f.Module,
		FuncName:     f.Function,
		Inputs:       generic(f.Inputs),
		ReturnValue:  generic(f.Outputs),
		TypeArgs:     f.TypeArgs,
		Calls:        make([]CallTraceWithSource, 0, len(n.Children)),
		Location:     n.Location,
		GasUsed:      f.Gas.GasUsed(),
		PC:           f.PC,
		FdefIdx:      f.FunctionIndex,
	}
	if out.TypeArgs == nil {
		out.TypeArgs = []string{}
	}
	if f.Err != nil {
		out.Error = f.Err.Error()
	}
	for _, c := range n.Children {
		out.Calls = append(out.Calls, Project(c))
	}
	return out
}

func generic(values []calltrace.Value) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v.Generic()
	}
	return out
}
