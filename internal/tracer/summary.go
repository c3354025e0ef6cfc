package tracer

import (
	"sort"

	"github.com/sentioxyz/aptos-core/internal/calltrace"
)

// ModuleGas is the gas spent inside one module, excluding gas spent in the
// calls it made.
type ModuleGas struct {
	Module  string `json:"module"`
	GasUsed uint64 `json:"gas_used"`
	Calls   int    `json:"calls"`
}

// SummarizeGas aggregates exclusive gas per callee module, highest first.
func SummarizeGas(root *calltrace.Frame) []ModuleGas {
	if root == nil {
		return nil
	}
	totals := make(map[string]*ModuleGas)
	root.Walk(func(f *calltrace.Frame, _ int) bool {
		var inner uint64
		for _, c := range f.Children {
			inner += c.Gas.GasUsed()
		}
		used := f.Gas.GasUsed()
		if inner > used {
			used = 0
		} else {
			used -= inner
		}
		m, ok := totals[f.Module]
		if !ok {
			m = &ModuleGas{Module: f.Module}
			totals[f.Module] = m
		}
		m.GasUsed += used
		m.Calls++
		return true
	})

	out := make([]ModuleGas, 0, len(totals))
	for _, m := range totals {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GasUsed != out[j].GasUsed {
			return out[i].GasUsed > out[j].GasUsed
		}
		return out[i].Module < out[j].Module
	})
	return out
}
