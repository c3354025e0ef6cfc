package replay

import (
	"encoding/json"

	"github.com/sentioxyz/aptos-core/internal/calltrace"
)

// Result is the replay node's answer: frames in call order, each placed in
// the tree by its TraceAddress (the child index at every level, root empty).
type Result struct {
	Trace    []RawFrame         `json:"trace"`
	GasStart uint64             `json:"gas_start"`
	GasEnd   uint64             `json:"gas_end"`
	Status   *calltrace.VMError `json:"vm_error,omitempty"`
}

type RawFrame struct {
	Type         string             `json:"type"`
	From         string             `json:"from"`
	To           string             `json:"to"`
	Function     string             `json:"function"`
	FdefIdx      uint16             `json:"fdef_idx"`
	PC           uint16             `json:"pc"`
	TypeArgs     []string           `json:"type_args,omitempty"`
	Inputs       []calltrace.Value  `json:"inputs,omitempty"`
	Outputs      []calltrace.Value  `json:"outputs,omitempty"`
	GasStart     uint64             `json:"gas_start"`
	GasEnd       uint64             `json:"gas_end"`
	TraceAddress []int              `json:"traceAddress"`
	Error        *calltrace.VMError `json:"error,omitempty"`
}

// Call is the entry function invocation to replay.
type Call struct {
	Function  string          `json:"function"`
	TypeArgs  []string        `json:"type_args"`
	Args      json.RawMessage `json:"args"`
	Senders   []string        `json:"senders"`
	GasBudget uint64          `json:"gas_budget"`
}
