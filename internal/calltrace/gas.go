package calltrace

import "fmt"

// GasInfo tracks the gas balance of a single frame between entry and exit.
type GasInfo struct {
	Start  uint64 `json:"start_balance"`
	End    uint64 `json:"end_balance"`
	closed bool
}

func MakeFrame(start uint64) GasInfo {
	return GasInfo{Start: start}
}

// CloseFrame records the balance at exit. A later call overwrites the earlier
// value. An end balance above the start balance is a VM defect and panics.
func (g *GasInfo) CloseFrame(end uint64) {
	if end > g.Start {
		panic(fmt.Sprintf("calltrace: end balance %d exceeds start balance %d", end, g.Start))
	}
	g.End = end
	g.closed = true
}

func (g GasInfo) Closed() bool {
	return g.closed
}

func (g GasInfo) GasUsed() uint64 {
	if !g.closed {
		return 0
	}
	return g.Start - g.End
}
