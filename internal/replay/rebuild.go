package replay

import (
	"errors"
	"fmt"

	"github.com/sentioxyz/aptos-core/internal/calltrace"
)

var ErrMalformed = errors.New("replay: malformed trace")

// Rebuild drives a calltrace.Stack through the enter and exit events implied by
// res.Trace and returns it holding the finished root frame. A trace deeper or
// wider than calltrace.StackLimit is dropped with an error wrapping
// calltrace.ErrCapacity.
func Rebuild(res *Result) (*calltrace.Stack, error) {
	s := calltrace.NewStack()
	if len(res.Trace) == 0 {
		return s, nil
	}

	open := make([]*RawFrame, 0, 16)
	for i := range res.Trace {
		raw := &res.Trace[i]
		depth := len(raw.TraceAddress)
		switch {
		case i == 0 && depth != 0:
			return nil, fmt.Errorf("%w: first frame has trace address %v", ErrMalformed, raw.TraceAddress)
		case i > 0 && depth == 0:
			return nil, fmt.Errorf("%w: second root at frame %d", ErrMalformed, i)
		case depth > s.Len():
			return nil, fmt.Errorf("%w: frame %d skips a level (depth %d, open %d)", ErrMalformed, i, depth, s.Len())
		}

		for s.Len() > depth {
			if err := closeTop(s, open[len(open)-1]); err != nil {
				return nil, err
			}
			open = open[:len(open)-1]
		}
		if depth > 0 {
			parent, _ := s.Peek()
			if want := len(parent.Children); raw.TraceAddress[depth-1] != want {
				return nil, fmt.Errorf("%w: frame %d has child index %d, expected %d", ErrMalformed, i, raw.TraceAddress[depth-1], want)
			}
		}

		f := calltrace.NewFrame(raw.From, raw.To, raw.Function, raw.FdefIdx, raw.PC, raw.GasStart)
		f.Inputs = raw.Inputs
		f.TypeArgs = raw.TypeArgs
		if err := s.Push(f); err != nil {
			return nil, fmt.Errorf("replay: rebuild at frame %d: %w", i, err)
		}
		open = append(open, raw)
	}

	for s.Len() > 1 {
		if err := closeTop(s, open[len(open)-1]); err != nil {
			return nil, err
		}
		open = open[:len(open)-1]
	}

	root := open[0]
	if err := finish(s, root); err != nil {
		return nil, err
	}
	if res.GasStart > 0 {
		if res.GasEnd > res.GasStart {
			return nil, fmt.Errorf("%w: transaction gas end %d above start %d", ErrMalformed, res.GasEnd, res.GasStart)
		}
		s.SetRootGas(res.GasStart, res.GasEnd)
	}
	if res.Status != nil {
		if top, _ := s.Peek(); top.Err == nil {
			s.SetError(res.Status)
		}
	}
	return s, nil
}

func finish(s *calltrace.Stack, raw *RawFrame) error {
	if raw.GasEnd > raw.GasStart {
		return fmt.Errorf("%w: %s::%s gas end %d above start %d", ErrMalformed, raw.To, raw.Function, raw.GasEnd, raw.GasStart)
	}
	s.SetOutputs(raw.Outputs)
	if raw.Error != nil {
		s.SetError(raw.Error)
	}
	s.SetGasEnd(raw.GasEnd)
	return nil
}

func closeTop(s *calltrace.Stack, raw *RawFrame) error {
	if err := finish(s, raw); err != nil {
		return err
	}
	f, _ := s.Pop()
	parent, _ := s.Peek()
	if len(parent.Children) >= calltrace.StackLimit {
		return fmt.Errorf("replay: %s::%s: %w", parent.Module, parent.Function, &calltrace.CapacityError{Frame: f, Len: len(parent.Children)})
	}
	s.AttachChild(f)
	return nil
}
