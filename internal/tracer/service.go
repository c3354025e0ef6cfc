package tracer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/sentioxyz/aptos-core/internal/ledger"
	"github.com/sentioxyz/aptos-core/internal/metrics"
)

var ErrUnknownChain = errors.New("tracer: chain not configured")

// Service routes trace requests to the tracer of the requested chain.
type Service struct {
	tracers        map[string]*Tracer
	requestTimeout time.Duration
}

func NewService(requestTimeout time.Duration, tracers ...*Tracer) *Service {
	s := &Service{tracers: make(map[string]*Tracer, len(tracers)), requestTimeout: requestTimeout}
	for _, t := range tracers {
		s.tracers[t.ChainID()] = t
	}
	return s
}

func (s *Service) Chains() []string {
	out := make([]string, 0, len(s.tracers))
	for id := range s.tracers {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *Service) Trace(ctx context.Context, chainID, hash string) (*TraceResult, error) {
	t, ok := s.tracers[chainID]
	if !ok {
		metrics.TraceRequests.WithLabelValues(chainID, Outcome(ErrUnknownChain)).Inc()
		return nil, fmt.Errorf("%w: %s", ErrUnknownChain, chainID)
	}
	if s.requestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.requestTimeout)
		defer cancel()
	}

	start := time.Now()
	res, err := t.TraceTransaction(ctx, hash)
	metrics.TraceDuration.WithLabelValues(chainID).Observe(time.Since(start).Seconds())
	metrics.TraceRequests.WithLabelValues(chainID, Outcome(err)).Inc()
	return res, err
}

// Outcome classifies a trace error for metrics and HTTP status mapping.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrInvalidHash):
		return "invalid"
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, ledger.ErrPending), errors.Is(err, ErrUnknownChain):
		return "not_found"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
