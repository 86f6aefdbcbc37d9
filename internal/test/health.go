package test

import "context"

// ProberStub reports a fixed probe outcome or delegates to ProbeFn.
type ProberStub struct {
	Err     error
	ProbeFn func(context.Context) error
}

// Probe implements health.Prober.
func (s ProberStub) Probe(ctx context.Context) error {
	if s.ProbeFn != nil {
		return s.ProbeFn(ctx)
	}
	return s.Err
}
