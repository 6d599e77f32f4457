package xexec

import (
	"context"
	"path/filepath"
	"time"
)

// Outcome labels reported to an Observer.
const (
	OutcomeOK      = "ok"
	OutcomeNonZero = "nonzero"
	OutcomeFailed  = "failed"
)

// Observer receives one call per finished command.
type Observer func(tool, outcome string, elapsed time.Duration)

type observedRunner struct {
	next Runner
	obs  Observer
}

// WithObserver wraps r so every Run is reported to obs. The tool label is the
// base name of the executable.
func WithObserver(r Runner, obs Observer) Runner {
	if obs == nil {
		return r
	}
	return &observedRunner{next: r, obs: obs}
}

func (o *observedRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	start := time.Now()
	res, err := o.next.Run(ctx, name, args...)
	outcome := OutcomeOK
	switch {
	case err != nil:
		outcome = OutcomeFailed
	case res.ExitCode != 0:
		outcome = OutcomeNonZero
	}
	elapsed := res.Duration
	if elapsed == 0 {
		elapsed = time.Since(start)
	}
	o.obs(filepath.Base(name), outcome, elapsed)
	return res, err
}
