package submission

import (
	"time"

	"github.com/tensorplex-labs/typescribe/internal/sdkapi"
)

// Phase is the lifecycle position of the coordinator.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseFailed:
		return "failed"
	}
	return "unknown"
}

func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// State is a tagged variant: Result is set only in PhaseSucceeded, Err only
// in PhaseFailed, StartedAt only in PhaseSubmitting.
type State struct {
	Phase     Phase
	Result    *sdkapi.GenerationResult
	Err       error
	StartedAt time.Time
}

func idle() State { return State{Phase: PhaseIdle} }

func submitting(now time.Time) State {
	return State{Phase: PhaseSubmitting, StartedAt: now}
}

func succeeded(res sdkapi.GenerationResult) State {
	return State{Phase: PhaseSucceeded, Result: &res}
}

func failed(err error) State {
	return State{Phase: PhaseFailed, Err: err}
}

// Loading reports whether a request is outstanding.
func (s State) Loading() bool { return s.Phase == PhaseSubmitting }

// ErrorMessage is the single user-facing error, empty unless failed.
func (s State) ErrorMessage() string {
	if s.Phase != PhaseFailed || s.Err == nil {
		return ""
	}
	return s.Err.Error()
}

// Elapsed is the time spent submitting so far.
func (s State) Elapsed(now time.Time) time.Duration {
	if s.Phase != PhaseSubmitting || s.StartedAt.IsZero() {
		return 0
	}
	return now.Sub(s.StartedAt)
}
