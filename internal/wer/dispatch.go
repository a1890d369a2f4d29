package wer

import (
	"context"
	"fmt"
)

// HRESULT values returned to WER.
const (
	SOK         int32 = 0
	EUnexpected int32 = -0x7fff0001 // 0x8000FFFF
)

// terminateExitCode is the exit code given to a crashed process once its
// report has been taken over.
const terminateExitCode = 1

// Result is what the host callback reports to WER.
type Result struct {
	Status  int32
	Claimed bool
	Outcome Outcome
	Err     error
}

// Dispatch runs HandleEvent and collapses the outcome for the host: failures
// and panics become E_UNEXPECTED. Any success, ignored or handled, terminates
// the crashed process and claims ownership.
func (h *Handler) Dispatch(ctx context.Context, ev *Event) (res Result) {
	defer func() {
		if r := recover(); r != nil {
			res = Result{Status: EUnexpected, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	outcome, err := h.HandleEvent(ctx, ev)
	if err != nil {
		return Result{Status: EUnexpected, Err: err}
	}
	// A failed termination leaves the process to WER's own handling but
	// does not undo the claim.
	_ = ev.Process.Terminate(terminateExitCode)
	return Result{Status: SOK, Claimed: true, Outcome: outcome}
}
