package executor

import (
	"time"

	"github.com/vitwit/paylink/types"
)

// State is a step of the payment wizard.
type State int

const (
	Collecting State = iota
	Reviewing
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Collecting:
		return "collecting"
	case Reviewing:
		return "reviewing"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Attempt is one run from Submitting to a terminal state.
type Attempt struct {
	ID         string
	LinkID     string
	Rail       types.Rail
	Status     State
	Submission types.FormSubmission

	// Chain is set for on-chain attempts once the registry resolved it.
	Chain *types.ChainDescriptor

	OnChain *types.OnChainOutcome
	Receipt *types.BackendReceipt

	Err error

	StartedAt  time.Time
	FinishedAt time.Time
}

// Code returns the error code of a failed attempt.
func (a *Attempt) Code() string {
	return types.CodeOf(a.Err)
}

// Retryable reports whether paying again from Reviewing can succeed without
// a configuration change.
func (a *Attempt) Retryable() bool {
	if a.Status != Failed {
		return false
	}
	switch a.Code() {
	case types.ErrInvalidPayeeAddress, types.ErrChainUnsupported:
		return false
	default:
		return true
	}
}

// Reference is the tx hash or backend receipt id of a successful attempt.
func (a *Attempt) Reference() string {
	switch {
	case a.OnChain != nil:
		return a.OnChain.TxHash.Hex()
	case a.Receipt != nil:
		return a.Receipt.ID
	default:
		return ""
	}
}

// Duration is how long the attempt ran.
func (a *Attempt) Duration() time.Duration {
	if a.FinishedAt.IsZero() {
		return 0
	}
	return a.FinishedAt.Sub(a.StartedAt)
}

func (a *Attempt) clone() *Attempt {
	c := *a
	c.Submission = a.Submission.Clone()
	return &c
}
