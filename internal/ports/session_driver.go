package ports

import (
	"context"

	"github.com/bnema/instaflow/internal/domain"
)

// ControlState is what a driver found when it looked for the toggle control
// of a target.
type ControlState int

const (
	// ControlNotFound means the expected control could not be located.
	ControlNotFound ControlState = iota
	// ControlApplied means the toggle was performed.
	ControlApplied
	// ControlAlreadyInState means the relationship was already in the
	// requested end state and nothing was clicked.
	ControlAlreadyInState
)

func (s ControlState) String() string {
	switch s {
	case ControlApplied:
		return "applied"
	case ControlAlreadyInState:
		return "already_in_state"
	default:
		return "not_found"
	}
}

// Done reports whether the target ended in the requested state.
func (s ControlState) Done() bool {
	return s == ControlApplied || s == ControlAlreadyInState
}

// SessionDriver is one exclusive, authenticated browser-like session. It is
// not safe for concurrent use.
type SessionDriver interface {
	// Authenticate logs in. It is not retried internally; any error means the
	// session cannot proceed.
	Authenticate(ctx context.Context, creds domain.Credentials) error
	// PerformAction navigates to the target and applies its toggle. An error
	// is a failed attempt, never a fatal condition.
	PerformAction(ctx context.Context, target domain.Target) (ControlState, error)
	// Release tears the session down. It is idempotent and must not panic.
	Release() error
}

type DriverFactory interface {
	// NewDriver builds a driver, routed through proxy when it is non-nil.
	NewDriver(ctx context.Context, proxy *domain.Proxy) (SessionDriver, error)
}
