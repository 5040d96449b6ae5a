package ports

import "context"

// Pacer blocks for a bounded, randomized delay between remote actions.
type Pacer interface {
	Pause(ctx context.Context) error
}
