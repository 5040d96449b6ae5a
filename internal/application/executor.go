package application

import (
	"context"

	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/ports"
	"go.uber.org/zap"
)

const DefaultMaxRetries = 3

// ActionExecutor applies one target action with a bounded number of attempts.
// Every retry waits on the same pacer; delays do not grow between attempts.
type ActionExecutor struct {
	maxRetries int
	pacer      ports.Pacer
	logger     *zap.Logger
}

func NewActionExecutor(maxRetries int, pacer ports.Pacer, logger *zap.Logger) *ActionExecutor {
	if maxRetries < 1 {
		maxRetries = DefaultMaxRetries
	}
	if pacer == nil {
		pacer = noPacer{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &ActionExecutor{maxRetries: maxRetries, pacer: pacer, logger: logger}
}

// Execute returns the final status and the number of attempts made. The error
// is non-nil only when ctx is cancelled before a terminal state is reached.
func (e *ActionExecutor) Execute(ctx context.Context, driver ports.SessionDriver, target domain.Target) (domain.OutcomeStatus, int, error) {
	log := e.logger.With(zap.String("target", target.Identity), zap.String("action", string(target.Action)))

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.StatusFailure, attempt - 1, err
		}

		state, err := driver.PerformAction(ctx, target)
		if err != nil && ctx.Err() != nil {
			return domain.StatusFailure, attempt, ctx.Err()
		}

		switch {
		case err == nil && state.Done():
			log.Info("target in requested state", zap.Stringer("control", state), zap.Int("attempt", attempt))
			return domain.StatusSuccess, attempt, nil
		case err != nil:
			log.Warn("action attempt failed", zap.Int("attempt", attempt), zap.Error(err))
		default:
			log.Warn("action control not found", zap.Int("attempt", attempt))
		}

		if attempt >= e.maxRetries {
			log.Error("action retries exhausted", zap.Int("attempts", attempt))
			return domain.StatusFailure, attempt, nil
		}

		if err := e.pacer.Pause(ctx); err != nil {
			return domain.StatusFailure, attempt, err
		}
	}
}
