package application

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionExecutorOutcomes(t *testing.T) {
	t.Parallel()

	target := domain.Target{Identity: "alice", Action: domain.ActionFollow}
	boom := errors.New("element detached")

	tests := []struct {
		name         string
		steps        []actionStep
		wantStatus   domain.OutcomeStatus
		wantAttempts int
		wantPauses   int
	}{
		{
			name:         "applied first try",
			steps:        []actionStep{{state: ports.ControlApplied}},
			wantStatus:   domain.StatusSuccess,
			wantAttempts: 1,
		},
		{
			name:         "already in state",
			steps:        []actionStep{{state: ports.ControlAlreadyInState}},
			wantStatus:   domain.StatusSuccess,
			wantAttempts: 1,
		},
		{
			name:         "recovers after transient error",
			steps:        []actionStep{{err: boom}, {state: ports.ControlNotFound}, {state: ports.ControlApplied}},
			wantStatus:   domain.StatusSuccess,
			wantAttempts: 3,
			wantPauses:   2,
		},
		{
			name:         "always failing exhausts retries",
			steps:        []actionStep{{err: boom}},
			wantStatus:   domain.StatusFailure,
			wantAttempts: DefaultMaxRetries,
			wantPauses:   DefaultMaxRetries - 1,
		},
		{
			name:         "control never found",
			steps:        []actionStep{{state: ports.ControlNotFound}},
			wantStatus:   domain.StatusFailure,
			wantAttempts: DefaultMaxRetries,
			wantPauses:   DefaultMaxRetries - 1,
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			driver := newFakeDriver().script(target.Identity, tc.steps...)
			pacer := &countingPacer{}
			executor := NewActionExecutor(0, pacer, nil)

			status, attempts, err := executor.Execute(context.Background(), driver, target)
			require.NoError(t, err)
			assert.Equal(t, tc.wantStatus, status)
			assert.Equal(t, tc.wantAttempts, attempts)
			assert.Equal(t, tc.wantAttempts, driver.callCount())
			assert.Equal(t, tc.wantPauses, pacer.count())
		})
	}
}

func TestActionExecutorHonorsCustomRetryBound(t *testing.T) {
	t.Parallel()

	driver := newFakeDriver().script("bob", actionStep{state: ports.ControlNotFound})
	executor := NewActionExecutor(5, &countingPacer{}, nil)

	status, attempts, err := executor.Execute(context.Background(), driver, domain.Target{Identity: "bob", Action: domain.ActionUnfollow})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailure, status)
	assert.Equal(t, 5, attempts)
}

func TestActionExecutorStopsOnCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	driver := newFakeDriver().script("carol", actionStep{err: errors.New("navigation aborted")})
	driver.onAction = func(domain.Target) { cancel() }

	_, attempts, err := NewActionExecutor(3, &countingPacer{}, nil).Execute(ctx, driver, domain.Target{Identity: "carol", Action: domain.ActionFollow})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, attempts)
	assert.Equal(t, 1, driver.callCount())
}

func TestActionExecutorCancelledBeforeFirstAttempt(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	driver := newFakeDriver()

	_, attempts, err := NewActionExecutor(3, nil, nil).Execute(ctx, driver, domain.Target{Identity: "dave", Action: domain.ActionFollow})
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, attempts)
	assert.Zero(t, driver.callCount())
}
