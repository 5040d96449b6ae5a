package application

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/bnema/instaflow/internal/ports"
)

// RandomPacer waits for a duration drawn uniformly from [Min, Max].
type RandomPacer struct {
	min   time.Duration
	max   time.Duration
	draw  func(n int64) int64
	sleep func(ctx context.Context, d time.Duration) error
}

var _ ports.Pacer = (*RandomPacer)(nil)

func NewRandomPacer(min, max time.Duration) (*RandomPacer, error) {
	if min < 0 || max < 0 {
		return nil, fmt.Errorf("pacing bounds must not be negative (min %s, max %s)", min, max)
	}
	if min > max {
		return nil, fmt.Errorf("pacing min %s exceeds max %s", min, max)
	}

	return &RandomPacer{min: min, max: max, draw: rand.Int64N, sleep: sleepContext}, nil
}

func (p *RandomPacer) Pause(ctx context.Context) error {
	return p.sleep(ctx, p.Next())
}

// Next draws the next delay without waiting.
func (p *RandomPacer) Next() time.Duration {
	span := int64(p.max - p.min)
	if span <= 0 {
		return p.min
	}
	return p.min + time.Duration(p.draw(span+1))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

type noPacer struct{}

func (noPacer) Pause(ctx context.Context) error {
	return ctx.Err()
}
