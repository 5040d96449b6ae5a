package application

import (
	"context"
	"sync"
	"time"

	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/ports"
	"github.com/stretchr/testify/mock"
)

type actionStep struct {
	state ports.ControlState
	err   error
	panic bool
}

// fakeDriver replays scripted results per target identity. Targets without a
// script resolve to ControlApplied.
type fakeDriver struct {
	mu       sync.Mutex
	authErr  error
	scripts  map[string][]actionStep
	calls    []domain.Target
	releases int
	authed   int
	onAction func(domain.Target)
}

var _ ports.SessionDriver = (*fakeDriver)(nil)

func newFakeDriver() *fakeDriver {
	return &fakeDriver{scripts: map[string][]actionStep{}}
}

func (d *fakeDriver) script(identity string, steps ...actionStep) *fakeDriver {
	d.scripts[identity] = steps
	return d
}

func (d *fakeDriver) Authenticate(_ context.Context, _ domain.Credentials) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.authed++
	return d.authErr
}

func (d *fakeDriver) PerformAction(_ context.Context, target domain.Target) (ports.ControlState, error) {
	d.mu.Lock()
	d.calls = append(d.calls, target)
	hook := d.onAction
	step := actionStep{state: ports.ControlApplied}
	if steps := d.scripts[target.Identity]; len(steps) > 0 {
		step = steps[0]
		if len(steps) > 1 {
			d.scripts[target.Identity] = steps[1:]
		}
	}
	d.mu.Unlock()

	if hook != nil {
		hook(target)
	}
	if step.panic {
		panic("driver fault on " + target.Identity)
	}
	return step.state, step.err
}

func (d *fakeDriver) Release() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.releases++
	return nil
}

func (d *fakeDriver) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

func (d *fakeDriver) releaseCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.releases
}

type staticFactory struct {
	driver ports.SessionDriver
}

func (f staticFactory) NewDriver(context.Context, *domain.Proxy) (ports.SessionDriver, error) {
	return f.driver, nil
}

type countingPacer struct {
	mu     sync.Mutex
	pauses int
}

func (p *countingPacer) Pause(ctx context.Context) error {
	p.mu.Lock()
	p.pauses++
	p.mu.Unlock()
	return ctx.Err()
}

func (p *countingPacer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pauses
}

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time {
	return c.now
}

func mockAnyContext() interface{} {
	return mock.MatchedBy(func(context.Context) bool { return true })
}
