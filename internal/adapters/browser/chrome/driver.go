package chrome

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/ports"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"go.uber.org/zap"
)

const (
	interstitialTimeout = 5 * time.Second
	maxInterstitials    = 2
	dialogSettle        = 2 * time.Second
	releaseTimeout      = 10 * time.Second
)

// Driver is one browser session. It is not safe for concurrent use.
type Driver struct {
	browserCtx    context.Context
	cancelBrowser context.CancelFunc
	cancelAlloc   context.CancelFunc
	opts          Options
	logger        *zap.Logger

	releaseOnce sync.Once
	releaseErr  error
}

var _ ports.SessionDriver = (*Driver)(nil)

// op derives a bounded browser context that also ends when ctx does.
func (d *Driver) op(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	opCtx, cancel := context.WithTimeout(d.browserCtx, timeout)
	stop := context.AfterFunc(ctx, cancel)
	return opCtx, func() {
		stop()
		cancel()
	}
}

// Authenticate submits the login form. Every page wait gets its own timeout
// so a slow credential round-trip is not mistaken for a rejected login.
func (d *Driver) Authenticate(ctx context.Context, creds domain.Credentials) error {
	steps := []struct {
		name    string
		actions []chromedp.Action
	}{
		{name: "open login page", actions: []chromedp.Action{chromedp.Navigate(d.opts.LoginURL)}},
		{name: "wait for login form", actions: []chromedp.Action{chromedp.WaitVisible(`input[name="username"]`, chromedp.ByQuery)}},
		{name: "submit credentials", actions: []chromedp.Action{
			chromedp.SendKeys(`input[name="username"]`, creds.Identity, chromedp.ByQuery),
			chromedp.SendKeys(`input[name="password"]`, creds.Secret+kb.Enter, chromedp.ByQuery),
		}},
		{name: "wait for home page", actions: []chromedp.Action{chromedp.WaitVisible(`nav`, chromedp.ByQuery)}},
	}

	for _, step := range steps {
		if err := d.run(ctx, d.opts.Timeout, step.actions...); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("%w: %s: %w", domain.ErrAuthenticationFailed, step.name, err)
		}
	}

	for i := 0; i < maxInterstitials; i++ {
		if !d.dismissInterstitial(ctx) {
			break
		}
	}

	return nil
}

func (d *Driver) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := d.op(ctx, timeout)
	defer cancel()
	return chromedp.Run(opCtx, actions...)
}

// dismissInterstitial clicks a "Not Now" prompt if one shows up in time.
func (d *Driver) dismissInterstitial(ctx context.Context) bool {
	opCtx, cancel := d.op(ctx, interstitialTimeout)
	defer cancel()

	var clicked bool
	err := chromedp.Run(opCtx, chromedp.Poll(clickScript("button, div[role=\"button\"]", dismissLabel), &clicked,
		chromedp.WithPollingInterval(250*time.Millisecond),
		chromedp.WithPollingTimeout(interstitialTimeout),
	))
	if err != nil {
		return false
	}
	d.logger.Debug("dismissed interstitial")
	return clicked
}

func (d *Driver) PerformAction(ctx context.Context, target domain.Target) (ports.ControlState, error) {
	switch target.Action {
	case domain.ActionFollow:
		return d.follow(ctx, target.Identity)
	case domain.ActionUnfollow:
		return d.unfollow(ctx, target.Identity)
	default:
		return ports.ControlNotFound, fmt.Errorf("%w: %q", domain.ErrUnknownAction, target.Action)
	}
}

func (d *Driver) follow(ctx context.Context, identity string) (ports.ControlState, error) {
	opCtx, cancel := d.op(ctx, d.opts.Timeout)
	defer cancel()

	labels, err := d.openProfile(opCtx, identity, "section", sectionButtonsSelector)
	if err != nil {
		return ports.ControlNotFound, err
	}

	rel, label := classifyRelationship(labels)
	switch rel {
	case relationFollowing:
		return ports.ControlAlreadyInState, nil
	case relationNotFollowing:
		if err := d.click(opCtx, sectionButtonsSelector, label); err != nil {
			return ports.ControlNotFound, err
		}
		return ports.ControlApplied, nil
	default:
		return ports.ControlNotFound, nil
	}
}

func (d *Driver) unfollow(ctx context.Context, identity string) (ports.ControlState, error) {
	opCtx, cancel := d.op(ctx, d.opts.Timeout)
	defer cancel()

	labels, err := d.openProfile(opCtx, identity, "header", profileButtonsSelector)
	if err != nil {
		return ports.ControlNotFound, err
	}

	rel, label := classifyRelationship(labels)
	if rel != relationFollowing {
		return ports.ControlAlreadyInState, nil
	}

	if err := d.click(opCtx, profileButtonsSelector, label); err != nil {
		return ports.ControlNotFound, err
	}
	if err := chromedp.Run(opCtx,
		chromedp.WaitVisible(dialogSelector, chromedp.ByQuery),
		chromedp.Sleep(dialogSettle),
	); err != nil {
		return ports.ControlNotFound, fmt.Errorf("wait for unfollow dialog: %w", err)
	}

	var confirmed bool
	if err := chromedp.Run(opCtx, chromedp.Evaluate(clickScript(dialogItemsSelector, confirmUnfollowLabel), &confirmed)); err != nil {
		return ports.ControlNotFound, fmt.Errorf("confirm unfollow: %w", err)
	}
	if !confirmed {
		return ports.ControlNotFound, nil
	}

	return ports.ControlApplied, nil
}

func (d *Driver) openProfile(opCtx context.Context, identity, readySelector, buttonsSelector string) ([]string, error) {
	var labels []string
	err := chromedp.Run(opCtx,
		chromedp.Navigate(fmt.Sprintf(d.opts.ProfileURL, identity)),
		chromedp.WaitReady(readySelector, chromedp.ByQuery),
		chromedp.Evaluate(labelsScript(buttonsSelector), &labels),
	)
	if err != nil {
		return nil, fmt.Errorf("open profile %s: %w", identity, err)
	}
	return labels, nil
}

func (d *Driver) click(opCtx context.Context, selector, label string) error {
	var clicked bool
	if err := chromedp.Run(opCtx, chromedp.Evaluate(clickScript(selector, label), &clicked)); err != nil {
		return fmt.Errorf("click %q: %w", label, err)
	}
	if !clicked {
		return fmt.Errorf("click %q: control detached", label)
	}
	return nil
}

// Release closes the browser and its allocator. Only the first call has any
// effect; later calls return the first result. A browser that does not close
// within releaseTimeout is killed.
func (d *Driver) Release() error {
	d.releaseOnce.Do(func() {
		closed := make(chan error, 1)
		go func() {
			closed <- chromedp.Cancel(d.browserCtx)
		}()

		var err error
		select {
		case err = <-closed:
		case <-time.After(releaseTimeout):
			err = fmt.Errorf("graceful close timed out after %s", releaseTimeout)
		}
		d.cancelBrowser()
		d.cancelAlloc()
		if err != nil && !errors.Is(err, context.Canceled) {
			d.releaseErr = fmt.Errorf("close browser: %w", err)
		}
	})
	return d.releaseErr
}

// abort kills a browser whose launch never completed.
func (d *Driver) abort() {
	d.releaseOnce.Do(func() {
		d.cancelBrowser()
		d.cancelAlloc()
	})
}
