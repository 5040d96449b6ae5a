package chrome

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/ports"
	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

var ErrStartupTimeout = errors.New("browser startup timed out")

const abortGrace = 2 * time.Second

const (
	DefaultLoginURL   = "https://www.instagram.com/accounts/login/"
	DefaultProfileURL = "https://www.instagram.com/%s/"
	DefaultTimeout    = 15 * time.Second
)

type Options struct {
	Headless bool
	// Timeout bounds every page wait.
	Timeout    time.Duration
	LoginURL   string
	ProfileURL string
	// ExecPath overrides Chrome discovery.
	ExecPath string
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.LoginURL == "" {
		o.LoginURL = DefaultLoginURL
	}
	if o.ProfileURL == "" {
		o.ProfileURL = DefaultProfileURL
	}
	return o
}

type Factory struct {
	opts   Options
	logger *zap.Logger
}

var _ ports.DriverFactory = (*Factory)(nil)

func NewFactory(opts Options, logger *zap.Logger) *Factory {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Factory{opts: opts.withDefaults(), logger: logger}
}

func (f *Factory) allocatorOptions(proxy *domain.Proxy) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", f.opts.Headless),
		chromedp.NoSandbox,
		chromedp.DisableGPU,
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.WindowSize(1280, 900),
	)
	if f.opts.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(f.opts.ExecPath))
	}
	if proxy != nil {
		opts = append(opts, chromedp.ProxyServer(proxy.ServerURL()))
	}
	return opts
}

// NewDriver starts a dedicated browser. The browser outlives ctx and is only
// torn down by Release.
func (f *Factory) NewDriver(ctx context.Context, proxy *domain.Proxy) (ports.SessionDriver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	base := context.WithoutCancel(ctx)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(base, f.allocatorOptions(proxy)...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)

	driver := &Driver{
		browserCtx:    browserCtx,
		cancelBrowser: cancelBrowser,
		cancelAlloc:   cancelAlloc,
		opts:          f.opts,
		logger:        f.logger,
	}

	var startup []chromedp.Action
	if proxy != nil && proxy.HasAuth() {
		answerProxyAuth(browserCtx, *proxy)
		startup = append(startup, fetch.Enable().WithHandleAuthRequests(true))
	}

	if err := f.start(ctx, driver, startup); err != nil {
		_ = driver.Release()
		return nil, fmt.Errorf("start browser: %w", err)
	}

	f.logger.Debug("browser started", zap.Bool("proxied", proxy != nil), zap.Bool("headless", f.opts.Headless))
	return driver, nil
}

// start launches the browser within Options.Timeout. The first Run has to use
// the browser context itself, so it runs in the background and the launch is
// torn down when ctx ends or the timeout fires first.
func (f *Factory) start(ctx context.Context, driver *Driver, actions []chromedp.Action) error {
	done := make(chan error, 1)
	go func() {
		done <- chromedp.Run(driver.browserCtx, actions...)
	}()

	timer := time.NewTimer(f.opts.Timeout)
	defer timer.Stop()

	var cause error
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		cause = ctx.Err()
	case <-timer.C:
		cause = fmt.Errorf("%w after %s", ErrStartupTimeout, f.opts.Timeout)
	}

	driver.abort()
	select {
	case <-done:
	case <-time.After(abortGrace):
		f.logger.Warn("browser launch still unwinding after abort", zap.Error(cause))
	}
	return cause
}

// answerProxyAuth replies to proxy authentication challenges with the proxy
// credentials and lets every paused request through.
func answerProxyAuth(browserCtx context.Context, proxy domain.Proxy) {
	chromedp.ListenTarget(browserCtx, func(ev interface{}) {
		switch e := ev.(type) {
		case *fetch.EventAuthRequired:
			go func() {
				execCtx := executorContext(browserCtx)
				_ = fetch.ContinueWithAuth(e.RequestID, &fetch.AuthChallengeResponse{
					Response: fetch.AuthChallengeResponseResponseProvideCredentials,
					Username: proxy.Username,
					Password: proxy.Password,
				}).Do(execCtx)
			}()
		case *fetch.EventRequestPaused:
			go func() {
				_ = fetch.ContinueRequest(e.RequestID).Do(executorContext(browserCtx))
			}()
		}
	})
}

func executorContext(browserCtx context.Context) context.Context {
	c := chromedp.FromContext(browserCtx)
	return cdp.WithExecutor(browserCtx, c.Target)
}
