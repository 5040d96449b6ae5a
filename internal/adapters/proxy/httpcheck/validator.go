package httpcheck

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/ports"
	"go.uber.org/zap"
	xproxy "golang.org/x/net/proxy"
)

const (
	DefaultTestURL = "http://httpbin.org/ip"
	DefaultTimeout = 10 * time.Second
)

type Validator struct {
	testURL string
	timeout time.Duration
	logger  *zap.Logger
}

var _ ports.ProxyValidator = (*Validator)(nil)

func New(testURL string, timeout time.Duration, logger *zap.Logger) *Validator {
	if testURL == "" {
		testURL = DefaultTestURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Validator{testURL: testURL, timeout: timeout, logger: logger}
}

// Validate fetches the test URL through proxy. Only a 200 response makes the
// proxy usable.
func (v *Validator) Validate(ctx context.Context, proxy domain.Proxy) bool {
	if !proxy.Valid() {
		v.logger.Warn("proxy descriptor invalid", zap.String("proxy", proxy.Redacted()))
		return false
	}

	transport, err := transportFor(proxy)
	if err != nil {
		v.logger.Warn("proxy unsupported", zap.String("proxy", proxy.Redacted()), zap.Error(err))
		return false
	}
	defer transport.CloseIdleConnections()

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.testURL, nil)
	if err != nil {
		v.logger.Warn("build proxy probe request", zap.Error(err))
		return false
	}

	client := &http.Client{Transport: transport, Timeout: v.timeout}
	resp, err := client.Do(req)
	if err != nil {
		v.logger.Warn("proxy probe failed", zap.String("proxy", proxy.Redacted()), zap.Error(err))
		return false
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn("proxy probe rejected",
			zap.String("proxy", proxy.Redacted()),
			zap.Int("status", resp.StatusCode),
		)
		return false
	}

	v.logger.Info("proxy usable", zap.String("proxy", proxy.Redacted()))
	return true
}

func transportFor(proxy domain.Proxy) (*http.Transport, error) {
	switch proxy.Scheme {
	case "http", "https":
		return &http.Transport{Proxy: http.ProxyURL(proxy.URL())}, nil
	case "socks5", "socks5h":
		dialer, err := xproxy.FromURL(proxy.URL(), &net.Dialer{})
		if err != nil {
			return nil, fmt.Errorf("socks dialer: %w", err)
		}
		contextDialer, ok := dialer.(xproxy.ContextDialer)
		if !ok {
			return nil, fmt.Errorf("socks dialer does not support contexts")
		}
		return &http.Transport{DialContext: contextDialer.DialContext}, nil
	default:
		return nil, fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidProxy, proxy.Scheme)
	}
}
