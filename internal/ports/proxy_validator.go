package ports

import (
	"context"

	"github.com/bnema/instaflow/internal/domain"
)

// ProxyValidator reports whether a proxy is usable. It never returns an
// error: every failure resolves to false.
type ProxyValidator interface {
	Validate(ctx context.Context, proxy domain.Proxy) bool
}
