package ports

import (
	"context"

	"github.com/bnema/instaflow/internal/domain"
)

type LedgerStore interface {
	// Save persists the ledger of a session and returns the written artifacts.
	Save(ctx context.Context, sessionID string, ledger domain.Ledger) ([]string, error)
}
