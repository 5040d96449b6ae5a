package ports

import (
	"context"

	"github.com/bnema/instaflow/internal/domain"
)

type AccountRepository interface {
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Save(ctx context.Context, account domain.Account) error
}

// AccountSource loads accounts from an input file.
type AccountSource interface {
	LoadAccounts(ctx context.Context) ([]domain.Account, error)
}

type TargetSource interface {
	LoadTargets(ctx context.Context) ([]domain.TargetRecord, error)
}
