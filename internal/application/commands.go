package application

import (
	"github.com/bnema/instaflow/internal/domain"
)

type AddAccountCommand struct {
	Username string
	Password string
	Proxy    string
}

// RunBatchCommand runs one session per account against the same target list.
type RunBatchCommand struct {
	Accounts []domain.Account
	Targets  []domain.TargetRecord
	// Parallel bounds concurrent sessions; values below 2 run sequentially.
	Parallel int
}
