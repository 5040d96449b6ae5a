package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/ports"
)

type AccountService struct {
	repo  ports.AccountRepository
	store ports.SecretStore
}

func NewAccountService(repo ports.AccountRepository, store ports.SecretStore) *AccountService {
	return &AccountService{repo: repo, store: store}
}

func PasswordSecretRef(username string) string {
	return domain.PasswordSecretRef(username)
}

// AddAccount stores the password in the secret store and records the account
// with a reference to it. Re-adding an account replaces its password.
func (s *AccountService) AddAccount(ctx context.Context, cmd AddAccountCommand) (domain.Account, error) {
	username := strings.TrimSpace(cmd.Username)
	if username == "" {
		return domain.Account{}, fmt.Errorf("username is required")
	}
	if cmd.Password == "" {
		return domain.Account{}, fmt.Errorf("password is required")
	}
	if proxy := strings.TrimSpace(cmd.Proxy); proxy != "" {
		if _, err := domain.ParseProxy(proxy); err != nil {
			return domain.Account{}, err
		}
	}
	secretRef := PasswordSecretRef(username)
	if _, err := domain.ParseSecretRef(secretRef); err != nil {
		return domain.Account{}, fmt.Errorf("username %q cannot be stored: %w", username, err)
	}

	previousRef := ""
	existing, err := s.repo.GetByUsername(ctx, username)
	switch {
	case err == nil:
		previousRef = existing.SecretRef
	case !errors.Is(err, domain.ErrAccountNotFound):
		return domain.Account{}, fmt.Errorf("get account by username: %w", err)
	}

	if err := s.store.Put(ctx, secretRef, cmd.Password); err != nil {
		return domain.Account{}, fmt.Errorf("store account password: %w", err)
	}

	account := domain.Account{
		Username:  username,
		SecretRef: secretRef,
		Proxy:     strings.TrimSpace(cmd.Proxy),
	}
	if err := s.repo.Save(ctx, account); err != nil {
		if previousRef == secretRef {
			return domain.Account{}, fmt.Errorf("save account: %w", err)
		}
		if rollbackErr := s.store.Delete(ctx, secretRef); rollbackErr != nil {
			return domain.Account{}, fmt.Errorf("save account and rollback stored password: %w", errors.Join(err, rollbackErr))
		}
		return domain.Account{}, fmt.Errorf("save account: %w", err)
	}

	if previousRef != "" && previousRef != secretRef {
		if err := s.store.Delete(ctx, previousRef); err != nil {
			return account, fmt.Errorf("delete previous password secret: %w", err)
		}
	}

	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}

	sort.Slice(accounts, func(i, j int) bool {
		return accounts[i].Username < accounts[j].Username
	})

	return accounts, nil
}

// ResolveCredentials returns the login credentials of an account. A literal
// password wins over a secret reference.
func (s *AccountService) ResolveCredentials(ctx context.Context, account domain.Account) (domain.Credentials, error) {
	if err := account.Validate(); err != nil {
		return domain.Credentials{}, err
	}
	if account.Password != "" {
		return domain.NewCredentials(account.Username, account.Password), nil
	}

	secret, err := s.store.Get(ctx, account.SecretRef)
	if err != nil {
		return domain.Credentials{}, fmt.Errorf("resolve password for %s: %w", account.Username, err)
	}

	return domain.NewCredentials(account.Username, secret), nil
}
