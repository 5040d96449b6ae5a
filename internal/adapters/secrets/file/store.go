package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/bnema/instaflow/internal/adapters/fsatomic"
	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/ports"
)

const (
	secretFileMod  = 0o600
	passwordFile   = "password"
	accountsSubdir = "accounts"
)

// Store keeps each account password in <root>/accounts/<username>/password.
// Only keys built by domain.PasswordSecretRef are accepted.
type Store struct {
	root string
	mu   sync.RWMutex
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore(root string) *Store {
	return &Store{root: filepath.Clean(root)}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	path, err := s.resolve(ctx, key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := fsatomic.WriteFile(path, []byte(value), secretFileMod); err != nil {
		return fmt.Errorf("write password file for %q: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	path, err := s.resolve(ctx, key)
	if err != nil {
		return "", err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		return "", fmt.Errorf("password file for %q: %w", key, domain.ErrSecretNotFound)
	case err != nil:
		return "", fmt.Errorf("read password file for %q: %w", key, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("password file for %q is empty: %w", key, domain.ErrSecretNotFound)
	}

	return string(data), nil
}

// Delete removes the password and, when nothing else is left, the account
// directory. A missing password is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	path, err := s.resolve(ctx, key)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete password file for %q: %w", key, err)
	}
	_ = os.Remove(filepath.Dir(path))
	return nil
}

func (s *Store) resolve(ctx context.Context, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	username, err := domain.ParseSecretRef(key)
	if err != nil {
		return "", err
	}

	return filepath.Join(s.root, accountsSubdir, username, passwordFile), nil
}
