package toml

import (
	"fmt"

	"github.com/bnema/instaflow/internal/domain"
)

const currentSchemaVersion = 1

type fileSchema struct {
	Version  int             `toml:"version"`
	Accounts []accountSchema `toml:"accounts"`
}

func (s *fileSchema) applyDefaults() {
	if s.Version == 0 {
		s.Version = currentSchemaVersion
	}
}

func (s fileSchema) validateVersion() error {
	if s.Version > currentSchemaVersion {
		return fmt.Errorf("unsupported accounts schema version %d (current %d)", s.Version, currentSchemaVersion)
	}

	return nil
}

// accountSchema never carries a literal password; only secret references are
// persisted.
type accountSchema struct {
	Username  string `toml:"username"`
	SecretRef string `toml:"secret_ref"`
	Proxy     string `toml:"proxy,omitempty"`
}

func toSchema(account domain.Account) accountSchema {
	return accountSchema{
		Username:  account.Username,
		SecretRef: account.SecretRef,
		Proxy:     account.Proxy,
	}
}

func fromSchema(account accountSchema) domain.Account {
	return domain.Account{
		Username:  account.Username,
		SecretRef: account.SecretRef,
		Proxy:     account.Proxy,
	}
}
