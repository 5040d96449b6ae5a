package domain

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

type Account struct {
	Username string
	// SecretRef points to a secret-store entry holding the password.
	SecretRef string
	// Password is only set for accounts loaded from plain files.
	Password string
	Proxy    string
}

func (a Account) Validate() error {
	if strings.TrimSpace(a.Username) == "" {
		return fmt.Errorf("username is required")
	}
	if a.SecretRef == "" && a.Password == "" {
		return fmt.Errorf("account %q has neither a password nor a secret reference", a.Username)
	}

	return nil
}

// Credentials are immutable for the lifetime of a session.
type Credentials struct {
	Identity string
	Secret   string
}

func NewCredentials(identity, secret string) Credentials {
	return Credentials{Identity: strings.TrimSpace(identity), Secret: secret}
}

func (c Credentials) String() string {
	return c.Identity
}

func (c Credentials) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("identity", c.Identity)
	return nil
}
