package domain

import (
	"fmt"
	"strings"
)

const (
	secretRefNamespace = "instaflow"
	secretRefAccounts  = "accounts"
	secretRefPassword  = "password"
)

// PasswordSecretRef is the secret-store key holding an account password:
// instaflow/accounts/<username>/password.
func PasswordSecretRef(username string) string {
	return strings.Join([]string{secretRefNamespace, secretRefAccounts, strings.TrimSpace(username), secretRefPassword}, "/")
}

// ParseSecretRef checks that ref has the shape produced by PasswordSecretRef
// and returns the username it belongs to.
func ParseSecretRef(ref string) (string, error) {
	parts := strings.Split(ref, "/")
	if len(parts) != 4 || parts[0] != secretRefNamespace || parts[1] != secretRefAccounts || parts[3] != secretRefPassword {
		return "", fmt.Errorf("%w: %q", ErrInvalidSecretRef, ref)
	}

	username := parts[2]
	switch {
	case username == "", username == ".", username == "..":
		return "", fmt.Errorf("%w: %q has no username", ErrInvalidSecretRef, ref)
	case strings.ContainsAny(username, " \t\r\n\\"):
		return "", fmt.Errorf("%w: %q contains whitespace or a backslash", ErrInvalidSecretRef, ref)
	}

	return username, nil
}
