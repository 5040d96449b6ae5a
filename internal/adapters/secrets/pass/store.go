package pass

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bnema/instaflow/internal/domain"
	"github.com/bnema/instaflow/internal/ports"
)

var ErrUnavailable = errors.New("pass command unavailable")

type runFunc func(ctx context.Context, input string, args ...string) (stdout string, stderr string, err error)

const missingEntryMarker = "is not in the password store"

// Store keeps account passwords in pass(1). The password is the first line of
// an entry; lines below it are notes and survive a password rotation.
type Store struct {
	run runFunc
}

var _ ports.SecretStore = (*Store)(nil)

func NewStore() *Store {
	return &Store{run: runPassCommand}
}

func (s *Store) Put(ctx context.Context, key string, value string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}
	if strings.ContainsAny(value, "\r\n") {
		return fmt.Errorf("pass put %q: password must be a single line", key)
	}

	notes, err := s.notes(ctx, key)
	if err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, value+"\n"+notes, "insert", "-m", "-f", key)
	if err != nil {
		return formatError("put", key, err, stderr)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	if err := checkKey(ctx, key); err != nil {
		return "", err
	}

	stdout, stderr, err := s.run(ctx, "", "show", key)
	if err != nil {
		if strings.Contains(stderr, missingEntryMarker) {
			return "", fmt.Errorf("pass get %q: %w", key, domain.ErrSecretNotFound)
		}
		return "", formatError("get", key, err, stderr)
	}

	password, _ := splitEntry(stdout)
	if password == "" {
		return "", fmt.Errorf("pass get %q: entry has an empty first line: %w", key, domain.ErrSecretNotFound)
	}
	return password, nil
}

// Delete treats an entry that is already gone as deleted.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := checkKey(ctx, key); err != nil {
		return err
	}

	_, stderr, err := s.run(ctx, "", "rm", "-f", key)
	if err != nil && !strings.Contains(stderr, missingEntryMarker) {
		return formatError("delete", key, err, stderr)
	}
	return nil
}

// notes returns the lines kept below the password of an existing entry.
func (s *Store) notes(ctx context.Context, key string) (string, error) {
	stdout, stderr, err := s.run(ctx, "", "show", key)
	if err != nil {
		if strings.Contains(stderr, missingEntryMarker) {
			return "", nil
		}
		return "", formatError("put", key, err, stderr)
	}

	_, notes := splitEntry(stdout)
	return notes, nil
}

func splitEntry(entry string) (password, notes string) {
	first, rest, _ := strings.Cut(entry, "\n")
	rest = strings.TrimRight(rest, "\r\n")
	if rest != "" {
		rest += "\n"
	}
	return strings.TrimSuffix(first, "\r"), rest
}

func checkKey(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := domain.ParseSecretRef(key)
	return err
}

func runPassCommand(ctx context.Context, input string, args ...string) (string, string, error) {
	path, err := exec.LookPath("pass")
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return "", "", ErrUnavailable
		}
		return "", "", fmt.Errorf("locate pass command: %w", err)
	}

	cmd := exec.CommandContext(ctx, path, args...)
	if input != "" {
		cmd.Stdin = strings.NewReader(input)
	}

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()
	return stdout.String(), strings.TrimSpace(stderr.String()), err
}

func formatError(op string, key string, err error, stderr string) error {
	if stderr == "" {
		return fmt.Errorf("pass %s %q: %w", op, key, err)
	}

	return fmt.Errorf("pass %s %q: %w: %s", op, key, err, stderr)
}
