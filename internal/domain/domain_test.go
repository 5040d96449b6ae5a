package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseActionKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		raw     string
		want    ActionKind
		wantErr bool
	}{
		{name: "follow", raw: "follow", want: ActionFollow},
		{name: "mixed case with spaces", raw: "  FoLLow ", want: ActionFollow},
		{name: "unfollow", raw: "UNFOLLOW", want: ActionUnfollow},
		{name: "activate alias", raw: "activate", want: ActionFollow},
		{name: "deactivate alias", raw: "Deactivate", want: ActionUnfollow},
		{name: "unknown", raw: "like", wantErr: true},
		{name: "empty", raw: "", wantErr: true},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParseActionKind(tc.raw)
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrUnknownAction)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTargetRecordNormalize(t *testing.T) {
	t.Parallel()

	target, err := TargetRecord{Identity: " alice ", Action: "Follow"}.Normalize()
	require.NoError(t, err)
	assert.Equal(t, Target{Identity: "alice", Action: ActionFollow}, target)

	_, err = TargetRecord{Identity: "  ", Action: "follow"}.Normalize()
	assert.ErrorContains(t, err, "identity is empty")

	_, err = TargetRecord{Identity: "bob", Action: "block"}.Normalize()
	assert.ErrorIs(t, err, ErrUnknownAction)
}

func TestLedgerAppendPartitionsInOrder(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)
	ledger := NewLedger()
	require.True(t, ledger.Empty())

	ledger.Append(NewActionOutcome(Target{Identity: "a", Action: ActionFollow}, StatusSuccess, at))
	ledger.Append(NewActionOutcome(Target{Identity: "b", Action: ActionUnfollow}, StatusFailure, at.Add(time.Second)))
	ledger.Append(NewActionOutcome(Target{Identity: "c", Action: ActionFollow}, StatusSuccess, at.Add(2*time.Second)))

	assert.Equal(t, 3, ledger.Len())
	require.Len(t, ledger.Success, 2)
	require.Len(t, ledger.Failure, 1)
	assert.Equal(t, "a", ledger.Success[0].Target)
	assert.Equal(t, "c", ledger.Success[1].Target)
	assert.Equal(t, ActionUnfollow, ledger.Failure[0].Action)

	partitions := ledger.Partitions()
	require.Len(t, partitions, 2)
	assert.Equal(t, StatusSuccess, partitions[0].Status)
	assert.Equal(t, StatusFailure, partitions[1].Status)
}

func TestCredentialsNeverExposeSecret(t *testing.T) {
	t.Parallel()

	creds := NewCredentials(" alice ", "hunter2")
	assert.Equal(t, "alice", creds.String())

	enc := zapcore.NewMapObjectEncoder()
	require.NoError(t, creds.MarshalLogObject(enc))
	assert.Equal(t, map[string]interface{}{"identity": "alice"}, enc.Fields)
}

func TestAccountValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, Account{Username: "alice", Password: "pw"}.Validate())
	assert.NoError(t, Account{Username: "alice", SecretRef: "instaflow/accounts/alice/password"}.Validate())
	assert.ErrorContains(t, Account{Password: "pw"}.Validate(), "username is required")
	assert.ErrorContains(t, Account{Username: "alice"}.Validate(), "neither a password nor a secret reference")
}

func TestParseSecretRef(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "instaflow/accounts/alice/password", PasswordSecretRef(" alice "))

	username, err := ParseSecretRef(PasswordSecretRef("alice"))
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	invalid := []string{
		"",
		"alice",
		"instaflow/accounts//password",
		"instaflow/accounts/../password",
		"instaflow/accounts/a/b/password",
		"instaflow/accounts/alice/token",
		"other/accounts/alice/password",
		"/instaflow/accounts/alice/password",
		"instaflow/accounts/al ice/password",
	}
	for _, ref := range invalid {
		_, err := ParseSecretRef(ref)
		assert.ErrorIs(t, err, ErrInvalidSecretRef, ref)
	}
}
