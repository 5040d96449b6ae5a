package chain

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/instaflow/internal/domain"
	portmocks "github.com/bnema/instaflow/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const passwordKey = "instaflow/accounts/alice/password"

func newTestStore(t *testing.T) (*Store, *portmocks.MockSecretStore, *portmocks.MockSecretStore) {
	t.Helper()

	primary := portmocks.NewMockSecretStore(t)
	fallback := portmocks.NewMockSecretStore(t)
	store, err := NewStore(primary, fallback, nil)
	require.NoError(t, err)
	return store, primary, fallback
}

func TestNewStoreRejectsNilBackends(t *testing.T) {
	t.Parallel()

	_, err := NewStore(nil, portmocks.NewMockSecretStore(t), nil)
	assert.ErrorIs(t, err, errNilPrimaryStore)

	_, err = NewStore(portmocks.NewMockSecretStore(t), nil, nil)
	assert.ErrorIs(t, err, errNilFallbackStore)
}

func TestStoreGetUsesPrimaryWhenItSucceeds(t *testing.T) {
	t.Parallel()

	store, primary, _ := newTestStore(t)
	primary.EXPECT().Get(mock.Anything, passwordKey).Return("from-pass", nil).Once()

	value, err := store.Get(context.Background(), passwordKey)
	require.NoError(t, err)
	assert.Equal(t, "from-pass", value)
}

func TestStoreGetFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newTestStore(t)
	primary.EXPECT().Get(mock.Anything, passwordKey).Return("", errors.New("pass unavailable")).Once()
	fallback.EXPECT().Get(mock.Anything, passwordKey).Return("from-file", nil).Once()

	value, err := store.Get(context.Background(), passwordKey)
	require.NoError(t, err)
	assert.Equal(t, "from-file", value)
}

func TestStoreGetKeepsNotFoundWhenBothMiss(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newTestStore(t)
	primary.EXPECT().Get(mock.Anything, passwordKey).Return("", domain.ErrSecretNotFound).Once()
	fallback.EXPECT().Get(mock.Anything, passwordKey).Return("", domain.ErrSecretNotFound).Once()

	_, err := store.Get(context.Background(), passwordKey)
	require.ErrorIs(t, err, domain.ErrSecretNotFound)
	assert.ErrorContains(t, err, "fallback backend get failed")
}

func TestStorePutFallsBackWhenPrimaryFails(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newTestStore(t)
	primary.EXPECT().Put(mock.Anything, passwordKey, "secret").Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Put(mock.Anything, passwordKey, "secret").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), passwordKey, "secret"))
}

func TestStorePutSkipsFallbackWhenPrimarySucceeds(t *testing.T) {
	t.Parallel()

	store, primary, _ := newTestStore(t)
	primary.EXPECT().Put(mock.Anything, passwordKey, "secret").Return(nil).Once()

	require.NoError(t, store.Put(context.Background(), passwordKey, "secret"))
}

func TestStoreDeleteClearsBothBackends(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newTestStore(t)
	primary.EXPECT().Delete(mock.Anything, passwordKey).Return(nil).Once()
	fallback.EXPECT().Delete(mock.Anything, passwordKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), passwordKey))
}

func TestStoreDeleteSucceedsWhenOneBackendSucceeds(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newTestStore(t)
	primary.EXPECT().Delete(mock.Anything, passwordKey).Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Delete(mock.Anything, passwordKey).Return(nil).Once()

	require.NoError(t, store.Delete(context.Background(), passwordKey))
}

func TestStoreDeleteFailsWhenBothFail(t *testing.T) {
	t.Parallel()

	store, primary, fallback := newTestStore(t)
	primary.EXPECT().Delete(mock.Anything, passwordKey).Return(errors.New("pass failed")).Once()
	fallback.EXPECT().Delete(mock.Anything, passwordKey).Return(errors.New("file failed")).Once()

	err := store.Delete(context.Background(), passwordKey)
	assert.ErrorContains(t, err, "primary backend delete failed")
}

func TestStoreGetDoesNotFallbackOnCanceledContextError(t *testing.T) {
	t.Parallel()

	store, primary, _ := newTestStore(t)
	primary.EXPECT().Get(mock.Anything, passwordKey).Return("", context.Canceled).Once()

	_, err := store.Get(context.Background(), passwordKey)
	require.ErrorIs(t, err, context.Canceled)
}
