package vault

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walletd/core/internal/walleterrors"
)

func TestInitializeThenUnlockRoundTrips(t *testing.T) {
	v := New(1) // cheap iteration count for test speed
	ct, err := v.Initialize("correct horse")
	require.NoError(t, err)
	require.NotNil(t, ct)

	secret, err := v.ExportKey()
	require.NoError(t, err)
	require.Len(t, secret, 32)

	v.Lock()
	assert.False(t, v.Unlocked())

	unlocked, err := v.Unlock("correct horse", nil)
	require.NoError(t, err)
	assert.Equal(t, secret, unlocked)
}

func TestInitializeTwiceFails(t *testing.T) {
	v := New(1)
	_, err := v.Initialize("p1")
	require.NoError(t, err)

	_, err = v.Initialize("p2")
	require.Error(t, err)
	var we *walleterrors.WalletError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, walleterrors.ReasonAlreadyInitialized, we.Reason)
}

func TestUnlockWrongPasswordFailsAndLocksSession(t *testing.T) {
	v := New(1)
	_, err := v.Initialize("right")
	require.NoError(t, err)
	v.Lock()

	_, err = v.Unlock("wrong", nil)
	require.Error(t, err)
	var we *walleterrors.WalletError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, walleterrors.ReasonInvalidPassword, we.Reason)
	assert.False(t, v.Unlocked())
}

func TestExportKeyFailsWhenLocked(t *testing.T) {
	v := New(1)
	_, err := v.Initialize("pw")
	require.NoError(t, err)
	v.Lock()

	_, err = v.ExportKey()
	require.Error(t, err)
	var we *walleterrors.WalletError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, walleterrors.ReasonLocked, we.Reason)
}

func TestResealPreservesSaltAndIterations(t *testing.T) {
	v := New(1)
	ct1, err := v.Initialize("pw")
	require.NoError(t, err)

	newSecret := []byte("0123456789abcdef0123456789abcdef")
	ct2, err := v.Reseal(newSecret)
	require.NoError(t, err)

	assert.Equal(t, ct1.Salt, ct2.Salt)
	assert.Equal(t, ct1.Iterations, ct2.Iterations)
	assert.NotEqual(t, ct1.IV, ct2.IV)

	v.Lock()
	unlocked, err := v.Unlock("pw", nil)
	require.NoError(t, err)
	assert.Equal(t, newSecret, unlocked)
}

func TestResealFailsWhenLocked(t *testing.T) {
	v := New(1)
	_, err := v.Initialize("pw")
	require.NoError(t, err)
	v.Lock()

	_, err = v.Reseal([]byte("x"))
	require.Error(t, err)
	var we *walleterrors.WalletError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, walleterrors.ReasonLocked, we.Reason)
}

func TestVerifyPasswordDoesNotMutateState(t *testing.T) {
	v := New(1)
	_, err := v.Initialize("pw")
	require.NoError(t, err)
	v.Lock()

	require.NoError(t, v.VerifyPassword("pw"))
	assert.False(t, v.Unlocked(), "verifyPassword must not unlock the session")

	err = v.VerifyPassword("wrong")
	require.Error(t, err)
}

func TestRestoreStartsLocked(t *testing.T) {
	v := New(1)
	ct, err := v.Initialize("pw")
	require.NoError(t, err)

	restored := Restore(ct)
	assert.True(t, restored.Initialized())
	assert.False(t, restored.Unlocked())

	secret, err := restored.Unlock("pw", nil)
	require.NoError(t, err)
	assert.Len(t, secret, 32)
}

func TestUnlockWithoutInitializeFails(t *testing.T) {
	v := New(1)
	_, err := v.Unlock("pw", nil)
	require.Error(t, err)
	var we *walleterrors.WalletError
	require.ErrorAs(t, err, &we)
	assert.Equal(t, walleterrors.ReasonNotInitialized, we.Reason)
}
