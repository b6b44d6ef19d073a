package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCodeOf(t *testing.T) {
	err := New(ErrNotFound, "Account not found.")
	require.Equal(t, ErrNotFound, CodeOf(err))

	wrapped := fmt.Errorf("failed to get account: %w", err)
	require.Equal(t, ErrNotFound, CodeOf(wrapped))
	require.True(t, Is(wrapped, ErrNotFound))
	require.False(t, Is(wrapped, ErrConflict))

	plain := fmt.Errorf("disk on fire")
	require.Equal(t, ErrInternal, CodeOf(plain))
	require.Equal(t, ErrInternal, CodeOf(nil))
}

func TestNewf(t *testing.T) {
	err := Newf(ErrInvalidInput, "invalid account type: %s", "CRYPTO")
	require.Equal(t, ErrInvalidInput, CodeOf(err))
	require.Contains(t, err.Error(), "CRYPTO")
}
