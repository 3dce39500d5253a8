package vcerrors

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// Retryability must equal family membership for every code in the enumeration,
// not just the ones we happen to exercise elsewhere.
func TestRetryableMatchesFamily(t *testing.T) {
	for _, code := range Codes() {
		inServerFamily := strings.HasPrefix(string(code), "VC_5")
		require.Equal(t, inServerFamily, code.Retryable(), "code %s", code)
	}
}

func TestEveryCodeHasDefaultMessage(t *testing.T) {
	for _, code := range Codes() {
		require.NotEmpty(t, code.Message(), "code %s", code)
	}
}

func TestNewUsesDefaultMessage(t *testing.T) {
	err := New(CodeWalletNotFound, "")
	require.Equal(t, CodeWalletNotFound.Message(), err.Message)
	require.Equal(t, CodeWalletNotFound, CodeOf(err))
}

func TestCustomMessageKeepsRetryability(t *testing.T) {
	err := New(CodeDatabaseError, "write to vc table failed")
	require.Equal(t, "write to vc table failed", MessageOf(err))
	require.True(t, CodeOf(err).Retryable())
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, CodeTransactionFailed, "")
	require.ErrorIs(t, err, cause)
	require.Equal(t, CodeTransactionFailed, CodeOf(err))
	require.True(t, HasCode(err, CodeTransactionFailed))
	require.False(t, HasCode(err, CodeDatabaseError))
}

func TestWrappedChainClassifiesByOutermostCode(t *testing.T) {
	inner := Wrap(errors.New("no rows"), CodeVCNotFound, "")
	outer := fmt.Errorf("invalidate: %w", inner)
	require.Equal(t, CodeVCNotFound, CodeOf(outer))
}

func TestUntaggedErrorClassifiesAsInternal(t *testing.T) {
	err := errors.New("boom")
	require.Equal(t, CodeInternal, CodeOf(err))
	require.True(t, CodeOf(err).Retryable())
}
