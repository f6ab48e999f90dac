package apperr_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"zkl/internal/apperr"
)

func TestWith_KeepsSentinelIdentity(t *testing.T) {
	cause := errors.New("connection reset")
	err := fmt.Errorf("inbox append: %w", apperr.With(apperr.ErrInboxFull, cause))

	require.ErrorIs(t, err, apperr.ErrInboxFull)
	require.ErrorIs(t, err, cause)
	require.NotErrorIs(t, err, apperr.ErrUnauthorized)
	require.Equal(t, apperr.CodeInboxFull, apperr.CodeOf(err))
}

func TestIs_DistinguishesSameCode(t *testing.T) {
	require.NotErrorIs(t, apperr.ErrInboxNotFound, apperr.ErrRecipientNotRegistered)
	require.Equal(t, apperr.CodeOf(apperr.ErrInboxNotFound), apperr.CodeOf(apperr.ErrRecipientNotRegistered))
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"transient", apperr.Transient("rpc", errors.New("503")), true},
		{"stale", apperr.ErrStaleState, true},
		{"timeout", apperr.ErrTimeout, true},
		{"deadline", fmt.Errorf("get: %w", context.DeadlineExceeded), true},
		{"inbox full", apperr.ErrInboxFull, false},
		{"auth", apperr.ErrAuthenticationFailed, false},
		{"plain", errors.New("boom"), false},
		{"nil", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, apperr.Retryable(tc.err))
		})
	}
}
