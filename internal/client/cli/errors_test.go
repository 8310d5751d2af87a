package cli

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/obiajulum/padipay/internal/client/api"
	"github.com/obiajulum/padipay/internal/common"
)

func TestDescribeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "timeout gets its own message",
			err:  &api.NetworkError{Kind: api.NetworkTimeout, Err: errors.New("deadline")},
			want: "The request timed out. Check your connection and 'retry'.",
		},
		{
			name: "connectivity is distinct from timeout",
			err:  &api.NetworkError{Kind: api.NetworkConnect, Err: errors.New("refused")},
			want: "Could not reach PadiPay. Check your connection and 'retry'.",
		},
		{
			name: "5xx is distinct from connectivity",
			err:  &api.NetworkError{Kind: api.NetworkServer, Err: errors.New("503")},
			want: "PadiPay is having trouble right now. Please 'retry' in a moment.",
		},
		{
			name: "rate limit shows the cool-down",
			err:  &api.RateLimitError{RetryAfter: 15 * time.Minute, Message: "locked"},
			want: "Too many attempts. Try again in 15m0s.",
		},
		{
			name: "unverified email routes to verification",
			err:  &api.APIError{Status: 403, Code: api.CodeRequiresVerification, Message: "verify first"},
			want: "Your email is not verified yet. Check your inbox for the verification link.",
		},
		{
			name: "unknown account offers registration",
			err:  &api.APIError{Status: 404, Code: api.CodeAccountNotFound, Message: "no such user"},
			want: "No account with that email. Register in the PadiPay app first.",
		},
		{
			name: "storage inconsistency is fatal guidance",
			err:  common.ErrStorageInconsistency,
			want: "Could not save your session on this device. Please try logging in again.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, describeError(tc.err))
		})
	}
}
