package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	err := &Error{Type: ErrorTypeRateLimit, Message: "slow down", Code: 429}
	assert.Equal(t, "rate_limit error (code 429): slow down", err.Error())

	err = New(ErrorTypeNotFound, "no profile for %s", "alice")
	assert.Equal(t, "not_found error: no profile for alice", err.Error())
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ErrorTypeNetwork))
	assert.True(t, IsRetryable(ErrorTypeRateLimit))
	assert.True(t, IsRetryable(ErrorTypeServerError))
	assert.False(t, IsRetryable(ErrorTypeAuth))
	assert.False(t, IsRetryable(ErrorTypeNotFound))
	assert.False(t, IsRetryable(ErrorTypeParsing))
	assert.False(t, IsRetryable(ErrorTypeUnknown))
}

func TestTypeForStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorType
	}{
		{0, ErrorTypeNetwork},
		{401, ErrorTypeAuth},
		{403, ErrorTypeAuth},
		{404, ErrorTypeNotFound},
		{429, ErrorTypeRateLimit},
		{500, ErrorTypeServerError},
		{503, ErrorTypeServerError},
		{400, ErrorTypeUnknown},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TypeForStatus(tt.status), "status %d", tt.status)
	}
}
