package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRealtimeError_Error(t *testing.T) {
	err := NewTransportError("failed to dial", stderrors.New("connection refused"))
	assert.Equal(t, "[TRANSPORT] failed to dial: connection refused", err.Error())

	noSession := NewNoSessionError("no active session")
	assert.Equal(t, "[NO_SESSION] no active session", noSession.Error())
}

func TestRealtimeError_Unwrap(t *testing.T) {
	cause := stderrors.New("boom")
	err := NewMessagingError("publish failed", cause)
	assert.True(t, stderrors.Is(err, cause))
}

func TestIsCode(t *testing.T) {
	err := fmt.Errorf("connect: %w", NewNoSessionError("no active session"))
	assert.True(t, IsCode(err, ErrCodeNoSession))
	assert.False(t, IsCode(err, ErrCodeTransport))
	assert.False(t, IsCode(stderrors.New("plain"), ErrCodeNoSession))
	assert.False(t, IsCode(nil, ErrCodeNoSession))

	nested := NewTransportError("dial", NewConfigurationError("bad url", nil))
	assert.True(t, IsCode(nested, ErrCodeConfiguration))
}
