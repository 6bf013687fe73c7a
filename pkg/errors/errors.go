package errors

import (
	stderrors "errors"
	"fmt"
)

// RealtimeError represents base realtime error
type RealtimeError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RealtimeError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *RealtimeError) Unwrap() error {
	return e.Cause
}

// Error codes
const (
	ErrCodeNoSession     = "NO_SESSION"
	ErrCodeTransport     = "TRANSPORT"
	ErrCodeDecode        = "DECODE"
	ErrCodeConfiguration = "CONFIGURATION"
	ErrCodeValidation    = "VALIDATION"
	ErrCodeMessaging     = "MESSAGING"
	ErrCodeSessionStore  = "SESSION_STORE"
)

// NewNoSessionError creates no session error
func NewNoSessionError(message string) *RealtimeError {
	return &RealtimeError{
		Code:    ErrCodeNoSession,
		Message: message,
	}
}

// NewTransportError creates transport error
func NewTransportError(message string, cause error) *RealtimeError {
	return &RealtimeError{
		Code:    ErrCodeTransport,
		Message: message,
		Cause:   cause,
	}
}

// NewDecodeError creates frame decode error
func NewDecodeError(message string, cause error) *RealtimeError {
	return &RealtimeError{
		Code:    ErrCodeDecode,
		Message: message,
		Cause:   cause,
	}
}

// NewConfigurationError creates configuration error
func NewConfigurationError(message string, cause error) *RealtimeError {
	return &RealtimeError{
		Code:    ErrCodeConfiguration,
		Message: message,
		Cause:   cause,
	}
}

// NewValidationError creates validation error
func NewValidationError(message string, cause error) *RealtimeError {
	return &RealtimeError{
		Code:    ErrCodeValidation,
		Message: message,
		Cause:   cause,
	}
}

// NewMessagingError creates messaging error
func NewMessagingError(message string, cause error) *RealtimeError {
	return &RealtimeError{
		Code:    ErrCodeMessaging,
		Message: message,
		Cause:   cause,
	}
}

// NewSessionStoreError creates session store error
func NewSessionStoreError(message string, cause error) *RealtimeError {
	return &RealtimeError{
		Code:    ErrCodeSessionStore,
		Message: message,
		Cause:   cause,
	}
}

// IsCode reports whether any error in err's chain is a RealtimeError with the given code
func IsCode(err error, code string) bool {
	var rtErr *RealtimeError
	if !stderrors.As(err, &rtErr) {
		return false
	}
	if rtErr.Code == code {
		return true
	}
	return IsCode(rtErr.Cause, code)
}
