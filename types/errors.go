package types

import (
	"errors"
	"fmt"
)

// Error codes reported by the payment flow.
const (
	ErrValidation             = "VALIDATION_ERROR"
	ErrWalletUnavailable      = "WALLET_UNAVAILABLE"
	ErrChainUnsupported       = "CHAIN_UNSUPPORTED"
	ErrChainNegotiationFailed = "CHAIN_NEGOTIATION_FAILED"
	ErrSubmission             = "SUBMISSION_ERROR"
	ErrAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	ErrBackendSettlement      = "BACKEND_SETTLEMENT_ERROR"
	ErrRecording              = "RECORDING_ERROR"
	ErrInvalidPayeeAddress    = "INVALID_PAYEE_ADDRESS"
	ErrLinkNotFound           = "LINK_NOT_FOUND"
	ErrInvalidDescriptor      = "INVALID_DESCRIPTOR"
	ErrNetworkError           = "NETWORK_ERROR"
	ErrConfigError            = "CONFIG_ERROR"
)

// PaylinkError is the error type surfaced by every component of the flow.
type PaylinkError struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Err     error       `json:"-"`
}

// NewError builds a PaylinkError wrapping cause, which may be nil.
func NewError(code, message string, cause error) *PaylinkError {
	return &PaylinkError{Code: code, Message: message, Err: cause}
}

// Errorf builds a PaylinkError with a formatted message and no cause.
func Errorf(code, format string, args ...interface{}) *PaylinkError {
	return &PaylinkError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *PaylinkError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *PaylinkError) Unwrap() error {
	return e.Err
}

// WithData attaches structured context to the error.
func (e *PaylinkError) WithData(data interface{}) *PaylinkError {
	e.Data = data
	return e
}

// Is matches another PaylinkError by code, so errors.Is(err,
// &PaylinkError{Code: ErrSubmission}) works on wrapped values.
func (e *PaylinkError) Is(target error) bool {
	t, ok := target.(*PaylinkError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// CodeOf returns the code of the first PaylinkError in err's chain, or ""
// when there is none.
func CodeOf(err error) string {
	var pe *PaylinkError
	if errors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code string) bool {
	return CodeOf(err) == code
}
