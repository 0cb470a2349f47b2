// Package errs defines the error taxonomy shared by the service and
// transport layers.
//
// Expected failure modes (bad input, missing records, gateway declines)
// travel as typed errors rather than uncontrolled panics; the HTTP layer
// maps each kind to a status code and a specific, actionable message.
// Network failures are reported but never retried automatically — retry
// is a user-initiated action.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies an error for transport mapping.
type Kind int

const (
	// KindValidation — malformed input. Blocks the charge before any
	// ledger or gateway call is made.
	KindValidation Kind = iota + 1

	// KindNotFound — referenced dish/participant/table does not exist.
	KindNotFound

	// KindNetwork — transport failure reaching the store or gateway;
	// local state is left unchanged.
	KindNetwork

	// KindGatewayDecline — the payment method was declined or requires
	// further verification.
	KindGatewayDecline
)

// Error is a classified error with a user-facing message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Validation builds a KindValidation error.
func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error.
func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// Network wraps a transport failure.
func Network(msg string, err error) *Error {
	return &Error{Kind: KindNetwork, Message: msg, Err: err}
}

// GatewayDecline builds a KindGatewayDecline error with the decline reason.
func GatewayDecline(reason string) *Error {
	return &Error{Kind: KindGatewayDecline, Message: reason}
}

// KindOf returns the Kind of err, or 0 when err is not a classified error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }
