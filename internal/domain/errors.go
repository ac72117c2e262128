// Package domain defines the typed failures the service layer returns.
// Handlers translate kinds into HTTP status codes; services never pick codes
// themselves. Every kind raised inside a transaction aborts it.
package domain

import "errors"

// Kind classifies a business failure.
type Kind string

const (
	// KindNotFound: referenced product, sale or debt does not exist.
	KindNotFound Kind = "not_found"
	// KindInsufficientStock: requested quantity exceeds on-hand stock.
	KindInsufficientStock Kind = "insufficient_stock"
	// KindInvalidAmount: non-positive amount, or a payment that would
	// overshoot the debt's original amount.
	KindInvalidAmount Kind = "invalid_amount"
	// KindInvalidState: operation not permitted in the current state,
	// e.g. paying a fully settled debt.
	KindInvalidState Kind = "invalid_state"
	// KindConstraint: the store rejected the write; surfaced with a domain
	// message instead of the raw database error.
	KindConstraint Kind = "constraint"
	// KindUnauthorized: bad credentials or an invalid token.
	KindUnauthorized Kind = "unauthorized"
)

// Error carries a kind plus a client-safe message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string { return e.Message }

func NotFound(msg string) *Error          { return &Error{Kind: KindNotFound, Message: msg} }
func InsufficientStock(msg string) *Error { return &Error{Kind: KindInsufficientStock, Message: msg} }
func InvalidAmount(msg string) *Error     { return &Error{Kind: KindInvalidAmount, Message: msg} }
func InvalidState(msg string) *Error      { return &Error{Kind: KindInvalidState, Message: msg} }
func Constraint(msg string) *Error        { return &Error{Kind: KindConstraint, Message: msg} }
func Unauthorized(msg string) *Error      { return &Error{Kind: KindUnauthorized, Message: msg} }

// KindOf extracts the failure kind from an error chain; empty when the error
// is not a domain failure.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return ""
}
