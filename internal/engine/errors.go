package engine

import (
	"errors"
	"fmt"
)

// Kind classifies an engine error for retry and transport mapping. Validation
// and authorization failures are never retried; state conflicts require the
// caller to re-fetch and retry the intent; concurrency losses are retried
// internally before surfacing; external failures depend on the phase (order
// creation retries, verification fails closed).
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuthorization
	KindStateConflict
	KindConcurrency
	KindExternal
)

// Stable error codes surfaced to callers.
const (
	CodeDuplicateBid           = "DuplicateBid"
	CodeReBidNotAllowed        = "ReBidNotAllowed"
	CodeNotBidOwner            = "NotBidOwner"
	CodeBidAlreadyDecided      = "BidAlreadyDecided"
	CodeProjectLocked          = "ProjectLocked"
	CodeInvalidCheckpoint      = "InvalidCheckpoint"
	CodeNoPendingSubmission    = "NoPendingSubmission"
	CodeInvalidAmount          = "InvalidAmount"
	CodeVerificationFailed     = "VerificationFailed"
	CodeDuplicatePayment       = "DuplicatePayment"
	CodeTicketAlreadyOpen      = "TicketAlreadyOpen"
	CodeTicketNotOpen          = "TicketNotOpen"
	CodeConcurrentModification = "ConcurrentModification"
	CodeGatewayUnavailable     = "GatewayUnavailable"
	CodeNotFound               = "NotFound"
)

type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationf(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func authorizationf(code, format string, args ...any) *Error {
	return &Error{Kind: KindAuthorization, Code: code, Message: fmt.Sprintf(format, args...)}
}

func conflictf(code, format string, args ...any) *Error {
	return &Error{Kind: KindStateConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func externalErr(code, msg string, err error) *Error {
	return &Error{Kind: KindExternal, Code: code, Message: msg, Err: err}
}

func concurrencyErr(err error) *Error {
	return &Error{Kind: KindConcurrency, Code: CodeConcurrentModification, Message: "aggregate changed between read and write", Err: err}
}

// KindOf returns the engine error kind, or 0 for foreign errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// HasCode reports whether err carries the given engine error code.
func HasCode(err error, code string) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
	}
	return false
}
