package domain

import "errors"

// ErrorKind is the closed set of failure classes the system distinguishes.
type ErrorKind string

const (
	KindValidation   ErrorKind = "VALIDATION_ERROR"
	KindHashMismatch ErrorKind = "HASH_MISMATCH"
	KindDuplicate    ErrorKind = "DUPLICATE_TRANSACTION"
	KindGatewayRetry ErrorKind = "GATEWAY_RETRY"
	KindGateway      ErrorKind = "GATEWAY_ERROR"
	KindUnauthorized ErrorKind = "UNAUTHORIZED"
	KindInternal     ErrorKind = "INTERNAL_ERROR"
)

// Retryable reports whether the caller may safely retry the operation.
func (k ErrorKind) Retryable() bool {
	return k == KindGatewayRetry
}

type Error struct {
	Kind ErrorKind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind ErrorKind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Wrap(kind ErrorKind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the kind from any error, defaulting to INTERNAL_ERROR for
// untagged failures.
func KindOf(err error) ErrorKind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}
