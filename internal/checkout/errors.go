package checkout

import (
	"errors"
	"fmt"
)

// Kind is the machine-readable classification of a checkout failure.
type Kind string

const (
	KindUnauthenticated      Kind = "unauthenticated"
	KindInvalidAddress       Kind = "invalid_address"
	KindMissingAddressMap    Kind = "missing_address_mapping"
	KindEmptyCart            Kind = "empty_cart"
	KindInvalidPaymentType   Kind = "invalid_payment_type"
	KindInvalidPaymentMethod Kind = "invalid_payment_method"
	KindVoucherNotFound      Kind = "voucher_not_found"
	KindVoucherExpired       Kind = "voucher_expired"
	KindVoucherExhausted     Kind = "voucher_exhausted"
	KindInsufficientStock    Kind = "insufficient_stock"
	KindConflict             Kind = "conflict"
	KindPersistenceFailure   Kind = "persistence_failure"
)

// Error carries a failure kind alongside a human-readable message. The
// wrapped cause, if any, is for operator logs and never reaches the client.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.msg, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.msg)
}

func (e *Error) Unwrap() error { return e.err }

// Message is the client-safe detail text.
func (e *Error) Message() string { return e.msg }

// E builds a checkout error of the given kind.
func E(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...)}
}

// wrapE builds a checkout error that keeps its cause for diagnosis.
func wrapE(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, msg: fmt.Sprintf(format, args...), err: err}
}

// KindOf extracts the failure kind from err, defaulting to
// KindPersistenceFailure for anything that is not a checkout error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return KindPersistenceFailure
}
