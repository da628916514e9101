package domain

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindInvalidTransfer   ErrorKind = "InvalidTransferRequest"
	KindInvalidRequest    ErrorKind = "InvalidRequest"
	KindSourceNotFound    ErrorKind = "SourceNotFound"
	KindProductNotFound   ErrorKind = "ProductNotFound"
	KindOrderNotFound     ErrorKind = "OrderNotFound"
	KindWarehouseRequired ErrorKind = "WarehouseRequired"
	KindInsufficientStock ErrorKind = "InsufficientStock"
	KindInvalidTransition ErrorKind = "InvalidOrderTransition"
	KindDuplicateRequest  ErrorKind = "DuplicateRequest"
	KindPartialTransfer   ErrorKind = "PartialTransferFailure"
	KindInfrastructure    ErrorKind = "InfrastructureError"
)

var (
	ErrInvalidTransfer   = &Error{Kind: KindInvalidTransfer, Message: "invalid transfer request"}
	ErrInvalidRequest    = &Error{Kind: KindInvalidRequest, Message: "invalid request"}
	ErrSourceNotFound    = &Error{Kind: KindSourceNotFound, Message: "product not found in source warehouse"}
	ErrProductNotFound   = &Error{Kind: KindProductNotFound, Message: "product not found"}
	ErrOrderNotFound     = &Error{Kind: KindOrderNotFound, Message: "order not found"}
	ErrWarehouseRequired = &Error{Kind: KindWarehouseRequired, Message: "warehouse id is required when completing an order"}
	ErrInsufficientStock = &Error{Kind: KindInsufficientStock, Message: "insufficient stock in source warehouse"}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition, Message: "invalid order status transition"}
	ErrDuplicateRequest  = &Error{Kind: KindDuplicateRequest, Message: "duplicate request"}
	ErrPartialTransfer   = &Error{Kind: KindPartialTransfer, Message: "transfer partially applied"}
	ErrInfrastructure    = &Error{Kind: KindInfrastructure, Message: "infrastructure error"}
)

// Error is the failure half of every core operation's result.
type Error struct {
	Kind    ErrorKind
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

// Is matches any *Error of the same kind, so callers can compare against the
// package sentinels regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func Errorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind to an underlying error.
func Wrap(kind ErrorKind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf returns the kind carried by err. Errors that never went through this
// package are infrastructure failures.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInfrastructure
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "internal error"
}
