package usecase

import (
	"errors"
	"fmt"
)

// Kind buckets failures the way callers need to react to them: validation
// and stock block locally, network and processor are retryable by the user,
// auth redirects to login, internal is a generic apology.
type Kind string

const (
	KindValidation Kind = "validation"
	KindStock      Kind = "stock"
	KindNetwork    Kind = "network"
	KindProcessor  Kind = "processor"
	KindAuth       Kind = "auth"
	KindInternal   Kind = "internal"
)

type Error struct {
	Kind  Kind
	Msg   string
	Field string // set for field-level validation failures
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

func E(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

func Ef(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

func FieldError(field, msg string) *Error {
	return &Error{Kind: KindValidation, Msg: msg, Field: field}
}

// KindOf classifies any error; unrecognized errors are internal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Retryable reports whether the caller should be offered a retry action
// rather than a form correction.
func Retryable(err error) bool {
	switch KindOf(err) {
	case KindNetwork, KindProcessor, KindInternal:
		return true
	}
	return false
}
