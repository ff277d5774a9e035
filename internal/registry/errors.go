package registry

import (
	"errors"
	"fmt"
)

// Kind classifies registry errors so the protocol layer can translate them
// into wire error codes without string matching.
type Kind string

const (
	KindNotFound        Kind = "not_found"
	KindInvalidArgument Kind = "invalid_argument"
	KindDuplicateKey    Kind = "duplicate_key"
)

// Error is the structured error value returned by registry operations.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NotFoundf creates a not_found error
func NotFoundf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidArgumentf creates an invalid_argument error
func InvalidArgumentf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidArgument, Message: fmt.Sprintf(format, args...)}
}

// DuplicateKeyf creates a duplicate_key error
func DuplicateKeyf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindDuplicateKey, Message: fmt.Sprintf(format, args...)}
}

// KindOf returns the kind of a registry error, or "" for other errors.
func KindOf(err error) Kind {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind
	}
	return ""
}

// IsNotFound reports whether err is a not_found registry error
func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

// IsInvalidArgument reports whether err is an invalid_argument registry error
func IsInvalidArgument(err error) bool {
	return KindOf(err) == KindInvalidArgument
}

// IsDuplicateKey reports whether err is a duplicate_key registry error
func IsDuplicateKey(err error) bool {
	return KindOf(err) == KindDuplicateKey
}
