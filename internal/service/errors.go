// Package service implements the parking lot core: ticket lifecycle,
// fee calculation against the active rate, pass validity, shift
// bookkeeping and the reconciliation pass. Services speak to storage
// through the narrow store interfaces in ports.go, which the
// repository package implements over MySQL.
package service

import (
	"errors"
	"fmt"
)

// DomainError is a business-rule violation the caller can correct:
// opening a second ticket for a plate that already has one, closing a
// shift twice, deleting a pass with billing history. It carries a
// human-readable reason and is never retried automatically. Anything
// that is not a DomainError is an infrastructure failure and opaque to
// callers.
type DomainError struct {
	Reason string
}

func (e *DomainError) Error() string { return e.Reason }

func domainErrf(format string, args ...any) *DomainError {
	return &DomainError{Reason: fmt.Sprintf(format, args...)}
}

// IsDomain reports whether err is (or wraps) a DomainError.
func IsDomain(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}
