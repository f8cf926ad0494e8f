package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies a source failure. Timeouts get their own kind for
// observability but are merged exactly like any other failure.
type ErrorKind string

const (
	KindUnavailable ErrorKind = "unavailable"
	KindTimeout     ErrorKind = "timeout"
)

var (
	// ErrUnavailable is returned by gateways when an upstream cannot serve a call.
	ErrUnavailable = errors.New("source unavailable")

	// ErrOutOfScope is returned when a write targets a school outside the
	// session's company.
	ErrOutOfScope = errors.New("school is outside the session scope")

	// ErrDuplicate is returned when a write would give two schools the same name.
	ErrDuplicate = errors.New("duplicate school")
)

// InScope reports whether a session may act on the school with companyID.
// Platform sessions may act on any school.
func InScope(s Session, companyID string) bool {
	scope := strings.TrimSpace(s.CompanyID)
	return scope == "" || scope == companyID
}

// SourceError records one call that failed and was replaced by its default.
type SourceError struct {
	Source string
	Kind   ErrorKind
	Err    error
}

// NewSourceError classifies err for the named source.
func NewSourceError(name string, err error) SourceError {
	kind := KindUnavailable
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	return SourceError{Source: name, Kind: kind, Err: err}
}

func (e SourceError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
}

func (e SourceError) Unwrap() error { return e.Err }
