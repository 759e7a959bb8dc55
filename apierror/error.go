// Package apierror defines the error type returned across the library's
// boundaries. Every failure carries a Kind so that callers can tell a
// malformed identity apart from a network outage or a response without a main
// section, and, where an HTTP exchange was involved, the response status.
package apierror

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown is the zero Kind.
	KindUnknown Kind = iota
	// KindMalformedLocator means an identity string did not have the expected
	// shape after normalization.
	KindMalformedLocator
	// KindTransport means the request could not be sent or the response could
	// not be read.
	KindTransport
	// KindStatus means the server answered with a non-success status.
	KindStatus
	// KindDecode means the response body was not valid JSON, or the JSON did
	// not have a usable shape.
	KindDecode
	// KindNoMainSection means the response was a list with no element named
	// "main".
	KindNoMainSection
	// KindFieldMissing means the section was found but did not carry the
	// requested field.
	KindFieldMissing
)

var kindNames = [...]string{
	KindUnknown:          "unknown",
	KindMalformedLocator: "malformed locator",
	KindTransport:        "transport",
	KindStatus:           "status",
	KindDecode:           "decode",
	KindNoMainSection:    "no main section",
	KindFieldMissing:     "field missing",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error is the type of error returned by the library. It contains a Kind and,
// for KindStatus errors, the HTTP status code.
type Error struct {
	err    error
	kind   Kind
	status int
}

// New creates an Error of the given kind wrapping err.
func New(kind Kind, err error) *Error {
	return &Error{
		err:  err,
		kind: kind,
	}
}

// Errorf creates an Error of the given kind with a formatted message. The %w
// verb is honored.
func Errorf(kind Kind, format string, args ...any) *Error {
	return New(kind, fmt.Errorf(format, args...))
}

// FromResponse creates a KindStatus error from a response status and body.
// The trimmed body, if any, becomes the error message.
func FromResponse(status int, body []byte) error {
	var err error
	text := strings.TrimSpace(string(body))
	if text != "" {
		err = errors.New(text)
	}
	return &Error{
		err:    err,
		kind:   KindStatus,
		status: status,
	}
}

func (e *Error) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	if e.status == 0 {
		return e.kind.String()
	}
	// If there is only status, then return status text
	if text := http.StatusText(e.status); text != "" {
		return fmt.Sprintf("%d %s", e.status, text)
	}
	return fmt.Sprintf("%d", e.status)
}

// Kind returns the failure classification.
func (e *Error) Kind() Kind {
	return e.kind
}

// Status returns the HTTP status code, or 0 if no response was involved.
func (e *Error) Status() int {
	return e.status
}

// Text returns a description that includes the kind and, if present, the
// status code and text.
func (e *Error) Text() string {
	parts := make([]string, 0, 6)
	parts = append(parts, e.kind.String())
	if e.status != 0 {
		parts = append(parts, fmt.Sprintf(" %d", e.status))
		text := http.StatusText(e.status)
		if text != "" {
			parts = append(parts, " ")
			parts = append(parts, text)
		}
	}
	if e.err != nil {
		parts = append(parts, ": ")
		parts = append(parts, e.err.Error())
	}
	return strings.Join(parts, "")
}

func (e *Error) Unwrap() error {
	return e.err
}

// KindOf returns the Kind of the first Error in err's chain, or KindUnknown.
func KindOf(err error) Kind {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.kind
	}
	return KindUnknown
}

// IsKind reports whether err's chain contains an Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
