package homework

import (
	"errors"
	"fmt"
)

// Kind classifies a failure of the status API contract.
type Kind int

const (
	KindUnknown Kind = iota
	// KindTransport: the API could not be reached (DNS, TCP, TLS, timeout).
	KindTransport
	// KindRemoteStatus: the API answered with a non-200 status.
	KindRemoteStatus
	// KindShape: the payload is not what the API documents.
	KindShape
	// KindMissingField: a required key is absent or empty.
	KindMissingField
	// KindUnknownStatus: a homework status is not in the verdict table.
	KindUnknownStatus
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindRemoteStatus:
		return "remote_status"
	case KindShape:
		return "shape"
	case KindMissingField:
		return "missing_field"
	case KindUnknownStatus:
		return "unknown_status"
	default:
		return "unknown"
	}
}

// Error is returned by every operation in this package.
type Error struct {
	Kind Kind
	Op   string // "fetch", "check_response", "parse_status"
	Msg  string
	// StatusCode is set for KindRemoteStatus.
	StatusCode int
	Err        error
}

func (e *Error) Error() string {
	s := e.Op + ": " + e.Msg
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is(err, &Error{Kind: k}) match on kind alone.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Op == "" && t.Msg == ""
}

// Sentinels for errors.Is.
var (
	ErrTransport     = &Error{Kind: KindTransport}
	ErrRemoteStatus  = &Error{Kind: KindRemoteStatus}
	ErrShape         = &Error{Kind: KindShape}
	ErrMissingField  = &Error{Kind: KindMissingField}
	ErrUnknownStatus = &Error{Kind: KindUnknownStatus}
)

// KindOf returns the Kind of the first *Error in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func newError(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}
