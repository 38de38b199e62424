package poller

import (
	"context"
	"errors"

	"homeworkbot/internal/homework"
)

// Class decides how a cycle error is surfaced.
type Class int

const (
	// ClassReportable errors are logged at error level and sent to the chat.
	ClassReportable Class = iota
	// ClassTransient errors are connectivity noise: logged at warn level only.
	ClassTransient
)

func (c Class) String() string {
	if c == ClassTransient {
		return "transient"
	}
	return "reportable"
}

// Classify maps a cycle error to its Class. Anything unrecognised is
// reportable.
func Classify(err error) Class {
	switch {
	case err == nil:
		return ClassTransient
	case errors.Is(err, context.Canceled):
		return ClassTransient
	case homework.KindOf(err) == homework.KindTransport:
		return ClassTransient
	default:
		return ClassReportable
	}
}

// FailureText is the chat message for a reportable error.
func FailureText(err error) string {
	return "Program failure: " + err.Error()
}
