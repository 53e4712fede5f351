// Package verify checks a decoded image before it is listed: every byte
// accounted for exactly once and every pointer resolved to a label that
// names its target.
package verify

import (
	"fmt"
	"strings"
)

// Stage names the check that failed.
type Stage string

const (
	StageLayout Stage = "layout"
	StageLabels Stage = "labels"
)

// Error is a failed consistency check. Details lists every offending
// address found by the check.
type Error struct {
	Stage   Stage
	Message string
	Details []string
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s", e.Stage, e.Message)
	for _, d := range e.Details {
		fmt.Fprintf(&b, "\n  - %s", d)
	}
	return b.String()
}

func NewError(stage Stage, message string, details ...string) *Error {
	return &Error{Stage: stage, Message: message, Details: details}
}

func Fail(stage Stage, format string, args ...interface{}) *Error {
	return &Error{Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// report collects the findings of one stage so that a single run lists all
// of them.
type report struct {
	stage   Stage
	details []string
}

func (r *report) add(format string, args ...interface{}) {
	r.details = append(r.details, fmt.Sprintf(format, args...))
}

// at records a finding about the object or byte at addr.
func (r *report) at(addr int, format string, args ...interface{}) {
	r.add("$%04X: %s", addr, fmt.Sprintf(format, args...))
}

func (r *report) result(message string) error {
	if len(r.details) == 0 {
		return nil
	}
	return NewError(r.stage, message, r.details...)
}
