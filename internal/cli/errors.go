package cli

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrDoctorIssuesFound is returned by `doctor --fail` when a stored value is damaged.
var ErrDoctorIssuesFound = errors.New("doctor: issues found")

type notFoundError struct {
	kind string
	id   string
}

func (e notFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.kind, e.id)
}

func errNotFound(kind, id string) error {
	return notFoundError{kind: kind, id: id}
}

type invalidArgError struct {
	arg    string
	reason string
}

func (e invalidArgError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.arg, e.reason)
}

func errInvalidArg(arg, reason string) error {
	return invalidArgError{arg: arg, reason: reason}
}
