package mutate

import "errors"

var (
	// ErrOutOfRange marks an index that no longer matches the current list.
	// UIs treat it as a stale reference and ignore it.
	ErrOutOfRange = errors.New("index out of range")

	// ErrNoMove marks a move whose target equals the source or falls outside the list.
	ErrNoMove = errors.New("no move")
)

const (
	msgRequired   = "Label and URL are required."
	msgInvalidURL = "URL is invalid."
)

// ValidationError is surfaced inline to the user; the input is kept for correction.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

// IsSilent reports whether err is a precondition failure that must not be shown to the user.
func IsSilent(err error) bool {
	return errors.Is(err, ErrOutOfRange) || errors.Is(err, ErrNoMove)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
