package forum

import (
	"errors"
	"fmt"
)

/*
Errors the service hands back for problems that are the caller's fault. The
HTTP layer maps these onto status codes; everything not covered here is a
server-side failure and stays opaque to users.
*/

// A ValidationError describes a problem with user-supplied input. Its
// message is safe to show to the user verbatim.
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

func invalid(format string, args ...any) ValidationError {
	return ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) bool {
	var v ValidationError
	return errors.As(err, &v)
}

var ErrLoginRequired = errors.New("you must be signed in to do that")
var ErrNotOwner = errors.New("you can only modify your own content")
var ErrResearchersOnly = errors.New("only researchers can reply to this thread")

// Returned when somebody interacts with a placeholder item that has never
// been promoted and doesn't send its seed data along. There is nothing in
// storage to act on yet, so the caller has to supply the placeholder's
// contents first.
var ErrSeedRequired = errors.New("this discussion does not exist yet and no seed data was provided")
