package website

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/db"
	"github.com/CollabioraDev/Collabiora-Backend-sub002/src/forum"
)

func FourOhFour(c *RequestContext) ResponseData {
	var res ResponseData
	res.StatusCode = http.StatusNotFound
	res.WriteJson(map[string]any{
		"ok":    false,
		"error": "not found",
	}, c.Perf)
	return res
}

// A SafeError can be used to wrap another error and explicitly provide
// an error message that is safe to show to a user. This allows the original
// error to easily be logged and for servers to consistently return errors
// in a standard format, without having to worry about leaking sensitive
// info (assuming you use the right middleware!).
type SafeError struct {
	Wrapped error
	Msg     string
}

func NewSafeError(err error, msg string, args ...interface{}) error {
	return &SafeError{
		Wrapped: err,
		Msg:     fmt.Sprintf(msg, args...),
	}
}

func (s *SafeError) Error() string {
	return s.Msg
}

func (s *SafeError) Unwrap() error {
	return s.Wrapped
}

/*
Maps the service error taxonomy onto HTTP statuses. Everything the forum
package hands back for caller mistakes lands in the 4xx range with its own
message; anything unrecognized is a server-side failure and gets logged with
its stack instead of shown.
*/
func apiError(c *RequestContext, err error) ResponseData {
	var safe *SafeError

	status := http.StatusInternalServerError
	switch {
	case forum.IsValidationError(err), errors.As(err, &safe):
		status = http.StatusBadRequest
	case errors.Is(err, forum.ErrLoginRequired):
		status = http.StatusUnauthorized
	case errors.Is(err, forum.ErrNotOwner), errors.Is(err, forum.ErrResearchersOnly):
		status = http.StatusForbidden
	case errors.Is(err, db.NotFound):
		status = http.StatusNotFound
	case db.IsUniqueViolation(err):
		status = http.StatusConflict
	case errors.Is(err, forum.ErrSeedRequired):
		status = http.StatusPreconditionRequired
	}

	return c.ErrorResponse(status, err)
}

func userFacingMessage(status int, errs []error) string {
	switch {
	case status == http.StatusConflict:
		return "that conflicts with content that already exists"
	case status >= 500 || len(errs) == 0:
		return "something went wrong on our end"
	default:
		// 4xx errors carry messages that are safe to show verbatim.
		return errs[0].Error()
	}
}
