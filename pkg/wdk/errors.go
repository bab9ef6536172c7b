package wdk

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrDecode is wrapped by every response that fails to decode.
var ErrDecode = errors.New("wdk: malformed response")

// ErrResponseTooLarge is returned when a body exceeds the client's MaxBody.
var ErrResponseTooLarge = errors.New("wdk: response too large")

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	Path       string
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("wdk: GET %s: %d %s", e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// NotFound reports whether the service answered 404.
func (e *HTTPError) NotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err wraps a 404 HTTPError.
func IsNotFound(err error) bool {
	var he *HTTPError
	return errors.As(err, &he) && he.NotFound()
}
