package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/vanderheijden86/orthoweb/pkg/clustergraph"
	"github.com/vanderheijden86/orthoweb/pkg/debug"
	"github.com/vanderheijden86/orthoweb/pkg/grouplayout"
	"github.com/vanderheijden86/orthoweb/pkg/phyletic"
	"github.com/vanderheijden86/orthoweb/pkg/records"
	"github.com/vanderheijden86/orthoweb/pkg/wdk"
)

var (
	errBadRequest = errors.New("bad request")
	errNoClient   = errors.New("no service client configured")
)

// statusClientClosedRequest reports a request whose caller went away.
const statusClientClosedRequest = 499

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// statusFor maps an error to the HTTP status reported to the caller.
func statusFor(err error) int {
	var he *wdk.HTTPError
	switch {
	case errors.As(err, &he):
		if he.NotFound() {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	case errors.Is(err, wdk.ErrDecode),
		errors.Is(err, wdk.ErrResponseTooLarge),
		errors.Is(err, grouplayout.ErrInvalidLayout),
		errors.Is(err, clustergraph.ErrUnknownTaxon):
		return http.StatusBadGateway
	case errors.Is(err, errBadRequest),
		errors.Is(err, phyletic.ErrUnknownNode),
		errors.Is(err, phyletic.ErrIncompleteStates),
		errors.Is(err, phyletic.ErrInconsistentStates):
		return http.StatusBadRequest
	case errors.Is(err, errNoClient), errors.Is(err, records.ErrNoTaxonMetadata):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return statusClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// abort writes {"error": ...} with the mapped status.
func abort(c *gin.Context, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		debug.Log("server: [%s] %s: %v", c.GetString(requestIDKey), c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
