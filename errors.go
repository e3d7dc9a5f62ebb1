package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/friendsofgo/errors"
	"google.golang.org/api/googleapi"
)

// UpstreamError is a failed or malformed upstream call. Never retried.
type UpstreamError struct {
	Service string
	Status  int
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s upstream returned status %d", e.Service, e.Status)
	}
	return fmt.Sprintf("%s upstream failed: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

type UpstreamTimeout struct {
	Service string
}

func (e *UpstreamTimeout) Error() string {
	return e.Service + " upstream deadline exceeded"
}

// ShapingError reports expected fields missing from an otherwise
// successful upstream payload. NotFound marks the "no items at all"
// case, answered with 404.
type ShapingError struct {
	Reason   string
	NotFound bool
}

func (e *ShapingError) Error() string { return e.Reason }

// ConfigError is raised before any upstream call is attempted.
type ConfigError struct {
	Missing string
}

func (e *ConfigError) Error() string {
	return "missing credential: " + e.Missing
}

// net/http wraps context.DeadlineExceeded in *url.Error, which
// errors.Is unwraps.
func upstreamFailure(service string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &UpstreamTimeout{Service: service}
	}
	return &UpstreamError{Service: service, Err: err}
}

func v3Failure(err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return &UpstreamError{Service: "youtube", Status: gerr.Code, Err: err}
	}
	return upstreamFailure("youtube", err)
}

func errorStatus(err error) int {
	var shaping *ShapingError
	if errors.As(err, &shaping) && shaping.NotFound {
		return http.StatusNotFound
	}
	var timeout *UpstreamTimeout
	if errors.As(err, &timeout) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}
