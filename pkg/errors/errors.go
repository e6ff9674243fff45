// Package errors holds the typed errors shared by the service, repositories and handlers.
package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"net"
	"strings"
)

// ErrNotFound is returned when a resource doesn't exist
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrUnauthorized is returned when credentials are missing or invalid
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message == "" {
		return "unauthorized"
	}
	return e.Message
}

// ErrValidation is a structural payload defect. Never retried.
type ErrValidation struct {
	Errors []string
}

func (e *ErrValidation) Error() string {
	return "validation failed: " + strings.Join(e.Errors, ", ")
}

// ErrNetwork covers connectivity, DNS and timeout failures
type ErrNetwork struct {
	Op      string
	Timeout bool
	Err     error
}

func (e *ErrNetwork) Error() string {
	if e.Timeout {
		return fmt.Sprintf("%s: request timeout: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: network error: %v", e.Op, e.Err)
}

func (e *ErrNetwork) Unwrap() error { return e.Err }

// ErrServer is returned when the endpoint answers with a 5xx or a failure status in the body
type ErrServer struct {
	StatusCode int
	Message    string
}

func (e *ErrServer) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("server error: status %d: %s", e.StatusCode, e.Message)
	}
	return "server error: " + e.Message
}

// ErrConfiguration means the endpoint is reachable but refuses us because of how it is deployed
type ErrConfiguration struct {
	StatusCode int
	Reason     string
}

func (e *ErrConfiguration) Error() string {
	return fmt.Sprintf("endpoint configuration error: status %d: %s", e.StatusCode, e.Reason)
}

// NewNetworkError wraps a transport error, flagging deadlines and net timeouts
func NewNetworkError(op string, err error) *ErrNetwork {
	timeout := stderrors.Is(err, context.DeadlineExceeded)
	var netErr net.Error
	if stderrors.As(err, &netErr) && netErr.Timeout() {
		timeout = true
	}
	return &ErrNetwork{Op: op, Timeout: timeout, Err: err}
}

// IsRetryable reports whether another attempt could succeed
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var validation *ErrValidation
	return !stderrors.As(err, &validation)
}
