package client

import (
	"errors"
	"fmt"
)

// Common errors returned by the client.
var (
	// ErrUnimplemented is returned for endpoints that are declared but not wired.
	ErrUnimplemented = errors.New("endpoint not implemented")

	// ErrRateLimited is returned when the last observed quota is exhausted
	// and the request was refused without being sent.
	ErrRateLimited = errors.New("rate limit exhausted")

	// ErrNoNextPage is returned by FetchNext when the envelope carries no cursor.
	ErrNoNextPage = errors.New("no next page")

	// ErrInvalidPage is returned for page numbers below 1.
	ErrInvalidPage = errors.New("page must be >= 1")
)

// ErrorKind classifies a failure.
type ErrorKind string

const (
	// KindTransport covers requests that could not be built or sent: invalid
	// pages and paths, DNS, TLS, connection and body read failures.
	KindTransport ErrorKind = "transport"

	// KindDecode means the body could not be decoded into the target type.
	KindDecode ErrorKind = "decode"

	// KindUpstream means the server answered with a non-success status.
	// Only produced when Config.CheckStatus is set.
	KindUpstream ErrorKind = "upstream"

	// KindUnimplemented marks an endpoint without an implementation.
	KindUnimplemented ErrorKind = "unimplemented"

	// KindRateLimited means the request was refused locally.
	KindRateLimited ErrorKind = "rate_limited"
)

// APIError is the error returned by every fetch operation.
type APIError struct {
	Kind       ErrorKind
	Endpoint   string
	StatusCode int
	Status     string
	// Body holds the raw response text for decode and upstream failures.
	Body string
	Err  error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("github %s error", e.Kind)
	if e.Endpoint != "" {
		msg += " on " + e.Endpoint
	}
	if e.Status != "" {
		msg += " (" + e.Status + ")"
	} else if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *APIError) Unwrap() error {
	return e.Err
}

// Is matches another *APIError by kind, so errors.Is(err, &APIError{Kind: KindDecode})
// works without inspecting fields.
func (e *APIError) Is(target error) bool {
	t, ok := target.(*APIError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *APIError in err's chain, or "" if none.
func KindOf(err error) ErrorKind {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Kind
	}
	return ""
}

// IsTransport reports whether err is a transport failure.
func IsTransport(err error) bool { return KindOf(err) == KindTransport }

// IsDecode reports whether err is a decode failure.
func IsDecode(err error) bool { return KindOf(err) == KindDecode }

// IsUpstream reports whether err is an upstream status failure.
func IsUpstream(err error) bool { return KindOf(err) == KindUpstream }

// IsRateLimited reports whether err is a locally refused request.
func IsRateLimited(err error) bool { return KindOf(err) == KindRateLimited }
