package client

import (
	"encoding/json"
	"fmt"

	"github.com/Sternrassler/github-api-client/pkg/ratelimit"
)

// Envelope is a decoded payload together with the response metadata.
// The library never modifies an envelope after returning it.
type Envelope[T any] struct {
	Payload T

	// RawBody is the exact response text the payload was decoded from.
	RawBody string

	// RateLimit is nil when the response did not carry all three headers.
	RateLimit *ratelimit.RateLimit

	// Owner and Repository are the caller's coordinates, "" when absent.
	Owner      string
	Repository string

	// NextPage is the cursor of the "next" link, 0 when absent.
	NextPage int

	// Endpoint is the request path the envelope was fetched from.
	Endpoint string

	StatusCode int
}

// HasNextPage reports whether the server advertised a next page.
func (e *Envelope[T]) HasNextPage() bool {
	return e.NextPage > 0
}

// PayloadJSON re-serializes the payload as indented JSON.
func (e *Envelope[T]) PayloadJSON() (string, error) {
	data, err := json.MarshalIndent(e.Payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal payload: %w", err)
	}
	return string(data), nil
}

func newEnvelope[T any](resp *Response, endpoint, owner, repository string) (*Envelope[T], *APIError) {
	var payload T
	if err := json.Unmarshal([]byte(resp.Body), &payload); err != nil {
		return nil, &APIError{
			Kind:       KindDecode,
			Endpoint:   endpoint,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       resp.Body,
			Err:        err,
		}
	}

	return &Envelope[T]{
		Payload:    payload,
		RawBody:    resp.Body,
		RateLimit:  resp.RateLimit,
		Owner:      owner,
		Repository: repository,
		NextPage:   resp.NextPage,
		Endpoint:   endpoint,
		StatusCode: resp.StatusCode,
	}, nil
}
