package domain

import (
	"errors"
	"strings"
)

var (
	// ErrRateLimited marks a throttled upstream response. The API client
	// retries these internally; it only escapes when the budget runs out.
	ErrRateLimited = errors.New("upstream rate limited")

	// ErrUpstreamUnavailable marks an exhausted retry budget against the
	// upstream API. It fails the current tenant pass.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrInvalidTenantID rejects a tenant identifier that is not an
	// integer-like id, before any remote call.
	ErrInvalidTenantID = errors.New("invalid tenant id")

	// ErrTenantNotFound rejects an id that resolves to no tenant row.
	ErrTenantNotFound = errors.New("tenant not found")
)

// GraphQLError is returned when the upstream response carried errors and no
// usable data. Responses with both data and errors are partial successes and
// do not raise it.
type GraphQLError struct {
	Messages []string
}

func (e *GraphQLError) Error() string {
	return "graphql error: " + strings.Join(e.Messages, "; ")
}
