package client

import "strings"

// MockPrefix is the same-origin path the mocked API is mounted under when
// no external backend is configured.
const MockPrefix = "/api/client"

// Resolver produces the base URL for all domain requests. It is the single
// decision point between a directly-addressed backend and the same-origin
// mocked routes; absence of a configured backend is a valid state, not an
// error.
type Resolver struct {
	backendURL string
	origin     string
}

// NewResolver builds a resolver. backendURL is the deployment-configured
// backend address (may be empty); origin is the address the app itself is
// served from, used only for the mock fallback.
func NewResolver(backendURL, origin string) Resolver {
	return Resolver{
		backendURL: strings.TrimRight(strings.TrimSpace(backendURL), "/"),
		origin:     strings.TrimRight(strings.TrimSpace(origin), "/"),
	}
}

// Base returns the prefix every domain request is issued against.
func (r Resolver) Base() string {
	if r.backendURL != "" {
		return r.backendURL
	}
	return r.origin + MockPrefix
}

// UsesMock reports whether requests are going to the same-origin mock.
func (r Resolver) UsesMock() bool {
	return r.backendURL == ""
}
