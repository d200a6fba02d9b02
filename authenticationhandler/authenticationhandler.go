// authenticationhandler/authenticationhandler.go
package authenticationhandler

import (
	"context"
	"errors"
)

// TokenProvider yields the bearer credential for one backend request. Implementations
// are asked once per request and must not hand back a cached token the caller could
// outlive; the embedded app's session tokens expire after a minute.
type TokenProvider interface {
	IDToken(ctx context.Context) (string, error)
}

// TokenProviderFunc adapts a function to the TokenProvider interface.
type TokenProviderFunc func(ctx context.Context) (string, error)

// IDToken calls f(ctx).
func (f TokenProviderFunc) IDToken(ctx context.Context) (string, error) {
	return f(ctx)
}

// ErrNoToken is returned by providers that have no credential to give.
var ErrNoToken = errors.New("no session token available")

// StaticTokenProvider always returns the same token. It suits scripts and tests run
// against a backend that accepts a long-lived credential.
type StaticTokenProvider string

// IDToken returns the token, or ErrNoToken when it is empty.
func (s StaticTokenProvider) IDToken(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}
