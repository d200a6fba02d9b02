// httpclient/errors.go
package httpclient

import (
	"errors"
	"fmt"

	"github.com/deploymenttheory/go-tryon-dashboard-client/response"
)

// AuthError is returned when the backend answers 401 for a request made under a known
// shop. Recover by sending the merchant to shopify.Context.ReauthURL.
type AuthError = response.AuthError

// APIError is returned for every other non-2xx response.
type APIError = response.APIError

// TokenError means the token provider failed or produced an empty token. No request
// was sent.
type TokenError struct {
	Err error
}

func (e *TokenError) Error() string {
	if e.Err == nil {
		return "session token unavailable"
	}
	return fmt.Sprintf("session token unavailable: %v", e.Err)
}

func (e *TokenError) Unwrap() error { return e.Err }

// CancelledError means the caller's context ended before the outcome of the request
// was known. It wraps the context's error, so errors.Is(err, context.Canceled) holds
// for an explicit cancel. Callers treat it as a no-op rather than a failure.
type CancelledError struct {
	Method string
	URL    string
	Err    error
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("%s %s cancelled: %v", e.Method, e.URL, e.Err)
}

func (e *CancelledError) Unwrap() error { return e.Err }

// TransportError means no usable response arrived: DNS, connect, TLS, timeout or a
// body that could not be read.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsAuthError reports whether err is, or wraps, an *AuthError.
func IsAuthError(err error) bool {
	return response.IsAuthError(err)
}

// AsAuthError returns the *AuthError inside err, if any.
func AsAuthError(err error) (*AuthError, bool) {
	var authErr *AuthError
	ok := errors.As(err, &authErr)
	return authErr, ok
}

// IsAPIError reports whether err is, or wraps, an *APIError.
func IsAPIError(err error) bool {
	return response.IsAPIError(err)
}

// IsCancelled reports whether err is, or wraps, a *CancelledError.
func IsCancelled(err error) bool {
	var cancelled *CancelledError
	return errors.As(err, &cancelled)
}

// IsTokenError reports whether err is, or wraps, a *TokenError.
func IsTokenError(err error) bool {
	var tokenErr *TokenError
	return errors.As(err, &tokenErr)
}

// IsTransportError reports whether err is, or wraps, a *TransportError.
func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
