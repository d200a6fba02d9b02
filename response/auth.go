// response/auth.go
package response

import (
	"errors"
	"fmt"
)

// AuthError signals that the backend rejected the session token for a known shop.
// The only recovery is sending the merchant through the app's authorization flow.
type AuthError struct {
	Shop string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication required for shop %s", e.Shop)
}

// IsAuthError reports whether err, or any error it wraps, is an *AuthError.
func IsAuthError(err error) bool {
	var authErr *AuthError
	return errors.As(err, &authErr)
}

// IsAPIError reports whether err, or any error it wraps, is an *APIError.
func IsAPIError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr)
}
