// response/interpret.go
package response

import (
	"net/http"

	"github.com/deploymenttheory/go-tryon-dashboard-client/logger"
	"github.com/deploymenttheory/go-tryon-dashboard-client/status"
)

// Interpret maps a response whose body has already been read onto the client's outcomes:
// success decodes into out, a 401 for a known shop is an *AuthError, and anything
// else outside 2xx is an *APIError. An empty shop turns a 401 into a plain *APIError.
// requestURL is the address the caller asked for and is what *APIError reports.
func Interpret(resp *http.Response, body *Body, requestURL, shop string, out any, log logger.Logger) error {
	if status.IsSuccess(resp.StatusCode) {
		body.Decode(out, log)
		return nil
	}
	if status.IsAuthFailure(resp.StatusCode) && shop != "" {
		return &AuthError{Shop: shop}
	}
	return NewAPIError(resp, body, requestURL)
}
