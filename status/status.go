// status.go
// Package status classifies HTTP status codes for the dashboard API client and its logs.
package status

import (
	"net/http"
	"strconv"
	"strings"
)

// IsSuccess reports whether the status code is in the 2xx range.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// IsRedirectStatusCode checks if the provided HTTP status code is one of the redirect codes
// that carry a Location header (301, 302, 303, 307, 308).
func IsRedirectStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// IsPermanentRedirect checks if the provided HTTP status code is one of the permanent redirect codes.
func IsPermanentRedirect(statusCode int) bool {
	return statusCode == http.StatusMovedPermanently || statusCode == http.StatusPermanentRedirect
}

// IsAuthFailure reports whether the backend rejected the session token.
func IsAuthFailure(statusCode int) bool {
	return statusCode == http.StatusUnauthorized
}

// StatusText returns the reason phrase of a response. The phrase sent by the server wins
// over the canonical one, so "503 Tunnel Offline" yields "Tunnel Offline".
func StatusText(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	code := strconv.Itoa(resp.StatusCode)
	if text := strings.TrimSpace(strings.TrimPrefix(resp.Status, code)); text != "" {
		return text
	}
	return http.StatusText(resp.StatusCode)
}

// TranslateStatusCode provides a human-readable message for the status codes the
// dashboard backend is known to return.
func TranslateStatusCode(statusCode int) string {
	messages := map[int]string{
		http.StatusOK:                  "Request successful.",
		http.StatusCreated:             "Request to create or update resource successful.",
		http.StatusAccepted:            "The request was accepted for processing, but the processing has not completed.",
		http.StatusNoContent:           "Request successful. No content to send for this request.",
		http.StatusBadRequest:          "Bad request. Verify the query parameters and body of the request.",
		http.StatusUnauthorized:        "Session token rejected. The shop must be reauthorized.",
		http.StatusForbidden:           "Invalid permissions. The shop is not allowed to access this resource.",
		http.StatusNotFound:            "Resource not found. Verify the URL path is correct.",
		http.StatusMethodNotAllowed:    "Method not allowed. The method specified is not allowed for the resource.",
		http.StatusConflict:            "Conflict. See the error response for additional details.",
		http.StatusTooManyRequests:     "Too many requests. The backend is throttling this shop.",
		http.StatusInternalServerError: "Internal server error. The backend failed to process the request.",
		http.StatusBadGateway:          "Bad Gateway. The tunnel or proxy could not reach the backend.",
		http.StatusServiceUnavailable:  "Service unavailable.",
		http.StatusGatewayTimeout:      "Gateway timeout. The backend did not answer in time.",
	}

	if message, exists := messages[statusCode]; exists {
		return message
	}
	return "Unexpected status code " + strconv.Itoa(statusCode) + "."
}
