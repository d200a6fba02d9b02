// headers/headers.go
package headers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/deploymenttheory/go-tryon-dashboard-client/headers/redact"
	"github.com/deploymenttheory/go-tryon-dashboard-client/logger"
	"go.uber.org/zap"
)

const (
	// TunnelBypassHeader tells ngrok style tunnels to skip their browser interstitial page.
	TunnelBypassHeader = "ngrok-skip-browser-warning"

	MediaTypeJSON = "application/json"
)

// HeaderHandler is responsible for managing and setting headers on HTTP requests.
type HeaderHandler struct {
	req               *http.Request
	log               logger.Logger
	hideSensitiveData bool
}

// NewHeaderHandler creates a new instance of HeaderHandler for a given http.Request and logger.
func NewHeaderHandler(req *http.Request, log logger.Logger, hideSensitiveData bool) *HeaderHandler {
	return &HeaderHandler{
		req:               req,
		log:               log,
		hideSensitiveData: hideSensitiveData,
	}
}

// SetAuthorization sets the Authorization header for the request, replacing any value
// already present so exactly one credential is sent.
func (h *HeaderHandler) SetAuthorization(token string) {
	// Ensure the token is prefixed with "Bearer " only once
	if !strings.HasPrefix(token, "Bearer ") {
		token = "Bearer " + token
	}
	h.req.Header.Set("Authorization", token)
}

// SetContentType sets the Content-Type header for the request.
func (h *HeaderHandler) SetContentType(contentType string) {
	h.req.Header.Set("Content-Type", contentType)
}

// SetAccept sets the Accept header for the request.
func (h *HeaderHandler) SetAccept(acceptHeader string) {
	h.req.Header.Set("Accept", acceptHeader)
}

// SetUserAgent sets the User-Agent header for the request.
func (h *HeaderHandler) SetUserAgent(userAgent string) {
	h.req.Header.Set("User-Agent", userAgent)
}

// SetTunnelBypass adds the header that lets requests through a development tunnel
// without hitting its HTML warning page.
func (h *HeaderHandler) SetTunnelBypass() {
	h.req.Header.Set(TunnelBypassHeader, "true")
}

// SetNoStore asks every cache between the client and the backend to neither store nor reuse the response.
func (h *HeaderHandler) SetNoStore() {
	SetCacheControlHeader(h.req, "no-store")
	h.req.Header.Set("Pragma", "no-cache")
}

// SetCustomHeaders merges caller supplied headers over the defaults. Authorization is
// ignored here; it is always set last from a freshly issued token.
func (h *HeaderHandler) SetCustomHeaders(custom http.Header) {
	for name, values := range custom {
		if http.CanonicalHeaderKey(name) == "Authorization" {
			continue
		}
		h.req.Header.Del(name)
		for _, v := range values {
			h.req.Header.Add(name, v)
		}
	}
}

// SetCacheControlHeader sets the Cache-Control header for an HTTP request.
func SetCacheControlHeader(req *http.Request, cacheControlValue string) {
	req.Header.Set("Cache-Control", cacheControlValue)
}

// RedactedHeaders returns a copy of the request headers safe to write to logs.
func (h *HeaderHandler) RedactedHeaders() map[string][]string {
	redacted := make(map[string][]string, len(h.req.Header))
	for name, values := range h.req.Header {
		out := make([]string, len(values))
		for i, v := range values {
			out[i] = redact.RedactSensitiveHeaderData(h.hideSensitiveData, name, v)
		}
		redacted[name] = out
	}
	return redacted
}

// LogHeaders prints all the current headers in the http.Request at debug level.
func (h *HeaderHandler) LogHeaders() {
	if h.log.GetLogLevel() <= logger.LogLevelDebug {
		h.log.Debug("HTTP Request Headers", zap.String("Headers", HeadersToString(h.RedactedHeaders())))
	}
}

// HeadersToString converts headers to a string for logging, one header per line in name order.
func HeadersToString(headers map[string][]string) string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	headerStrings := make([]string, 0, len(names))
	for _, name := range names {
		headerStrings = append(headerStrings, fmt.Sprintf("%s: %s", name, strings.Join(headers[name], ", ")))
	}
	return strings.Join(headerStrings, "\n")
}

// CheckDeprecationHeader checks the response headers for the Deprecation header and logs a warning if present.
func CheckDeprecationHeader(resp *http.Response, log logger.Logger) {
	deprecationHeader := resp.Header.Get("Deprecation")
	if deprecationHeader == "" {
		return
	}
	endpoint := ""
	if resp.Request != nil && resp.Request.URL != nil {
		endpoint = resp.Request.URL.String()
	}
	log.Warn("API endpoint is deprecated",
		zap.String("Date", deprecationHeader),
		zap.String("Endpoint", endpoint),
	)
}
