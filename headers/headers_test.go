// headers/headers_test.go
package headers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/deploymenttheory/go-tryon-dashboard-client/logger"
	"github.com/deploymenttheory/go-tryon-dashboard-client/mocklogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSetAuthorization(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  string
	}{
		{"raw token", "test-token", "Bearer test-token"},
		{"already prefixed", "Bearer test-token", "Bearer test-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
			req.Header.Add("Authorization", "Bearer stale")

			NewHeaderHandler(req, mocklogger.NewMockLogger(), false).SetAuthorization(tt.token)

			assert.Equal(t, []string{tt.want}, req.Header.Values("Authorization"))
		})
	}
}

func TestSetContentTypeAndAccept(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://example.com", nil)
	h := NewHeaderHandler(req, mocklogger.NewMockLogger(), false)

	h.SetContentType(MediaTypeJSON)
	h.SetAccept(MediaTypeJSON)

	assert.Equal(t, MediaTypeJSON, req.Header.Get("Content-Type"))
	assert.Equal(t, MediaTypeJSON, req.Header.Get("Accept"))
}

func TestSetTunnelBypassAndNoStore(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	h := NewHeaderHandler(req, mocklogger.NewMockLogger(), false)

	h.SetTunnelBypass()
	h.SetNoStore()

	assert.Equal(t, "true", req.Header.Get("ngrok-skip-browser-warning"))
	assert.Equal(t, "no-store", req.Header.Get("Cache-Control"))
	assert.Equal(t, "no-cache", req.Header.Get("Pragma"))
}

func TestSetCustomHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	h := NewHeaderHandler(req, mocklogger.NewMockLogger(), false)
	h.SetAccept(MediaTypeJSON)

	h.SetCustomHeaders(http.Header{
		"Accept":        {"text/csv"},
		"X-Request-Tag": {"a", "b"},
		"authorization": {"Bearer forged"},
	})

	assert.Equal(t, "text/csv", req.Header.Get("Accept"))
	assert.Equal(t, []string{"a", "b"}, req.Header.Values("X-Request-Tag"))
	assert.Empty(t, req.Header.Get("Authorization"))
}

func TestRedactedHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	h := NewHeaderHandler(req, mocklogger.NewMockLogger(), true)
	h.SetAuthorization("secret")
	h.SetAccept(MediaTypeJSON)

	redacted := h.RedactedHeaders()

	assert.Equal(t, []string{"REDACTED"}, redacted["Authorization"])
	assert.Equal(t, []string{MediaTypeJSON}, redacted["Accept"])
	assert.Equal(t, "Bearer secret", req.Header.Get("Authorization"), "request headers must not be modified")
}

func TestLogHeaders(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "http://example.com", nil)
	mockLog := mocklogger.NewMockLogger()
	mockLog.On("SetLevel", logger.LogLevelDebug).Once()
	mockLog.On("Debug", "HTTP Request Headers", mock.Anything).Once()
	mockLog.SetLevel(logger.LogLevelDebug)

	NewHeaderHandler(req, mockLog, true).LogHeaders()

	mockLog.AssertExpectations(t)
}

func TestHeadersToString(t *testing.T) {
	out := HeadersToString(map[string][]string{
		"X-B": {"2"},
		"X-A": {"1", "one"},
	})
	assert.Equal(t, "X-A: 1, one\nX-B: 2", out)
}

func TestCheckDeprecationHeader(t *testing.T) {
	mockLog := mocklogger.NewMockLogger()
	mockLog.On("Warn", "API endpoint is deprecated", mock.Anything).Once()

	resp := &http.Response{
		Header:  http.Header{"Deprecation": {"Sun, 11 Nov 2026 23:59:59 GMT"}},
		Request: &http.Request{URL: &url.URL{Scheme: "https", Host: "api.example.com", Path: "/api/Dashboard/GetCalculations"}},
	}
	CheckDeprecationHeader(resp, mockLog)
	CheckDeprecationHeader(&http.Response{Header: http.Header{}}, mockLog)

	mockLog.AssertExpectations(t)
}
