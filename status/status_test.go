// status_test.go
package status

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{199, false},
		{200, true},
		{204, true},
		{299, true},
		{300, false},
		{401, false},
		{500, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsSuccess(tt.code), "code %d", tt.code)
	}
}

func TestRedirectClassification(t *testing.T) {
	assert.True(t, IsRedirectStatusCode(http.StatusFound))
	assert.True(t, IsRedirectStatusCode(http.StatusPermanentRedirect))
	assert.False(t, IsRedirectStatusCode(http.StatusNotModified))
	assert.True(t, IsPermanentRedirect(http.StatusMovedPermanently))
	assert.False(t, IsPermanentRedirect(http.StatusTemporaryRedirect))
}

func TestIsAuthFailure(t *testing.T) {
	assert.True(t, IsAuthFailure(http.StatusUnauthorized))
	assert.False(t, IsAuthFailure(http.StatusForbidden))
}

func TestStatusText(t *testing.T) {
	tests := []struct {
		name string
		resp *http.Response
		want string
	}{
		{"nil response", nil, ""},
		{"standard phrase", &http.Response{StatusCode: 500, Status: "500 Internal Server Error"}, "Internal Server Error"},
		{"custom phrase", &http.Response{StatusCode: 503, Status: "503 Tunnel Offline"}, "Tunnel Offline"},
		{"missing phrase", &http.Response{StatusCode: 404, Status: "404"}, "Not Found"},
		{"empty status", &http.Response{StatusCode: 401}, "Unauthorized"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusText(tt.resp))
		})
	}
}

func TestTranslateStatusCode(t *testing.T) {
	assert.Equal(t, "Request successful.", TranslateStatusCode(http.StatusOK))
	assert.Contains(t, TranslateStatusCode(http.StatusUnauthorized), "reauthorized")
	assert.Equal(t, "Unexpected status code 418.", TranslateStatusCode(http.StatusTeapot))
}
