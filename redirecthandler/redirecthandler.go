// redirecthandler.go
package redirecthandler

import (
	"fmt"
	"net/http"

	"github.com/deploymenttheory/go-tryon-dashboard-client/logger"
	"go.uber.org/zap"
)

// RedirectHandler contains configurations for handling HTTP redirects.
type RedirectHandler struct {
	Logger           logger.Logger
	MaxRedirects     int      // Maximum allowed redirects to prevent infinite loops.
	SensitiveHeaders []string // Headers removed when a redirect leaves the original host.
}

// NewRedirectHandler creates a new instance of RedirectHandler.
func NewRedirectHandler(log logger.Logger, maxRedirects int) *RedirectHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RedirectHandler{
		Logger:           log,
		MaxRedirects:     maxRedirects,
		SensitiveHeaders: []string{"Authorization", "Cookie", "Proxy-Authorization"},
	}
}

// AddSensitiveHeader allows adding configurable sensitive headers.
func (r *RedirectHandler) AddSensitiveHeader(header string) {
	r.SensitiveHeaders = append(r.SensitiveHeaders, header)
}

// WithRedirectHandling applies the redirect handling policy to an http.Client.
func (r *RedirectHandler) WithRedirectHandling(client *http.Client) {
	client.CheckRedirect = r.checkRedirect
}

// checkRedirect is called by net/http before following a redirect. req is the request
// about to be sent, via holds the requests already made, oldest first.
func (r *RedirectHandler) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) == 0 {
		return nil
	}
	original := via[0]
	previous := via[len(via)-1]

	// A redirected POST would be replayed as a GET without its body.
	if original.Method == http.MethodPost || original.Method == http.MethodPatch {
		r.Logger.Warn("Redirect attempted on non-idempotent method, not following",
			zap.String("method", original.Method),
			zap.String("location", req.URL.String()),
		)
		return http.ErrUseLastResponse
	}

	if len(via) >= r.MaxRedirects {
		r.Logger.Warn("Maximum redirects reached", zap.Int("maxRedirects", r.MaxRedirects))
		return &MaxRedirectsError{MaxRedirects: r.MaxRedirects}
	}

	for _, visited := range via {
		if visited.URL.String() == req.URL.String() {
			r.Logger.Warn("Redirect loop detected", zap.String("url", req.URL.String()))
			return &RedirectLoopError{URL: req.URL.String()}
		}
	}

	if req.URL.Host != previous.URL.Host {
		r.secureRequest(req)
	}

	r.Logger.Info("Redirecting request",
		zap.String("originalURL", previous.URL.String()),
		zap.String("newURL", req.URL.String()),
		zap.Int("redirectCount", len(via)),
	)
	return nil
}

// secureRequest removes sensitive headers from the request if the new destination is a different host.
func (r *RedirectHandler) secureRequest(req *http.Request) {
	for _, header := range r.SensitiveHeaders {
		req.Header.Del(header)
	}
}

// RedirectLoopError represents an error when a redirect loop is detected.
type RedirectLoopError struct {
	URL string
}

func (e *RedirectLoopError) Error() string {
	return fmt.Sprintf("redirect loop detected at %s", e.URL)
}

// MaxRedirectsError represents an error when the maximum number of redirects is reached.
type MaxRedirectsError struct {
	MaxRedirects int
}

func (e *MaxRedirectsError) Error() string {
	return fmt.Sprintf("maximum redirects reached: %d", e.MaxRedirects)
}

// SetupRedirectHandler configures the HTTP client for redirect handling based on the client configuration.
// When redirects are disabled the first 3xx response is returned to the caller as is.
func SetupRedirectHandler(client *http.Client, followRedirects bool, maxRedirects int, log logger.Logger) error {
	if !followRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		return nil
	}
	if maxRedirects < 1 {
		return log.Error("Invalid maxRedirects value", zap.Int("maxRedirects", maxRedirects))
	}

	NewRedirectHandler(log, maxRedirects).WithRedirectHandling(client)
	log.Debug("Redirect handling enabled", zap.Int("MaxRedirects", maxRedirects))
	return nil
}
