// httpclient/request.go
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/deploymenttheory/go-tryon-dashboard-client/headers"
	"github.com/deploymenttheory/go-tryon-dashboard-client/response"
	"github.com/deploymenttheory/go-tryon-dashboard-client/shopify"
	"github.com/deploymenttheory/go-tryon-dashboard-client/status"
	"github.com/deploymenttheory/go-tryon-dashboard-client/version"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Request describes one backend call.
type Request struct {
	Method string
	// Path is server-relative, e.g. "/api/Dashboard/GetCalculations".
	Path  string
	Query Query
	// Body is serialized as JSON. []byte and json.RawMessage are sent as given.
	Body any
	// Header is merged over the default headers. Authorization is always replaced.
	Header http.Header
	// Shop overrides the client's shop context for this request.
	Shop *shopify.Context
}

// RequestOption adjusts a Request built by Get, Post or Delete.
type RequestOption func(*Request)

// WithHeader sets one extra request header.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = http.Header{}
		}
		r.Header.Set(key, value)
	}
}

// WithHeaders merges extra request headers.
func WithHeaders(h http.Header) RequestOption {
	return func(r *Request) {
		if r.Header == nil {
			r.Header = http.Header{}
		}
		for k, v := range h {
			r.Header[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
		}
	}
}

// WithShop issues the request under another shop context.
func WithShop(shop shopify.Context) RequestOption {
	return func(r *Request) {
		r.Shop = &shop
	}
}

// Get issues an authenticated GET and decodes a successful body into out.
func (c *Client) Get(ctx context.Context, path string, query Query, out any, opts ...RequestOption) error {
	_, err := c.DoRequest(ctx, newRequest(http.MethodGet, path, query, nil, opts), out)
	return err
}

// Post issues an authenticated POST with body serialized as JSON.
func (c *Client) Post(ctx context.Context, path string, query Query, body, out any, opts ...RequestOption) error {
	_, err := c.DoRequest(ctx, newRequest(http.MethodPost, path, query, body, opts), out)
	return err
}

// Delete issues an authenticated DELETE.
func (c *Client) Delete(ctx context.Context, path string, query Query, out any, opts ...RequestOption) error {
	_, err := c.DoRequest(ctx, newRequest(http.MethodDelete, path, query, nil, opts), out)
	return err
}

func newRequest(method, path string, query Query, body any, opts []RequestOption) *Request {
	r := &Request{Method: method, Path: path, Query: query, Body: body}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DoRequest performs exactly one attempt of r. The returned response, when not nil, has
// its body already consumed; headers and status remain available. The error is one of
// *TokenError, *CancelledError, *TransportError, *AuthError or *APIError.
func (c *Client) DoRequest(ctx context.Context, r *Request, out any) (*http.Response, error) {
	log := c.Logger
	method := r.Method
	if method == "" {
		method = http.MethodGet
	}
	fullURL := JoinURL(c.config.BaseURL, r.Path) + BuildQueryString(r.Query)

	switch method {
	case http.MethodGet, http.MethodPost, http.MethodDelete:
	default:
		return nil, log.Error("HTTP method not supported", zap.String("method", method))
	}

	shop := c.shop
	if r.Shop != nil {
		shop = *r.Shop
	}

	if err := ctx.Err(); err != nil {
		return nil, c.cancelled(method, fullURL, err)
	}

	requestID := uuid.New()
	if c.Concurrency != nil {
		permitCtx, permitID, err := c.Concurrency.AcquireConcurrencyPermit(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil, c.cancelled(method, fullURL, ctx.Err())
			}
			return nil, &TransportError{Method: method, URL: fullURL, Err: err}
		}
		defer c.Concurrency.ReleaseConcurrencyPermit(permitID)
		ctx = permitCtx
		requestID = permitID
	}

	if c.RateLimiter != nil {
		if err := c.RateLimiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, c.cancelled(method, fullURL, ctx.Err())
			}
			return nil, &TransportError{Method: method, URL: fullURL, Err: err}
		}
	}

	token, err := c.tokens.IDToken(ctx)
	if ctx.Err() != nil {
		return nil, c.cancelled(method, fullURL, ctx.Err())
	}
	if err == nil && token == "" {
		err = fmt.Errorf("token provider returned an empty token")
	}
	if err != nil {
		log.LogError("token_error", method, fullURL, 0, err)
		return nil, &TokenError{Err: err}
	}

	bodyReader, err := encodeBody(r.Body)
	if err != nil {
		return nil, log.Error("Failed to encode request body", zap.String("method", method), zap.String("url", fullURL), zap.Error(err))
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, log.Error("Failed to create HTTP request", zap.String("method", method), zap.String("url", fullURL), zap.Error(err))
	}

	headerHandler := headers.NewHeaderHandler(req, log, c.config.HideSensitiveData)
	headerHandler.SetAccept(headers.MediaTypeJSON)
	if method == http.MethodPost {
		headerHandler.SetContentType(headers.MediaTypeJSON)
	}
	if !c.config.DisableTunnelBypassHeader {
		headerHandler.SetTunnelBypass()
	}
	headerHandler.SetUserAgent(version.GetUserAgentHeader())
	if method == http.MethodGet || method == http.MethodDelete {
		headerHandler.SetNoStore()
	}
	headerHandler.SetCustomHeaders(r.Header)
	headerHandler.SetAuthorization(token)

	log.LogRequestStart(requestID.String(), method, fullURL, headerHandler.RedactedHeaders())
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, c.cancelled(method, fullURL, ctx.Err())
		}
		log.LogError("transport_error", method, fullURL, 0, err)
		return nil, &TransportError{Method: method, URL: fullURL, Err: err}
	}

	body, err := response.ReadBody(resp, log)
	if ctx.Err() != nil {
		return resp, c.cancelled(method, fullURL, ctx.Err())
	}
	if err != nil {
		log.LogError("transport_error", method, fullURL, resp.StatusCode, err)
		return resp, &TransportError{Method: method, URL: fullURL, Err: err}
	}

	elapsed := time.Since(start)
	if c.Concurrency != nil {
		c.Concurrency.RecordResponse(resp.StatusCode, elapsed)
	}
	log.LogRequestEnd(requestID.String(), method, fullURL, resp.StatusCode, elapsed)
	headers.CheckDeprecationHeader(resp, log)

	err = response.Interpret(resp, body, fullURL, shop.Shop, out, log)
	switch {
	case err == nil:
	case IsAuthError(err):
		log.LogAuthFailure(method, fullURL, shop.Shop)
	default:
		log.LogError("request_error", method, fullURL, resp.StatusCode, err)
		log.Debug("Backend error response", zap.Int("status_code", resp.StatusCode), zap.String("status_message", status.TranslateStatusCode(resp.StatusCode)))
	}
	return resp, err
}

func (c *Client) cancelled(method, url string, err error) error {
	c.Logger.LogCancelled(method, url, err)
	return &CancelledError{Method: method, URL: url, Err: err}
}

// encodeBody serializes a request body. A nil body sends nothing.
func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	}
	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
