// httpclient/client.go
/* Package httpclient provides the authenticated client used by the virtual try-on dashboard
to talk to its backend. Every request carries a freshly issued session token, and every
response is interpreted the same way: success, authentication failure for the current shop,
or a generic API error. */
package httpclient

import (
	"fmt"
	"net/http"

	"github.com/deploymenttheory/go-tryon-dashboard-client/authenticationhandler"
	"github.com/deploymenttheory/go-tryon-dashboard-client/concurrency"
	"github.com/deploymenttheory/go-tryon-dashboard-client/logger"
	"github.com/deploymenttheory/go-tryon-dashboard-client/proxy"
	"github.com/deploymenttheory/go-tryon-dashboard-client/ratehandler"
	"github.com/deploymenttheory/go-tryon-dashboard-client/redirecthandler"
	"github.com/deploymenttheory/go-tryon-dashboard-client/shopify"
	"go.uber.org/zap"
)

// Client issues authenticated requests against the dashboard backend. It is safe for
// concurrent use; apart from its immutable configuration it keeps no state between calls.
type Client struct {
	config ClientConfig
	http   *http.Client
	tokens authenticationhandler.TokenProvider
	shop   shopify.Context

	Logger      logger.Logger
	Concurrency *concurrency.ConcurrencyHandler // nil when MaxConcurrentRequests is 0
	RateLimiter *ratehandler.RateLimiter        // nil when MaxRequestsPerSecond is 0
}

// BuildClient creates a new client with the provided configuration and token source.
func BuildClient(config ClientConfig, populateDefaultValues bool, tokens authenticationhandler.TokenProvider) (*Client, error) {
	if populateDefaultValues {
		SetDefaultValuesClientConfig(&config)
	}
	if err := validateClientConfig(config, false); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if tokens == nil {
		return nil, fmt.Errorf("invalid configuration: a token provider is required")
	}
	if config.AuthBaseURL == "" {
		config.AuthBaseURL = config.BaseURL
	}

	parsedLogLevel := logger.ParseLogLevelFromString(config.LogLevel)
	log := logger.BuildLogger(parsedLogLevel, config.LogOutputFormat)

	httpClient := &http.Client{
		Timeout: config.CustomTimeout,
	}

	if err := redirecthandler.SetupRedirectHandler(httpClient, config.FollowRedirects, config.MaxRedirects, log); err != nil {
		return nil, err
	}

	if err := proxy.InitializeProxy(httpClient, config.ProxyURL, log); err != nil {
		return nil, err
	}

	var concurrencyHandler *concurrency.ConcurrencyHandler
	if config.MaxConcurrentRequests > 0 {
		concurrencyHandler = concurrency.NewConcurrencyHandler(config.MaxConcurrentRequests, config.PermitWaitTimeout, log)
	}

	var rateLimiter *ratehandler.RateLimiter
	if config.MaxRequestsPerSecond > 0 {
		rateLimiter = ratehandler.NewRateLimiter(config.MaxRequestsPerSecond, config.RequestBurst, log)
	}

	if config.Shop != "" && !shopify.IsValidShopDomain(config.Shop) {
		log.Warn("Shop is not a myshopify.com domain; using it as given", zap.String("Shop", config.Shop))
	}

	client := &Client{
		config:      config,
		http:        httpClient,
		tokens:      tokens,
		shop:        shopify.Context{Shop: config.Shop, Host: config.Host},
		Logger:      log,
		Concurrency: concurrencyHandler,
		RateLimiter: rateLimiter,
	}

	log.Debug("New API client initialized",
		zap.String("Base URL", config.BaseURL),
		zap.String("Shop", config.Shop),
		zap.String("Logging Level", config.LogLevel),
		zap.String("Log Encoding Format", config.LogOutputFormat),
		zap.Bool("Hide Sensitive Data In Logs", config.HideSensitiveData),
		zap.Int("Max Concurrent Requests", config.MaxConcurrentRequests),
		zap.Float64("Max Requests Per Second", config.MaxRequestsPerSecond),
		zap.Bool("Follow Redirects", config.FollowRedirects),
		zap.Int("Max Redirects", config.MaxRedirects),
		zap.Duration("Custom Timeout", config.CustomTimeout),
		zap.Bool("Proxy Configured", config.ProxyURL != ""),
		zap.Bool("Tunnel Bypass Header", !config.DisableTunnelBypassHeader),
	)

	return client, nil
}

// ForShop returns a copy of the client bound to another shop context. The copy shares
// the transport, logger and permit pool with the original.
func (c *Client) ForShop(shop shopify.Context) *Client {
	clone := *c
	clone.shop = shop
	return &clone
}

// Shop returns the shop context requests are issued under by default.
func (c *Client) Shop() shopify.Context {
	return c.shop
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() ClientConfig {
	return c.config
}

// ReauthURL returns where to send the merchant after an *AuthError.
func (c *Client) ReauthURL(authErr *AuthError) string {
	shop := c.shop
	if authErr != nil && authErr.Shop != shop.Shop {
		shop = shopify.Context{Shop: authErr.Shop}
	}
	return shop.ReauthURL(c.config.AuthBaseURL)
}
