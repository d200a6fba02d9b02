// httpclient/client_configuration.go
// Description: This file contains functions to load and validate configuration values from a JSON or YAML file or environment variables.
package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/deploymenttheory/go-tryon-dashboard-client/logger"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevelString        = "LogLevelInfo"
	DefaultLogOutputFormatString = logger.LogOutputJSON
	DefaultHideSensitiveData     = true
	DefaultCustomTimeout         = 30 * time.Second
	DefaultMaxConcurrentRequests = 0
	DefaultPermitWaitTimeout     = 0
	DefaultMaxRequestsPerSecond  = 0
	DefaultRequestBurst          = 1
	DefaultFollowRedirects       = false
	DefaultMaxRedirects          = 5
)

// Environment variables read by LoadConfigFromEnv.
const (
	EnvBaseURL                   = "TRYON_API_BASE_URL"
	EnvAuthBaseURL               = "TRYON_AUTH_BASE_URL"
	EnvShop                      = "TRYON_SHOP"
	EnvHost                      = "TRYON_HOST"
	EnvLogLevel                  = "TRYON_LOG_LEVEL"
	EnvLogOutputFormat           = "TRYON_LOG_OUTPUT_FORMAT"
	EnvHideSensitiveData         = "TRYON_HIDE_SENSITIVE_DATA"
	EnvCustomTimeout             = "TRYON_CUSTOM_TIMEOUT"
	EnvMaxConcurrentRequests     = "TRYON_MAX_CONCURRENT_REQUESTS"
	EnvPermitWaitTimeout         = "TRYON_PERMIT_WAIT_TIMEOUT"
	EnvMaxRequestsPerSecond      = "TRYON_MAX_REQUESTS_PER_SECOND"
	EnvRequestBurst              = "TRYON_REQUEST_BURST"
	EnvFollowRedirects           = "TRYON_FOLLOW_REDIRECTS"
	EnvMaxRedirects              = "TRYON_MAX_REDIRECTS"
	EnvProxyURL                  = "TRYON_PROXY_URL"
	EnvDisableTunnelBypassHeader = "TRYON_DISABLE_TUNNEL_BYPASS_HEADER"
)

// ClientConfig holds the options of a dashboard API client.
type ClientConfig struct {
	// BaseURL is the backend address every path is joined to. Empty means paths are
	// used as given, for same-origin deployments behind a proxy.
	BaseURL string `yaml:"BaseURL"`
	// AuthBaseURL is where the OAuth initiate route lives. Left empty it follows
	// BaseURL, resolved when the client is built.
	AuthBaseURL string `yaml:"AuthBaseURL"`

	// Default shop context, overridable per client with ForShop or per request with WithShop.
	Shop string `yaml:"Shop"`
	Host string `yaml:"Host"`

	// Log
	LogLevel          string `yaml:"LogLevel"`
	LogOutputFormat   string `yaml:"LogOutputFormat"` // "json" or "pretty"
	HideSensitiveData bool   `yaml:"HideSensitiveData"`

	// Transport
	CustomTimeout             time.Duration `yaml:"CustomTimeout"`
	MaxConcurrentRequests     int           `yaml:"MaxConcurrentRequests"` // 0 disables the permit pool
	PermitWaitTimeout         time.Duration `yaml:"PermitWaitTimeout"`
	MaxRequestsPerSecond      float64       `yaml:"MaxRequestsPerSecond"` // 0 disables pacing
	RequestBurst              int           `yaml:"RequestBurst"`
	FollowRedirects           bool          `yaml:"FollowRedirects"`
	MaxRedirects              int           `yaml:"MaxRedirects"`
	ProxyURL                  string        `yaml:"ProxyURL"`
	DisableTunnelBypassHeader bool          `yaml:"DisableTunnelBypassHeader"`
}

// UnmarshalJSON accepts durations either as Go duration strings ("15s") or as
// integer nanoseconds.
func (c *ClientConfig) UnmarshalJSON(data []byte) error {
	type plain ClientConfig
	aux := struct {
		*plain
		CustomTimeout     any
		PermitWaitTimeout any
	}{plain: (*plain)(c)}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if c.CustomTimeout, err = jsonDuration(aux.CustomTimeout, c.CustomTimeout); err != nil {
		return fmt.Errorf("CustomTimeout: %w", err)
	}
	if c.PermitWaitTimeout, err = jsonDuration(aux.PermitWaitTimeout, c.PermitWaitTimeout); err != nil {
		return fmt.Errorf("PermitWaitTimeout: %w", err)
	}
	return nil
}

func jsonDuration(v any, current time.Duration) (time.Duration, error) {
	switch d := v.(type) {
	case nil:
		return current, nil
	case string:
		return time.ParseDuration(d)
	case float64:
		return time.Duration(d), nil
	default:
		return 0, fmt.Errorf("unsupported duration value %v", v)
	}
}

// LoadConfigFromFile loads http client configuration settings from a .json, .yaml or
// .yml file and fills in defaults for anything left unset.
func LoadConfigFromFile(path string) (*ClientConfig, error) {
	absPath, err := validateFilePath(path)
	if err != nil {
		return nil, fmt.Errorf("invalid file path: %w", err)
	}

	byteValue, err := os.ReadFile(absPath)
	if err != nil {
		return nil, fmt.Errorf("could not read file: %w", err)
	}

	config := ClientConfig{HideSensitiveData: DefaultHideSensitiveData}
	switch strings.ToLower(filepath.Ext(absPath)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(byteValue, &config); err != nil {
			return nil, fmt.Errorf("could not unmarshal YAML: %w", err)
		}
	default:
		if err := json.Unmarshal(byteValue, &config); err != nil {
			return nil, fmt.Errorf("could not unmarshal JSON: %w", err)
		}
	}

	SetDefaultValuesClientConfig(&config)

	return &config, nil
}

// LoadConfigFromEnv overlays TRYON_* environment variables onto config (or onto an empty
// config when nil) and fills in defaults.
func LoadConfigFromEnv(config *ClientConfig) (*ClientConfig, error) {
	if config == nil {
		config = &ClientConfig{HideSensitiveData: DefaultHideSensitiveData}
	}

	config.BaseURL = getEnvOrDefault(EnvBaseURL, config.BaseURL)
	config.AuthBaseURL = getEnvOrDefault(EnvAuthBaseURL, config.AuthBaseURL)
	config.Shop = getEnvOrDefault(EnvShop, config.Shop)
	config.Host = getEnvOrDefault(EnvHost, config.Host)

	config.LogLevel = getEnvOrDefault(EnvLogLevel, config.LogLevel)
	config.LogOutputFormat = getEnvOrDefault(EnvLogOutputFormat, config.LogOutputFormat)
	config.HideSensitiveData = parseBool(getEnvOrDefault(EnvHideSensitiveData, strconv.FormatBool(config.HideSensitiveData)), config.HideSensitiveData)

	config.CustomTimeout = parseDuration(getEnvOrDefault(EnvCustomTimeout, ""), config.CustomTimeout)
	config.MaxConcurrentRequests = parseInt(getEnvOrDefault(EnvMaxConcurrentRequests, ""), config.MaxConcurrentRequests)
	config.PermitWaitTimeout = parseDuration(getEnvOrDefault(EnvPermitWaitTimeout, ""), config.PermitWaitTimeout)
	config.MaxRequestsPerSecond = parseFloat(getEnvOrDefault(EnvMaxRequestsPerSecond, ""), config.MaxRequestsPerSecond)
	config.RequestBurst = parseInt(getEnvOrDefault(EnvRequestBurst, ""), config.RequestBurst)
	config.FollowRedirects = parseBool(getEnvOrDefault(EnvFollowRedirects, ""), config.FollowRedirects)
	config.MaxRedirects = parseInt(getEnvOrDefault(EnvMaxRedirects, ""), config.MaxRedirects)
	config.ProxyURL = getEnvOrDefault(EnvProxyURL, config.ProxyURL)
	config.DisableTunnelBypassHeader = parseBool(getEnvOrDefault(EnvDisableTunnelBypassHeader, ""), config.DisableTunnelBypassHeader)

	SetDefaultValuesClientConfig(config)

	if err := validateClientConfig(*config, false); err != nil {
		return nil, err
	}
	return config, nil
}

// SetDefaultValuesClientConfig fills zero-valued options with their defaults.
func SetDefaultValuesClientConfig(config *ClientConfig) {
	setDefaultString(&config.LogLevel, DefaultLogLevelString)
	setDefaultString(&config.LogOutputFormat, DefaultLogOutputFormatString)
	setDefaultDuration(&config.CustomTimeout, DefaultCustomTimeout)
	setDefaultInt(&config.MaxRedirects, DefaultMaxRedirects, 1)
	setDefaultInt(&config.RequestBurst, DefaultRequestBurst, 1)
}

// validateClientConfig checks option values that would otherwise fail later in less
// obvious ways.
func validateClientConfig(config ClientConfig, populateDefaults bool) error {
	if populateDefaults {
		SetDefaultValuesClientConfig(&config)
	}

	if config.BaseURL != "" {
		u, err := url.Parse(config.BaseURL)
		if err != nil {
			return fmt.Errorf("invalid base url %q: %w", config.BaseURL, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("base url %q must use http or https", config.BaseURL)
		}
	}

	if logger.ParseLogLevelFromString(config.LogLevel) == logger.LogLevelNone && config.LogLevel != "LogLevelNone" {
		return fmt.Errorf("unknown log level %q", config.LogLevel)
	}

	if config.LogOutputFormat != logger.LogOutputJSON && config.LogOutputFormat != logger.LogOutputPretty {
		return fmt.Errorf("unknown log output format %q, expected %q or %q", config.LogOutputFormat, logger.LogOutputJSON, logger.LogOutputPretty)
	}

	if config.CustomTimeout < 0 {
		return errors.New("timeout cannot be less than 0 seconds")
	}

	if config.MaxConcurrentRequests < 0 {
		return errors.New("maximum concurrent requests cannot be less than 0")
	}

	if config.PermitWaitTimeout < 0 {
		return errors.New("permit wait timeout cannot be less than 0 seconds")
	}

	if config.MaxRequestsPerSecond < 0 {
		return errors.New("max requests per second cannot be less than 0")
	}

	if config.FollowRedirects && config.MaxRedirects < 1 {
		return errors.New("max redirects cannot be less than 1 when redirects are followed")
	}

	return nil
}

// validateFilePath resolves symlinks and checks the configuration file extension.
func validateFilePath(path string) (string, error) {
	absPath, err := filepath.EvalSymlinks(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("unable to resolve the absolute path of the configuration file: %s, error: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(absPath)) {
	case ".json", ".yaml", ".yml":
		return absPath, nil
	default:
		return "", fmt.Errorf("invalid file extension for configuration file: %s, expected .json, .yaml or .yml", path)
	}
}

// Helper function to get environment variable or default value
func getEnvOrDefault(envKey string, defaultValue string) string {
	if value, exists := os.LookupEnv(envKey); exists {
		return value
	}
	return defaultValue
}

// Helper function to parse boolean from environment variable
func parseBool(value string, defaultVal bool) bool {
	result, err := strconv.ParseBool(value)
	if err != nil {
		return defaultVal
	}
	return result
}

// Helper function to parse int from environment variable
func parseInt(value string, defaultVal int) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return defaultVal
	}
	return result
}

// Helper function to parse float from environment variable
func parseFloat(value string, defaultVal float64) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return defaultVal
	}
	return result
}

// Helper function to parse duration from environment variable
func parseDuration(value string, defaultVal time.Duration) time.Duration {
	result, err := time.ParseDuration(value)
	if err != nil {
		return defaultVal
	}
	return result
}

func setDefaultString(field *string, defaultValue string) {
	if *field == "" {
		*field = defaultValue
	}
}

func setDefaultInt(field *int, defaultValue, minValue int) {
	if *field < minValue {
		*field = defaultValue
	}
}

func setDefaultDuration(field *time.Duration, defaultValue time.Duration) {
	if *field == 0 {
		*field = defaultValue
	}
}
