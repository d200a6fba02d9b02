package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/deploymenttheory/go-tryon-dashboard-client/authenticationhandler"
	"github.com/deploymenttheory/go-tryon-dashboard-client/credentials"
	"github.com/deploymenttheory/go-tryon-dashboard-client/httpclient"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

const defaultCLILogLevel = "LogLevelWarn"

// clientConfig merges the config file, TRYON_* environment and flags, later sources
// winning. An --env-file only fills variables the environment does not already set.
func (a *app) clientConfig() (*httpclient.ClientConfig, error) {
	if a.opts.EnvFile != "" {
		if err := godotenv.Load(a.opts.EnvFile); err != nil {
			return nil, fmt.Errorf("load --env-file: %w", err)
		}
	}

	config := &httpclient.ClientConfig{
		LogLevel:          defaultCLILogLevel,
		HideSensitiveData: httpclient.DefaultHideSensitiveData,
	}
	if a.opts.ConfigFile != "" {
		loaded, err := httpclient.LoadConfigFromFile(a.opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		config = loaded
	}

	config, err := httpclient.LoadConfigFromEnv(config)
	if err != nil {
		return nil, err
	}

	if a.opts.BaseURL != "" {
		config.BaseURL = a.opts.BaseURL
	}
	if a.opts.Shop != "" {
		config.Shop = a.opts.Shop
	}
	if a.opts.Host != "" {
		config.Host = a.opts.Host
	}
	if a.opts.LogLevel != "" {
		config.LogLevel = a.opts.LogLevel
	}
	if a.opts.Timeout > 0 {
		config.CustomTimeout = a.opts.Timeout
	}
	return config, nil
}

// tokenProvider prefers an explicit token and falls back to minting session tokens
// from the keyring credentials of the selected profile.
func (a *app) tokenProvider(config *httpclient.ClientConfig) (authenticationhandler.TokenProvider, error) {
	token := a.opts.Token
	if token == "" {
		token = os.Getenv(EnvToken)
	}
	if token != "" {
		return authenticationhandler.StaticTokenProvider(token), nil
	}

	creds, err := credentials.Load(a.opts.Profile)
	if err != nil {
		return nil, err
	}
	if config.Shop == "" {
		return nil, errors.New("--shop is required to mint session tokens")
	}
	return authenticationhandler.NewSessionTokenMinter(creds.APIKey, creds.APISecret, config.Shop, creds.UserID, nil)
}

func (a *app) client() (*httpclient.Client, error) {
	config, err := a.clientConfig()
	if err != nil {
		return nil, err
	}
	tokens, err := a.tokenProvider(config)
	if err != nil {
		return nil, err
	}
	return httpclient.BuildClient(*config, true, tokens)
}

func (a *app) language() (language.Tag, error) {
	tag, err := language.Parse(a.opts.Lang)
	if err != nil {
		return language.Und, fmt.Errorf("invalid --lang %q: %w", a.opts.Lang, err)
	}
	return tag, nil
}
