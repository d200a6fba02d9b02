// credentials/credentials.go
// Package credentials keeps the app's API key and secret in the OS keyring so the CLI
// can mint session tokens without the secret living in a config file.
package credentials

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName    = "go-tryon-dashboard-client"
	defaultProfile = "default"
	profilePrefix  = "app:"

	EnvKeyringBackend  = "TRYON_KEYRING_BACKEND"
	EnvKeyringPassword = "TRYON_KEYRING_PASSWORD"
	EnvCredentialsDir  = "TRYON_CREDENTIALS_DIR"

	backendAuto   = "auto"
	backendFile   = "file"
	backendSystem = "system"
)

// openKeyring can be replaced in tests.
var openKeyring = func(cfg keyring.Config) (keyring.Keyring, error) {
	return keyring.Open(cfg)
}

var userConfigDir = os.UserConfigDir

// SetOpenKeyring replaces the keyring opener and returns a function restoring the original.
func SetOpenKeyring(fn func(keyring.Config) (keyring.Keyring, error)) func() {
	original := openKeyring
	openKeyring = fn
	return func() { openKeyring = original }
}

// AppCredentials are the values needed to mint session tokens for a shop.
type AppCredentials struct {
	APIKey    string `json:"api_key"`
	APISecret string `json:"api_secret"`
	// UserID becomes the token subject; empty mints shop-level tokens.
	UserID string `json:"user_id,omitempty"`
}

// ErrNotConfigured is returned by Load when nothing was saved under the profile.
var ErrNotConfigured = errors.New("app credentials not configured - run 'tryonctl auth set-secret' first")

// Save stores creds under profile, replacing what was there.
func Save(profile string, creds AppCredentials) error {
	if strings.TrimSpace(creds.APIKey) == "" || strings.TrimSpace(creds.APISecret) == "" {
		return errors.New("api key and api secret are required")
	}
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return fmt.Errorf("open keyring: %w", err)
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return fmt.Errorf("encode credentials: %w", err)
	}
	return ring.Set(keyring.Item{
		Key:         profileKey(profile),
		Data:        data,
		Label:       serviceName + " " + profileName(profile),
		Description: "Shopify app API credentials",
	})
}

// Load returns the credentials stored under profile.
func Load(profile string) (AppCredentials, error) {
	var creds AppCredentials
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return creds, fmt.Errorf("open keyring: %w", err)
	}
	item, err := ring.Get(profileKey(profile))
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return creds, ErrNotConfigured
	}
	if err != nil {
		return creds, fmt.Errorf("read keyring: %w", err)
	}
	if err := json.Unmarshal(item.Data, &creds); err != nil {
		return creds, fmt.Errorf("decode credentials: %w", err)
	}
	return creds, nil
}

// Delete removes the credentials stored under profile. Missing credentials are not an error.
func Delete(profile string) error {
	ring, err := openKeyring(keyringConfig())
	if err != nil {
		return fmt.Errorf("open keyring: %w", err)
	}
	if err := ring.Remove(profileKey(profile)); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) && !os.IsNotExist(err) {
		return fmt.Errorf("remove credentials: %w", err)
	}
	return nil
}

func profileName(profile string) string {
	if strings.TrimSpace(profile) == "" {
		return defaultProfile
	}
	return profile
}

func profileKey(profile string) string {
	return profilePrefix + profileName(profile)
}

func keyringConfig() keyring.Config {
	cfg := keyring.Config{ServiceName: serviceName}

	backend := backendMode()
	if backend == backendSystem {
		return cfg
	}

	cfg.FileDir = fileDir()
	cfg.FilePasswordFunc = filePassword

	// Headless Linux has no secret service to talk to.
	if backend == backendFile || (runtime.GOOS == "linux" && strings.TrimSpace(os.Getenv("DBUS_SESSION_BUS_ADDRESS")) == "") {
		cfg.AllowedBackends = []keyring.BackendType{keyring.FileBackend}
	}
	return cfg
}

func backendMode() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(EnvKeyringBackend))) {
	case backendFile:
		return backendFile
	case backendSystem, "os", "native":
		return backendSystem
	default:
		return backendAuto
	}
}

func fileDir() string {
	base := strings.TrimSpace(os.Getenv(EnvCredentialsDir))
	if base == "" {
		if dir, err := userConfigDir(); err == nil && dir != "" {
			base = filepath.Join(dir, serviceName)
		} else {
			base = filepath.Join(os.TempDir(), serviceName)
		}
	}
	return filepath.Join(base, "keyring")
}

func filePassword(prompt string) (string, error) {
	if password := os.Getenv(EnvKeyringPassword); strings.TrimSpace(password) != "" {
		return password, nil
	}
	info, err := os.Stdin.Stat()
	if err != nil || info.Mode()&os.ModeCharDevice == 0 {
		return "", fmt.Errorf("set %s when using the file keyring in non-interactive environments", EnvKeyringPassword)
	}
	return keyring.TerminalPrompt(prompt)
}
