// authenticationhandler/validation.go
package authenticationhandler

import (
	"regexp"
)

var apiKeyPattern = regexp.MustCompile(`^[0-9a-fA-F]{32}$`)

// IsValidAPIKey checks that the app's API key (client ID) is 32 hexadecimal characters.
// Returns true if valid, along with an empty error message; otherwise, returns false with an error message.
func IsValidAPIKey(apiKey string) (bool, string) {
	if apiKeyPattern.MatchString(apiKey) {
		return true, ""
	}
	return false, "API key must be 32 hexadecimal characters."
}

// IsValidAPISecret checks the app's API secret used to sign session tokens.
// Returns true if valid, along with an empty error message; otherwise, returns false with an error message.
func IsValidAPISecret(apiSecret string) (bool, string) {
	if len(apiSecret) < 16 {
		return false, "API secret must be at least 16 characters long."
	}
	return true, ""
}
