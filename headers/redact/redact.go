// headers/redact/redact.go
package redact

import "net/http"

// sensitiveKeys lists header names whose values never reach the logs when redaction is on.
var sensitiveKeys = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Cookie":              true,
	"Set-Cookie":          true,
	"X-Shopify-Id-Token":  true,
}

// RedactSensitiveHeaderData redacts sensitive data based on the hideSensitiveData flag.
func RedactSensitiveHeaderData(hideSensitiveData bool, key, value string) string {
	if hideSensitiveData {
		if _, found := sensitiveKeys[http.CanonicalHeaderKey(key)]; found {
			return "REDACTED"
		}
	}
	return value
}

// RedactToken keeps the scheme and the last four characters of a bearer credential,
// enough to correlate log lines without exposing the token.
func RedactToken(token string) string {
	const visible = 4
	if len(token) <= visible {
		return "REDACTED"
	}
	return "REDACTED..." + token[len(token)-visible:]
}
