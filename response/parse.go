// response/parse.go
package response

import "strings"

// ParseContentTypeHeader parses the Content-Type header and returns the MIME type and any parameters.
func ParseContentTypeHeader(header string) (string, map[string]string) {
	return parseHeader(header)
}

// IsJSONContentType reports whether a Content-Type value declares a JSON body.
// Parameters and case are ignored, so "Application/JSON; charset=utf-8" matches.
func IsJSONContentType(header string) bool {
	return strings.Contains(strings.ToLower(header), "application/json")
}

// parseHeader extracts the main value of a header such as Content-Type and its parameters.
func parseHeader(header string) (string, map[string]string) {
	parts := strings.SplitN(header, ";", 2)
	mainValue := strings.ToLower(strings.TrimSpace(parts[0]))

	params := make(map[string]string)
	if len(parts) > 1 {
		for _, part := range strings.Split(parts[1], ";") {
			kv := strings.SplitN(part, "=", 2)
			if len(kv) == 2 {
				params[strings.ToLower(strings.TrimSpace(kv[0]))] = strings.Trim(strings.TrimSpace(kv[1]), "\"")
			}
		}
	}

	return mainValue, params
}
