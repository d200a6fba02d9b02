// response/body.go
package response

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/deploymenttheory/go-tryon-dashboard-client/logger"
	"go.uber.org/zap"
)

// Body is a fully read response body together with its best-effort interpretation.
type Body struct {
	Raw         []byte
	ContentType string
	// Value is nil for an empty body, the decoded JSON value when the body declared and
	// contained valid JSON, and the raw text otherwise.
	Value  any
	IsJSON bool
}

// Text returns the body as a string.
func (b *Body) Text() string {
	if b == nil {
		return ""
	}
	return string(b.Raw)
}

// ReadBody reads and closes resp.Body. The only error is a failure to read, which the
// caller reports as a transport problem; malformed content never fails.
func ReadBody(resp *http.Response, log logger.Logger) (*Body, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	body := &Body{ContentType: resp.Header.Get("Content-Type")}
	if resp.Body == nil {
		return body, nil
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}
	body.Raw = raw
	if len(raw) == 0 {
		return body, nil
	}

	if !IsJSONContentType(body.ContentType) {
		body.Value = string(raw)
		return body, nil
	}

	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		log.Warn("Response declared JSON but could not be parsed, using raw text",
			zap.String("content_type", body.ContentType),
			zap.Int("length", len(raw)),
			zap.Error(err),
		)
		body.Value = string(raw)
		return body, nil
	}
	body.Value = parsed
	body.IsJSON = true
	return body, nil
}

// Decode copies the body into out. JSON bodies are unmarshalled; raw text is assigned
// when out is *string, *[]byte or *any and ignored otherwise. Shape mismatches are
// logged and leave out as the JSON decoder left it.
func (b *Body) Decode(out any, log logger.Logger) {
	if out == nil || b == nil || b.Value == nil {
		return
	}
	if log == nil {
		log = logger.NewNopLogger()
	}

	if b.IsJSON {
		if err := json.Unmarshal(b.Raw, out); err != nil {
			log.Warn("Response body does not match the expected shape",
				zap.String("target", fmt.Sprintf("%T", out)),
				zap.Error(err),
			)
		}
		return
	}

	switch target := out.(type) {
	case *string:
		*target = string(b.Raw)
	case *[]byte:
		*target = append([]byte(nil), b.Raw...)
	case *any:
		*target = string(b.Raw)
	default:
		log.Debug("Non-JSON response body left undecoded",
			zap.String("target", fmt.Sprintf("%T", out)),
			zap.String("content_type", b.ContentType),
		)
	}
}
