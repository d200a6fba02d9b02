// response/error.go
package response

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/antchfx/xmlquery"
	"github.com/deploymenttheory/go-tryon-dashboard-client/status"
	"golang.org/x/net/html"
)

// APIError is a non-2xx response from the backend that is not an authentication failure.
type APIError struct {
	StatusCode int    `json:"status_code"`
	StatusText string `json:"status_text"`
	Method     string `json:"method"`
	URL        string `json:"url"`
	// Message is the server's "message" field when the body is a JSON object carrying
	// one as a string, otherwise the JSON serialization of the whole body.
	Message string `json:"message"`
	// Details holds readable text pulled out of HTML or XML bodies, typically error
	// pages produced by a tunnel or reverse proxy in front of the backend.
	Details     []string `json:"details,omitempty"`
	RawResponse string   `json:"raw_response,omitempty"`
}

// Error renders "<status> <status text> - <url> - <message>".
func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s - %s - %s", e.StatusCode, e.StatusText, e.URL, e.Message)
}

// NewAPIError builds the error for a failed response whose body has already been read.
// An empty requestURL falls back to the URL of the request that produced resp, which
// after followed redirects is the last hop.
func NewAPIError(resp *http.Response, body *Body, requestURL string) *APIError {
	apiError := &APIError{
		StatusCode: resp.StatusCode,
		StatusText: status.StatusText(resp),
		URL:        requestURL,
		Message:    ServerMessage(body),
	}
	if resp.Request != nil {
		apiError.Method = resp.Request.Method
		if apiError.URL == "" && resp.Request.URL != nil {
			apiError.URL = resp.Request.URL.String()
		}
	}
	if body == nil || len(body.Raw) == 0 {
		return apiError
	}

	apiError.RawResponse = body.Text()
	mimeType, _ := parseHeader(body.ContentType)
	switch mimeType {
	case "application/xml", "text/xml":
		apiError.Details = parseXMLDetails(body.Raw)
	case "text/html":
		apiError.Details = parseHTMLDetails(body.Raw)
	}
	return apiError
}

// ServerMessage extracts the human-readable message of an error body.
func ServerMessage(body *Body) string {
	var value any
	if body != nil {
		value = body.Value
	}
	if obj, ok := value.(map[string]any); ok {
		if msg, ok := obj["message"].(string); ok {
			return msg
		}
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(value); err != nil {
		return fmt.Sprint(value)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// parseXMLDetails collects the non-blank text nodes of an XML document.
func parseXMLDetails(bodyBytes []byte) []string {
	doc, err := xmlquery.Parse(bytes.NewReader(bodyBytes))
	if err != nil {
		return nil
	}

	var messages []string
	var traverse func(*xmlquery.Node)
	traverse = func(n *xmlquery.Node) {
		if (n.Type == xmlquery.TextNode || n.Type == xmlquery.CharDataNode) && strings.TrimSpace(n.Data) != "" {
			messages = append(messages, strings.TrimSpace(n.Data))
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			traverse(c)
		}
	}
	traverse(doc)
	return messages
}

// parseHTMLDetails returns the page title followed by the text of every <p> element;
// link targets inside paragraphs are kept as "[Link: href]".
func parseHTMLDetails(bodyBytes []byte) []string {
	doc, err := html.Parse(bytes.NewReader(bodyBytes))
	if err != nil {
		return nil
	}

	var title string
	var messages []string
	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if title == "" {
					title = collectText(n)
				}
			case "p":
				if text := collectText(n); text != "" {
					messages = append(messages, text)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}
	parse(doc)

	if title != "" {
		messages = append([]string{title}, messages...)
	}
	return messages
}

func collectText(n *html.Node) string {
	var parts []string
	var walk func(*html.Node)
	walk = func(c *html.Node) {
		if c.Type == html.TextNode {
			if text := strings.TrimSpace(c.Data); text != "" {
				parts = append(parts, text)
			}
		}
		for child := c.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
		if c.Type == html.ElementNode && c.Data == "a" {
			if href := attribute(c, "href"); href != "" {
				parts = append(parts, "[Link: "+href+"]")
			}
		}
	}
	walk(n)
	return strings.Join(parts, " ")
}

func attribute(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
