package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/deploymenttheory/go-tryon-dashboard-client/httpclient"
	"github.com/spf13/cobra"
)

// newRequestCmd builds the get, post and delete commands, which issue one
// authenticated request and print the decoded body.
func newRequestCmd(a *app, verb string) *cobra.Command {
	var (
		params  []string
		headers []string
		data    string
	)

	method := strings.ToUpper(verb)
	cmd := &cobra.Command{
		Use:   verb + " PATH",
		Short: "Send an authenticated " + method + " request to the backend",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query, err := parsePairs(params, "=")
			if err != nil {
				return fmt.Errorf("invalid --param: %w", err)
			}
			extra, err := parsePairs(headers, ":")
			if err != nil {
				return fmt.Errorf("invalid --header: %w", err)
			}

			var body any
			if method == http.MethodPost {
				if body, err = a.readBody(data); err != nil {
					return err
				}
			}

			client, err := a.client()
			if err != nil {
				return err
			}

			req := &httpclient.Request{Method: method, Path: args[0], Body: body}
			if len(query) > 0 {
				req.Query = httpclient.Query{}
				for k, v := range query {
					req.Query[k] = v
				}
			}
			if len(extra) > 0 {
				req.Header = http.Header{}
				for k, v := range extra {
					req.Header.Set(k, v)
				}
			}

			var out any
			resp, err := client.DoRequest(cmd.Context(), req, &out)
			if authErr, ok := httpclient.AsAuthError(err); ok {
				return &ReauthRequiredError{Shop: authErr.Shop, URL: client.ReauthURL(authErr)}
			}
			if err != nil {
				return err
			}

			if text, ok := out.(string); ok && a.opts.Query == "" {
				_, err := fmt.Fprintln(a.out, text)
				return err
			}
			if out == nil && resp != nil && resp.StatusCode == http.StatusNoContent {
				return nil
			}
			return a.writeJSON(out)
		},
	}

	cmd.Flags().StringArrayVarP(&params, "param", "p", nil, "query parameter as key=value (repeatable)")
	cmd.Flags().StringArrayVarP(&headers, "header", "H", nil, "extra header as 'Name: value' (repeatable)")
	if method == http.MethodPost {
		cmd.Flags().StringVarP(&data, "data", "d", "", "JSON request body, or - to read it from stdin")
	}
	return cmd
}

// parsePairs splits each entry at the first sep.
func parsePairs(entries []string, sep string) (map[string]string, error) {
	pairs := make(map[string]string, len(entries))
	for _, entry := range entries {
		key, value, ok := strings.Cut(entry, sep)
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("%q is not in key%svalue form", entry, sep)
		}
		pairs[key] = strings.TrimSpace(value)
	}
	return pairs, nil
}

// readBody returns the --data payload as raw JSON, validating it first.
func (a *app) readBody(data string) (any, error) {
	if data == "" {
		return nil, nil
	}
	raw := []byte(data)
	if data == "-" {
		in := a.in
		if in == nil {
			in = os.Stdin
		}
		var err error
		if raw, err = io.ReadAll(in); err != nil {
			return nil, fmt.Errorf("read body from stdin: %w", err)
		}
	}
	if !json.Valid(raw) {
		return nil, errors.New("--data must be valid JSON")
	}
	return json.RawMessage(raw), nil
}
