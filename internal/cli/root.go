// Package cli implements the tryonctl command tree.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/deploymenttheory/go-tryon-dashboard-client/httpclient"
	"github.com/deploymenttheory/go-tryon-dashboard-client/version"
	"github.com/spf13/cobra"
)

// EnvToken supplies a ready-made bearer token, bypassing the keyring minter.
const EnvToken = "TRYON_TOKEN"

// rootOptions holds the global flags of one invocation.
type rootOptions struct {
	ConfigFile string
	EnvFile    string
	BaseURL    string
	Shop       string
	Host       string
	Token      string
	Profile    string
	LogLevel   string
	Query      string
	Timeout    time.Duration
	Lang       string
}

// app carries the options and streams shared by every command of one invocation.
type app struct {
	opts   rootOptions
	in     io.Reader
	out    io.Writer
	errOut io.Writer
}

// Execute runs tryonctl with args against the process streams.
func Execute(ctx context.Context, args []string) error {
	return ExecuteWithIO(ctx, args, os.Stdin, os.Stdout, os.Stderr)
}

// ExecuteWithIO runs tryonctl with explicit streams.
func ExecuteWithIO(ctx context.Context, args []string, in io.Reader, out, errOut io.Writer) error {
	a := &app{in: in, out: out, errOut: errOut}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)
	return root.ExecuteContext(ctx)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "tryonctl",
		Short:         "Query the virtual try-on dashboard backend",
		Version:       version.GetVersion(),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.opts.ConfigFile, "config", "", "path to a .json, .yaml or .yml client configuration file")
	pf.StringVar(&a.opts.EnvFile, "env-file", "", "dotenv file with TRYON_* variables; variables already set win")
	pf.StringVar(&a.opts.BaseURL, "base-url", "", "backend base URL (overrides "+httpclient.EnvBaseURL+")")
	pf.StringVar(&a.opts.Shop, "shop", "", "shop domain, e.g. acme.myshopify.com (overrides "+httpclient.EnvShop+")")
	pf.StringVar(&a.opts.Host, "host", "", "base64 encoded admin host passed through to reauthorization URLs")
	pf.StringVar(&a.opts.Token, "token", "", "bearer token to send instead of minting one (or set "+EnvToken+")")
	pf.StringVar(&a.opts.Profile, "profile", "default", "keyring profile holding the app API credentials")
	pf.StringVar(&a.opts.LogLevel, "log-level", "", "LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError or LogLevelNone")
	pf.StringVarP(&a.opts.Query, "query", "q", "", "jq expression applied to JSON output")
	pf.DurationVar(&a.opts.Timeout, "timeout", 0, "request timeout (overrides "+httpclient.EnvCustomTimeout+")")
	pf.StringVar(&a.opts.Lang, "lang", "en", "BCP 47 language tag used to format numbers")

	root.AddCommand(
		newOverviewCmd(a),
		newRequestCmd(a, "get"),
		newRequestCmd(a, "post"),
		newRequestCmd(a, "delete"),
		newBillingCmd(a),
		newTokenCmd(a),
		newAuthCmd(a),
		newVersionCmd(a),
	)
	return root
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the client version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(a.out, version.GetUserAgentHeader())
			return err
		},
	}
}

// ReauthRequiredError is returned when the backend rejected the shop's session and the
// merchant must reauthorize the app.
type ReauthRequiredError struct {
	Shop string
	URL  string
}

func (e *ReauthRequiredError) Error() string {
	return fmt.Sprintf("shop %s must reauthorize the app: %s", e.Shop, e.URL)
}

// Exit codes returned by ExitCode.
const (
	ExitOK        = 0
	ExitError     = 1
	ExitAuth      = 3
	ExitAPI       = 4
	ExitToken     = 5
	ExitTransport = 6
	ExitCancelled = 130
)

// ExitCode maps an Execute error onto a process exit code.
func ExitCode(err error) int {
	var reauth *ReauthRequiredError
	switch {
	case err == nil:
		return ExitOK
	case errors.As(err, &reauth), httpclient.IsAuthError(err):
		return ExitAuth
	case httpclient.IsCancelled(err), errors.Is(err, context.Canceled):
		return ExitCancelled
	case httpclient.IsTokenError(err):
		return ExitToken
	case httpclient.IsTransportError(err):
		return ExitTransport
	case httpclient.IsAPIError(err):
		return ExitAPI
	default:
		return ExitError
	}
}
