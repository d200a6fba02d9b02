package cli

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-tryon-dashboard-client/authenticationhandler"
	"github.com/deploymenttheory/go-tryon-dashboard-client/credentials"
	"github.com/deploymenttheory/go-tryon-dashboard-client/headers/redact"
	"github.com/spf13/cobra"
)

func newAuthCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the app credentials used to mint session tokens",
	}
	cmd.AddCommand(newAuthSetSecretCmd(a), newAuthStatusCmd(a), newAuthClearCmd(a))
	return cmd
}

func newAuthSetSecretCmd(a *app) *cobra.Command {
	var (
		apiKey    string
		apiSecret string
		userID    string
	)

	cmd := &cobra.Command{
		Use:   "set-secret",
		Short: "Store the app API key and secret in the OS keyring",
		Long:  "Store the app API key and secret in the OS keyring. Pass --api-secret - or omit it to read the secret from stdin.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiSecret == "" || apiSecret == "-" {
				line, err := bufio.NewReader(a.in).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no API secret given on stdin")
				}
				apiSecret = strings.TrimSpace(line)
			}

			if valid, msg := authenticationhandler.IsValidAPIKey(apiKey); !valid {
				return errors.New(msg)
			}
			if valid, msg := authenticationhandler.IsValidAPISecret(apiSecret); !valid {
				return errors.New(msg)
			}

			creds := credentials.AppCredentials{APIKey: apiKey, APISecret: apiSecret, UserID: userID}
			if err := credentials.Save(a.opts.Profile, creds); err != nil {
				return err
			}
			_, err := fmt.Fprintf(a.out, "Stored credentials for profile %q (secret %s)\n", a.opts.Profile, redact.RedactToken(apiSecret))
			return err
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "app API key")
	cmd.Flags().StringVar(&apiSecret, "api-secret", "", "app API secret, or - to read it from stdin")
	cmd.Flags().StringVar(&userID, "user-id", "", "subject for minted session tokens")
	_ = cmd.MarkFlagRequired("api-key")
	return cmd
}

func newAuthStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show which app credentials are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := credentials.Load(a.opts.Profile)
			if err != nil {
				return err
			}
			return a.writeJSON(map[string]string{
				"profile":    a.opts.Profile,
				"api_key":    creds.APIKey,
				"api_secret": redact.RedactToken(creds.APISecret),
				"user_id":    creds.UserID,
			})
		},
	}
}

func newAuthClearCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the stored app credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := credentials.Delete(a.opts.Profile); err != nil {
				return err
			}
			_, err := fmt.Fprintf(a.out, "Removed credentials for profile %q\n", a.opts.Profile)
			return err
		},
	}
}
