package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/deploymenttheory/go-tryon-dashboard-client/authenticationhandler"
	"github.com/deploymenttheory/go-tryon-dashboard-client/credentials"
	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint and inspect session tokens",
	}
	cmd.AddCommand(newTokenMintCmd(a), newTokenInspectCmd(a))
	return cmd
}

func newTokenMintCmd(a *app) *cobra.Command {
	var (
		apiKey    string
		apiSecret string
		userID    string
		ttl       time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a session token for --shop from the stored app credentials",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if apiKey == "" || apiSecret == "" {
				creds, err := credentials.Load(a.opts.Profile)
				if err != nil {
					return err
				}
				if apiKey == "" {
					apiKey = creds.APIKey
				}
				if apiSecret == "" {
					apiSecret = creds.APISecret
				}
				if userID == "" {
					userID = creds.UserID
				}
			}

			config, err := a.clientConfig()
			if err != nil {
				return err
			}
			if config.Shop == "" {
				return errors.New("--shop is required")
			}

			minter, err := authenticationhandler.NewSessionTokenMinter(apiKey, apiSecret, config.Shop, userID, nil)
			if err != nil {
				return err
			}
			if ttl > 0 {
				minter.TTL = ttl
			}
			token, err := minter.IDToken(cmd.Context())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.out, token)
			return err
		},
	}

	cmd.Flags().StringVar(&apiKey, "api-key", "", "app API key (default: from the keyring)")
	cmd.Flags().StringVar(&apiSecret, "api-secret", "", "app API secret (default: from the keyring)")
	cmd.Flags().StringVar(&userID, "user-id", "", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", authenticationhandler.DefaultSessionTokenTTL, "token lifetime")
	return cmd
}

func newTokenInspectCmd(a *app) *cobra.Command {
	var verify bool

	cmd := &cobra.Command{
		Use:   "inspect TOKEN",
		Short: "Print the claims of a session token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(strings.TrimPrefix(args[0], "Bearer "))

			var (
				info *authenticationhandler.SessionInfo
				err  error
			)
			if verify {
				creds, loadErr := credentials.Load(a.opts.Profile)
				if loadErr != nil {
					return loadErr
				}
				info, err = authenticationhandler.VerifySessionToken(token, creds.APISecret, creds.APIKey)
			} else {
				info, err = authenticationhandler.InspectSessionToken(token, time.Now())
			}
			if err != nil {
				return err
			}
			return a.writeJSON(info)
		},
	}

	cmd.Flags().BoolVar(&verify, "verify", false, "verify the signature and audience with the stored app credentials")
	return cmd
}
