package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/sakif/ui-feedback/internal/auth"
	"github.com/sakif/ui-feedback/internal/client/capture"
)

// Operator commands talk to the server directly and never touch the local
// store.
var noStore = map[string]string{"store": "none"}

func (a *App) usersCmd() *cobra.Command {
	var token string

	cmd := &cobra.Command{
		Use:         "users",
		Short:       "List captured emails (operator token required)",
		Args:        cobra.NoArgs,
		Annotations: noStore,
		RunE: func(cmd *cobra.Command, args []string) error {
			if token == "" {
				token = a.Config.OperatorToken
			}
			if token == "" {
				return errors.New("no operator token: pass --token or set FEEDBACK_OPERATOR_TOKEN")
			}

			users, err := capture.New(a.Config.APIURL, a.Config.HTTPTimeout).ListUsers(cmd.Context(), token)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "EMAIL\tCAPTURED")
			for _, u := range users {
				fmt.Fprintf(tw, "%s\t%s\n", u.Email, u.CreatedAt.Local().Format(time.DateTime))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d total\n", len(users))
			return nil
		},
	}

	cmd.Flags().StringVar(&token, "token", "", "operator token (default $FEEDBACK_OPERATOR_TOKEN)")
	return cmd
}

func (a *App) tokenCmd() *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an operator token from JWT_SECRET",
		Long: `Mint an operator token signed with the server's JWT_SECRET.

Run this wherever the secret is available; the server only verifies the
signature and expiry.`,
		Args:        cobra.NoArgs,
		Annotations: noStore,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret := a.Config.JWTSecret
			if secret == "" {
				return errors.New("JWT_SECRET is not set")
			}

			tokens, err := auth.NewTokenService(secret, ttl)
			if err != nil {
				return err
			}
			tok, err := tokens.Generate(subject)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}

	cmd.Flags().StringVar(&subject, "subject", "operator", "operator name recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", auth.DefaultTTL, "token lifetime")
	return cmd
}
