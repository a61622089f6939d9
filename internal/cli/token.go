package cli

import (
	"time"

	"github.com/spf13/cobra"

	"textorder/internal/api"
)

var (
	tokenSubject string
	tokenTTL     time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token for the API",
	Long:  `Signs a JWT with auth.jwt_secret for calling /api/v1 when authentication is on.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		token, err := api.IssueToken(cfg.Auth.JWTSecret, tokenSubject, tokenTTL)
		if err != nil {
			return err
		}
		cmd.Println(token)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "textorder-cli", "token subject")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
