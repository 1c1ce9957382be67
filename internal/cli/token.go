package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"reddit-persona/internal/service"
)

func init() {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API access token",
		Run:   runToken,
	}
	cmd.Flags().StringP("subject", "s", "", "Token subject (required)")
	cmd.MarkFlagRequired("subject")

	RootCmd.AddCommand(cmd)
}

func runToken(cmd *cobra.Command, args []string) {
	subject, _ := cmd.Flags().GetString("subject")

	cfg, err := loadConfig()
	if err != nil {
		exitErr("config", err)
	}
	jwtSvc := service.NewJWTService(cfg.JWTSecret, time.Duration(cfg.JWTAccessTTLMinutes)*time.Minute)
	if !jwtSvc.Enabled() {
		exitErr("token", fmt.Errorf("JWT_SECRET is not set"))
	}

	token, expires, err := jwtSvc.IssueAccessToken(subject)
	if err != nil {
		exitErr("token", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), token)
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", gray("expires"), expires.Format(time.RFC3339))
}
