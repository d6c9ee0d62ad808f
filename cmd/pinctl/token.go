package main

import (
	"fmt"
	"os"
	"time"

	"pinmap/internal/middleware"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <subject>",
	Short: "Sign an identity token for local testing",
	Long: `Sign an identity token with the configured AUTH_JWT_SECRET. The profile for
the subject is created on first use.

Example:
  $ pinctl token alice-sub --username alice`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		username, _ := cmd.Flags().GetString("username")
		name, _ := cmd.Flags().GetString("name")
		ttl, _ := cmd.Flags().GetDuration("ttl")

		cfg := loadConfig()
		if cfg.IsProduction() {
			fmt.Fprintln(os.Stderr, "Error: refusing to mint tokens in production")
			os.Exit(1)
		}

		verifier := middleware.NewTokenVerifier(cfg.AuthJWTSecret, cfg.AuthIssuer, cfg.AuthAudience)
		raw, err := verifier.Sign(middleware.Identity{Subject: args[0], Username: username, Name: name}, ttl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(raw)
	},
}

func init() {
	tokenCmd.Flags().String("username", "", "Preferred username claim")
	tokenCmd.Flags().String("name", "", "Display name claim")
	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
