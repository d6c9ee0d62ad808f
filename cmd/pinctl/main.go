// Command pinctl is the pinmap admin CLI.
package main

import (
	"fmt"
	"os"

	"pinmap/internal/config"
	"pinmap/internal/database"

	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "pinctl",
	Short: "pinmap admin tool",
	Long: `Administrative commands for a pinmap deployment: schema migration, demo
data, trending inspection, identity tokens for local testing and a live view
of a user's activity stream.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() *config.Config {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func connect(cfg *config.Config) *gorm.DB {
	db, err := database.Connect(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	return db
}
