package main

import (
	"fmt"
	"os"

	"pinmap/internal/database"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Bring the database schema up to date",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		db := connect(cfg)
		defer func() { _ = database.Close() }()

		if err := database.Migrate(db); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s schema migrated (%d models)\n", green("✓"), len(database.PersistentModels()))
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
