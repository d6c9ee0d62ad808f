package main

import (
	"context"
	"fmt"
	"os"

	"pinmap/internal/database"
	"pinmap/internal/seed"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the database with demo data",
	Long: `Create demo profiles, lists, pins, follows and likes around the venues of
one preset city. Runs are deterministic for a given --seed.

Example:
  $ pinctl seed --city lisbon --users 30 --clean`,
	Run: func(cmd *cobra.Command, args []string) {
		opts := seed.DefaultOptions()
		flags := cmd.Flags()
		opts.City, _ = flags.GetString("city")
		opts.Users, _ = flags.GetInt("users")
		opts.ListsPerUser, _ = flags.GetInt("lists")
		opts.PinsPerList, _ = flags.GetInt("pins")
		opts.Follows, _ = flags.GetInt("follows")
		opts.Likes, _ = flags.GetInt("likes")
		opts.Seed, _ = flags.GetInt64("seed")
		opts.Clean, _ = flags.GetBool("clean")

		cfg := loadConfig()
		if cfg.IsProduction() {
			fmt.Fprintln(os.Stderr, "Error: refusing to seed a production database")
			os.Exit(1)
		}
		db := connect(cfg)
		defer func() { _ = database.Close() }()

		res, err := seed.Seed(context.Background(), db, opts)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		green := color.New(color.FgGreen, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n", green("Seed summary"))
		fmt.Printf("  Profiles: %d\n  Lists:    %d\n  Pins:     %d\n  Follows:  %d\n  Likes:    %d\n",
			res.Profiles, res.Lists, res.Pins, res.Follows, res.Likes)
	},
}

func init() {
	def := seed.DefaultOptions()
	seedCmd.Flags().String("city", def.City, "Preset city key")
	seedCmd.Flags().Int("users", def.Users, "Number of profiles")
	seedCmd.Flags().Int("lists", def.ListsPerUser, "Lists per profile")
	seedCmd.Flags().Int("pins", def.PinsPerList, "Pins per list")
	seedCmd.Flags().Int("follows", def.Follows, "Follows per profile")
	seedCmd.Flags().Int("likes", def.Likes, "Likes per profile")
	seedCmd.Flags().Int64("seed", def.Seed, "Random seed")
	seedCmd.Flags().Bool("clean", false, "Delete existing data first")
	rootCmd.AddCommand(seedCmd)
}
