package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"pinmap/internal/database"
	"pinmap/internal/repository"
	"pinmap/internal/service"
	"pinmap/internal/spots"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var trendingCmd = &cobra.Command{
	Use:   "trending",
	Short: "Print the current trending spots",
	Long:  `Rank every public pin into spots and print the top entries, bypassing the cache.`,
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		cfg := loadConfig()
		db := connect(cfg)
		defer func() { _ = database.Close() }()

		discovery := service.NewDiscoveryService(repository.NewPinRepository(db), cfg)
		ranked, err := discovery.Trending(context.Background(), limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		fmt.Printf("\n%s\n\n", cyan(fmt.Sprintf("=== Trending spots (precision %d) ===", discovery.Grid().Precision())))
		if len(ranked) == 0 {
			gray := color.New(color.FgHiBlack).SprintFunc()
			fmt.Printf("  %s\n", gray("No public pins yet"))
			return
		}
		for i, s := range ranked {
			fmt.Println(formatSpotRow(i+1, s))
		}
		fmt.Println()
	},
}

func tierColor(t spots.Tier) func(a ...interface{}) string {
	switch t {
	case spots.TierHot:
		return color.New(color.FgRed, color.Bold).SprintFunc()
	case spots.TierTrending:
		return color.New(color.FgYellow).SprintFunc()
	case spots.TierRecommended:
		return color.New(color.FgGreen).SprintFunc()
	default:
		return color.New(color.FgHiBlack).SprintFunc()
	}
}

func formatSpotRow(rank int, s spots.Spot) string {
	name := ""
	if s.Representative != nil {
		name = s.Representative.Name
	}
	return fmt.Sprintf("%3d. %-32s %-18s %s  saves=%d savers=%d week=%d rating=%.1f",
		rank, truncate(name, 32), s.Key, tierColor(s.Tier)(strings.ToUpper(string(s.Tier))),
		s.SaveCount, s.UniqueSavers, s.SavesThisWeek, s.AverageRating)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func init() {
	trendingCmd.Flags().Int("limit", 10, "Number of spots")
	rootCmd.AddCommand(trendingCmd)
}
