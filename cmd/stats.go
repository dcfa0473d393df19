package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/report"
)

var (
	statsFilter    filterFlags
	statsPlayers   bool
	statsFocus     string
	statsPrecision int
)

// statsCmd prints the aggregated statistics of an event file.
var statsCmd = &cobra.Command{
	Use:   "stats <events.csv|events.json|->",
	Short: "Show shot, pass and defensive statistics",
	Long: `Aggregate the events of a file into shot, pass and defensive
counters plus zone and phase distributions. Use --players for a per-player
breakdown and the filter flags to narrow the events first.`,
	Args: cobra.ExactArgs(1),
	RunE: runStats,
}

func init() {
	statsFilter.register(statsCmd)
	statsCmd.Flags().BoolVar(&statsPlayers, "players", false, "also print the per-player table")
	statsCmd.Flags().StringVar(&statsFocus, "focus", "", "player id to highlight in the player table")
	statsCmd.Flags().IntVar(&statsPrecision, "precision", -1, "decimals in the tables (default from config)")
	addInputFlags(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	events, err := loadFiltered(ctx, args[0], &statsFilter)
	if err != nil {
		return err
	}
	prec := precision(statsPrecision)

	s := eng.Summary(ctx, events)
	report.PrintSummary(os.Stdout, s, prec)

	fmt.Fprintf(os.Stdout, "\n--- Zones & Phases ---\n\n")
	report.PrintDistribution(os.Stdout, s, prec)

	if statsPlayers {
		fmt.Fprintf(os.Stdout, "\n--- Players ---\n\n")
		report.PrintPlayerTable(os.Stdout, eng.Players(ctx, events), prec, statsFocus)
	}
	return nil
}

// precision returns flag when set, else the configured precision.
func precision(flag int) int {
	if flag >= 0 {
		return flag
	}
	return cfg.Precision
}
