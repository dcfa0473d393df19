package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/report"
	"github.com/pable/go-match-metrics/internal/stats"
)

var (
	networkTeam      string
	networkMinPasses int
	networkPrecision int
)

// networkCmd prints the directed pass network of an event file.
var networkCmd = &cobra.Command{
	Use:   "network <events.csv|events.json|->",
	Short: "Show who passes to whom",
	Long: `Build the directed pass network. A pass is credited to the player
of the next tagged event by a teammate; passes that end with the opponent
have no receiver but still count for the passer. --team keeps that team's
passes while receivers are still found in the full sequence. Connections
with fewer than --min-passes passes are hidden, but player touches always
count every pass.`,
	Args: cobra.ExactArgs(1),
	RunE: runNetwork,
}

func init() {
	networkCmd.Flags().StringVar(&networkTeam, "team", "", "only this team's passes")
	networkCmd.Flags().IntVar(&networkMinPasses, "min-passes", -1, "minimum passes per connection (default from config)")
	networkCmd.Flags().IntVar(&networkPrecision, "precision", -1, "decimals in the tables (default from config)")
	addInputFlags(networkCmd)
}

func runNetwork(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	im, err := loadEvents(ctx, args[0], false)
	if err != nil {
		return err
	}

	net := eng.FilteredNetwork(ctx, im.Events, stats.Criteria{TeamID: networkTeam}, networkMinPasses)
	if len(net.Nodes) == 0 {
		fmt.Fprintln(os.Stdout, "No passes to show.")
		return nil
	}
	report.PrintNetwork(os.Stdout, net, precision(networkPrecision))
	return nil
}
