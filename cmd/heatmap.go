package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/engine"
	"github.com/pable/go-match-metrics/internal/report"
	"github.com/pable/go-match-metrics/internal/stats"
)

var (
	heatmapFilter    filterFlags
	heatmapGridSize  int
	heatmapTop       int
	heatmapNoMap     bool
	heatmapPrecision int
)

// heatmapCmd prints the spatial density grid of an event file.
var heatmapCmd = &cobra.Command{
	Use:   "heatmap <events.csv|events.json|->",
	Short: "Show where on the pitch events happen",
	Long: `Bin event positions into a density grid over an 800x520 canvas.
Pass destinations count with the configured end weight (0.5 by default).
Prints a character map of the pitch and a table of the densest cells.`,
	Args: cobra.ExactArgs(1),
	RunE: runHeatmap,
}

func init() {
	heatmapFilter.register(heatmapCmd)
	heatmapCmd.Flags().IntVar(&heatmapGridSize, "grid-size", 0, "cell size in canvas units (default from config)")
	heatmapCmd.Flags().IntVar(&heatmapTop, "top", 10, "densest cells to list (0 = all)")
	heatmapCmd.Flags().BoolVar(&heatmapNoMap, "no-map", false, "skip the character map")
	heatmapCmd.Flags().IntVar(&heatmapPrecision, "precision", -1, "decimals in the table (default from config)")
	addInputFlags(heatmapCmd)
}

func runHeatmap(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	crit, err := heatmapFilter.criteria()
	if err != nil {
		return err
	}
	im, err := loadEvents(ctx, args[0], false)
	if err != nil {
		return err
	}

	// Zone and type are applied by the grid builder itself.
	events := stats.Filter(im.Events, stats.Criteria{TeamID: crit.TeamID, PlayerID: crit.PlayerID})
	g, err := eng.Heatmap(ctx, events, engine.HeatmapOptions{
		GridSize: heatmapGridSize,
		Zone:     crit.Zone,
		Types:    crit.Types,
	})
	if err != nil {
		return err
	}
	if g.Len() == 0 {
		fmt.Fprintln(os.Stdout, "No events to plot.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "\nGrid: %dx%d cells of %d units  |  Peak density: %.2f\n\n",
		g.Cols, g.Rows, g.CellSize, g.Max())
	if !heatmapNoMap {
		report.PrintGridMap(os.Stdout, g)
		fmt.Fprintln(os.Stdout)
	}
	report.PrintGridTable(os.Stdout, g, precision(heatmapPrecision), heatmapTop)
	return nil
}
