package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/engine"
)

var (
	exportFilter filterFlags
	exportOut    string
)

// exportDoc is the JSON document written by export.
type exportDoc struct {
	ImportID    string `json:"import_id"`
	GeneratedAt string `json:"generated_at"`
	Source      string `json:"source"`
	Events      int    `json:"events"`
	Rejected    int    `json:"rejected_rows"`
	GridSize    int    `json:"grid_size"`
	MinPasses   int    `json:"min_pass_threshold"`
	*engine.Views
}

// exportCmd writes every derived view of an event file as JSON.
var exportCmd = &cobra.Command{
	Use:   "export <events.csv|events.json|->",
	Short: "Write summary, players, heatmap and network as JSON",
	Long: `Compute every view of an event file with the configured defaults
and write them as one JSON document, for dashboards and other tools.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportFilter.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file path (default: stdout)")
	addInputFlags(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	crit, err := exportFilter.criteria()
	if err != nil {
		return err
	}
	im, err := loadEvents(ctx, args[0], false)
	if err != nil {
		return err
	}
	views, err := eng.Views(ctx, im.Events, crit)
	if err != nil {
		return err
	}
	conf := eng.Config()
	out := exportDoc{
		ImportID:    im.ID,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Source:      im.Source,
		Events:      views.Summary.TotalEvents,
		Rejected:    im.Rejected(),
		GridSize:    conf.GridSize,
		MinPasses:   conf.MinPassThreshold,
		Views:       views,
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}

	if exportOut == "" {
		fmt.Println(string(data))
		return nil
	}
	if err := os.WriteFile(exportOut, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("write %s: %w", exportOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", exportOut)
	return nil
}
