package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	convertOut  string
	convertMeta []string
)

// convertCmd rewrites an event file in the CSV interchange format.
var convertCmd = &cobra.Command{
	Use:   "convert <events.csv|events.json|->",
	Short: "Convert an event file to normalised CSV",
	Long: `Import a JSON or CSV event file and write the accepted events as
CSV with the canonical header. Rejected rows are reported and left out.
Each --meta value becomes a "#" comment line above the header.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringVarP(&convertOut, "out", "o", "", "output file path (default: stdout)")
	convertCmd.Flags().StringArrayVar(&convertMeta, "meta", nil, "comment line to write above the header (repeatable)")
	addInputFlags(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	im, err := loadEvents(ctx, args[0], false)
	if err != nil {
		return err
	}

	if convertOut == "" {
		return eng.ExportCSV(ctx, os.Stdout, im.Events, convertMeta...)
	}
	f, err := os.Create(convertOut)
	if err != nil {
		return fmt.Errorf("create %s: %w", convertOut, err)
	}
	if err := eng.ExportCSV(ctx, f, im.Events, convertMeta...); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", convertOut, err)
	}
	fmt.Fprintf(os.Stderr, "Wrote %d event(s) to %s\n", len(im.Events), convertOut)
	return nil
}
