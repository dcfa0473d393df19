package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var validateStrict bool

// validateCmd checks an event file and lists every problem found.
var validateCmd = &cobra.Command{
	Use:   "validate <events.csv|events.json|->",
	Short: "Check an event file and report every bad row",
	Long: `Import an event file the same way every other command does and
list each rejected row and each dropped optional field. With --strict the
command fails when any row was rejected.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "exit non-zero if any row is rejected")
	addInputFlags(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	im, err := loadEvents(cmd.Context(), args[0], true)
	if err != nil {
		return err
	}

	rejected := im.Rejected()
	warnings := len(im.Issues) - rejected
	line := fmt.Sprintf("%d event(s) accepted, %d row(s) rejected, %d warning(s)  [import %s]",
		len(im.Events), rejected, warnings, im.ID)
	if rejected > 0 {
		cWarn.Fprintln(os.Stdout, line)
	} else {
		cOK.Fprintln(os.Stdout, line)
	}

	if validateStrict && rejected > 0 {
		return fmt.Errorf("%d row(s) rejected", rejected)
	}
	return nil
}
