package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/engine"
	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/stats"
)

var (
	cError = color.New(color.FgRed, color.Bold)
	cWarn  = color.New(color.FgYellow)
	cOK    = color.New(color.FgGreen)
	cMuted = color.New(color.Faint)
)

// inputFormat overrides format detection; needed when reading stdin.
var inputFormat string

func addInputFlags(c *cobra.Command) {
	c.Flags().StringVar(&inputFormat, "format", "", "input format: csv or json (default: from file extension)")
}

// filterFlags narrows the loaded events before any view is computed.
type filterFlags struct {
	team   string
	player string
	types  []string
	zone   string
}

func (f *filterFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.team, "team", "", "only events of this team id")
	c.Flags().StringVar(&f.player, "player", "", "only events of this player id")
	c.Flags().StringSliceVar(&f.types, "type", nil, "only these event types (shot, pass, defensive)")
	c.Flags().StringVar(&f.zone, "zone", "", "only events in this zone (build_up, progression, finishing)")
}

func (f *filterFlags) criteria() (stats.Criteria, error) {
	c := stats.Criteria{TeamID: f.team, PlayerID: f.player}
	for _, t := range f.types {
		et := model.EventType(strings.ToLower(strings.TrimSpace(t)))
		if !et.Valid() {
			return c, fmt.Errorf("unknown event type %q", t)
		}
		c.Types = append(c.Types, et)
	}
	if f.zone != "" {
		c.Zone = model.Zone(strings.ToLower(f.zone))
		if !c.Zone.Valid() {
			return c, fmt.Errorf("unknown zone %q", f.zone)
		}
	}
	return c, nil
}

// loadEvents imports path ("-" for stdin) and prints any issues to stderr.
func loadEvents(ctx context.Context, path string, verbose bool) (*engine.Import, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open events: %w", err)
		}
		defer f.Close()
		r = f
	}

	format := strings.ToLower(inputFormat)
	if format == "" {
		format = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}

	var (
		im  *engine.Import
		err error
	)
	switch format {
	case "json":
		im, err = eng.ImportJSON(ctx, r)
	case "csv", "":
		im, err = eng.ImportCSV(ctx, r)
	default:
		return nil, fmt.Errorf("unknown input format %q (want csv or json)", format)
	}
	if im != nil {
		printIssues(os.Stderr, im, verbose)
	}
	return im, err
}

// printIssues writes errors always and warnings only when verbose.
func printIssues(w io.Writer, im *engine.Import, verbose bool) {
	warnings := 0
	for _, is := range im.Issues {
		switch is.Severity {
		case engine.SeverityError:
			cError.Fprintf(w, "row %d: %s\n", is.Row, is.Message)
		default:
			warnings++
			if verbose {
				cWarn.Fprintf(w, "row %d: %s\n", is.Row, is.Message)
			}
		}
	}
	if warnings > 0 && !verbose {
		cMuted.Fprintf(w, "%d warning(s) hidden; run validate to see them\n", warnings)
	}
}

// loadFiltered loads path and applies the filter flags.
func loadFiltered(ctx context.Context, path string, f *filterFlags) ([]model.MatchEvent, error) {
	crit, err := f.criteria()
	if err != nil {
		return nil, err
	}
	im, err := loadEvents(ctx, path, false)
	if err != nil {
		return nil, err
	}
	return stats.Filter(im.Events, crit), nil
}
