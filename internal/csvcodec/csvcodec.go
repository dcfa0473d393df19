// Package csvcodec reads and writes the portable CSV form of an event set.
//
// The file layout is optional '#' metadata lines, a fixed 21-column header
// and one row per event. Decoding routes every row through the validator,
// so imported events obey the same rules as events tagged live.
package csvcodec

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/validate"
)

// Header is the column order written by Encode.
var Header = []string{
	"Event Type", "X Position", "Y Position", "End X", "End Y",
	"Outcome", "Body Part", "Assist Type", "Action Type", "Success",
	"Completed", "xG", "xA", "Timestamp", "Player ID",
	"Player Name", "Team ID", "Team Name", "Minute", "Phase", "Zone",
}

// headerKeys maps each Header column to its validator key.
var headerKeys = []string{
	validate.KeyType, validate.KeyX, validate.KeyY, validate.KeyEndX, validate.KeyEndY,
	validate.KeyOutcome, validate.KeyBodyPart, validate.KeyAssistType, validate.KeyActionType, validate.KeySuccess,
	validate.KeyCompleted, validate.KeyXG, validate.KeyXA, validate.KeyTimestamp, validate.KeyPlayerID,
	validate.KeyPlayerName, validate.KeyTeamID, validate.KeyTeamName, validate.KeyMinute, validate.KeyPhase, validate.KeyZone,
}

const (
	coordPrecision    = 2
	expectedPrecision = 3
)

var (
	ErrNoHeader       = errors.New("csv: no header row with an Event Type column")
	ErrNoValidRows    = errors.New("csv: no valid event rows")
	ErrTooManyColumns = errors.New("more columns than the header")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ---- Encode ----

type encodeOptions struct {
	metadata []string
}

// EncodeOption tunes Encode.
type EncodeOption func(*encodeOptions)

// WithMetadata writes each line as a '#' comment above the header.
func WithMetadata(lines ...string) EncodeOption {
	return func(o *encodeOptions) { o.metadata = append(o.metadata, lines...) }
}

// Encode writes events as CSV. Coordinates keep 2 decimals, xG and xA keep
// 3; absent fields are written empty.
func Encode(w io.Writer, events []model.MatchEvent, opts ...EncodeOption) error {
	var o encodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	bw := bufio.NewWriter(w)
	for _, line := range o.metadata {
		for _, l := range strings.Split(line, "\n") {
			if _, err := fmt.Fprintf(bw, "# %s\n", strings.TrimRight(l, "\r")); err != nil {
				return fmt.Errorf("write metadata: %w", err)
			}
		}
	}

	cw := csv.NewWriter(bw)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i := range events {
		if err := cw.Write(record(&events[i])); err != nil {
			return fmt.Errorf("write event %d: %w", i, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return bw.Flush()
}

// EncodeString is Encode into a string.
func EncodeString(events []model.MatchEvent, opts ...EncodeOption) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, events, opts...); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func record(e *model.MatchEvent) []string {
	rec := make([]string, len(Header))
	rec[0] = string(e.Type)
	rec[1] = fixed(e.X, coordPrecision)
	rec[2] = fixed(e.Y, coordPrecision)

	switch e.Type {
	case model.EventShot:
		rec[5] = string(e.Outcome)
		rec[6] = e.BodyPart
		rec[7] = e.AssistType
		rec[11] = fixed(e.XG, expectedPrecision)
	case model.EventPass:
		if e.HasEnd() {
			rec[3] = fixed(*e.EndX, coordPrecision)
			rec[4] = fixed(*e.EndY, coordPrecision)
		}
		rec[10] = strconv.FormatBool(e.Completed)
		rec[12] = fixed(e.XA, expectedPrecision)
	case model.EventDefensive:
		rec[8] = string(e.ActionType)
		rec[9] = strconv.FormatBool(e.Success)
	}

	rec[13] = e.Timestamp
	rec[14] = e.PlayerID
	rec[15] = e.PlayerName
	rec[16] = e.TeamID
	rec[17] = e.TeamName
	if e.Minute != nil {
		rec[18] = strconv.Itoa(*e.Minute)
	}
	rec[19] = string(e.Phase)
	rec[20] = string(e.Zone)
	return rec
}

func fixed(f float64, prec int) string {
	return strconv.FormatFloat(f, 'f', prec, 64)
}

// ---- Decode ----

// ParseError is a row that could not be read as CSV. Row is the 1-based
// data row (the header is not counted); Line is the source line it starts on.
type ParseError struct {
	Row  int
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("csv row %d (line %d): %v", e.Row, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// RowError is a row that was read but failed validation.
type RowError struct {
	Row  int
	Line int
	Err  *validate.Error
}

func (e RowError) Error() string {
	return fmt.Sprintf("csv row %d (line %d): %v", e.Row, e.Line, e.Err)
}

// RowWarning lists the non-fatal issues of one row.
type RowWarning struct {
	Row    int
	Line   int
	Issues []validate.FieldIssue
}

// Result is everything learned from one decode. Events keep row order.
type Result struct {
	Events      []model.MatchEvent
	ParseErrors []*ParseError
	Rejected    []RowError
	Warnings    []RowWarning
}

// Dropped is the number of data rows that produced no event.
func (r *Result) Dropped() int {
	return len(r.ParseErrors) + len(r.Rejected)
}

// Decode reads CSV produced by Encode or by hand. Columns are matched by
// header name, so order and extra columns do not matter. Bad rows are
// collected in the Result instead of aborting the import. A file with no
// valid rows fails with ErrNoValidRows; the partial Result is still
// returned so callers can report why.
func Decode(r io.Reader) (*Result, error) {
	br := bufio.NewReader(r)
	if b, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(b, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	cr := csv.NewReader(br)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	res := &Result{Events: []model.MatchEvent{}}

	var columns []string // validator key per column, "" when unmapped
	row := 0
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if columns == nil {
			if err != nil {
				return res, fmt.Errorf("%w: %v", ErrNoHeader, err)
			}
			columns = mapHeader(rec)
			if columns == nil {
				return res, ErrNoHeader
			}
			continue
		}

		row++
		if err != nil {
			var perr *csv.ParseError
			line := 0
			if errors.As(err, &perr) {
				line = perr.StartLine
				err = perr.Err
			}
			res.ParseErrors = append(res.ParseErrors, &ParseError{Row: row, Line: line, Err: err})
			continue
		}
		line, _ := cr.FieldPos(0)

		if len(rec) > len(columns) {
			res.ParseErrors = append(res.ParseErrors, &ParseError{
				Row: row, Line: line,
				Err: fmt.Errorf("%w: %d > %d", ErrTooManyColumns, len(rec), len(columns)),
			})
			continue
		}

		var warnings []validate.FieldIssue
		if len(rec) < len(columns) {
			warnings = append(warnings, validate.FieldIssue{
				Field:  "row",
				Reason: fmt.Sprintf("%d of %d columns, missing ones read as empty", len(rec), len(columns)),
			})
		}

		raw := make(validate.RawEvent, len(rec))
		for i, v := range rec {
			if key := columns[i]; key != "" && v != "" {
				if _, dup := raw[key]; !dup {
					raw[key] = v
				}
			}
		}

		vr, verr := validate.Event(raw)
		warnings = append(warnings, vr.Warnings...)
		if len(warnings) > 0 {
			res.Warnings = append(res.Warnings, RowWarning{Row: row, Line: line, Issues: warnings})
		}
		if verr != nil {
			var ve *validate.Error
			errors.As(verr, &ve)
			res.Rejected = append(res.Rejected, RowError{Row: row, Line: line, Err: ve})
			continue
		}
		res.Events = append(res.Events, vr.Event)
	}

	if columns == nil {
		return res, ErrNoHeader
	}
	if len(res.Events) == 0 {
		return res, fmt.Errorf("%w: %d rows read, %d dropped", ErrNoValidRows, row, res.Dropped())
	}
	return res, nil
}

// DecodeString is Decode over a string.
func DecodeString(s string) (*Result, error) {
	return Decode(strings.NewReader(s))
}

// mapHeader resolves header names to validator keys. It accepts the Header
// names as well as the validator keys themselves, ignoring case, spaces and
// underscores. It returns nil when no column names the event type.
func mapHeader(rec []string) []string {
	known := make(map[string]string, 2*len(Header))
	for i, name := range Header {
		known[normalize(name)] = headerKeys[i]
		known[normalize(headerKeys[i])] = headerKeys[i]
	}

	columns := make([]string, len(rec))
	hasType := false
	for i, name := range rec {
		key := known[normalize(name)]
		columns[i] = key
		if key == validate.KeyType {
			hasType = true
		}
	}
	if !hasType {
		return nil
	}
	return columns
}

func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "", "_", "").Replace(s)
}
