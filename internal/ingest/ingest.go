// Package ingest reads raw event arrays produced by the tagging UI.
package ingest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/tidwall/gjson"

	"github.com/pable/go-match-metrics/internal/validate"
)

var (
	ErrInvalidJSON = errors.New("ingest: input is not valid JSON")
	ErrNotArray    = errors.New("ingest: expected an array of events or an object with an \"events\" array")
)

// Parse extracts raw event records from data. The document is either an
// array of event objects or an object holding one under "events" (the
// shape of a saved tagging session). Elements that are not objects become
// empty records so they are rejected at their own index by the validator.
func Parse(data []byte) ([]validate.RawEvent, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(data)
	if doc.IsObject() {
		doc = doc.Get("events")
	}
	if !doc.IsArray() {
		return nil, ErrNotArray
	}

	var raws []validate.RawEvent
	doc.ForEach(func(_, el gjson.Result) bool {
		raws = append(raws, record(el))
		return true
	})
	if raws == nil {
		raws = []validate.RawEvent{}
	}
	return raws, nil
}

// Read is Parse over everything in r.
func Read(r io.Reader) ([]validate.RawEvent, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	return Parse(data)
}

func record(el gjson.Result) validate.RawEvent {
	raw := validate.RawEvent{}
	if !el.IsObject() {
		return raw
	}
	el.ForEach(func(key, v gjson.Result) bool {
		switch v.Type {
		case gjson.Null:
		case gjson.String:
			raw[key.String()] = v.Str
		case gjson.Number:
			// Keep the literal so large integer ids are not rounded.
			raw[key.String()] = json.Number(v.Raw)
		case gjson.True, gjson.False:
			raw[key.String()] = v.Bool()
		default:
			raw[key.String()] = v.Raw
		}
		return true
	})
	return raw
}
