// SPDX-License-Identifier: MIT
//
// File: reference.go
// Role: Observed phenotype tables read from CSV, and report export.

package validation

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/katalvlaran/lvflux/core"
)

var (
	// ErrMissingColumn is returned when the requested profile column is absent.
	ErrMissingColumn = errors.New("validation: reference column not found")

	// ErrBadCell is returned for cells that are neither numbers, labels nor missing.
	ErrBadCell = errors.New("validation: unreadable reference cell")
)

// missingCells are read as "no observation".
var missingCells = map[string]bool{"": true, "#n/a": true, "na": true, "nan": true}

// Observation is one observed phenotype. Value is the observed fold change,
// or NaN when the source gave a categorical label.
type Observation struct {
	Label Label
	Value float64
}

// Reference maps components to observations for one profile.
type Reference map[core.ReactionID]Observation

// ReadReferenceCSV reads a table with one row per component and one column
// per profile. The key column is the one headed "exchange" (any case), or
// the first column. column selects the profile column, matched
// case-insensitively. Numeric cells are labelled with LabelFor(value,
// threshold); "no_effect"/"deleterious" cells are taken as given; empty and
// "#N/A" cells are skipped.
//
// Errors: ErrMissingColumn, ErrBadCell, csv parse errors.
func ReadReferenceCSV(r io.Reader, column string, threshold float64) (Reference, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("validation: read reference header: %w", err)
	}
	key, col := 0, -1
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		switch {
		case h == "exchange":
			key = i
		case h == strings.ToLower(column):
			col = i
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%w: %q in %v", ErrMissingColumn, column, header)
	}

	ref := make(Reference)
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("validation: read reference: %w", err)
		}
		if key >= len(rec) || strings.TrimSpace(rec[key]) == "" {
			continue
		}
		id := core.ReactionID(strings.TrimSpace(rec[key]))
		if col >= len(rec) {
			continue
		}
		obs, ok, err := parseCell(rec[col], threshold)
		if err != nil {
			return nil, fmt.Errorf("%w: line %d, %s: %w", ErrBadCell, line, id, err)
		}
		if ok {
			ref[id] = obs
		}
	}

	return ref, nil
}

func parseCell(raw string, threshold float64) (Observation, bool, error) {
	cell := strings.TrimSpace(raw)
	if missingCells[strings.ToLower(cell)] {
		return Observation{}, false, nil
	}
	if v, err := strconv.ParseFloat(cell, 64); err == nil {
		if math.IsNaN(v) {
			return Observation{}, false, nil
		}
		return Observation{Label: LabelFor(v, threshold), Value: v}, true, nil
	}
	l, err := ParseLabel(cell)
	if err != nil {
		return Observation{}, false, err
	}

	return Observation{Label: l, Value: math.NaN()}, true, nil
}

// WriteRecordsCSV writes one row per evaluated component.
func WriteRecordsCSV(w io.Writer, rep Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"exchange", "growth", "fold_change", "predicted", "observed", "outcome", "excluded"}); err != nil {
		return err
	}
	for _, r := range rep.Records {
		observed, outcome := "", ""
		if r.Scored {
			observed, outcome = r.Observed.Label.String(), r.Outcome.String()
		}
		row := []string{
			string(r.Component),
			strconv.FormatFloat(r.Growth, 'g', -1, 64),
			strconv.FormatFloat(r.FoldChange, 'g', -1, 64),
			r.Predicted.String(),
			observed,
			outcome,
			strconv.FormatBool(r.Excluded),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}
