// SPDX-License-Identifier: MIT

// Package modelio reads and writes core.Model network descriptions as YAML.
//
// Document shape:
//
//	name: toy
//	exchange_prefix: EX_          # optional, default "EX_"; "" disables name-based detection
//	metabolites:                  # optional; listed first keeps their order
//	  - id: glc_e
//	    name: D-glucose
//	    compartment: e
//	reactions:
//	  - id: EX_glc_e
//	    lower: -10
//	    upper: 1000
//	    role: exchange            # internal | exchange | sink | demand
//	    stoichiometry: {glc_e: -1}
//	  - id: BIOMASS
//	    upper: .inf
//	    objective: 1
//	    stoichiometry: {B: -1}
//
// Infinite bounds use YAML's .inf and -.inf.
package modelio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvflux/core"
)

// ErrEmptyDocument is returned when the input holds no YAML document.
var ErrEmptyDocument = errors.New("modelio: empty model document")

type modelDoc struct {
	Name           string          `yaml:"name,omitempty"`
	ExchangePrefix *string         `yaml:"exchange_prefix,omitempty"`
	Metabolites    []metaboliteDoc `yaml:"metabolites,omitempty"`
	Reactions      []reactionDoc   `yaml:"reactions"`
}

type metaboliteDoc struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name,omitempty"`
	Compartment string `yaml:"compartment,omitempty"`
}

type reactionDoc struct {
	ID            string             `yaml:"id"`
	Name          string             `yaml:"name,omitempty"`
	Lower         float64            `yaml:"lower"`
	Upper         float64            `yaml:"upper"`
	Objective     float64            `yaml:"objective,omitempty"`
	Role          string             `yaml:"role,omitempty"`
	Stoichiometry map[string]float64 `yaml:"stoichiometry"`
}

// Read decodes a model document. Unknown keys are rejected.
//
// Errors: ErrEmptyDocument, YAML errors, and core errors for invalid
// reactions (wrapped with the reaction's position).
func Read(r io.Reader) (*core.Model, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc modelDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyDocument
		}
		return nil, fmt.Errorf("modelio: decode: %w", err)
	}

	opts := []core.ModelOption{core.WithName(doc.Name)}
	if doc.ExchangePrefix != nil {
		opts = append(opts, core.WithExchangePrefix(*doc.ExchangePrefix))
	}
	m := core.NewModel(opts...)
	for i, md := range doc.Metabolites {
		met := core.Metabolite{ID: core.MetaboliteID(md.ID), Name: md.Name, Compartment: md.Compartment}
		if err := m.AddMetabolite(met); err != nil {
			return nil, fmt.Errorf("modelio: metabolite %d (%q): %w", i, md.ID, err)
		}
	}
	for i, rd := range doc.Reactions {
		role, err := core.ParseRole(rd.Role)
		if err != nil {
			return nil, fmt.Errorf("modelio: reaction %d (%q): %w", i, rd.ID, err)
		}
		r := core.Reaction{
			ID:            core.ReactionID(rd.ID),
			Name:          rd.Name,
			Lower:         rd.Lower,
			Upper:         rd.Upper,
			Objective:     rd.Objective,
			Role:          role,
			Stoichiometry: make(map[core.MetaboliteID]float64, len(rd.Stoichiometry)),
		}
		for met, coef := range rd.Stoichiometry {
			r.Stoichiometry[core.MetaboliteID(met)] = coef
		}
		if err := m.AddReaction(r); err != nil {
			return nil, fmt.Errorf("modelio: reaction %d (%q): %w", i, rd.ID, err)
		}
	}

	return m, nil
}

// ReadFile reads a model document from path.
func ReadFile(path string) (*core.Model, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("modelio: open model: %w", err)
	}
	defer f.Close()

	return Read(f)
}

// Write encodes m with metabolites and reactions in model order.
func Write(w io.Writer, m *core.Model) error {
	doc := modelDoc{Name: m.Name()}
	if prefix := m.ExchangePrefix(); prefix != core.DefaultExchangePrefix {
		doc.ExchangePrefix = &prefix
	}
	for _, met := range m.Metabolites() {
		doc.Metabolites = append(doc.Metabolites, metaboliteDoc{
			ID:          string(met.ID),
			Name:        met.Name,
			Compartment: met.Compartment,
		})
	}
	for _, r := range m.Reactions() {
		rd := reactionDoc{
			ID:            string(r.ID),
			Name:          r.Name,
			Lower:         r.Lower,
			Upper:         r.Upper,
			Objective:     r.Objective,
			Stoichiometry: make(map[string]float64, len(r.Stoichiometry)),
		}
		if r.Role != core.RoleInternal {
			rd.Role = r.Role.String()
		}
		for met, coef := range r.Stoichiometry {
			rd.Stoichiometry[string(met)] = coef
		}
		doc.Reactions = append(doc.Reactions, rd)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("modelio: encode: %w", err)
	}

	return enc.Close()
}

// WriteFile writes m to path, replacing any existing file.
func WriteFile(path string, m *core.Model) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("modelio: create model: %w", err)
	}
	if err := Write(f, m); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
