// SPDX-License-Identifier: MIT
//
// File: load.go
// Role: YAML profile documents.
//
// Document shape:
//
//	version: v37            # default for profiles without their own
//	profiles:
//	  - id: DM13
//	    description: minimal defined medium
//	    bounds:
//	      EX_glc_D_e: -10
//	      EX_arg_L_e: -0.28

package media

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/katalvlaran/lvflux/core"
)

type registryDoc struct {
	Version  string       `yaml:"version,omitempty"`
	Profiles []profileDoc `yaml:"profiles"`
}

type profileDoc struct {
	ID          string             `yaml:"id"`
	Description string             `yaml:"description,omitempty"`
	Version     string             `yaml:"version,omitempty"`
	Bounds      map[string]float64 `yaml:"bounds"`
}

// LoadRegistry decodes a YAML profile document. Unknown keys are rejected.
func LoadRegistry(r io.Reader) (*Registry, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc registryDoc
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("media: empty profile document")
		}
		return nil, fmt.Errorf("media: decode profiles: %w", err)
	}

	profiles := make([]Profile, 0, len(doc.Profiles))
	for _, pd := range doc.Profiles {
		p := Profile{
			ID:          ProfileID(pd.ID),
			Description: pd.Description,
			Version:     pd.Version,
			Bounds:      make(map[core.ReactionID]float64, len(pd.Bounds)),
		}
		if p.Version == "" {
			p.Version = doc.Version
		}
		for id, v := range pd.Bounds {
			p.Bounds[core.ReactionID(id)] = v
		}
		profiles = append(profiles, p)
	}

	return NewRegistry(profiles...)
}

// LoadRegistryFile reads a YAML profile document from path.
func LoadRegistryFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("media: open profiles: %w", err)
	}
	defer f.Close()

	return LoadRegistry(f)
}

// Encode writes the registry as a YAML profile document.
func (r *Registry) Encode(w io.Writer) error {
	doc := registryDoc{Profiles: make([]profileDoc, 0, len(r.ids))}
	for _, id := range r.ids {
		p := r.profiles[id]
		pd := profileDoc{
			ID:          string(p.ID),
			Description: p.Description,
			Version:     p.Version,
			Bounds:      make(map[string]float64, len(p.Bounds)),
		}
		for rid, v := range p.Bounds {
			pd.Bounds[string(rid)] = v
		}
		doc.Profiles = append(doc.Profiles, pd)
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("media: encode profiles: %w", err)
	}

	return enc.Close()
}
