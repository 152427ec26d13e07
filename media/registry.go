// SPDX-License-Identifier: MIT
//
// File: registry.go
// Role: Closed set of named media profiles and their atomic application to a model.

package media

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/lvflux/core"
)

var (
	// ErrUnknownProfile is returned for identifiers outside the registry.
	ErrUnknownProfile = errors.New("media: unknown profile")

	// ErrMissingExchange is returned when a profile names a reaction the model lacks.
	ErrMissingExchange = errors.New("media: profile reaction missing from model")

	// ErrDuplicateProfile is returned when two profiles share an identifier.
	ErrDuplicateProfile = errors.New("media: duplicate profile")

	// ErrInvalidProfile is returned for empty identifiers or non-finite bounds.
	ErrInvalidProfile = errors.New("media: invalid profile")
)

// ProfileID names a media regime.
type ProfileID string

// Profile maps exchange reactions to the lower bound they receive when the
// regime is applied. Negative values allow uptake.
type Profile struct {
	ID          ProfileID
	Description string
	Version     string
	Bounds      map[core.ReactionID]float64
}

// Components returns the profile's reactions in sorted order.
func (p Profile) Components() []core.ReactionID {
	ids := make([]core.ReactionID, 0, len(p.Bounds))
	for id := range p.Bounds {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids
}

func (p Profile) clone() Profile {
	cp := p
	cp.Bounds = make(map[core.ReactionID]float64, len(p.Bounds))
	for id, v := range p.Bounds {
		cp.Bounds[id] = v
	}

	return cp
}

// Applied records one application of a profile.
type Applied struct {
	Profile ProfileID
	Version string

	// Bounds is the exact lower-bound mapping written for profile components.
	Bounds map[core.ReactionID]float64

	// Previous holds every touched reaction's bounds before application.
	Previous core.BoundSnapshot
}

// Undo restores the bounds captured before application.
func (a Applied) Undo(m *core.Model) { m.Restore(a.Previous) }

// Registry is an immutable, closed set of profiles.
type Registry struct {
	profiles map[ProfileID]Profile
	ids      []ProfileID
}

// NewRegistry builds a registry from profiles.
//
// Errors: ErrInvalidProfile (empty ID, empty reaction ID, NaN/Inf value),
// ErrDuplicateProfile.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{profiles: make(map[ProfileID]Profile, len(profiles))}
	for _, p := range profiles {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: empty profile id", ErrInvalidProfile)
		}
		if _, ok := r.profiles[p.ID]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateProfile, p.ID)
		}
		for id, v := range p.Bounds {
			if id == "" {
				return nil, fmt.Errorf("%w: profile %q has an empty reaction id", ErrInvalidProfile, p.ID)
			}
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: profile %q bound for %q is %g", ErrInvalidProfile, p.ID, id, v)
			}
		}
		r.profiles[p.ID] = p.clone()
		r.ids = append(r.ids, p.ID)
	}
	sort.Slice(r.ids, func(i, j int) bool { return r.ids[i] < r.ids[j] })

	return r, nil
}

// IDs returns the registered identifiers in sorted order.
func (r *Registry) IDs() []ProfileID { return append([]ProfileID(nil), r.ids...) }

// Get returns a copy of a profile.
//
// Errors: ErrUnknownProfile.
func (r *Registry) Get(id ProfileID) (Profile, error) {
	p, ok := r.profiles[id]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, id)
	}

	return p.clone(), nil
}

// Parse validates a raw identifier against the registry.
func (r *Registry) Parse(s string) (ProfileID, error) {
	id := ProfileID(s)
	if _, ok := r.profiles[id]; !ok {
		return "", fmt.Errorf("%w: %q (known: %v)", ErrUnknownProfile, s, r.ids)
	}

	return id, nil
}

// Apply configures m's exchange bounds for a profile.
//
// Implementation:
//   - Stage 1: Resolve the profile and check every component exists in m.
//   - Stage 2: Phase one closes uptake on every exchange (lower bound 0,
//     upper bound lifted to 0 if it was negative).
//   - Stage 3: Phase two opens each component at its profile value.
//   - Stage 4: Write the combined bound set in one validated step.
//
// Nothing is mutated when an error is returned. The result depends only on
// the profile and the model's upper bounds, so re-applying is a no-op.
//
// Errors: ErrUnknownProfile, ErrMissingExchange.
func (r *Registry) Apply(m *core.Model, id ProfileID) (Applied, error) {
	// Stage 1: validation
	p, ok := r.profiles[id]
	if !ok {
		return Applied{}, fmt.Errorf("%w: %q", ErrUnknownProfile, id)
	}
	components := p.Components()
	var missing []core.ReactionID
	for _, rid := range components {
		if !m.HasReaction(rid) {
			missing = append(missing, rid)
		}
	}
	if len(missing) > 0 {
		return Applied{}, fmt.Errorf("%w: profile %q: %v", ErrMissingExchange, id, missing)
	}

	exchanges := m.Exchanges()
	touched := append(append([]core.ReactionID(nil), exchanges...), components...)
	previous, err := m.SnapshotOf(touched)
	if err != nil {
		return Applied{}, err
	}

	// Stage 2: closed-world reset
	set := make(core.BoundSnapshot, len(previous))
	for _, rid := range exchanges {
		b := previous[rid]
		set[rid] = core.Bounds{Lower: 0, Upper: math.Max(b.Upper, 0)}
	}

	// Stage 3: open profile components
	for _, rid := range components {
		b, ok := set[rid]
		if !ok {
			b = core.Bounds{Upper: previous[rid].Upper}
		}
		b.Lower = p.Bounds[rid]
		b.Upper = math.Max(b.Upper, b.Lower)
		set[rid] = b
	}

	// Stage 4: atomic write
	if err := m.ApplyBounds(set); err != nil {
		return Applied{}, err
	}

	return Applied{
		Profile:  p.ID,
		Version:  p.Version,
		Bounds:   p.clone().Bounds,
		Previous: previous,
	}, nil
}
