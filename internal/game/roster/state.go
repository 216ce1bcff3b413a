package roster

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/menagerie/internal/game/creature"
	"github.com/cory-johannsen/menagerie/internal/game/equipment"
)

// State is the flat, keyed persistence form of a Roster. It carries no live
// Entities.
type State struct {
	Creatures   map[string]*creature.Record `yaml:"creatures"`
	Bench       []string                    `yaml:"bench"`
	Party       []string                    `yaml:"party"`
	ActiveIndex int                         `yaml:"active_index"`
	// Items maps item instance ID to item definition ID.
	Items map[string]string `yaml:"items"`
	// Equipped maps item instance ID to the uniqueID of the creature wearing it.
	Equipped map[string]string `yaml:"equipped"`
	// Packs is the unopened gacha pack count saved alongside the roster.
	Packs int `yaml:"packs"`
}

// ItemResolver supplies item definitions when importing a State.
type ItemResolver interface {
	Def(id string) (*equipment.Def, bool)
}

// Validate checks that every reference in s resolves and that the roster
// invariants hold.
func (s *State) Validate() error {
	var errs []error
	if len(s.Party) > PartySize {
		errs = append(errs, fmt.Errorf("party has %d members, max %d", len(s.Party), PartySize))
	}
	if len(s.Party) == 0 && s.ActiveIndex != 0 {
		errs = append(errs, fmt.Errorf("active_index %d with empty party", s.ActiveIndex))
	}
	if len(s.Party) > 0 && (s.ActiveIndex < 0 || s.ActiveIndex >= len(s.Party)) {
		errs = append(errs, fmt.Errorf("active_index %d outside party of %d", s.ActiveIndex, len(s.Party)))
	}
	if s.Packs < 0 {
		errs = append(errs, fmt.Errorf("packs must be >= 0, got %d", s.Packs))
	}

	seen := make(map[string]bool, len(s.Creatures))
	for _, id := range append(append([]string(nil), s.Bench...), s.Party...) {
		rec, ok := s.Creatures[id]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("creature %q listed but not stored", id))
			continue
		case seen[id]:
			errs = append(errs, fmt.Errorf("creature %q listed twice", id))
			continue
		case rec == nil:
			seen[id] = true
			errs = append(errs, fmt.Errorf("creature %q has no record", id))
			continue
		}
		seen[id] = true
		if rec.UniqueID != id {
			errs = append(errs, fmt.Errorf("creature key %q holds record %q", id, rec.UniqueID))
		}
		if err := rec.Validate(); err != nil {
			errs = append(errs, err)
		}
		if item := rec.EquippedItemID(); item != "" && s.Equipped[item] != id {
			errs = append(errs, fmt.Errorf("creature %q wears %q but the equip index disagrees", id, item))
		}
	}
	for id, rec := range s.Creatures {
		if rec == nil && !seen[id] {
			errs = append(errs, fmt.Errorf("creature %q has no record", id))
		}
		if !seen[id] {
			errs = append(errs, fmt.Errorf("creature %q is neither on the bench nor in the party", id))
		}
	}
	for item, owner := range s.Equipped {
		if _, ok := s.Items[item]; !ok {
			errs = append(errs, fmt.Errorf("equipped item %q is not owned", item))
		}
		rec, ok := s.Creatures[owner]
		if !ok {
			errs = append(errs, fmt.Errorf("item %q equipped on unknown creature %q", item, owner))
			continue
		}
		if rec == nil {
			continue
		}
		if rec.EquippedItemID() != item {
			errs = append(errs, fmt.Errorf("item %q indexed on %q but not worn", item, owner))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("roster state: %w", errors.Join(errs...))
	}
	return nil
}

// Export snapshots the live Entity, without destroying it, and returns a
// deep copy of the roster's persistent state. Packs is left zero.
func (r *Roster) Export() *State {
	r.Sync()
	s := &State{
		Creatures:   make(map[string]*creature.Record, len(r.bench)+len(r.party)),
		Bench:       make([]string, 0, len(r.bench)),
		Party:       make([]string, 0, len(r.party)),
		ActiveIndex: r.activeIndex,
		Items:       make(map[string]string, len(r.items)),
		Equipped:    make(map[string]string, len(r.equipped)),
	}
	for _, rec := range r.bench {
		s.Creatures[rec.UniqueID] = rec.Clone()
		s.Bench = append(s.Bench, rec.UniqueID)
	}
	for _, rec := range r.party {
		s.Creatures[rec.UniqueID] = rec.Clone()
		s.Party = append(s.Party, rec.UniqueID)
	}
	for id, it := range r.items {
		s.Items[id] = it.Def.ID
	}
	for item, owner := range r.equipped {
		s.Equipped[item] = owner
	}
	return s
}

// Import rebuilds a Roster from s with zero live Entities.
//
// Precondition: opts.Templates must be non-nil; items must resolve every
// definition ID in s.Items.
// Postcondition: Returns an error and no Roster if s is inconsistent or
// references unknown templates or item definitions.
func Import(s *State, items ItemResolver, opts Options) (*Roster, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	r := New(opts)
	for id, defID := range s.Items {
		def, ok := items.Def(defID)
		if !ok {
			return nil, fmt.Errorf("roster state: item %q has unknown definition %q", id, defID)
		}
		r.items[id] = equipment.Restore(id, def)
	}
	for item, owner := range s.Equipped {
		r.equipped[item] = owner
	}
	load := func(ids []string) ([]*creature.Record, error) {
		out := make([]*creature.Record, 0, len(ids))
		for _, id := range ids {
			rec := s.Creatures[id]
			if _, ok := r.templates.Template(rec.TemplateRef); !ok {
				return nil, fmt.Errorf("roster state: creature %q has unknown template %q", id, rec.TemplateRef)
			}
			out = append(out, rec.Clone())
		}
		return out, nil
	}
	var err error
	if r.bench, err = load(s.Bench); err != nil {
		return nil, err
	}
	if r.party, err = load(s.Party); err != nil {
		return nil, err
	}
	r.activeIndex = s.ActiveIndex
	return r, nil
}

// EncodeState renders s as YAML.
func EncodeState(s *State) ([]byte, error) {
	data, err := yaml.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("encoding roster state: %w", err)
	}
	return data, nil
}

// DecodeState parses and validates a YAML roster state.
func DecodeState(data []byte) (*State, error) {
	var s State
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decoding roster state: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}
