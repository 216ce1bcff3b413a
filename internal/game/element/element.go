// Package element defines elemental kinds and the attacker/defender
// effectiveness table used to scale damage.
package element

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// Kind is the elemental tag carried by creatures and items.
type Kind string

const (
	// None is the neutral element.
	None Kind = "none"
	// Fire is the fire element.
	Fire Kind = "fire"
	// Water is the water element.
	Water Kind = "water"
	// Grass is the grass element.
	Grass Kind = "grass"
)

// Kinds lists every element in the closed set, None first.
var Kinds = []Kind{None, Fire, Water, Grass}

var validKinds = map[Kind]bool{
	None:  true,
	Fire:  true,
	Water: true,
	Grass: true,
}

// Valid reports whether k is a member of the closed element set.
func (k Kind) Valid() bool {
	return validKinds[k]
}

// Parse converts s into a Kind. The empty string parses as None.
//
// Postcondition: Returns a valid Kind, or an error naming the bad value.
func Parse(s string) (Kind, error) {
	if s == "" {
		return None, nil
	}
	k := Kind(s)
	if !k.Valid() {
		return None, fmt.Errorf("unknown element %q", s)
	}
	return k, nil
}

// UnmarshalYAML rejects element names outside the closed set.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

type pair struct {
	attacker Kind
	defender Kind
}

// Table maps (attacker, defender) element pairs to damage multipliers.
//
// Invariant: every stored multiplier is > 0. Pairs without an entry, and any
// pair involving None, resolve to 1.0.
type Table struct {
	entries map[pair]float64
}

// NewTable returns an empty table in which every pair resolves to 1.0.
func NewTable() *Table {
	return &Table{entries: make(map[pair]float64)}
}

// DefaultTable returns the classic triangle: fire beats grass, grass beats
// water, water beats fire, each at 2.0, with the reverse pairs at 0.5.
func DefaultTable() *Table {
	t := NewTable()
	beats := map[Kind]Kind{Fire: Grass, Grass: Water, Water: Fire}
	for strong, weak := range beats {
		t.entries[pair{strong, weak}] = 2.0
		t.entries[pair{weak, strong}] = 0.5
	}
	return t
}

// Set stores a multiplier for the pair.
//
// Precondition: attacker and defender must be valid kinds; multiplier is
// finite and > 0.
// Postcondition: Effectiveness(attacker, defender) == multiplier unless either is None.
func (t *Table) Set(attacker, defender Kind, multiplier float64) error {
	if !attacker.Valid() || !defender.Valid() {
		return fmt.Errorf("element table: invalid pair %q -> %q", attacker, defender)
	}
	if math.IsNaN(multiplier) || math.IsInf(multiplier, 0) || multiplier <= 0 {
		return fmt.Errorf("element table: multiplier for %q -> %q must be > 0, got %v", attacker, defender, multiplier)
	}
	t.entries[pair{attacker, defender}] = multiplier
	return nil
}

// Effectiveness returns the damage multiplier for attacker hitting defender.
//
// Postcondition: Returns a value > 0; 1.0 for undefined pairs and for None.
func (t *Table) Effectiveness(attacker, defender Kind) float64 {
	if attacker == None || defender == None || t == nil {
		return 1.0
	}
	if m, ok := t.entries[pair{attacker, defender}]; ok {
		return m
	}
	return 1.0
}

// LoadTable reads a YAML document of the form
//
//	fire:
//	  grass: 2.0
//	  water: 0.5
//
// Precondition: path must name a readable YAML file.
// Postcondition: Returns a fully validated Table or an error; on error no table is returned.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading element table %q: %w", path, err)
	}
	return LoadTableFromBytes(data)
}

// LoadTableFromBytes parses an effectiveness table from raw YAML.
func LoadTableFromBytes(data []byte) (*Table, error) {
	var raw map[Kind]map[Kind]float64
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing element table YAML: %w", err)
	}
	t := NewTable()
	for attacker, row := range raw {
		for defender, m := range row {
			if err := t.Set(attacker, defender, m); err != nil {
				return nil, err
			}
		}
	}
	return t, nil
}
