// Package bonus models typed numeric bonuses and the Pathfinder stacking rules
// that govern how bonuses of the same type combine.
package bonus

import (
	"fmt"
	"strings"
)

// Type is the category of a numeric bonus. The type decides whether two
// bonuses applying to the same statistic stack.
type Type int

// Bonus types, ordered alphabetically after Untyped.
const (
	Untyped Type = iota
	Alchemical
	Armor
	Circumstance
	Competence
	Deflection
	Dodge
	Enhancement
	Inherent
	Insight
	Luck
	Morale
	NaturalArmor
	Profane
	Racial
	Resistance
	Sacred
	Shield
	Size
	Trait
)

var typeNames = [...]string{
	Untyped:      "untyped",
	Alchemical:   "alchemical",
	Armor:        "armor",
	Circumstance: "circumstance",
	Competence:   "competence",
	Deflection:   "deflection",
	Dodge:        "dodge",
	Enhancement:  "enhancement",
	Inherent:     "inherent",
	Insight:      "insight",
	Luck:         "luck",
	Morale:       "morale",
	NaturalArmor: "natural_armor",
	Profane:      "profane",
	Racial:       "racial",
	Resistance:   "resistance",
	Sacred:       "sacred",
	Shield:       "shield",
	Size:         "size",
	Trait:        "trait",
}

// String returns the lower_snake_case name of t.
func (t Type) String() string {
	if t < 0 || int(t) >= len(typeNames) {
		return fmt.Sprintf("bonus_type(%d)", int(t))
	}
	return typeNames[t]
}

// Stacks reports whether multiple bonuses of this type add together.
// Dodge, circumstance and untyped bonuses stack; every other type only
// contributes its single highest value.
func (t Type) Stacks() bool {
	switch t {
	case Untyped, Dodge, Circumstance:
		return true
	}
	return false
}

// ParseBonusType resolves a bonus type name. Matching is case-insensitive and
// accepts spaces or hyphens in place of underscores; "" parses as Untyped.
//
// Postcondition: Returns the Type or a non-nil error for unknown names.
func ParseBonusType(s string) (Type, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	if norm == "" {
		return Untyped, nil
	}
	for i, name := range typeNames {
		if name == norm {
			return Type(i), nil
		}
	}
	return Untyped, fmt.Errorf("unknown bonus type %q", s)
}

// MarshalText encodes t by name.
func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a bonus type name.
func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseBonusType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Bonus is a single typed modifier from a named source.
//
// Condition narrows when the bonus applies ("vs poison", "vs giants"); an
// empty Condition means the bonus always applies.
type Bonus struct {
	Type      Type   `json:"type"`
	Value     int    `json:"value"`
	Source    string `json:"source"`
	Condition string `json:"condition,omitempty"`
}

// Conditional reports whether b only applies in a narrower situation.
func (b Bonus) Conditional() bool {
	return b.Condition != ""
}

// String renders b as "+2 racial (KeenSenses)" with a trailing condition if any.
func (b Bonus) String() string {
	s := fmt.Sprintf("%+d %s", b.Value, b.Type)
	if b.Source != "" {
		s += " (" + b.Source + ")"
	}
	if b.Condition != "" {
		s += " " + b.Condition
	}
	return s
}

// sameSlot reports whether a and b occupy the same slot in a category: a
// repeated grant from one source never duplicates.
func sameSlot(a, b Bonus) bool {
	return a.Type == b.Type && a.Source == b.Source && a.Condition == b.Condition
}
