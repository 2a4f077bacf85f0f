package ruleset

import (
	"errors"
	"fmt"
)

// TraitDescription is the display text for a single racial trait.
// ID matches a racial trait name known to the rules engine.
type TraitDescription struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Category    string `yaml:"category"`
	Description string `yaml:"description"`
}

// DefaultTraits lists, in display order, the standard racial traits every
// member of a race starts with.
//
// Precondition: Race must be non-empty and Traits must hold unique IDs.
type DefaultTraits struct {
	Race   string             `yaml:"race"`
	Traits []TraitDescription `yaml:"traits"`
}

// IDs returns the trait ids in display order.
func (d *DefaultTraits) IDs() []string {
	out := make([]string, len(d.Traits))
	for i, t := range d.Traits {
		out[i] = t.ID
	}
	return out
}

func (d *DefaultTraits) validate() error {
	if d.Race == "" {
		return errors.New("default traits: race must not be empty")
	}
	seen := make(map[string]bool, len(d.Traits))
	for _, t := range d.Traits {
		if t.ID == "" {
			return fmt.Errorf("default traits for %q: trait id must not be empty", d.Race)
		}
		if seen[t.ID] {
			return fmt.Errorf("default traits for %q: duplicate trait %q", d.Race, t.ID)
		}
		seen[t.ID] = true
	}
	return nil
}

// AltTrait is an alternate racial trait that replaces one or more default
// traits of its race.
//
// Script, when set, is a Lua chunk that grants the trait's bonuses for
// homebrew traits the rules engine does not know by name.
//
// Precondition: ID, Race and Name must be non-empty; Replaces must be non-empty.
type AltTrait struct {
	ID          string   `yaml:"id"`
	Race        string   `yaml:"race"`
	Name        string   `yaml:"name"`
	Category    string   `yaml:"category"`
	Description string   `yaml:"description"`
	Replaces    []string `yaml:"replaces"`
	Script      string   `yaml:"script"`
}

// Scripted reports whether the trait carries a Lua effect script.
func (a *AltTrait) Scripted() bool {
	return a.Script != ""
}

func (a *AltTrait) validate() error {
	switch {
	case a.ID == "":
		return errors.New("alt trait id must not be empty")
	case a.Race == "":
		return fmt.Errorf("alt trait %q: race must not be empty", a.ID)
	case a.Name == "":
		return fmt.Errorf("alt trait %q: name must not be empty", a.ID)
	case len(a.Replaces) == 0:
		return fmt.Errorf("alt trait %q: replaces must list at least one trait", a.ID)
	}
	return nil
}

// LoadDefaultTraits reads every *.default_traits.yaml file under dir.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed lists (may be empty slice) or a non-nil error.
func LoadDefaultTraits(dir string) ([]*DefaultTraits, error) {
	lists, err := loadKind[DefaultTraits](dir, KindDefaultTraits)
	if err != nil {
		return nil, err
	}
	for _, d := range lists {
		if err := d.validate(); err != nil {
			return nil, err
		}
	}
	return lists, nil
}

// LoadAltTraits reads every *.alt_trait.yaml file under dir.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed traits (may be empty slice) or a non-nil error.
func LoadAltTraits(dir string) ([]*AltTrait, error) {
	traits, err := loadKind[AltTrait](dir, KindAltTrait)
	if err != nil {
		return nil, err
	}
	for _, a := range traits {
		if err := a.validate(); err != nil {
			return nil, err
		}
	}
	return traits, nil
}
