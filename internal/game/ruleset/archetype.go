package ruleset

import (
	"errors"
	"fmt"
)

// Archetype is a class variant that trades some of the base class features
// for alternates.
//
// Replaces names base class features (ClassFeature.Name) the archetype removes;
// Features lists what it grants instead.
//
// Precondition: ID, Class and Name must be non-empty after loading.
type Archetype struct {
	ID          string         `yaml:"id"`
	Class       string         `yaml:"class"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Replaces    []string       `yaml:"replaces"`
	Features    []ClassFeature `yaml:"features"`
}

// ReplacesFeature reports whether the archetype removes the named base feature.
func (a *Archetype) ReplacesFeature(name string) bool {
	for _, r := range a.Replaces {
		if r == name {
			return true
		}
	}
	return false
}

func (a *Archetype) validate() error {
	switch {
	case a.ID == "":
		return errors.New("archetype id must not be empty")
	case a.Class == "":
		return fmt.Errorf("archetype %q: class must not be empty", a.ID)
	case a.Name == "":
		return fmt.Errorf("archetype %q: name must not be empty", a.ID)
	}
	return nil
}

// LoadArchetypes reads every *.archetype.yaml file under dir.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed archetypes (may be empty slice) or a non-nil error.
func LoadArchetypes(dir string) ([]*Archetype, error) {
	archetypes, err := loadKind[Archetype](dir, KindArchetype)
	if err != nil {
		return nil, err
	}
	for _, a := range archetypes {
		if err := a.validate(); err != nil {
			return nil, err
		}
	}
	return archetypes, nil
}
