package ruleset

import (
	"errors"
	"fmt"
)

// Race describes a playable race for the race tab of character creation.
// The rules that a race grants live with its traits; Race carries the
// descriptive text and the handful of facts shown alongside it.
//
// Precondition: ID and Name must be non-empty after loading.
type Race struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Plural          string   `yaml:"plural"`
	Summary         string   `yaml:"summary"`
	Description     string   `yaml:"description"`
	Physical        string   `yaml:"physical_description"`
	Society         string   `yaml:"society"`
	Relations       string   `yaml:"relations"`
	Alignment       string   `yaml:"alignment_and_religion"`
	Adventurers     string   `yaml:"adventurers"`
	Names           []string `yaml:"names"`
	Languages       []string `yaml:"languages"`
	BonusLanguages  []string `yaml:"bonus_languages"`
	FavoredClassTip string   `yaml:"favored_class_tip"`
}

// DisplayPlural returns Plural, or Name with an "s" suffix when Plural is unset.
//
// Precondition: Name must be non-empty.
// Postcondition: Returns a non-empty string.
func (r *Race) DisplayPlural() string {
	if r.Plural != "" {
		return r.Plural
	}
	return r.Name + "s"
}

func (r *Race) validate() error {
	if r.ID == "" {
		return errors.New("race id must not be empty")
	}
	if r.Name == "" {
		return fmt.Errorf("race %q: name must not be empty", r.ID)
	}
	return nil
}

// LoadRaces reads every *.race.yaml file under dir.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed races (may be empty slice) or a non-nil error.
func LoadRaces(dir string) ([]*Race, error) {
	races, err := loadKind[Race](dir, KindRace)
	if err != nil {
		return nil, err
	}
	for _, r := range races {
		if err := r.validate(); err != nil {
			return nil, err
		}
	}
	return races, nil
}
