package ruleset

import (
	"errors"
	"fmt"
)

// Favored class bonus kinds. Every race/class pairing offers FavoredHitPoint and
// FavoredSkillRank; content files add racial alternatives.
const (
	FavoredHitPoint  = "hit_point"
	FavoredSkillRank = "skill_rank"
	FavoredRacial    = "racial"
)

// FavoredClassOption is one reward a character may take for each level in a
// favored class.
//
// Amount is the per-level value as written in the rules ("1/6" is kept as
// text since most racial options are fractional).
type FavoredClassOption struct {
	ID          string `yaml:"id"`
	Race        string `yaml:"race"`
	Class       string `yaml:"class"`
	Kind        string `yaml:"kind"`
	Amount      string `yaml:"amount"`
	Description string `yaml:"description"`
}

// StandardFavoredClassOptions returns the hit point and skill rank options
// available to any race for any class.
func StandardFavoredClassOptions(race, class string) []*FavoredClassOption {
	return []*FavoredClassOption{
		{ID: FavoredHitPoint, Race: race, Class: class, Kind: FavoredHitPoint, Amount: "1",
			Description: "Gain 1 additional hit point."},
		{ID: FavoredSkillRank, Race: race, Class: class, Kind: FavoredSkillRank, Amount: "1",
			Description: "Gain 1 additional skill rank."},
	}
}

func (f *FavoredClassOption) validate() error {
	switch {
	case f.ID == "":
		return errors.New("favored class option id must not be empty")
	case f.Race == "" || f.Class == "":
		return fmt.Errorf("favored class option %q: race and class must not be empty", f.ID)
	case f.Kind != FavoredRacial && f.Kind != FavoredHitPoint && f.Kind != FavoredSkillRank:
		return fmt.Errorf("favored class option %q: kind must be one of [hit_point, skill_rank, racial], got %q", f.ID, f.Kind)
	}
	return nil
}

// LoadFavoredClassOptions reads every *.favored_class.yaml file under dir.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed options (may be empty slice) or a non-nil error.
func LoadFavoredClassOptions(dir string) ([]*FavoredClassOption, error) {
	opts, err := loadKind[FavoredClassOption](dir, KindFavoredClass)
	if err != nil {
		return nil, err
	}
	for _, o := range opts {
		if err := o.validate(); err != nil {
			return nil, err
		}
	}
	return opts, nil
}
