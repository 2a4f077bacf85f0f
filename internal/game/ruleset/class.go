package ruleset

import (
	"errors"
	"fmt"
	"sort"
)

// Base attack bonus progressions.
const (
	BABFull         = "full"
	BABThreeQuarter = "three_quarter"
	BABHalf         = "half"
)

// ClassFeature describes a single class feature gained at a specific level.
type ClassFeature struct {
	Name        string `yaml:"name"`
	Level       int    `yaml:"level"`
	Description string `yaml:"description"`
}

// Class defines a playable class for character creation.
//
// Precondition: ID and Name must be non-empty; HitDie must be one of 6, 8, 10, 12;
// BAB must be one of full, three_quarter, half.
type Class struct {
	ID           string         `yaml:"id"`
	Name         string         `yaml:"name"`
	Summary      string         `yaml:"summary"`
	Description  string         `yaml:"description"`
	Role         string         `yaml:"role"`
	Alignment    string         `yaml:"alignment"`
	HitDie       int            `yaml:"hit_die"`
	SkillRanks   int            `yaml:"skill_ranks"`
	BAB          string         `yaml:"bab"`
	GoodSaves    []string       `yaml:"good_saves"`
	ClassSkills  []string       `yaml:"class_skills"`
	Spellcasting string         `yaml:"spellcasting"`
	StartingGold string         `yaml:"starting_gold"`
	Features     []ClassFeature `yaml:"features"`
}

// BaseAttack returns the base attack bonus at level for the class progression.
//
// Precondition: level >= 1.
func (c *Class) BaseAttack(level int) int {
	switch c.BAB {
	case BABFull:
		return level
	case BABThreeQuarter:
		return level * 3 / 4
	default:
		return level / 2
	}
}

// BaseSave returns the base save bonus at level for save, which is good when
// listed in GoodSaves.
//
// Precondition: level >= 1.
func (c *Class) BaseSave(save string, level int) int {
	for _, s := range c.GoodSaves {
		if s == save {
			return 2 + level/2
		}
	}
	return level / 3
}

// IsClassSkill reports whether skill is on the class skill list.
func (c *Class) IsClassSkill(skill string) bool {
	for _, s := range c.ClassSkills {
		if s == skill {
			return true
		}
	}
	return false
}

// FeaturesAt returns the features gained at exactly level, in file order.
func (c *Class) FeaturesAt(level int) []ClassFeature {
	var out []ClassFeature
	for _, f := range c.Features {
		if f.Level == level {
			out = append(out, f)
		}
	}
	return out
}

// SortedFeatures returns all features ordered by level, stable within a level.
func (c *Class) SortedFeatures() []ClassFeature {
	out := make([]ClassFeature, len(c.Features))
	copy(out, c.Features)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

func (c *Class) validate() error {
	if c.ID == "" {
		return errors.New("class id must not be empty")
	}
	if c.Name == "" {
		return fmt.Errorf("class %q: name must not be empty", c.ID)
	}
	switch c.HitDie {
	case 6, 8, 10, 12:
	default:
		return fmt.Errorf("class %q: hit_die must be one of 6, 8, 10, 12, got %d", c.ID, c.HitDie)
	}
	switch c.BAB {
	case BABFull, BABThreeQuarter, BABHalf:
	default:
		return fmt.Errorf("class %q: bab must be one of [full, three_quarter, half], got %q", c.ID, c.BAB)
	}
	if c.SkillRanks < 2 {
		return fmt.Errorf("class %q: skill_ranks must be >= 2, got %d", c.ID, c.SkillRanks)
	}
	return nil
}

// LoadClasses reads every *.class.yaml file under dir.
//
// Precondition: dir must be a readable directory path.
// Postcondition: Returns all parsed classes (may be empty slice) or a non-nil error.
func LoadClasses(dir string) ([]*Class, error) {
	classes, err := loadKind[Class](dir, KindClass)
	if err != nil {
		return nil, err
	}
	for _, c := range classes {
		if err := c.validate(); err != nil {
			return nil, err
		}
	}
	return classes, nil
}
