package character

import (
	"fmt"
	"strings"
)

// Ability is one of the six ability scores.
type Ability string

// Ability scores.
const (
	Strength     Ability = "strength"
	Dexterity    Ability = "dexterity"
	Constitution Ability = "constitution"
	Intelligence Ability = "intelligence"
	Wisdom       Ability = "wisdom"
	Charisma     Ability = "charisma"
)

// Abilities returns the six abilities in sheet order.
func Abilities() []Ability {
	return []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}
}

// Short returns the three-letter label for a.
func (a Ability) Short() string {
	if len(a) < 3 {
		return strings.ToUpper(string(a))
	}
	return strings.ToUpper(string(a)[:3])
}

// ParseAbility resolves a full ability name or its three-letter abbreviation.
//
// Postcondition: Returns the Ability or a non-nil error.
func ParseAbility(s string) (Ability, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	for _, a := range Abilities() {
		if norm == string(a) || norm == strings.ToLower(a.Short()) {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown ability %q", s)
}

// AbilityScores holds the six ability score values for a character.
type AbilityScores struct {
	Strength     int `json:"strength"`
	Dexterity    int `json:"dexterity"`
	Constitution int `json:"constitution"`
	Intelligence int `json:"intelligence"`
	Wisdom       int `json:"wisdom"`
	Charisma     int `json:"charisma"`
}

// DefaultAbilityScores returns a score of 10 in every ability.
func DefaultAbilityScores() AbilityScores {
	return AbilityScores{10, 10, 10, 10, 10, 10}
}

// Get returns the score for a.
func (s AbilityScores) Get(a Ability) int {
	switch a {
	case Strength:
		return s.Strength
	case Dexterity:
		return s.Dexterity
	case Constitution:
		return s.Constitution
	case Intelligence:
		return s.Intelligence
	case Wisdom:
		return s.Wisdom
	case Charisma:
		return s.Charisma
	}
	return 0
}

// Set stores v as the score for a. Unknown abilities are ignored.
func (s *AbilityScores) Set(a Ability, v int) {
	switch a {
	case Strength:
		s.Strength = v
	case Dexterity:
		s.Dexterity = v
	case Constitution:
		s.Constitution = v
	case Intelligence:
		s.Intelligence = v
	case Wisdom:
		s.Wisdom = v
	case Charisma:
		s.Charisma = v
	}
}

// Slice returns the scores in Abilities() order.
func (s AbilityScores) Slice() []int {
	out := make([]int, 0, 6)
	for _, a := range Abilities() {
		out = append(out, s.Get(a))
	}
	return out
}

// Modifier returns the ability modifier for score: floor((score - 10) / 2).
//
// Precondition: score >= 0.
func Modifier(score int) int {
	return score/2 - 5
}

// Save is one of the three saving throws.
type Save string

// Saving throws.
const (
	Fortitude Save = "fortitude"
	Reflex    Save = "reflex"
	Will      Save = "will"
)

// Saves returns the saving throws in sheet order.
func Saves() []Save {
	return []Save{Fortitude, Reflex, Will}
}

// KeyAbility returns the ability that modifies s.
func (s Save) KeyAbility() Ability {
	switch s {
	case Fortitude:
		return Constitution
	case Reflex:
		return Dexterity
	default:
		return Wisdom
	}
}

// CasterCheck names a caster level check a bonus can apply to.
type CasterCheck string

// Caster level checks.
const (
	CasterLevel         CasterCheck = "caster_level"
	OvercomeSpellResist CasterCheck = "overcome_spell_resistance"
	Concentration       CasterCheck = "concentration"
	DispelCheck         CasterCheck = "dispel"
)

// Defense names a defensive statistic.
type Defense string

// Defensive statistics.
const (
	ArmorClass            Defense = "armor_class"
	CombatManeuverDefense Defense = "cmd"
)

// AttackKind names the attack rolls a bonus can apply to.
type AttackKind string

// Attack roll kinds.
const (
	MeleeAttack  AttackKind = "melee"
	RangedAttack AttackKind = "ranged"
	Maneuver     AttackKind = "cmb"
)

// Check names a miscellaneous check outside skills and saves.
type Check string

// Miscellaneous checks.
const (
	Initiative        Check = "initiative"
	ConstitutionCheck Check = "constitution_check"
	StabilizeCheck    Check = "stabilize"
)

// Size is a creature size category.
type Size string

// Sizes used by the playable races.
const (
	Small  Size = "small"
	Medium Size = "medium"
)

// Modifier returns the size modifier to attack rolls and armor class.
func (s Size) Modifier() int {
	if s == Small {
		return 1
	}
	return 0
}

// SpecialModifier returns the size modifier to CMB and CMD.
func (s Size) SpecialModifier() int {
	if s == Small {
		return -1
	}
	return 0
}
