package character

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/charforge/internal/game/bonus"
)

// ErrIncomplete is returned when a sheet is derived before a race and class
// have been applied.
var ErrIncomplete = errors.New("character incomplete")

// Sense names a special sense granted by a trait.
type Sense string

// Senses.
const (
	Darkvision     Sense = "darkvision"
	LowLightVision Sense = "low_light_vision"
	Scent          Sense = "scent"
)

// FloatingAbilityBonus is an ability score bonus whose target the player picks.
//
// Slot distinguishes several floating bonuses granted by one source. Allowed
// restricts the choice; an empty Allowed means any ability. Choice is empty
// until the player assigns the bonus.
type FloatingAbilityBonus struct {
	Source  string     `json:"source"`
	Slot    int        `json:"slot,omitempty"`
	Type    bonus.Type `json:"type"`
	Value   int        `json:"value"`
	Allowed []Ability  `json:"allowed,omitempty"`
	Choice  Ability    `json:"choice,omitempty"`
}

// Key identifies the bonus among those on a Builder: the source, suffixed
// with "#n" for every slot after the first.
func (f FloatingAbilityBonus) Key() string {
	if f.Slot == 0 {
		return f.Source
	}
	return fmt.Sprintf("%s#%d", f.Source, f.Slot+1)
}

// Chosen reports whether the player has assigned the bonus.
func (f FloatingAbilityBonus) Chosen() bool {
	return f.Choice != ""
}

// Permits reports whether a is a legal target for the bonus.
func (f FloatingAbilityBonus) Permits(a Ability) bool {
	if len(f.Allowed) == 0 {
		return true
	}
	for _, x := range f.Allowed {
		if x == a {
			return true
		}
	}
	return false
}

// FloatingFeat is a bonus feat slot the player fills with a feat of their choice.
type FloatingFeat struct {
	Source      string `json:"source"`
	Restriction string `json:"restriction,omitempty"`
	Choice      string `json:"choice,omitempty"`
}

// ClassInfo is the level-1 snapshot of the applied class.
type ClassInfo struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	HitDie      int          `json:"hit_die"`
	BaseAttack  int          `json:"base_attack"`
	BaseSaves   map[Save]int `json:"base_saves"`
	SkillRanks  int          `json:"skill_ranks"`
	ClassSkills []Skill      `json:"class_skills"`
	Features    []string     `json:"features"`

	// FavoredKind is the favored class reward taken at level 1.
	FavoredKind        string `json:"favored_kind,omitempty"`
	FavoredDescription string `json:"favored_description,omitempty"`
}

// Builder is the character under construction. It accumulates every modifier
// granted by the selected race, traits, class and archetypes.
//
// A Builder is not safe for concurrent use; each session owns its own.
type Builder struct {
	Name          string
	Race          string
	AltTraits     []string
	Class         string
	Archetypes    []string
	Level         int
	BaseAbilities AbilityScores

	Skills      *bonus.Map[Skill]
	Abilities   *bonus.Map[Ability]
	Saves       *bonus.Map[Save]
	CasterLevel *bonus.Map[CasterCheck]
	ArmorClass  *bonus.Map[Defense]
	Attack      *bonus.Map[AttackKind]
	Checks      *bonus.Map[Check]
	SpellDC     *bonus.Map[string]

	FloatingAbility []FloatingAbilityBonus
	FloatingFeats   []FloatingFeat

	Size              Size
	Speed             int
	SpeedNeverReduced bool
	Languages         []string
	BonusLanguages    []string
	Senses            map[Sense]int
	Immunities        []string
	WeaponFamiliarity []string
	ExtraClassSkills  []Skill
	Notes             []string

	// ExtraSkillRanks is added to the skill ranks gained each level.
	ExtraSkillRanks int

	// FavoredClassSlots is how many favored classes the character may name.
	FavoredClassSlots int

	ClassInfo *ClassInfo
}

// New returns an empty level-1 Builder with every ability at 10, Medium size
// and a 30 ft. speed.
func New() *Builder {
	return &Builder{
		Level:             1,
		BaseAbilities:     DefaultAbilityScores(),
		Skills:            bonus.NewMap[Skill](),
		Abilities:         bonus.NewMap[Ability](),
		Saves:             bonus.NewMap[Save](),
		CasterLevel:       bonus.NewMap[CasterCheck](),
		ArmorClass:        bonus.NewMap[Defense](),
		Attack:            bonus.NewMap[AttackKind](),
		Checks:            bonus.NewMap[Check](),
		SpellDC:           bonus.NewMap[string](),
		Size:              Medium,
		Speed:             30,
		Senses:            make(map[Sense]int),
		FavoredClassSlots: 1,
	}
}

// Reset discards everything accumulated on b except its name.
//
// Postcondition: b is equivalent to New() with Name preserved.
func (b *Builder) Reset() {
	name := b.Name
	*b = *New()
	b.Name = name
}

// AddFloatingAbility records a floating ability bonus. A second grant with the
// same key replaces the first and keeps its choice when still permitted.
func (b *Builder) AddFloatingAbility(f FloatingAbilityBonus) {
	for i, cur := range b.FloatingAbility {
		if cur.Key() == f.Key() {
			if f.Choice == "" && f.Permits(cur.Choice) {
				f.Choice = cur.Choice
			}
			b.FloatingAbility[i] = f
			return
		}
	}
	b.FloatingAbility = append(b.FloatingAbility, f)
}

// ChooseFloatingAbility assigns the floating bonus identified by key to a.
// Bonuses sharing a source must target different abilities.
//
// Postcondition: Returns an error if no bonus has key, a is not permitted, or
// another bonus from the same source already targets a.
func (b *Builder) ChooseFloatingAbility(key string, a Ability) error {
	idx := -1
	for i, f := range b.FloatingAbility {
		if f.Key() == key {
			idx = i
			break
		}
	}
	if idx < 0 {
		return fmt.Errorf("no floating ability bonus %s", key)
	}
	f := b.FloatingAbility[idx]
	if !f.Permits(a) {
		return fmt.Errorf("floating bonus %s cannot be assigned to %s", key, a)
	}
	for i, other := range b.FloatingAbility {
		if i != idx && other.Source == f.Source && other.Choice == a {
			return fmt.Errorf("floating bonuses from %s must target different abilities", f.Source)
		}
	}
	b.FloatingAbility[idx].Choice = a
	return nil
}

// PendingFloatingAbility returns the floating bonuses not yet assigned.
func (b *Builder) PendingFloatingAbility() []FloatingAbilityBonus {
	var out []FloatingAbilityBonus
	for _, f := range b.FloatingAbility {
		if !f.Chosen() {
			out = append(out, f)
		}
	}
	return out
}

// AddFloatingFeat records a bonus feat slot. A second grant from the same
// source and restriction is ignored.
func (b *Builder) AddFloatingFeat(f FloatingFeat) {
	for _, cur := range b.FloatingFeats {
		if cur.Source == f.Source && cur.Restriction == f.Restriction {
			return
		}
	}
	b.FloatingFeats = append(b.FloatingFeats, f)
}

// ChooseFloatingFeat fills the first open feat slot granted by source.
//
// Postcondition: Returns an error if source has no open slot.
func (b *Builder) ChooseFloatingFeat(source, feat string) error {
	for i, f := range b.FloatingFeats {
		if f.Source == source && f.Choice == "" {
			b.FloatingFeats[i].Choice = feat
			return nil
		}
	}
	return fmt.Errorf("no open bonus feat slot from %s", source)
}

// AddLanguage adds an automatic language.
func (b *Builder) AddLanguage(lang string) {
	b.Languages = appendUnique(b.Languages, lang)
}

// AddBonusLanguage adds a language available to characters with high Intelligence.
func (b *Builder) AddBonusLanguage(lang string) {
	b.BonusLanguages = appendUnique(b.BonusLanguages, lang)
}

// AddSense grants sense with the given range in feet; the longest range wins.
func (b *Builder) AddSense(s Sense, feet int) {
	if cur, ok := b.Senses[s]; !ok || feet > cur {
		b.Senses[s] = feet
	}
}

// AddImmunity records an immunity such as "sleep".
func (b *Builder) AddImmunity(what string) {
	b.Immunities = appendUnique(b.Immunities, what)
}

// AddWeaponFamiliarity records a weapon treated as martial, or proficiency with it.
func (b *Builder) AddWeaponFamiliarity(weapon string) {
	b.WeaponFamiliarity = appendUnique(b.WeaponFamiliarity, weapon)
}

// AddClassSkill makes s a class skill regardless of class.
func (b *Builder) AddClassSkill(s Skill) {
	for _, x := range b.ExtraClassSkills {
		if x == s {
			return
		}
	}
	b.ExtraClassSkills = append(b.ExtraClassSkills, s)
}

// AddNote records a rule the sheet cannot express numerically.
func (b *Builder) AddNote(note string) {
	b.Notes = appendUnique(b.Notes, note)
}

// IsClassSkill reports whether s is a class skill from the class or any trait.
func (b *Builder) IsClassSkill(s Skill) bool {
	for _, x := range b.ExtraClassSkills {
		if x == s {
			return true
		}
	}
	if b.ClassInfo == nil {
		return false
	}
	for _, x := range b.ClassInfo.ClassSkills {
		if x == s {
			return true
		}
	}
	return false
}

// SetClass applies the class snapshot. Passing nil clears the class.
func (b *Builder) SetClass(info *ClassInfo) {
	b.ClassInfo = info
	if info == nil {
		b.Class = ""
		return
	}
	b.Class = info.ID
}

func appendUnique(list []string, v string) []string {
	for _, x := range list {
		if x == v {
			return list
		}
	}
	return append(list, v)
}
