package rules

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/charforge/internal/game/bonus"
	"github.com/cory-johannsen/charforge/internal/game/character"
)

// Effect is one modification a trait makes to a character.Builder. Typed
// bonuses, floating choices and notes carry the effect's source so the sheet
// can show where they came from; sizes, speeds, senses and the like do not.
// A Builder is always assembled from scratch, so nothing is ever removed.
type Effect interface {
	// Apply records the effect on b.
	Apply(b *character.Builder)
	// Describe returns a short human readable summary.
	Describe() string
	withSource(source string) Effect
}

// AbilityEffect adds a typed bonus to an ability score.
type AbilityEffect struct {
	Source  string
	Ability character.Ability
	Type    bonus.Type
	Value   int
}

func (e AbilityEffect) Apply(b *character.Builder) {
	b.Abilities.Add(e.Ability, bonus.Bonus{Type: e.Type, Value: e.Value, Source: e.Source})
}

func (e AbilityEffect) Describe() string {
	return fmt.Sprintf("%+d %s %s", e.Value, e.Type, e.Ability.Short())
}

func (e AbilityEffect) withSource(s string) Effect { e.Source = s; return e }

// SkillEffect adds a typed bonus to a skill, optionally only under Condition.
type SkillEffect struct {
	Source    string
	Skill     character.Skill
	Type      bonus.Type
	Value     int
	Condition string
}

func (e SkillEffect) Apply(b *character.Builder) {
	b.Skills.Add(e.Skill, bonus.Bonus{Type: e.Type, Value: e.Value, Source: e.Source, Condition: e.Condition})
}

func (e SkillEffect) Describe() string {
	return withCondition(fmt.Sprintf("%+d %s bonus on %s checks", e.Value, e.Type, e.Skill.Label()), e.Condition)
}

func (e SkillEffect) withSource(s string) Effect { e.Source = s; return e }

// SaveEffect adds a typed bonus to saving throws. An empty Saves applies to all three.
type SaveEffect struct {
	Source    string
	Saves     []character.Save
	Type      bonus.Type
	Value     int
	Condition string
}

func (e SaveEffect) targets() []character.Save {
	if len(e.Saves) == 0 {
		return character.Saves()
	}
	return e.Saves
}

func (e SaveEffect) Apply(b *character.Builder) {
	for _, s := range e.targets() {
		b.Saves.Add(s, bonus.Bonus{Type: e.Type, Value: e.Value, Source: e.Source, Condition: e.Condition})
	}
}

func (e SaveEffect) Describe() string {
	what := "all saving throws"
	if len(e.Saves) > 0 {
		names := make([]string, len(e.Saves))
		for i, s := range e.Saves {
			names[i] = string(s)
		}
		what = strings.Join(names, " and ") + " saves"
	}
	return withCondition(fmt.Sprintf("%+d %s bonus on %s", e.Value, e.Type, what), e.Condition)
}

func (e SaveEffect) withSource(s string) Effect {
	e.Source = s
	e.Saves = append([]character.Save(nil), e.Saves...)
	return e
}

// CasterEffect adds a racial bonus to a caster level check.
type CasterEffect struct {
	Source    string
	Check     character.CasterCheck
	Type      bonus.Type
	Value     int
	Condition string
}

func (e CasterEffect) Apply(b *character.Builder) {
	b.CasterLevel.Add(e.Check, bonus.Bonus{Type: e.Type, Value: e.Value, Source: e.Source, Condition: e.Condition})
}

func (e CasterEffect) Describe() string {
	return withCondition(fmt.Sprintf("%+d %s bonus on %s checks", e.Value, e.Type, strings.ReplaceAll(string(e.Check), "_", " ")), e.Condition)
}

func (e CasterEffect) withSource(s string) Effect { e.Source = s; return e }

// DefenseEffect adds a typed bonus to armor class or CMD.
type DefenseEffect struct {
	Source    string
	Defense   character.Defense
	Type      bonus.Type
	Value     int
	Condition string
}

func (e DefenseEffect) Apply(b *character.Builder) {
	b.ArmorClass.Add(e.Defense, bonus.Bonus{Type: e.Type, Value: e.Value, Source: e.Source, Condition: e.Condition})
}

func (e DefenseEffect) Describe() string {
	what := "AC"
	if e.Defense == character.CombatManeuverDefense {
		what = "CMD"
	}
	return withCondition(fmt.Sprintf("%+d %s bonus to %s", e.Value, e.Type, what), e.Condition)
}

func (e DefenseEffect) withSource(s string) Effect { e.Source = s; return e }

// AttackEffect adds a typed bonus to attack rolls. An empty Kinds applies to
// melee and ranged attacks.
type AttackEffect struct {
	Source    string
	Kinds     []character.AttackKind
	Type      bonus.Type
	Value     int
	Condition string
}

func (e AttackEffect) targets() []character.AttackKind {
	if len(e.Kinds) == 0 {
		return []character.AttackKind{character.MeleeAttack, character.RangedAttack}
	}
	return e.Kinds
}

func (e AttackEffect) Apply(b *character.Builder) {
	for _, k := range e.targets() {
		b.Attack.Add(k, bonus.Bonus{Type: e.Type, Value: e.Value, Source: e.Source, Condition: e.Condition})
	}
}

func (e AttackEffect) Describe() string {
	return withCondition(fmt.Sprintf("%+d %s bonus on attack rolls", e.Value, e.Type), e.Condition)
}

func (e AttackEffect) withSource(s string) Effect {
	e.Source = s
	e.Kinds = append([]character.AttackKind(nil), e.Kinds...)
	return e
}

// CheckEffect adds a typed bonus to a miscellaneous check such as initiative.
type CheckEffect struct {
	Source    string
	Check     character.Check
	Type      bonus.Type
	Value     int
	Condition string
}

func (e CheckEffect) Apply(b *character.Builder) {
	b.Checks.Add(e.Check, bonus.Bonus{Type: e.Type, Value: e.Value, Source: e.Source, Condition: e.Condition})
}

func (e CheckEffect) Describe() string {
	return withCondition(fmt.Sprintf("%+d %s bonus on %s", e.Value, e.Type, strings.ReplaceAll(string(e.Check), "_", " ")), e.Condition)
}

func (e CheckEffect) withSource(s string) Effect { e.Source = s; return e }

// SpellDCEffect raises the save DC of spells of a school or descriptor.
type SpellDCEffect struct {
	Source string
	School string
	Value  int
}

func (e SpellDCEffect) Apply(b *character.Builder) {
	b.SpellDC.Add(e.School, bonus.Bonus{Type: bonus.Racial, Value: e.Value, Source: e.Source})
}

func (e SpellDCEffect) Describe() string {
	return fmt.Sprintf("%+d to the DC of %s spells", e.Value, e.School)
}

func (e SpellDCEffect) withSource(s string) Effect { e.Source = s; return e }

// FloatingAbilityEffect grants an ability bonus the player assigns.
type FloatingAbilityEffect struct {
	Source  string
	Slot    int
	Type    bonus.Type
	Value   int
	Allowed []character.Ability
}

func (e FloatingAbilityEffect) Apply(b *character.Builder) {
	b.AddFloatingAbility(character.FloatingAbilityBonus{
		Source:  e.Source,
		Slot:    e.Slot,
		Type:    e.Type,
		Value:   e.Value,
		Allowed: append([]character.Ability(nil), e.Allowed...),
	})
}

func (e FloatingAbilityEffect) Describe() string {
	return fmt.Sprintf("%+d %s bonus to one ability score of choice", e.Value, e.Type)
}

func (e FloatingAbilityEffect) withSource(s string) Effect { e.Source = s; return e }

// FloatingFeatEffect grants a bonus feat slot.
type FloatingFeatEffect struct {
	Source      string
	Restriction string
}

func (e FloatingFeatEffect) Apply(b *character.Builder) {
	b.AddFloatingFeat(character.FloatingFeat{Source: e.Source, Restriction: e.Restriction})
}

func (e FloatingFeatEffect) Describe() string {
	if e.Restriction == "" {
		return "one bonus feat"
	}
	return "bonus feat: " + e.Restriction
}

func (e FloatingFeatEffect) withSource(s string) Effect { e.Source = s; return e }

// SenseEffect grants a special sense.
type SenseEffect struct {
	Source string
	Sense  character.Sense
	Feet   int
}

func (e SenseEffect) Apply(b *character.Builder) {
	b.AddSense(e.Sense, e.Feet)
}

func (e SenseEffect) Describe() string {
	name := strings.ReplaceAll(string(e.Sense), "_", " ")
	if e.Feet == 0 {
		return name
	}
	return fmt.Sprintf("%s %d ft.", name, e.Feet)
}

func (e SenseEffect) withSource(s string) Effect { e.Source = s; return e }

// SpeedEffect sets the base land speed.
type SpeedEffect struct {
	Source       string
	Feet         int
	NeverReduced bool
}

func (e SpeedEffect) Apply(b *character.Builder) {
	b.Speed = e.Feet
	b.SpeedNeverReduced = e.NeverReduced
}

func (e SpeedEffect) Describe() string {
	if e.NeverReduced {
		return fmt.Sprintf("base speed %d ft., never modified by armor or encumbrance", e.Feet)
	}
	return fmt.Sprintf("base speed %d ft.", e.Feet)
}

func (e SpeedEffect) withSource(s string) Effect { e.Source = s; return e }

// SizeEffect sets the size category.
type SizeEffect struct {
	Source string
	Size   character.Size
}

func (e SizeEffect) Apply(b *character.Builder) {
	b.Size = e.Size
}

func (e SizeEffect) Describe() string {
	return string(e.Size) + " size"
}

func (e SizeEffect) withSource(s string) Effect { e.Source = s; return e }

// LanguageEffect grants automatic languages and lists bonus language choices.
type LanguageEffect struct {
	Source    string
	Automatic []string
	Bonus     []string
}

func (e LanguageEffect) Apply(b *character.Builder) {
	for _, l := range e.Automatic {
		b.AddLanguage(l)
	}
	for _, l := range e.Bonus {
		b.AddBonusLanguage(l)
	}
}

func (e LanguageEffect) Describe() string {
	s := "speaks " + strings.Join(e.Automatic, ", ")
	if len(e.Bonus) > 0 {
		s += "; bonus languages: " + strings.Join(e.Bonus, ", ")
	}
	return s
}

func (e LanguageEffect) withSource(s string) Effect { e.Source = s; return e }

// ImmunityEffect grants immunity to an effect.
type ImmunityEffect struct {
	Source string
	What   string
}

func (e ImmunityEffect) Apply(b *character.Builder) {
	b.AddImmunity(e.What)
}

func (e ImmunityEffect) Describe() string {
	return "immune to " + e.What
}

func (e ImmunityEffect) withSource(s string) Effect { e.Source = s; return e }

// WeaponFamiliarityEffect grants proficiency with weapons or treats them as martial.
type WeaponFamiliarityEffect struct {
	Source  string
	Weapons []string
}

func (e WeaponFamiliarityEffect) Apply(b *character.Builder) {
	for _, w := range e.Weapons {
		b.AddWeaponFamiliarity(w)
	}
}

func (e WeaponFamiliarityEffect) Describe() string {
	return "weapon familiarity: " + strings.Join(e.Weapons, ", ")
}

func (e WeaponFamiliarityEffect) withSource(s string) Effect { e.Source = s; return e }

// ClassSkillEffect makes skills class skills.
type ClassSkillEffect struct {
	Source string
	Skills []character.Skill
}

func (e ClassSkillEffect) Apply(b *character.Builder) {
	for _, s := range e.Skills {
		b.AddClassSkill(s)
	}
}

func (e ClassSkillEffect) Describe() string {
	names := make([]string, len(e.Skills))
	for i, s := range e.Skills {
		names[i] = s.Label()
	}
	return "class skills: " + strings.Join(names, ", ")
}

func (e ClassSkillEffect) withSource(s string) Effect { e.Source = s; return e }

// SkillRanksEffect adds skill ranks gained at each level.
type SkillRanksEffect struct {
	Source   string
	PerLevel int
}

func (e SkillRanksEffect) Apply(b *character.Builder) {
	b.ExtraSkillRanks += e.PerLevel
}

func (e SkillRanksEffect) Describe() string {
	return fmt.Sprintf("%+d skill rank per level", e.PerLevel)
}

func (e SkillRanksEffect) withSource(s string) Effect { e.Source = s; return e }

// FavoredClassEffect sets how many favored classes the character may choose.
type FavoredClassEffect struct {
	Source string
	Slots  int
}

func (e FavoredClassEffect) Apply(b *character.Builder) {
	if e.Slots > b.FavoredClassSlots {
		b.FavoredClassSlots = e.Slots
	}
}

func (e FavoredClassEffect) Describe() string {
	return fmt.Sprintf("chooses %d favored classes", e.Slots)
}

func (e FavoredClassEffect) withSource(s string) Effect { e.Source = s; return e }

// NoteEffect records a rule the sheet cannot express numerically.
type NoteEffect struct {
	Source string
	Text   string
}

func (e NoteEffect) Apply(b *character.Builder) {
	b.AddNote(e.Source + ": " + e.Text)
}

func (e NoteEffect) Describe() string {
	return e.Text
}

func (e NoteEffect) withSource(s string) Effect { e.Source = s; return e }

func withCondition(s, condition string) string {
	if condition == "" {
		return s
	}
	return s + " " + condition
}
