// Package rules converts race, trait, class and archetype selections into the
// modifiers accumulated on a character.Builder.
package rules

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/charforge/internal/game/ruleset"
)

// normalize folds display names and ids to a comparable form:
// "Half-Elf", "half elf" and "half_elf" all become "half_elf".
func normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer(" ", "_", "-", "_", "'", "").Replace(s)
}

// PlayableRace names a core race. Values equal the race content ids.
type PlayableRace string

// Core races.
const (
	Dwarf    PlayableRace = "dwarf"
	Elf      PlayableRace = "elf"
	Gnome    PlayableRace = "gnome"
	HalfElf  PlayableRace = "half_elf"
	HalfOrc  PlayableRace = "half_orc"
	Halfling PlayableRace = "halfling"
	Human    PlayableRace = "human"
)

var raceNames = map[PlayableRace]string{
	Dwarf:    "Dwarf",
	Elf:      "Elf",
	Gnome:    "Gnome",
	HalfElf:  "Half-Elf",
	HalfOrc:  "Half-Orc",
	Halfling: "Halfling",
	Human:    "Human",
}

// AllRaces returns the core races in menu order.
func AllRaces() []PlayableRace {
	return []PlayableRace{Dwarf, Elf, Gnome, HalfElf, HalfOrc, Halfling, Human}
}

// String returns the display name of r.
func (r PlayableRace) String() string {
	if n, ok := raceNames[r]; ok {
		return n
	}
	return string(r)
}

// ParsePlayableRace resolves a race id or display name.
//
// Postcondition: Returns the race or an error wrapping ruleset.ErrNotFound.
func ParsePlayableRace(s string) (PlayableRace, error) {
	norm := normalize(s)
	for _, r := range AllRaces() {
		if norm == string(r) {
			return r, nil
		}
	}
	return "", fmt.Errorf("race %q: %w", s, ruleset.ErrNotFound)
}

// PlayableClass names a core class. Values equal the class content ids.
type PlayableClass string

// Core classes.
const (
	Barbarian PlayableClass = "barbarian"
	Bard      PlayableClass = "bard"
	Cleric    PlayableClass = "cleric"
	Druid     PlayableClass = "druid"
	Fighter   PlayableClass = "fighter"
	Monk      PlayableClass = "monk"
	Paladin   PlayableClass = "paladin"
	Ranger    PlayableClass = "ranger"
	Rogue     PlayableClass = "rogue"
	Sorcerer  PlayableClass = "sorcerer"
	Wizard    PlayableClass = "wizard"
)

// AllClasses returns the core classes in menu order.
func AllClasses() []PlayableClass {
	return []PlayableClass{Barbarian, Bard, Cleric, Druid, Fighter, Monk, Paladin, Ranger, Rogue, Sorcerer, Wizard}
}

// String returns the display name of c.
func (c PlayableClass) String() string {
	if c == "" {
		return ""
	}
	return strings.ToUpper(string(c[:1])) + string(c[1:])
}

// ParsePlayableClass resolves a class id or display name.
//
// Postcondition: Returns the class or an error wrapping ruleset.ErrNotFound.
func ParsePlayableClass(s string) (PlayableClass, error) {
	norm := normalize(s)
	for _, c := range AllClasses() {
		if norm == string(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("class %q: %w", s, ruleset.ErrNotFound)
}

// ArchetypeName names a supported archetype. Values equal the archetype content ids.
type ArchetypeName string

// Archetypes.
const (
	InvulnerableRager ArchetypeName = "invulnerable_rager"
	UrbanBarbarian    ArchetypeName = "urban_barbarian"
	Archaeologist     ArchetypeName = "archaeologist"
	Crusader          ArchetypeName = "crusader"
	AquaticDruid      ArchetypeName = "aquatic_druid"
	Archer            ArchetypeName = "archer"
	TwoHandedFighter  ArchetypeName = "two_handed_fighter"
	ZenArcher         ArchetypeName = "zen_archer"
	DivineHunter      ArchetypeName = "divine_hunter"
	Guide             ArchetypeName = "guide"
	KnifeMaster       ArchetypeName = "knife_master"
	Scout             ArchetypeName = "scout"
	Crossblooded      ArchetypeName = "crossblooded"
	ExploiterWizard   ArchetypeName = "exploiter_wizard"
	ScrollScholar     ArchetypeName = "scroll_scholar"
)

var archetypeClass = map[ArchetypeName]PlayableClass{
	InvulnerableRager: Barbarian,
	UrbanBarbarian:    Barbarian,
	Archaeologist:     Bard,
	Crusader:          Cleric,
	AquaticDruid:      Druid,
	Archer:            Fighter,
	TwoHandedFighter:  Fighter,
	ZenArcher:         Monk,
	DivineHunter:      Paladin,
	Guide:             Ranger,
	KnifeMaster:       Rogue,
	Scout:             Rogue,
	Crossblooded:      Sorcerer,
	ExploiterWizard:   Wizard,
	ScrollScholar:     Wizard,
}

// AllArchetypes returns every archetype sorted by id.
func AllArchetypes() []ArchetypeName {
	return []ArchetypeName{
		AquaticDruid, Archaeologist, Archer, Crossblooded, Crusader, DivineHunter,
		ExploiterWizard, Guide, InvulnerableRager, KnifeMaster, Scout, ScrollScholar,
		TwoHandedFighter, UrbanBarbarian, ZenArcher,
	}
}

// Class returns the class the archetype modifies.
func (a ArchetypeName) Class() PlayableClass {
	return archetypeClass[a]
}

// String returns the archetype id.
func (a ArchetypeName) String() string {
	return string(a)
}

// ParseArchetypeName resolves an archetype id or display name.
//
// Postcondition: Returns the archetype or an error wrapping ruleset.ErrNotFound.
func ParseArchetypeName(s string) (ArchetypeName, error) {
	norm := normalize(s)
	for _, a := range AllArchetypes() {
		if norm == string(a) {
			return a, nil
		}
	}
	return "", fmt.Errorf("archetype %q: %w", s, ruleset.ErrNotFound)
}

// RacialTraitName identifies a standard or alternate racial trait. Values
// equal the trait content ids.
type RacialTraitName string

// Traits shared by several races.
const (
	MediumSize        RacialTraitName = "MediumSize"
	SmallSize         RacialTraitName = "SmallSize"
	NormalSpeed       RacialTraitName = "NormalSpeed"
	SlowSpeed         RacialTraitName = "SlowSpeed"
	Darkvision        RacialTraitName = "Darkvision"
	LowLightVision    RacialTraitName = "LowLightVision"
	DefensiveTraining RacialTraitName = "DefensiveTraining"
	KeenSenses        RacialTraitName = "KeenSenses"
	ElvenImmunities   RacialTraitName = "ElvenImmunities"
)

// Dwarf traits.
const (
	DwarfAbilityModifiers    RacialTraitName = "DwarfAbilityModifiers"
	SlowAndSteady            RacialTraitName = "SlowAndSteady"
	Greed                    RacialTraitName = "Greed"
	DwarvenHatred            RacialTraitName = "DwarvenHatred"
	Hardy                    RacialTraitName = "Hardy"
	Stability                RacialTraitName = "Stability"
	Stonecunning             RacialTraitName = "Stonecunning"
	DwarvenWeaponFamiliarity RacialTraitName = "DwarvenWeaponFamiliarity"
	DwarfLanguages           RacialTraitName = "DwarfLanguages"
	AncientEnmity            RacialTraitName = "AncientEnmity"
	Craftsman                RacialTraitName = "Craftsman"
	DeepWarrior              RacialTraitName = "DeepWarrior"
	Lorekeeper               RacialTraitName = "Lorekeeper"
	MagicResistant           RacialTraitName = "MagicResistant"
)

// Elf traits.
const (
	ElfAbilityModifiers    RacialTraitName = "ElfAbilityModifiers"
	ElvenMagic             RacialTraitName = "ElvenMagic"
	ElvenWeaponFamiliarity RacialTraitName = "ElvenWeaponFamiliarity"
	ElfLanguages           RacialTraitName = "ElfLanguages"
	ArcaneFocus            RacialTraitName = "ArcaneFocus"
	DesertRunner           RacialTraitName = "DesertRunner"
	Dreamspeaker           RacialTraitName = "Dreamspeaker"
	WarriorOfOld           RacialTraitName = "WarriorOfOld"
)

// Gnome traits.
const (
	GnomeAbilityModifiers    RacialTraitName = "GnomeAbilityModifiers"
	GnomeMagic               RacialTraitName = "GnomeMagic"
	GnomishHatred            RacialTraitName = "GnomishHatred"
	IllusionResistance       RacialTraitName = "IllusionResistance"
	Obsessive                RacialTraitName = "Obsessive"
	GnomishWeaponFamiliarity RacialTraitName = "GnomishWeaponFamiliarity"
	GnomeLanguages           RacialTraitName = "GnomeLanguages"
	Academician              RacialTraitName = "Academician"
	Pyromaniac               RacialTraitName = "Pyromaniac"
	WardenOfNature           RacialTraitName = "WardenOfNature"
)

// Half-elf traits.
const (
	HalfElfAbilityModifiers RacialTraitName = "HalfElfAbilityModifiers"
	Adaptability            RacialTraitName = "Adaptability"
	ElfBlood                RacialTraitName = "ElfBlood"
	Multitalented           RacialTraitName = "Multitalented"
	HalfElfLanguages        RacialTraitName = "HalfElfLanguages"
	AncestralArms           RacialTraitName = "AncestralArms"
	DualMinded              RacialTraitName = "DualMinded"
	ArcaneTraining          RacialTraitName = "ArcaneTraining"
)

// Half-orc traits.
const (
	HalfOrcAbilityModifiers RacialTraitName = "HalfOrcAbilityModifiers"
	Intimidating            RacialTraitName = "Intimidating"
	OrcBlood                RacialTraitName = "OrcBlood"
	OrcFerocity             RacialTraitName = "OrcFerocity"
	OrcWeaponFamiliarity    RacialTraitName = "OrcWeaponFamiliarity"
	HalfOrcLanguages        RacialTraitName = "HalfOrcLanguages"
	SacredTattoo            RacialTraitName = "SacredTattoo"
	Toothy                  RacialTraitName = "Toothy"
	CityRaised              RacialTraitName = "CityRaised"
)

// Halfling traits.
const (
	HalflingAbilityModifiers  RacialTraitName = "HalflingAbilityModifiers"
	Fearless                  RacialTraitName = "Fearless"
	HalflingLuck              RacialTraitName = "HalflingLuck"
	SureFooted                RacialTraitName = "SureFooted"
	HalflingWeaponFamiliarity RacialTraitName = "HalflingWeaponFamiliarity"
	HalflingLanguages         RacialTraitName = "HalflingLanguages"
	Craven                    RacialTraitName = "Craven"
	Practicality              RacialTraitName = "Practicality"
	WarySenses                RacialTraitName = "WarySenses"
)

// Human traits.
const (
	HumanAbilityModifiers  RacialTraitName = "HumanAbilityModifiers"
	BonusFeat              RacialTraitName = "BonusFeat"
	Skilled                RacialTraitName = "Skilled"
	HumanLanguages         RacialTraitName = "HumanLanguages"
	DualTalent             RacialTraitName = "DualTalent"
	FocusedStudy           RacialTraitName = "FocusedStudy"
	ComprehensiveEducation RacialTraitName = "ComprehensiveEducation"
)

// String returns the trait id.
func (t RacialTraitName) String() string {
	return string(t)
}

// Known reports whether t has a built-in effect.
func (t RacialTraitName) Known() bool {
	_, ok := traitEffects[t]
	return ok
}

// AllTraits returns every trait with a built-in effect, sorted.
func AllTraits() []RacialTraitName {
	out := make([]RacialTraitName, 0, len(traitEffects))
	for t := range traitEffects {
		out = append(out, t)
	}
	sortTraits(out)
	return out
}

// ParseRacialTraitName resolves a trait id case-insensitively, ignoring
// spaces, hyphens and underscores: "keen senses" parses as KeenSenses.
//
// Postcondition: Returns the trait or an error wrapping ErrUnknownTrait.
func ParseRacialTraitName(s string) (RacialTraitName, error) {
	fold := func(v string) string {
		return strings.ToLower(strings.NewReplacer(" ", "", "-", "", "_", "", "'", "").Replace(strings.TrimSpace(v)))
	}
	want := fold(s)
	for _, t := range AllTraits() {
		if fold(string(t)) == want {
			return t, nil
		}
	}
	return "", fmt.Errorf("trait %q: %w", s, ErrUnknownTrait)
}
