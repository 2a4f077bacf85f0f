package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/charforge/internal/game/bonus"
	"github.com/cory-johannsen/charforge/internal/game/character"
)

// ErrUnknownTrait is returned for a trait with no built-in effect. Callers
// building a character skip such traits.
var ErrUnknownTrait = errors.New("trait not recognized")

func ability(a character.Ability, v int) Effect {
	return AbilityEffect{Ability: a, Type: bonus.Racial, Value: v}
}

func skill(s character.Skill, v int, condition string) Effect {
	return SkillEffect{Skill: s, Type: bonus.Racial, Value: v, Condition: condition}
}

func saves(v int, condition string, which ...character.Save) Effect {
	return SaveEffect{Saves: which, Type: bonus.Racial, Value: v, Condition: condition}
}

func attack(v int, condition string) Effect {
	return AttackEffect{Type: bonus.Racial, Value: v, Condition: condition}
}

func dodge(v int, condition string) Effect {
	return DefenseEffect{Defense: character.ArmorClass, Type: bonus.Dodge, Value: v, Condition: condition}
}

func floating() Effect {
	return FloatingAbilityEffect{Type: bonus.Racial, Value: 2}
}

func note(text string) Effect {
	return NoteEffect{Text: text}
}

func languages(automatic []string, bonusLangs ...string) Effect {
	return LanguageEffect{Automatic: automatic, Bonus: bonusLangs}
}

// traitEffects maps every built-in trait to its effects, without source.
var traitEffects = map[RacialTraitName][]Effect{
	MediumSize:     {SizeEffect{Size: character.Medium}},
	SmallSize: {
		SizeEffect{Size: character.Small},
		SkillEffect{Skill: character.Stealth, Type: bonus.Size, Value: 4},
	},
	NormalSpeed:    {SpeedEffect{Feet: 30}},
	SlowSpeed:      {SpeedEffect{Feet: 20}},
	Darkvision:     {SenseEffect{Sense: character.Darkvision, Feet: 60}},
	LowLightVision: {SenseEffect{Sense: character.LowLightVision}},
	DefensiveTraining: {
		dodge(4, "vs giants"),
	},
	KeenSenses: {skill(character.Perception, 2, "")},
	ElvenImmunities: {
		ImmunityEffect{What: "magic sleep effects"},
		saves(2, "vs enchantment spells and effects"),
	},

	DwarfAbilityModifiers: {
		ability(character.Constitution, 2),
		ability(character.Wisdom, 2),
		ability(character.Charisma, -2),
	},
	SlowAndSteady: {SpeedEffect{Feet: 20, NeverReduced: true}},
	Greed:         {skill(character.Appraise, 2, "on nonmagical goods containing precious metals or gemstones")},
	DwarvenHatred: {attack(1, "vs orcs and goblinoids")},
	Hardy: {
		saves(2, "vs poison"),
		saves(2, "vs spells and spell-like abilities"),
	},
	Stability: {
		DefenseEffect{Defense: character.CombatManeuverDefense, Type: bonus.Racial, Value: 4, Condition: "vs bull rush or trip while standing"},
	},
	Stonecunning: {
		skill(character.Perception, 2, "to notice unusual stonework"),
		note("automatically checks for unusual stonework within 10 feet"),
	},
	DwarvenWeaponFamiliarity: {
		WeaponFamiliarityEffect{Weapons: []string{"battleaxe", "heavy pick", "warhammer", "dwarven weapons (martial)"}},
	},
	DwarfLanguages: {
		languages([]string{"Common", "Dwarven"}, "Giant", "Gnome", "Goblin", "Orc", "Terran", "Undercommon"),
	},
	AncientEnmity: {attack(1, "vs elves")},
	Craftsman: {
		skill(character.Craft, 2, "to create objects of metal or stone"),
		skill(character.Profession, 2, "related to metal or stone"),
	},
	DeepWarrior: {
		dodge(2, "vs aberrations"),
		AttackEffect{Kinds: []character.AttackKind{character.Maneuver}, Type: bonus.Racial, Value: 2, Condition: "to grapple aberrations"},
	},
	Lorekeeper: {
		skill(character.KnowledgeHistory, 2, "relating to dwarves or their enemies"),
		note("may make Knowledge (history) checks about dwarves untrained"),
	},
	MagicResistant: {
		note("spell resistance equal to 5 + character level"),
		CasterEffect{Check: character.Concentration, Type: bonus.Racial, Value: -2, Condition: "with arcane spells"},
	},

	ElfAbilityModifiers: {
		ability(character.Dexterity, 2),
		ability(character.Intelligence, 2),
		ability(character.Constitution, -2),
	},
	ElvenMagic: {
		CasterEffect{Check: character.OvercomeSpellResist, Type: bonus.Racial, Value: 2},
		skill(character.Spellcraft, 2, "to identify the properties of magic items"),
	},
	ElvenWeaponFamiliarity: {
		WeaponFamiliarityEffect{Weapons: []string{"longbow", "longsword", "rapier", "shortbow", "elven weapons (martial)"}},
	},
	ElfLanguages: {
		languages([]string{"Common", "Elven"}, "Celestial", "Draconic", "Gnoll", "Gnome", "Goblin", "Orc", "Sylvan"),
	},
	ArcaneFocus: {
		CasterEffect{Check: character.Concentration, Type: bonus.Racial, Value: 2, Condition: "to cast arcane spells defensively"},
	},
	DesertRunner: {
		CheckEffect{Check: character.ConstitutionCheck, Type: bonus.Racial, Value: 4, Condition: "vs fatigue and exhaustion"},
		saves(4, "vs fatigue and exhaustion", character.Fortitude),
	},
	Dreamspeaker: {
		SpellDCEffect{School: "divination", Value: 1},
		SpellDCEffect{School: "sleep", Value: 1},
	},
	WarriorOfOld: {
		CheckEffect{Check: character.Initiative, Type: bonus.Racial, Value: 2},
	},

	GnomeAbilityModifiers: {
		ability(character.Constitution, 2),
		ability(character.Charisma, 2),
		ability(character.Strength, -2),
	},
	GnomeMagic: {
		SpellDCEffect{School: "illusion", Value: 1},
		note("with Charisma 11 or higher: dancing lights, ghost sound, prestidigitation and speak with animals once per day each"),
	},
	GnomishHatred:      {attack(1, "vs reptilian humanoids and goblinoids")},
	IllusionResistance: {saves(2, "vs illusion spells and effects")},
	Obsessive:          {skill(character.Craft, 2, "on one chosen Craft or Profession")},
	GnomishWeaponFamiliarity: {
		WeaponFamiliarityEffect{Weapons: []string{"gnome weapons (martial)"}},
	},
	GnomeLanguages: {
		languages([]string{"Common", "Gnome", "Sylvan"}, "Draconic", "Dwarven", "Elven", "Giant", "Goblin", "Orc"),
	},
	Academician: {skill(character.KnowledgeArcana, 2, "or another chosen Knowledge skill")},
	Pyromaniac: {
		CasterEffect{Check: character.CasterLevel, Type: bonus.Racial, Value: 1, Condition: "with fire spells"},
		note("with Charisma 11 or higher: dancing lights, flare, prestidigitation and produce flame once per day each"),
	},
	WardenOfNature: {
		dodge(2, "vs aberrations, oozes and vermin"),
		attack(1, "vs aberrations, oozes and vermin"),
	},

	HalfElfAbilityModifiers: {floating()},
	Adaptability:            {FloatingFeatEffect{Restriction: "Skill Focus"}},
	ElfBlood:                {note("counts as both an elf and a human for any effect related to race")},
	Multitalented:           {FavoredClassEffect{Slots: 2}},
	HalfElfLanguages: {
		languages([]string{"Common", "Elven"}, "any except secret languages"),
	},
	AncestralArms: {FloatingFeatEffect{Restriction: "Exotic Weapon Proficiency or Martial Weapon Proficiency"}},
	DualMinded:    {saves(2, "", character.Will)},
	ArcaneTraining: {
		note("uses spell trigger and spell completion items as if one level higher in the favored class"),
	},

	HalfOrcAbilityModifiers: {floating()},
	Intimidating:            {skill(character.Intimidate, 2, "")},
	OrcBlood:                {note("counts as both a human and an orc for any effect related to race")},
	OrcFerocity:             {note("once per day, fights on for one more round when brought below 0 hit points")},
	OrcWeaponFamiliarity: {
		WeaponFamiliarityEffect{Weapons: []string{"falchion", "greataxe", "orc weapons (martial)"}},
	},
	HalfOrcLanguages: {
		languages([]string{"Common", "Orc"}, "Abyssal", "Draconic", "Giant", "Gnoll", "Goblin"),
	},
	SacredTattoo: {SaveEffect{Type: bonus.Luck, Value: 1}},
	Toothy:       {note("bite attack as a primary natural weapon dealing 1d4 damage")},
	CityRaised: {
		WeaponFamiliarityEffect{Weapons: []string{"longsword", "whip"}},
		skill(character.KnowledgeLocal, 2, ""),
	},

	HalflingAbilityModifiers: {
		ability(character.Dexterity, 2),
		ability(character.Charisma, 2),
		ability(character.Strength, -2),
	},
	// Fearless stacks with halfling luck, so it cannot share the racial type.
	Fearless:     {SaveEffect{Type: bonus.Untyped, Value: 2, Condition: "vs fear"}},
	HalflingLuck: {saves(1, "")},
	SureFooted: {
		skill(character.Acrobatics, 2, ""),
		skill(character.Climb, 2, ""),
	},
	HalflingWeaponFamiliarity: {
		WeaponFamiliarityEffect{Weapons: []string{"sling", "halfling weapons (martial)"}},
	},
	HalflingLanguages: {
		languages([]string{"Common", "Halfling"}, "Dwarven", "Elven", "Gnome", "Goblin"),
	},
	Craven: {
		saves(-2, "vs fear"),
		CheckEffect{Check: character.Initiative, Type: bonus.Racial, Value: 1},
		AttackEffect{Kinds: []character.AttackKind{character.MeleeAttack}, Type: bonus.Racial, Value: 1, Condition: "when flanking"},
	},
	Practicality: {
		skill(character.Profession, 2, "on one chosen Craft or Profession"),
		skill(character.SenseMotive, 2, ""),
		saves(2, "vs illusion spells and effects"),
	},
	WarySenses: {
		skill(character.Perception, 2, ""),
		skill(character.SenseMotive, 2, ""),
	},

	HumanAbilityModifiers: {floating()},
	BonusFeat:             {FloatingFeatEffect{}},
	Skilled:               {SkillRanksEffect{PerLevel: 1}},
	HumanLanguages: {
		languages([]string{"Common"}, "any except secret languages"),
	},
	DualTalent: {
		FloatingAbilityEffect{Type: bonus.Racial, Value: 2},
		FloatingAbilityEffect{Slot: 1, Type: bonus.Racial, Value: 2},
	},
	FocusedStudy: {FloatingFeatEffect{Restriction: "Skill Focus"}},
	ComprehensiveEducation: func() []Effect {
		out := []Effect{ClassSkillEffect{Skills: character.KnowledgeSkills()}}
		for _, k := range character.KnowledgeSkills() {
			out = append(out, skill(k, 1, ""))
		}
		return out
	}(),
}

// Effects returns the effects of trait, each carrying the trait name as source.
// Combined traits return several effects.
//
// Postcondition: Returns a non-empty slice, or an error wrapping ErrUnknownTrait.
func Effects(trait RacialTraitName) ([]Effect, error) {
	table, ok := traitEffects[trait]
	if !ok {
		return nil, fmt.Errorf("trait %q: %w", trait, ErrUnknownTrait)
	}
	out := make([]Effect, len(table))
	for i, e := range table {
		out[i] = e.withSource(string(trait))
	}
	return out, nil
}

// Describe returns one summary line per effect of trait.
//
// Postcondition: Returns the lines, or an error wrapping ErrUnknownTrait.
func Describe(trait RacialTraitName) ([]string, error) {
	effects, err := Effects(trait)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(effects))
	for i, e := range effects {
		out[i] = e.Describe()
	}
	return out, nil
}

func sortTraits(ts []RacialTraitName) {
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
}
