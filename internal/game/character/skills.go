package character

import (
	"fmt"
	"strings"
)

// Skill names a Pathfinder skill in lower_snake_case.
type Skill string

// Skills.
const (
	Acrobatics             Skill = "acrobatics"
	Appraise               Skill = "appraise"
	Bluff                  Skill = "bluff"
	Climb                  Skill = "climb"
	Craft                  Skill = "craft"
	Diplomacy              Skill = "diplomacy"
	DisableDevice          Skill = "disable_device"
	Disguise               Skill = "disguise"
	EscapeArtist           Skill = "escape_artist"
	Fly                    Skill = "fly"
	HandleAnimal           Skill = "handle_animal"
	Heal                   Skill = "heal"
	Intimidate             Skill = "intimidate"
	KnowledgeArcana        Skill = "knowledge_arcana"
	KnowledgeDungeoneering Skill = "knowledge_dungeoneering"
	KnowledgeEngineering   Skill = "knowledge_engineering"
	KnowledgeGeography     Skill = "knowledge_geography"
	KnowledgeHistory       Skill = "knowledge_history"
	KnowledgeLocal         Skill = "knowledge_local"
	KnowledgeNature        Skill = "knowledge_nature"
	KnowledgeNobility      Skill = "knowledge_nobility"
	KnowledgePlanes        Skill = "knowledge_planes"
	KnowledgeReligion      Skill = "knowledge_religion"
	Linguistics            Skill = "linguistics"
	Perception             Skill = "perception"
	Perform                Skill = "perform"
	Profession             Skill = "profession"
	Ride                   Skill = "ride"
	SenseMotive            Skill = "sense_motive"
	SleightOfHand          Skill = "sleight_of_hand"
	Spellcraft             Skill = "spellcraft"
	Stealth                Skill = "stealth"
	Survival               Skill = "survival"
	Swim                   Skill = "swim"
	UseMagicDevice         Skill = "use_magic_device"
)

type skillInfo struct {
	key          Ability
	trainedOnly  bool
	armorPenalty bool
}

var skillTable = map[Skill]skillInfo{
	Acrobatics:             {key: Dexterity, armorPenalty: true},
	Appraise:               {key: Intelligence},
	Bluff:                  {key: Charisma},
	Climb:                  {key: Strength, armorPenalty: true},
	Craft:                  {key: Intelligence},
	Diplomacy:              {key: Charisma},
	DisableDevice:          {key: Dexterity, trainedOnly: true, armorPenalty: true},
	Disguise:               {key: Charisma},
	EscapeArtist:           {key: Dexterity, armorPenalty: true},
	Fly:                    {key: Dexterity, armorPenalty: true},
	HandleAnimal:           {key: Charisma, trainedOnly: true},
	Heal:                   {key: Wisdom},
	Intimidate:             {key: Charisma},
	KnowledgeArcana:        {key: Intelligence, trainedOnly: true},
	KnowledgeDungeoneering: {key: Intelligence, trainedOnly: true},
	KnowledgeEngineering:   {key: Intelligence, trainedOnly: true},
	KnowledgeGeography:     {key: Intelligence, trainedOnly: true},
	KnowledgeHistory:       {key: Intelligence, trainedOnly: true},
	KnowledgeLocal:         {key: Intelligence, trainedOnly: true},
	KnowledgeNature:        {key: Intelligence, trainedOnly: true},
	KnowledgeNobility:      {key: Intelligence, trainedOnly: true},
	KnowledgePlanes:        {key: Intelligence, trainedOnly: true},
	KnowledgeReligion:      {key: Intelligence, trainedOnly: true},
	Linguistics:            {key: Intelligence, trainedOnly: true},
	Perception:             {key: Wisdom},
	Perform:                {key: Charisma},
	Profession:             {key: Wisdom, trainedOnly: true},
	Ride:                   {key: Dexterity, armorPenalty: true},
	SenseMotive:            {key: Wisdom},
	SleightOfHand:          {key: Dexterity, trainedOnly: true, armorPenalty: true},
	Spellcraft:             {key: Intelligence, trainedOnly: true},
	Stealth:                {key: Dexterity, armorPenalty: true},
	Survival:               {key: Wisdom},
	Swim:                   {key: Strength, armorPenalty: true},
	UseMagicDevice:         {key: Charisma, trainedOnly: true},
}

// AllSkills returns every skill sorted alphabetically.
func AllSkills() []Skill {
	return []Skill{
		Acrobatics, Appraise, Bluff, Climb, Craft, Diplomacy, DisableDevice,
		Disguise, EscapeArtist, Fly, HandleAnimal, Heal, Intimidate,
		KnowledgeArcana, KnowledgeDungeoneering, KnowledgeEngineering,
		KnowledgeGeography, KnowledgeHistory, KnowledgeLocal, KnowledgeNature,
		KnowledgeNobility, KnowledgePlanes, KnowledgeReligion, Linguistics,
		Perception, Perform, Profession, Ride, SenseMotive, SleightOfHand,
		Spellcraft, Stealth, Survival, Swim, UseMagicDevice,
	}
}

// KnowledgeSkills returns the ten knowledge skills.
func KnowledgeSkills() []Skill {
	return []Skill{
		KnowledgeArcana, KnowledgeDungeoneering, KnowledgeEngineering,
		KnowledgeGeography, KnowledgeHistory, KnowledgeLocal, KnowledgeNature,
		KnowledgeNobility, KnowledgePlanes, KnowledgeReligion,
	}
}

// KeyAbility returns the ability that modifies s.
func (s Skill) KeyAbility() Ability {
	return skillTable[s].key
}

// TrainedOnly reports whether s requires at least one rank to attempt.
func (s Skill) TrainedOnly() bool {
	return skillTable[s].trainedOnly
}

// ArmorCheckPenalty reports whether armor check penalties apply to s.
func (s Skill) ArmorCheckPenalty() bool {
	return skillTable[s].armorPenalty
}

// Label returns a display name, e.g. "Knowledge (arcana)".
func (s Skill) Label() string {
	name := string(s)
	if rest, ok := strings.CutPrefix(name, "knowledge_"); ok {
		return "Knowledge (" + rest + ")"
	}
	words := strings.Split(name, "_")
	for i, w := range words {
		if w == "of" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

// ParseSkill resolves a skill name. Matching is case-insensitive and accepts
// spaces or hyphens in place of underscores.
//
// Postcondition: Returns the Skill or a non-nil error.
func ParseSkill(s string) (Skill, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_", "(", "", ")", "").Replace(norm)
	if _, ok := skillTable[Skill(norm)]; ok {
		return Skill(norm), nil
	}
	return "", fmt.Errorf("unknown skill %q", s)
}
