package character

import (
	"fmt"
	"sort"

	"github.com/cory-johannsen/charforge/internal/game/bonus"
	"github.com/cory-johannsen/charforge/internal/game/ruleset"
)

// Situational is a total that applies only under a named condition.
type Situational struct {
	Condition string `json:"condition"`
	Total     int    `json:"total"`
}

// Stat is a derived statistic with its situational variants.
type Stat struct {
	Total       int           `json:"total"`
	Situational []Situational `json:"situational,omitempty"`
}

// SkillLine is one row of the skill table.
type SkillLine struct {
	Skill       Skill         `json:"skill"`
	Ability     Ability       `json:"ability"`
	Total       int           `json:"total"`
	ClassSkill  bool          `json:"class_skill"`
	TrainedOnly bool          `json:"trained_only"`
	Situational []Situational `json:"situational,omitempty"`
}

// Sheet is the level-1 statistics derived from a Builder.
type Sheet struct {
	Name       string   `json:"name"`
	Race       string   `json:"race"`
	Class      string   `json:"class"`
	Archetypes []string `json:"archetypes,omitempty"`
	AltTraits  []string `json:"alt_traits,omitempty"`
	Level      int      `json:"level"`
	Size       Size     `json:"size"`
	Speed      int      `json:"speed"`

	Abilities AbilityScores   `json:"abilities"`
	Modifiers map[Ability]int `json:"modifiers"`

	HitPoints  int                  `json:"hit_points"`
	Saves      map[Save]Stat        `json:"saves"`
	ArmorClass Stat                 `json:"armor_class"`
	Touch      int                  `json:"touch"`
	FlatFooted int                  `json:"flat_footed"`
	BaseAttack int                  `json:"base_attack"`
	Melee      Stat                 `json:"melee"`
	Ranged     Stat                 `json:"ranged"`
	CMB        Stat                 `json:"cmb"`
	CMD        Stat                 `json:"cmd"`
	Initiative int                  `json:"initiative"`
	Caster     map[CasterCheck]Stat `json:"caster,omitempty"`
	SpellDC    map[string]int       `json:"spell_dc,omitempty"`

	Skills     []SkillLine `json:"skills"`
	SkillRanks int         `json:"skill_ranks"`

	Languages         []string      `json:"languages"`
	BonusLanguages    []string      `json:"bonus_languages,omitempty"`
	Senses            map[Sense]int `json:"senses,omitempty"`
	Immunities        []string      `json:"immunities,omitempty"`
	WeaponFamiliarity []string      `json:"weapon_familiarity,omitempty"`
	Feats             []string      `json:"feats,omitempty"`
	FavoredClass      string        `json:"favored_class,omitempty"`
	Features          []string      `json:"features,omitempty"`
	Notes             []string      `json:"notes,omitempty"`

	// Pending lists choices that must be made before the character is final.
	Pending []string `json:"pending,omitempty"`
}

// Complete reports whether every floating choice has been made.
func (s *Sheet) Complete() bool {
	return len(s.Pending) == 0
}

// Derive computes the level-1 sheet for b. Unassigned floating ability bonuses
// and empty bonus feat slots are not applied; they are listed in Pending.
//
// Precondition: b must be non-nil.
// Postcondition: Returns the Sheet, or ErrIncomplete if no race or class has been applied.
func Derive(b *Builder) (*Sheet, error) {
	if b.Race == "" || b.ClassInfo == nil {
		return nil, fmt.Errorf("deriving sheet: %w", ErrIncomplete)
	}
	cls := b.ClassInfo

	s := &Sheet{
		Name:              b.Name,
		Race:              b.Race,
		Class:             b.Class,
		Archetypes:        append([]string(nil), b.Archetypes...),
		AltTraits:         append([]string(nil), b.AltTraits...),
		Level:             b.Level,
		Size:              b.Size,
		Speed:             b.Speed,
		Modifiers:         make(map[Ability]int, 6),
		Saves:             make(map[Save]Stat, 3),
		Languages:         append([]string(nil), b.Languages...),
		BonusLanguages:    append([]string(nil), b.BonusLanguages...),
		Immunities:        append([]string(nil), b.Immunities...),
		WeaponFamiliarity: append([]string(nil), b.WeaponFamiliarity...),
		Features:          append([]string(nil), cls.Features...),
		Notes:             append([]string(nil), b.Notes...),
		FavoredClass:      cls.FavoredDescription,
		BaseAttack:        cls.BaseAttack,
	}

	abilityBonuses := b.Abilities.Clone()
	for _, f := range b.FloatingAbility {
		if !f.Chosen() {
			s.Pending = append(s.Pending, fmt.Sprintf("assign %+d %s ability bonus %s", f.Value, f.Type, f.Key()))
			continue
		}
		abilityBonuses.Add(f.Choice, bonus.Bonus{Type: f.Type, Value: f.Value, Source: f.Source})
	}
	for _, a := range Abilities() {
		score := b.BaseAbilities.Get(a) + abilityBonuses.Total(a)
		if score < 1 {
			score = 1
		}
		s.Abilities.Set(a, score)
		s.Modifiers[a] = Modifier(score)
	}
	mod := s.Modifiers

	for _, f := range b.FloatingFeats {
		if f.Choice == "" {
			p := "choose bonus feat from " + f.Source
			if f.Restriction != "" {
				p += " (" + f.Restriction + ")"
			}
			s.Pending = append(s.Pending, p)
			continue
		}
		s.Feats = append(s.Feats, f.Choice)
	}

	s.HitPoints = cls.HitDie + mod[Constitution]
	if cls.FavoredKind == ruleset.FavoredHitPoint {
		s.HitPoints++
	}
	if s.HitPoints < 1 {
		s.HitPoints = 1
	}

	for _, save := range Saves() {
		s.Saves[save] = stat(b.Saves, save, cls.BaseSaves[save]+mod[save.KeyAbility()])
	}

	size := b.Size.Modifier()
	acBase := 10 + mod[Dexterity] + size
	s.ArmorClass = stat(b.ArmorClass, ArmorClass, acBase)
	acList := b.ArmorClass.Get(ArmorClass)
	s.Touch = acBase + bonus.Sum(acList, func(x bonus.Bonus) bool {
		return !x.Conditional() && x.Type != bonus.Armor && x.Type != bonus.Shield && x.Type != bonus.NaturalArmor
	})
	dex := mod[Dexterity]
	if dex > 0 {
		dex = 0
	}
	s.FlatFooted = 10 + dex + size + bonus.Sum(acList, func(x bonus.Bonus) bool {
		return !x.Conditional() && x.Type != bonus.Dodge
	})

	special := b.Size.SpecialModifier()
	s.Melee = stat(b.Attack, MeleeAttack, cls.BaseAttack+mod[Strength]+size)
	s.Ranged = stat(b.Attack, RangedAttack, cls.BaseAttack+mod[Dexterity]+size)
	s.CMB = stat(b.Attack, Maneuver, cls.BaseAttack+mod[Strength]+special)
	s.CMD = stat(b.ArmorClass, CombatManeuverDefense, 10+cls.BaseAttack+mod[Strength]+mod[Dexterity]+special)
	s.Initiative = mod[Dexterity] + b.Checks.Total(Initiative)

	if keys := b.CasterLevel.Keys(); len(keys) > 0 {
		s.Caster = make(map[CasterCheck]Stat, len(keys))
		for _, k := range keys {
			s.Caster[k] = stat(b.CasterLevel, k, 0)
		}
	}
	if keys := b.SpellDC.Keys(); len(keys) > 0 {
		s.SpellDC = make(map[string]int, len(keys))
		for _, k := range keys {
			s.SpellDC[k] = b.SpellDC.Total(k)
		}
	}

	for _, sk := range AllSkills() {
		key := sk.KeyAbility()
		line := SkillLine{
			Skill:       sk,
			Ability:     key,
			ClassSkill:  b.IsClassSkill(sk),
			TrainedOnly: sk.TrainedOnly(),
		}
		st := stat(b.Skills, sk, mod[key])
		line.Total = st.Total
		line.Situational = st.Situational
		s.Skills = append(s.Skills, line)
	}
	s.SkillRanks = cls.SkillRanks + mod[Intelligence]
	if s.SkillRanks < 1 {
		s.SkillRanks = 1
	}
	s.SkillRanks += b.ExtraSkillRanks
	if cls.FavoredKind == ruleset.FavoredSkillRank {
		s.SkillRanks++
	}

	if len(b.Senses) > 0 {
		s.Senses = make(map[Sense]int, len(b.Senses))
		for k, v := range b.Senses {
			s.Senses[k] = v
		}
	}
	sort.Strings(s.Languages)
	sort.Strings(s.BonusLanguages)
	return s, nil
}

// Skill returns the sheet row for sk.
//
// Postcondition: ok is false when sk is not a known skill.
func (s *Sheet) Skill(sk Skill) (SkillLine, bool) {
	for _, l := range s.Skills {
		if l.Skill == sk {
			return l, true
		}
	}
	return SkillLine{}, false
}

func stat[K comparable](m *bonus.Map[K], k K, base int) Stat {
	st := Stat{Total: base + m.Total(k)}
	for _, c := range m.Conditions(k) {
		st.Situational = append(st.Situational, Situational{Condition: c, Total: base + m.TotalFor(k, c)})
	}
	return st
}
