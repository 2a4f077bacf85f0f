package character

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charforge/internal/game/bonus"
)

// FormatBonuses renders every non-empty bonus container of b as indented
// text, one category per line with its unconditional total.
func FormatBonuses(b *Builder) string {
	var sb strings.Builder
	writeMap(&sb, "Ability score bonuses", b.Abilities)
	writeMap(&sb, "Skill bonuses", b.Skills)
	writeMap(&sb, "Saving throw bonuses", b.Saves)
	writeMap(&sb, "Caster level bonuses", b.CasterLevel)
	writeMap(&sb, "Armor class bonuses", b.ArmorClass)
	writeMap(&sb, "Attack bonuses", b.Attack)
	writeMap(&sb, "Check bonuses", b.Checks)
	writeMap(&sb, "Spell DC bonuses", b.SpellDC)

	if len(b.FloatingAbility) > 0 {
		sb.WriteString("Floating ability bonuses:\n")
		for _, f := range b.FloatingAbility {
			target := "unassigned"
			if f.Chosen() {
				target = string(f.Choice)
			}
			fmt.Fprintf(&sb, "  %+d %s (%s) -> %s\n", f.Value, f.Type, f.Key(), target)
		}
	}
	if len(b.FloatingFeats) > 0 {
		sb.WriteString("Floating bonus feats:\n")
		for _, f := range b.FloatingFeats {
			choice := "unchosen"
			if f.Choice != "" {
				choice = f.Choice
			}
			if f.Restriction != "" {
				fmt.Fprintf(&sb, "  %s [%s] -> %s\n", f.Source, f.Restriction, choice)
				continue
			}
			fmt.Fprintf(&sb, "  %s -> %s\n", f.Source, choice)
		}
	}
	if len(b.Senses) > 0 {
		senses := make([]string, 0, len(b.Senses))
		for s, ft := range b.Senses {
			senses = append(senses, fmt.Sprintf("%s %d ft.", s, ft))
		}
		sort.Strings(senses)
		fmt.Fprintf(&sb, "Senses: %s\n", strings.Join(senses, ", "))
	}
	if len(b.Languages) > 0 {
		fmt.Fprintf(&sb, "Languages: %s\n", strings.Join(b.Languages, ", "))
	}
	if len(b.Immunities) > 0 {
		fmt.Fprintf(&sb, "Immunities: %s\n", strings.Join(b.Immunities, ", "))
	}
	if len(b.WeaponFamiliarity) > 0 {
		fmt.Fprintf(&sb, "Weapon familiarity: %s\n", strings.Join(b.WeaponFamiliarity, ", "))
	}
	return sb.String()
}

// FormatSheet renders s as plain text: abilities, defenses, offense, skills
// with a non-zero total or class skill status, then the descriptive lines.
func FormatSheet(s *Sheet) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s, level %d %s %s", s.Name, s.Level, s.Race, s.Class)
	if len(s.Archetypes) > 0 {
		fmt.Fprintf(&sb, " (%s)", strings.Join(s.Archetypes, ", "))
	}
	fmt.Fprintf(&sb, "\n%s, speed %d ft.\n", s.Size, s.Speed)

	for _, a := range Abilities() {
		fmt.Fprintf(&sb, "%s %2d (%+d)  ", a.Short(), s.Abilities.Get(a), s.Modifiers[a])
	}
	sb.WriteString("\n")

	fmt.Fprintf(&sb, "HP %d  AC %d (touch %d, flat-footed %d)  Init %+d\n",
		s.HitPoints, s.ArmorClass.Total, s.Touch, s.FlatFooted, s.Initiative)
	writeSituational(&sb, "AC", s.ArmorClass.Situational, false)
	for _, save := range Saves() {
		st := s.Saves[save]
		fmt.Fprintf(&sb, "%s %+d  ", save, st.Total)
	}
	sb.WriteString("\n")
	for _, save := range Saves() {
		writeSituational(&sb, string(save), s.Saves[save].Situational, true)
	}
	fmt.Fprintf(&sb, "BAB %+d  Melee %+d  Ranged %+d  CMB %+d  CMD %d\n",
		s.BaseAttack, s.Melee.Total, s.Ranged.Total, s.CMB.Total, s.CMD.Total)
	writeSituational(&sb, "Melee", s.Melee.Situational, true)
	writeSituational(&sb, "CMD", s.CMD.Situational, false)

	fmt.Fprintf(&sb, "Skill ranks per level: %d\n", s.SkillRanks)
	for _, l := range s.Skills {
		if l.Total == 0 && !l.ClassSkill && len(l.Situational) == 0 {
			continue
		}
		mark := " "
		if l.ClassSkill {
			mark = "*"
		}
		fmt.Fprintf(&sb, " %s %s %+d\n", mark, l.Skill.Label(), l.Total)
		writeSituational(&sb, "   ", l.Situational, true)
	}

	writeList(&sb, "Languages", s.Languages)
	writeList(&sb, "Bonus languages", s.BonusLanguages)
	if len(s.Senses) > 0 {
		senses := make([]string, 0, len(s.Senses))
		for k, ft := range s.Senses {
			senses = append(senses, fmt.Sprintf("%s %d ft.", k, ft))
		}
		sort.Strings(senses)
		writeList(&sb, "Senses", senses)
	}
	writeList(&sb, "Feats", s.Feats)
	writeList(&sb, "Features", s.Features)
	writeList(&sb, "Immunities", s.Immunities)
	writeList(&sb, "Weapon familiarity", s.WeaponFamiliarity)
	if s.FavoredClass != "" {
		fmt.Fprintf(&sb, "Favored class bonus: %s\n", s.FavoredClass)
	}
	for _, n := range s.Notes {
		fmt.Fprintf(&sb, "Note: %s\n", n)
	}
	for _, p := range s.Pending {
		fmt.Fprintf(&sb, "Pending: %s\n", p)
	}
	return sb.String()
}

func writeSituational(sb *strings.Builder, label string, list []Situational, signed bool) {
	format := "  %s %d %s\n"
	if signed {
		format = "  %s %+d %s\n"
	}
	for _, x := range list {
		fmt.Fprintf(sb, format, label, x.Total, x.Condition)
	}
}

func writeList(sb *strings.Builder, title string, items []string) {
	if len(items) > 0 {
		fmt.Fprintf(sb, "%s: %s\n", title, strings.Join(items, ", "))
	}
}

func writeMap[K comparable](sb *strings.Builder, title string, m *bonus.Map[K]) {
	keys := m.Keys()
	if len(keys) == 0 {
		return
	}
	sb.WriteString(title + ":\n")
	for _, k := range keys {
		parts := make([]string, 0, len(m.Get(k)))
		for _, x := range m.Get(k) {
			parts = append(parts, x.String())
		}
		fmt.Fprintf(sb, "  %v %+d: %s\n", k, m.Total(k), strings.Join(parts, "; "))
	}
}

// Dump logs every bonus container of b at debug level.
//
// Precondition: logger must be non-nil.
func (b *Builder) Dump(logger *zap.Logger) {
	if !logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	logger.Debug("character builder",
		zap.String("name", b.Name),
		zap.String("race", b.Race),
		zap.String("class", b.Class),
		zap.Strings("alt_traits", b.AltTraits),
		zap.Strings("archetypes", b.Archetypes),
	)
	dumpMap(logger, "ability score bonuses", b.Abilities)
	dumpMap(logger, "skill bonuses", b.Skills)
	dumpMap(logger, "saving throw bonuses", b.Saves)
	dumpMap(logger, "caster level bonuses", b.CasterLevel)
	dumpMap(logger, "armor class bonuses", b.ArmorClass)
	dumpMap(logger, "attack bonuses", b.Attack)
	dumpMap(logger, "check bonuses", b.Checks)
	dumpMap(logger, "spell dc bonuses", b.SpellDC)
	for _, f := range b.FloatingAbility {
		logger.Debug("floating ability bonus",
			zap.String("source", f.Source),
			zap.Int("value", f.Value),
			zap.Stringer("type", f.Type),
			zap.String("choice", string(f.Choice)),
		)
	}
	for _, f := range b.FloatingFeats {
		logger.Debug("floating bonus feat",
			zap.String("source", f.Source),
			zap.String("restriction", f.Restriction),
			zap.String("choice", f.Choice),
		)
	}
}

func dumpMap[K comparable](logger *zap.Logger, msg string, m *bonus.Map[K]) {
	for _, k := range m.Keys() {
		list := m.Get(k)
		entries := make([]string, 0, len(list))
		for _, x := range list {
			entries = append(entries, x.String())
		}
		logger.Debug(msg,
			zap.String("key", fmt.Sprint(k)),
			zap.Int("total", m.Total(k)),
			zap.Strings("bonuses", entries),
		)
	}
}
