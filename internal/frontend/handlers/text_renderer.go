package handlers

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cory-johannsen/charforge/internal/frontend/telnet"
	"github.com/cory-johannsen/charforge/internal/game/command"
	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/rules"
	"github.com/cory-johannsen/charforge/internal/game/ruleset"
	"github.com/cory-johannsen/charforge/internal/game/selection"
	"github.com/cory-johannsen/charforge/internal/storage/draft"
)

// textWidth is the column width descriptions are wrapped to.
const textWidth = 72

// Renderer draws the visible panels of the creation screen as Telnet text.
// It holds no per-session state and is safe for concurrent use.
type Renderer struct {
	engine *rules.Engine
	lib    *ruleset.Library
	screen *selection.Screen
}

// NewRenderer creates a Renderer for the panels of screen.
//
// Precondition: engine and screen must be non-nil.
func NewRenderer(engine *rules.Engine, screen *selection.Screen) *Renderer {
	return &Renderer{engine: engine, lib: engine.Library(), screen: screen}
}

// Render returns the lines of every panel visible for v, in build order,
// separated by blank lines.
//
// Precondition: d must be non-nil.
func (r *Renderer) Render(v selection.View, d *draft.Draft) []string {
	var out []string
	for i, p := range r.screen.VisiblePanels(v) {
		if i > 0 {
			out = append(out, "")
		}
		out = append(out, r.panel(p, v, d)...)
	}
	return out
}

func (r *Renderer) panel(p selection.Panel, v selection.View, d *draft.Draft) []string {
	switch p.Kind {
	case selection.KindTabBar:
		return []string{tabBar(selection.Tabs(), v.Tab)}
	case selection.KindRaceList:
		return r.raceList(v, d)
	case selection.KindRaceTabBar:
		return []string{tabBar(selection.RaceTabs(), v.RaceTab)}
	case selection.KindRaceDetail:
		return r.raceDetail(p.Race)
	case selection.KindRaceTraits:
		return r.raceTraits(p.Race, d)
	case selection.KindRaceAltTraits:
		return r.altTraits(p.Race, v, d)
	case selection.KindRaceFavored:
		return r.favored(p.Race, d)
	case selection.KindClassList:
		return r.classList(v, d)
	case selection.KindClassTabBar:
		return []string{tabBar(selection.ClassTabs(), v.ClassTab)}
	case selection.KindClassDetail:
		return r.classDetail(p.Class)
	case selection.KindClassFeatures:
		return r.classFeatures(p.Class, d)
	case selection.KindArchetypeList:
		return r.archetypeList(p.Class, v, d)
	case selection.KindArchetype:
		return r.archetype(p.Archetype)
	case selection.KindAbilities:
		return r.abilities(d)
	case selection.KindReview:
		return r.review(d)
	}
	return nil
}

func tabBar[T ~string](tabs []T, selected T) string {
	cells := make([]string, len(tabs))
	for i, t := range tabs {
		label := " " + selection.Label(string(t)) + " "
		if t == selected {
			cells[i] = telnet.Colorize(telnet.Reverse+telnet.Bold, label)
			continue
		}
		cells[i] = telnet.Colorize(telnet.Dim, label)
	}
	return strings.Join(cells, " ")
}

func marker(chosen bool) string {
	if chosen {
		return telnet.Colorize(telnet.BrightYellow, "*")
	}
	return " "
}

func (r *Renderer) raceList(v selection.View, d *draft.Draft) []string {
	items := make([]string, 0, len(r.lib.Races()))
	for _, race := range r.lib.Races() {
		name := race.Name
		if race.ID == v.Race {
			name = telnet.Colorize(telnet.BrightWhite+telnet.Bold, name)
		}
		items = append(items, marker(race.ID == d.Choices.Race)+name)
	}
	return append(telnet.Heading("Races"), telnet.Columns(items, 4, 18)...)
}

func (r *Renderer) raceDetail(id string) []string {
	race, err := r.lib.Race(id)
	if err != nil {
		return []string{telnet.Colorize(telnet.Red, err.Error())}
	}
	out := telnet.Heading(race.Name)
	if race.Summary != "" {
		out = append(out, telnet.Colorize(telnet.Cyan, race.Summary))
	}
	out = append(out, telnet.Wrap(race.Description, textWidth)...)
	if len(race.Languages) > 0 {
		out = append(out, "", "Languages: "+strings.Join(race.Languages, ", "))
	}
	if len(race.BonusLanguages) > 0 {
		out = append(out, "Bonus languages: "+strings.Join(race.BonusLanguages, ", "))
	}
	return out
}

func (r *Renderer) raceTraits(race string, d *draft.Draft) []string {
	var alts []string
	if race == d.Choices.Race {
		alts = d.Choices.AltTraits
	}
	rb, err := r.engine.RaceBuilder(race, alts)
	if err != nil {
		return []string{telnet.Colorize(telnet.Red, err.Error())}
	}
	out := telnet.Heading("Racial Traits")
	for _, t := range rb.Traits() {
		name := t.String()
		var text string
		if desc, err := r.lib.TraitDescription(race, string(t)); err == nil {
			name, text = desc.Name, desc.Description
		}
		out = append(out, telnet.Colorize(telnet.Green, name))
		for _, line := range telnet.Wrap(text, textWidth-2) {
			out = append(out, "  "+line)
		}
		if effects, err := rules.Describe(t); err == nil {
			for _, e := range effects {
				out = append(out, telnet.Colorize(telnet.BrightBlack, "  - "+e))
			}
		}
	}
	return out
}

func (r *Renderer) altTraits(race string, v selection.View, d *draft.Draft) []string {
	alts := r.lib.AltTraitsFor(race)
	if len(alts) == 0 {
		return append(telnet.Heading("Alternate Traits"), "No alternate traits.")
	}
	selected := make(map[string]bool)
	if race == d.Choices.Race {
		for _, id := range d.Choices.AltTraits {
			selected[id] = true
		}
	}
	out := telnet.Heading("Alternate Traits")
	for _, a := range alts {
		name := a.Name
		if a.ID == v.Trait {
			name = telnet.Colorize(telnet.BrightWhite+telnet.Bold, name)
		}
		out = append(out, fmt.Sprintf("%s%s %s", marker(selected[a.ID]), name,
			telnet.Colorize(telnet.BrightBlack, "(replaces "+strings.Join(a.Replaces, ", ")+")")))
		if a.ID == v.Trait {
			for _, line := range telnet.Wrap(a.Description, textWidth-2) {
				out = append(out, "  "+line)
			}
		}
	}
	return out
}

func (r *Renderer) favored(race string, d *draft.Draft) []string {
	out := telnet.Heading("Favored Class")
	if d.Choices.Class == "" {
		if rc, err := r.lib.Race(race); err == nil && rc.FavoredClassTip != "" {
			out = append(out, telnet.Wrap(rc.FavoredClassTip, textWidth)...)
		}
		return append(out, "Choose a class to see its favored class bonuses.")
	}
	for _, o := range r.lib.FavoredClassOptions(race, d.Choices.Class) {
		out = append(out, fmt.Sprintf("%s%-26s %s", marker(o.ID == d.Choices.FavoredOption), o.ID, o.Description))
	}
	return out
}

func (r *Renderer) classList(v selection.View, d *draft.Draft) []string {
	items := make([]string, 0, len(r.lib.Classes()))
	for _, c := range r.lib.Classes() {
		name := c.Name
		if c.ID == v.Class {
			name = telnet.Colorize(telnet.BrightWhite+telnet.Bold, name)
		}
		items = append(items, marker(c.ID == d.Choices.Class)+name)
	}
	return append(telnet.Heading("Classes"), telnet.Columns(items, 4, 18)...)
}

func (r *Renderer) classDetail(id string) []string {
	c, err := r.lib.Class(id)
	if err != nil {
		return []string{telnet.Colorize(telnet.Red, err.Error())}
	}
	out := telnet.Heading(c.Name)
	if c.Summary != "" {
		out = append(out, telnet.Colorize(telnet.Cyan, c.Summary))
	}
	out = append(out, telnet.Wrap(c.Description, textWidth)...)
	out = append(out, "",
		fmt.Sprintf("Hit die: d%d  Skill ranks: %d + Int  BAB: %s", c.HitDie, c.SkillRanks, selection.Label(c.BAB)),
		"Good saves: "+strings.Join(c.GoodSaves, ", "),
	)
	if c.Alignment != "" {
		out = append(out, "Alignment: "+c.Alignment)
	}
	return out
}

func (r *Renderer) classFeatures(class string, d *draft.Draft) []string {
	var archetypes []string
	if class == d.Choices.Class {
		archetypes = d.Choices.Archetypes
	}
	cb, err := r.engine.ClassBuilder(class, d.Choices.Race, archetypes, "")
	if err != nil {
		return []string{telnet.Colorize(telnet.Red, err.Error())}
	}
	out := telnet.Heading("Class Features")
	for _, f := range cb.Features() {
		out = append(out, fmt.Sprintf("%s %s", telnet.Colorf(telnet.BrightBlack, "%2d", f.Level), f.Name))
	}
	return out
}

func (r *Renderer) archetypeList(class string, v selection.View, d *draft.Draft) []string {
	list := r.lib.ArchetypesFor(class)
	if len(list) == 0 {
		return append(telnet.Heading("Archetypes"), "No archetypes.")
	}
	taken := make(map[string]bool)
	if class == d.Choices.Class {
		for _, id := range d.Choices.Archetypes {
			taken[id] = true
		}
	}
	out := telnet.Heading("Archetypes")
	for _, a := range list {
		name := a.Name
		if a.ID == v.Archetype {
			name = telnet.Colorize(telnet.BrightWhite+telnet.Bold, name)
		}
		out = append(out, marker(taken[a.ID])+name)
	}
	return out
}

func (r *Renderer) archetype(id string) []string {
	a, err := r.lib.Archetype(id)
	if err != nil {
		return []string{telnet.Colorize(telnet.Red, err.Error())}
	}
	out := telnet.Heading(a.Name)
	out = append(out, telnet.Wrap(a.Description, textWidth)...)
	if len(a.Replaces) > 0 {
		out = append(out, "Replaces: "+strings.Join(a.Replaces, ", "))
	}
	for _, f := range a.Features {
		out = append(out, fmt.Sprintf("%s %s", telnet.Colorf(telnet.BrightBlack, "%2d", f.Level), f.Name))
	}
	return out
}

func (r *Renderer) abilities(d *draft.Draft) []string {
	out := telnet.Heading("Ability Scores")
	switch {
	case d.Choices.Method == "":
		out = append(out, "No method chosen. Use 'roll standard', 'roll classic', 'roll heroic' or 'roll pointbuy [budget]'.")
	case d.PointBuy():
		out = append(out, fmt.Sprintf("Point buy: %d of %d points spent", d.PointsSpent(), d.Budget))
	default:
		out = append(out, fmt.Sprintf("Method: %s  Unassigned rolls: %s", d.Choices.Method, intList(d.Remaining())))
	}

	b, err := r.engine.Assemble(d.Choices)
	if err != nil {
		return append(out, telnet.Colorize(telnet.Red, err.Error()))
	}
	base := b.BaseAbilities
	for _, a := range character.Abilities() {
		adj := b.Abilities.Total(a)
		line := fmt.Sprintf("  %s %2d", a.Short(), base.Get(a))
		if adj != 0 {
			line += fmt.Sprintf(" %+d = %d", adj, base.Get(a)+adj)
		}
		if _, ok := d.Assigned[a]; !ok && d.Choices.Method != "" && !d.PointBuy() {
			line += telnet.Colorize(telnet.BrightBlack, "  (unassigned)")
		}
		out = append(out, line)
	}
	for _, f := range b.FloatingAbility {
		target := telnet.Colorize(telnet.Yellow, "unassigned, use 'float "+f.Key()+" <ability>'")
		if f.Chosen() {
			target = string(f.Choice)
		}
		out = append(out, fmt.Sprintf("  %+d %s (%s) -> %s", f.Value, f.Type, f.Key(), target))
	}
	return out
}

func (r *Renderer) review(d *draft.Draft) []string {
	out := telnet.Heading("Review")
	s, err := r.engine.Sheet(d.Choices)
	if errors.Is(err, character.ErrIncomplete) {
		return append(out, "Choose a race and a class to see the character sheet.")
	}
	if err != nil {
		return append(out, telnet.Colorize(telnet.Red, err.Error()))
	}
	if s.Name == "" {
		out = append(out, telnet.Colorize(telnet.Yellow, "Unnamed: use 'name <character name>'."))
	}
	for _, line := range strings.Split(strings.TrimRight(character.FormatSheet(s), "\n"), "\n") {
		if strings.HasPrefix(line, "Pending: ") {
			line = telnet.Colorize(telnet.Yellow, line)
		}
		out = append(out, line)
	}
	return out
}

// renderHelp lists the commands role may run, grouped by category in
// display order.
func renderHelp(reg *command.Registry, role string) []string {
	groups := reg.CommandsByCategory(role)
	var out []string
	for _, c := range command.Categories() {
		cmds := groups[c]
		if len(cmds) == 0 {
			continue
		}
		out = append(out, telnet.Colorize(telnet.BrightWhite, selection.Label(c)+":"))
		for _, cmd := range cmds {
			usage := cmd.Usage
			if usage == "" {
				usage = cmd.Name
			}
			out = append(out, fmt.Sprintf("  %s %s", telnet.Colorize(telnet.Green, telnet.Pad(usage, 44)), cmd.Help))
		}
	}
	return out
}

func intList(v []int) string {
	if len(v) == 0 {
		return "none"
	}
	parts := make([]string, len(v))
	for i, x := range v {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, " ")
}
