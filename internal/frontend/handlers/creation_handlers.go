package handlers

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charforge/internal/frontend/telnet"
	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/command"
	"github.com/cory-johannsen/charforge/internal/game/dice"
	"github.com/cory-johannsen/charforge/internal/game/rules"
	"github.com/cory-johannsen/charforge/internal/game/ruleset"
	"github.com/cory-johannsen/charforge/internal/game/selection"
	"github.com/cory-johannsen/charforge/internal/storage/draft"
	"github.com/cory-johannsen/charforge/internal/storage/postgres"
)

// handlerFunc runs one command against the creation screen. A returned error
// is shown to the player.
type handlerFunc func(ctx context.Context, c *creation, p command.ParseResult) (outcome, error)

var creationHandlers = map[string]handlerFunc{
	command.HandlerTab:       handleTab,
	command.HandlerSub:       handleSub,
	command.HandlerRace:      handleRace,
	command.HandlerTrait:     handleTrait,
	command.HandlerReset:     handleReset,
	command.HandlerClass:     handleClass,
	command.HandlerArchetype: handleArchetype,
	command.HandlerFavored:   handleFavored,
	command.HandlerRoll:      handleRoll,
	command.HandlerAssign:    handleAssign,
	command.HandlerFloat:     handleFloat,
	command.HandlerFeat:      handleFeat,
	command.HandlerName:      handleName,
	command.HandlerBonus:     handleBonus,
	command.HandlerSheet:     handleSheet,
	command.HandlerSave:      handleSave,
	command.HandlerCancel:    handleCancel,
	command.HandlerHelp:      handleHelp,
	command.HandlerQuit:      handleQuit,
	command.HandlerWho:       handleWho,
	command.HandlerAnnounce:  handleAnnounce,
}

func (c *creation) dispatch(ctx context.Context, cmd *command.Command, p command.ParseResult) (outcome, error) {
	fn, ok := creationHandlers[cmd.Handler]
	if !ok {
		return stay, fmt.Errorf("command %q is not available here", cmd.Name)
	}
	return fn(ctx, c, p)
}

// Character names follow the same bounds as account names, but may contain spaces.
const (
	minNameLength = 2
	maxNameLength = 32
)

// fold reduces s to lowercase letters and digits so "Half Elf", "half-elf"
// and "half_elf" compare equal.
func fold(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// lookup finds the item whose id or name matches input, either exactly or
// as the only item it is a prefix of.
func lookup[T any](input string, items []T, keys func(T) (id, name string)) (T, bool) {
	var zero T
	key := fold(input)
	if key == "" {
		return zero, false
	}
	var prefixed []T
	for _, it := range items {
		i, n := keys(it)
		i, n = fold(i), fold(n)
		if key == i || key == n {
			return it, true
		}
		if strings.HasPrefix(i, key) || strings.HasPrefix(n, key) {
			prefixed = append(prefixed, it)
		}
	}
	if len(prefixed) == 1 {
		return prefixed[0], true
	}
	return zero, false
}

// resolveRace accepts a race id or display name, or a unique prefix of one.
func resolveRace(lib *ruleset.Library, input string) (*ruleset.Race, bool) {
	if r, err := rules.ParsePlayableRace(input); err == nil {
		if race, err := lib.Race(string(r)); err == nil {
			return race, true
		}
	}
	return lookup(input, lib.Races(), raceKeys)
}

// resolveClass accepts a class id or display name, or a unique prefix of one.
func resolveClass(lib *ruleset.Library, input string) (*ruleset.Class, bool) {
	if c, err := rules.ParsePlayableClass(input); err == nil {
		if class, err := lib.Class(string(c)); err == nil {
			return class, true
		}
	}
	return lookup(input, lib.Classes(), classKeys)
}

func raceKeys(r *ruleset.Race) (string, string)           { return r.ID, r.Name }
func altTraitKeys(a *ruleset.AltTrait) (string, string)   { return a.ID, a.Name }
func classKeys(c *ruleset.Class) (string, string)         { return c.ID, c.Name }
func archetypeKeys(a *ruleset.Archetype) (string, string) { return a.ID, a.Name }

func favoredKeys(o *ruleset.FavoredClassOption) (string, string) { return o.ID, o.Kind }

func handleTab(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	t, err := selection.ParseTab(p.Joined(0))
	if err != nil {
		return stay, err
	}
	c.state.SetTab(t)
	return stay, nil
}

func handleSub(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	arg := p.Joined(0)
	switch c.state.View().Tab {
	case selection.TabRace:
		t, err := selection.ParseRaceTab(arg)
		if err != nil {
			return stay, err
		}
		c.state.SetRaceTab(t)
	case selection.TabClass:
		t, err := selection.ParseClassTab(arg)
		if err != nil {
			return stay, err
		}
		c.state.SetClassTab(t)
	default:
		return stay, errors.New("only the race and class tabs have sub-tabs")
	}
	return stay, nil
}

func handleRace(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	lib := c.h.engine.Library()
	race, ok := resolveRace(lib, p.Joined(0))
	if !ok {
		return stay, fmt.Errorf("no race matches %q", p.Joined(0))
	}
	if race.ID != c.d.Choices.Race {
		c.d.Choices.ResetRace()
		c.d.Choices.Race = race.ID
		c.changed = true
	}
	c.state.SetTab(selection.TabRace)
	c.state.SetRace(race.ID)
	return stay, nil
}

func handleTrait(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	race := c.d.Choices.Race
	if race == "" {
		return stay, errors.New("choose a race first")
	}
	lib := c.h.engine.Library()
	alt, ok := lookup(p.Joined(0), lib.AltTraitsFor(race), altTraitKeys)
	if !ok {
		return stay, fmt.Errorf("no alternate %s trait matches %q", race, p.Joined(0))
	}
	rb, err := c.h.engine.RaceBuilder(race, c.d.Choices.AltTraits)
	if err != nil {
		return stay, err
	}
	selected, err := rb.Toggle(alt.ID)
	if err != nil {
		return stay, err
	}
	c.d.Choices.AltTraits = rb.Selected()
	c.changed = true

	c.state.SetTab(selection.TabRace)
	c.state.SetRace(race)
	c.state.SetRaceTab(selection.RaceAltTraits)
	c.state.SetTrait(alt.ID)
	if selected {
		c.say(telnet.Colorf(telnet.Green, "%s selected.", alt.Name))
	} else {
		c.say(telnet.Colorf(telnet.Green, "%s removed.", alt.Name))
	}
	return stay, nil
}

func handleReset(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	switch fold(p.Joined(0)) {
	case "race":
		c.d.Choices.ResetRace()
	case "class":
		c.d.Choices.ResetClass()
	default:
		return stay, errors.New("usage: reset <race|class>")
	}
	c.changed = true
	return stay, nil
}

func handleClass(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	lib := c.h.engine.Library()
	class, ok := resolveClass(lib, p.Joined(0))
	if !ok {
		return stay, fmt.Errorf("no class matches %q", p.Joined(0))
	}
	if class.ID != c.d.Choices.Class {
		c.d.Choices.ResetClass()
		c.d.Choices.Class = class.ID
		c.changed = true
	}
	c.state.SetTab(selection.TabClass)
	c.state.SetClass(class.ID)
	return stay, nil
}

func handleArchetype(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	class := c.d.Choices.Class
	if class == "" {
		return stay, errors.New("choose a class first")
	}
	lib := c.h.engine.Library()
	arch, ok := lookup(p.Joined(0), lib.ArchetypesFor(class), archetypeKeys)
	if !ok {
		return stay, fmt.Errorf("no %s archetype matches %q", class, p.Joined(0))
	}
	cb, err := c.h.engine.ClassBuilder(class, c.d.Choices.Race, c.d.Choices.Archetypes, "")
	if err != nil {
		return stay, err
	}
	added, err := cb.ToggleArchetype(arch.ID)
	if err != nil {
		return stay, err
	}
	c.d.Choices.Archetypes = cb.Archetypes()
	c.changed = true

	c.state.SetTab(selection.TabClass)
	c.state.SetClass(class)
	c.state.SetClassTab(selection.ClassArchetypes)
	c.state.SetArchetype(arch.ID)
	if added {
		c.say(telnet.Colorf(telnet.Green, "%s applied.", arch.Name))
	} else {
		c.say(telnet.Colorf(telnet.Green, "%s removed.", arch.Name))
	}
	return stay, nil
}

func handleFavored(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	race, class := c.d.Choices.Race, c.d.Choices.Class
	if race == "" || class == "" {
		return stay, errors.New("choose a race and a class first")
	}
	options := c.h.engine.Library().FavoredClassOptions(race, class)
	if len(p.Args) == 0 {
		lines := []string{"Favored class options:"}
		for _, o := range options {
			lines = append(lines, fmt.Sprintf("  %s %s", telnet.Colorize(telnet.Green, telnet.Pad(o.ID, 26)), o.Description))
		}
		c.say(lines...)
		return stay, nil
	}
	opt, ok := lookup(p.Joined(0), options, favoredKeys)
	if !ok {
		return stay, fmt.Errorf("no favored class option matches %q", p.Joined(0))
	}
	c.d.Choices.FavoredOption = opt.ID
	c.changed = true
	c.state.SetTab(selection.TabRace)
	c.state.SetRaceTab(selection.RaceFavoredClass)
	return stay, nil
}

func handleRoll(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	if len(p.Args) == 0 {
		return stay, errors.New("usage: roll <standard|classic|heroic|pointbuy> [budget]")
	}
	m, err := dice.ParseMethod(p.Args[0])
	if err != nil {
		return stay, err
	}
	if m == dice.MethodPointBuy {
		budget, err := parseBudget(p.Joined(1))
		if err != nil {
			return stay, err
		}
		c.d.StartPointBuy(budget)
		c.say(telnet.Colorf(telnet.Green, "Point buy with %d points. Use 'assign <ability> <score>' to buy scores.", budget))
	} else {
		rolls, err := c.h.roller.RollAbilities(m)
		if err != nil {
			return stay, err
		}
		c.d.StartRolled(m, dice.Totals(rolls))
		lines := make([]string, 0, len(rolls)+1)
		for _, r := range rolls {
			lines = append(lines, "  "+r.String())
		}
		lines = append(lines, telnet.Colorize(telnet.Green, "Use 'assign <ability> <score>' to place each roll."))
		c.say(lines...)
		c.h.logger.Info("abilities rolled",
			zap.String("username", c.sess.Username),
			zap.String("method", string(m)),
			zap.Ints("totals", dice.Totals(rolls)),
		)
	}
	c.changed = true
	c.state.SetTab(selection.TabAbilities)
	return stay, nil
}

// parseBudget accepts a campaign name or a number of points.
func parseBudget(s string) (dice.Budget, error) {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil {
		if n < 0 {
			return 0, fmt.Errorf("point buy budget %d must not be negative", n)
		}
		return dice.Budget(n), nil
	}
	return dice.ParseBudget(s)
}

func handleAssign(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	if len(p.Args) != 2 {
		return stay, errors.New("usage: assign <ability> <score>")
	}
	a, err := character.ParseAbility(p.Args[0])
	if err != nil {
		return stay, err
	}
	score, err := strconv.Atoi(p.Args[1])
	if err != nil {
		return stay, fmt.Errorf("score %q is not a number", p.Args[1])
	}
	if err := c.d.Assign(a, score); err != nil {
		return stay, err
	}
	c.changed = true
	c.state.SetTab(selection.TabAbilities)
	return stay, nil
}

func handleFloat(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	b, err := c.h.engine.Assemble(c.d.Choices)
	if err != nil {
		return stay, err
	}
	if len(b.FloatingAbility) == 0 {
		return stay, errors.New("nothing grants a floating ability bonus")
	}

	var key, abilityArg string
	switch len(p.Args) {
	case 1:
		abilityArg = p.Args[0]
		pending := b.PendingFloatingAbility()
		switch {
		case len(pending) > 0:
			key = pending[0].Key()
		case len(b.FloatingAbility) == 1:
			key = b.FloatingAbility[0].Key()
		default:
			return stay, errors.New("every floating bonus is placed; name the one to move: float <source> <ability>")
		}
	case 2:
		key, abilityArg = p.Args[0], p.Args[1]
	default:
		return stay, errors.New("usage: float [source] <ability>")
	}

	a, err := character.ParseAbility(abilityArg)
	if err != nil {
		return stay, err
	}
	var found bool
	for _, f := range b.FloatingAbility {
		if fold(f.Key()) == fold(key) {
			key, found = f.Key(), true
			if !f.Permits(a) {
				return stay, fmt.Errorf("the %s bonus cannot be placed on %s", key, a)
			}
		}
	}
	if !found {
		return stay, fmt.Errorf("no floating bonus named %q", key)
	}

	if c.d.Choices.FloatingAbility == nil {
		c.d.Choices.FloatingAbility = make(map[string]character.Ability)
	}
	prev, had := c.d.Choices.FloatingAbility[key]
	c.d.Choices.FloatingAbility[key] = a
	if _, err := c.h.engine.Assemble(c.d.Choices); err != nil {
		if had {
			c.d.Choices.FloatingAbility[key] = prev
		} else {
			delete(c.d.Choices.FloatingAbility, key)
		}
		return stay, err
	}
	c.changed = true
	c.state.SetTab(selection.TabAbilities)
	return stay, nil
}

func handleFeat(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	if len(p.Args) < 2 {
		return stay, errors.New("usage: feat <source> <feat>")
	}
	b, err := c.h.engine.Assemble(c.d.Choices)
	if err != nil {
		return stay, err
	}
	source := ""
	for _, f := range b.FloatingFeats {
		if fold(f.Source) == fold(p.Args[0]) {
			source = f.Source
		}
	}
	if source == "" {
		return stay, fmt.Errorf("no bonus feat slot named %q", p.Args[0])
	}

	if c.d.Choices.BonusFeats == nil {
		c.d.Choices.BonusFeats = make(map[string]string)
	}
	prev, had := c.d.Choices.BonusFeats[source]
	c.d.Choices.BonusFeats[source] = p.Joined(1)
	if _, err := c.h.engine.Assemble(c.d.Choices); err != nil {
		if had {
			c.d.Choices.BonusFeats[source] = prev
		} else {
			delete(c.d.Choices.BonusFeats, source)
		}
		return stay, err
	}
	c.changed = true
	return stay, nil
}

func handleName(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	name := strings.TrimSpace(p.RawArgs)
	if n := len([]rune(name)); n < minNameLength || n > maxNameLength {
		return stay, fmt.Errorf("name must be %d-%d characters", minNameLength, maxNameLength)
	}
	c.d.Choices.Name = name
	c.changed = true
	c.say(telnet.Colorf(telnet.Green, "Your character is named %s.", name))
	return stay, nil
}

func handleBonus(_ context.Context, c *creation, _ command.ParseResult) (outcome, error) {
	b, err := c.h.engine.Assemble(c.d.Choices)
	if err != nil {
		return stay, err
	}
	text := strings.TrimRight(character.FormatBonuses(b), "\n")
	if text == "" {
		c.say("No bonuses yet.")
		return stay, nil
	}
	c.say(strings.Split(text, "\n")...)
	return stay, nil
}

func handleSheet(_ context.Context, c *creation, _ command.ParseResult) (outcome, error) {
	s, err := c.h.engine.Sheet(c.d.Choices)
	if errors.Is(err, character.ErrIncomplete) {
		return stay, errors.New("choose a race and a class first")
	}
	if err != nil {
		return stay, err
	}
	c.say(strings.Split(strings.TrimRight(character.FormatSheet(s), "\n"), "\n")...)
	return stay, nil
}

func handleSave(ctx context.Context, c *creation, _ command.ParseResult) (outcome, error) {
	s, err := c.h.engine.Sheet(c.d.Choices)
	if errors.Is(err, character.ErrIncomplete) {
		return stay, errors.New("choose a race and a class first")
	}
	if err != nil {
		return stay, err
	}
	if c.d.Choices.Method == "" {
		return stay, errors.New("generate ability scores first")
	}
	if left := c.d.Unassigned(); !c.d.PointBuy() && len(left) > 0 {
		return stay, fmt.Errorf("%d ability scores are still unassigned", len(left))
	}
	ch, err := character.FromSheet(c.sess.AccountID, s)
	if err != nil {
		return stay, err
	}

	saved, err := c.h.characters.Create(ctx, ch)
	if errors.Is(err, postgres.ErrCharacterNameTaken) {
		return stay, fmt.Errorf("you already have a character named %s", ch.Name)
	}
	if err != nil {
		c.h.logger.Error("saving character", zap.String("username", c.sess.Username), zap.Error(err))
		return stay, errInternal
	}

	c.discard(ctx)
	c.h.logger.Info("character created",
		zap.String("username", c.sess.Username),
		zap.Int64("character", saved.ID),
		zap.String("name", saved.Name),
		zap.String("race", saved.Race),
		zap.String("class", saved.Class),
	)
	c.say(telnet.Colorf(telnet.BrightYellow, "%s has been saved.", saved.Name))
	return leave, nil
}

func handleCancel(ctx context.Context, c *creation, _ command.ParseResult) (outcome, error) {
	c.discard(ctx)
	c.say(telnet.Colorize(telnet.Yellow, "Draft discarded."))
	return leave, nil
}

// discard removes the draft from the store and the session.
func (c *creation) discard(ctx context.Context) {
	if c.d.ID != "" {
		if err := c.h.drafts.Delete(ctx, c.d.ID); err != nil && !errors.Is(err, draft.ErrNotFound) {
			c.h.logger.Warn("deleting draft", zap.String("draft", c.d.ID), zap.Error(err))
		}
	}
	if err := c.h.sessions.SetDraft(c.sess.ID, ""); err != nil {
		c.h.logger.Warn("clearing session draft", zap.Error(err))
	}
	c.changed, c.moved = false, false
}

func handleHelp(_ context.Context, c *creation, _ command.ParseResult) (outcome, error) {
	c.say(renderHelp(c.h.registry, c.sess.Role)...)
	return stay, nil
}

func handleQuit(_ context.Context, c *creation, _ command.ParseResult) (outcome, error) {
	if c.d.ID != "" {
		c.say(telnet.Colorize(telnet.Cyan, "Your draft has been kept. Goodbye."))
	} else {
		c.say(telnet.Colorize(telnet.Cyan, "Goodbye."))
	}
	return disconnect, nil
}

func handleWho(_ context.Context, c *creation, _ command.ParseResult) (outcome, error) {
	list := c.h.sessions.List()
	lines := []string{telnet.Colorf(telnet.BrightWhite, "%d connected:", len(list))}
	for _, s := range list {
		drafting := "menu"
		if s.DraftID != "" {
			drafting = "creating"
		}
		lines = append(lines, fmt.Sprintf("  %s %s %s %s",
			telnet.Pad(s.Username, 20), telnet.Pad(s.Role, 7), telnet.Pad(drafting, 9),
			time.Since(s.Started).Round(time.Second)))
	}
	c.say(lines...)
	return stay, nil
}

func handleAnnounce(_ context.Context, c *creation, p command.ParseResult) (outcome, error) {
	msg := strings.TrimSpace(p.RawArgs)
	if msg == "" {
		return stay, errors.New("usage: announce <message>")
	}
	n := c.h.sessions.Broadcast(c.sess.Username + ": " + msg)
	c.h.logger.Info("announcement sent",
		zap.String("username", c.sess.Username),
		zap.Int("delivered", n),
	)
	c.say(telnet.Colorf(telnet.Green, "Delivered to %d sessions.", n))
	return stay, nil
}
