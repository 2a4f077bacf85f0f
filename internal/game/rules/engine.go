package rules

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/ruleset"
	"github.com/cory-johannsen/charforge/internal/scripting"
)

// Choices is everything a player has decided about a character. A Builder is
// always rebuilt from scratch from Choices, so changing the race discards
// every modifier of the previous race.
type Choices struct {
	Name          string                   `json:"name"`
	Race          string                   `json:"race,omitempty"`
	AltTraits     []string                 `json:"alt_traits,omitempty"`
	Class         string                   `json:"class,omitempty"`
	Archetypes    []string                 `json:"archetypes,omitempty"`
	FavoredOption string                   `json:"favored_option,omitempty"`
	Method        string                   `json:"method,omitempty"`
	Abilities     *character.AbilityScores `json:"abilities,omitempty"`

	// FloatingAbility maps a floating bonus key to the chosen ability.
	FloatingAbility map[string]character.Ability `json:"floating_ability,omitempty"`

	// BonusFeats maps a bonus feat source to the chosen feat.
	BonusFeats map[string]string `json:"bonus_feats,omitempty"`
}

// ResetRace clears the race and every choice that depends on it.
func (c *Choices) ResetRace() {
	c.Race = ""
	c.AltTraits = nil
	c.FloatingAbility = nil
	c.BonusFeats = nil
	c.FavoredOption = ""
}

// ResetClass clears the class and every choice that depends on it.
func (c *Choices) ResetClass() {
	c.Class = ""
	c.Archetypes = nil
	c.FavoredOption = ""
}

// Engine assembles characters from Choices against a content Library.
//
// Engine is safe for concurrent use; every call builds its own Builder.
type Engine struct {
	lib    *ruleset.Library
	runner *scripting.Runner
	logger *zap.Logger
}

// NewEngine creates an Engine. A nil runner disables scripted traits.
//
// Precondition: lib and logger must be non-nil.
// Postcondition: Returns a non-nil Engine.
func NewEngine(lib *ruleset.Library, runner *scripting.Runner, logger *zap.Logger) *Engine {
	return &Engine{lib: lib, runner: runner, logger: logger}
}

// Library returns the content library.
func (e *Engine) Library() *ruleset.Library {
	return e.lib
}

// RaceBuilder returns a RaceBuilder for race, given as an id or display name,
// with alts selected in order.
//
// Postcondition: Returns the builder, or the first lookup or selection error.
func (e *Engine) RaceBuilder(race string, alts []string) (*RaceBuilder, error) {
	r, err := ParsePlayableRace(race)
	if err != nil {
		return nil, err
	}
	var opts []RaceOption
	if e.runner != nil {
		opts = append(opts, WithScriptRunner(e.runner))
	}
	rb, err := NewRaceBuilder(r, e.lib, opts...)
	if err != nil {
		return nil, err
	}
	for _, id := range alts {
		if err := rb.Select(id); err != nil {
			return nil, err
		}
	}
	return rb, nil
}

// ClassBuilder returns a ClassBuilder for class, given as an id or display
// name, with archetypes applied in order and the favored class option for
// race resolved.
//
// Postcondition: Returns the builder, or the first lookup or conflict error.
func (e *Engine) ClassBuilder(class, race string, archetypes []string, favored string) (*ClassBuilder, error) {
	c, err := ParsePlayableClass(class)
	if err != nil {
		return nil, err
	}
	cb, err := NewClassBuilder(c, e.lib)
	if err != nil {
		return nil, err
	}
	for _, id := range archetypes {
		if err := cb.AddArchetype(id); err != nil {
			return nil, err
		}
	}
	if favored != "" {
		if r, err := ParsePlayableRace(race); err == nil {
			race = string(r)
		}
		var opt *ruleset.FavoredClassOption
		for _, o := range e.lib.FavoredClassOptions(race, string(c)) {
			if o.ID == favored {
				opt = o
				break
			}
		}
		if opt == nil {
			return nil, fmt.Errorf("favored class option %q for %s %s: %w", favored, race, c, ruleset.ErrNotFound)
		}
		cb.SetFavored(opt)
	}
	return cb, nil
}

// Assemble builds a character.Builder from c: base abilities, then the race
// and its traits, then the class and archetypes, then floating choices.
//
// Postcondition: Returns the Builder, or an error for any choice that is not
// valid against the library.
func (e *Engine) Assemble(c Choices) (*character.Builder, error) {
	b := character.New()
	b.Name = c.Name
	if c.Abilities != nil {
		b.BaseAbilities = *c.Abilities
	}

	if c.Race != "" {
		rb, err := e.RaceBuilder(c.Race, c.AltTraits)
		if err != nil {
			return nil, fmt.Errorf("race: %w", err)
		}
		rb.Build(b, e.logger)
	}
	if c.Class != "" {
		cb, err := e.ClassBuilder(c.Class, c.Race, c.Archetypes, c.FavoredOption)
		if err != nil {
			return nil, fmt.Errorf("class: %w", err)
		}
		cb.Build(b, e.logger)
	}

	// Choices left over from traits no longer selected are ignored.
	offered := make(map[string]bool)
	for _, f := range b.FloatingAbility {
		offered[f.Key()] = true
	}
	for _, f := range b.FloatingFeats {
		offered["feat:"+f.Source] = true
	}
	for _, key := range sortedKeys(c.FloatingAbility) {
		if !offered[key] {
			e.logger.Debug("ignoring stale floating ability choice", zap.String("key", key))
			continue
		}
		if err := b.ChooseFloatingAbility(key, c.FloatingAbility[key]); err != nil {
			return nil, err
		}
	}
	for _, src := range sortedKeys(c.BonusFeats) {
		if !offered["feat:"+src] {
			e.logger.Debug("ignoring stale bonus feat choice", zap.String("source", src))
			continue
		}
		if err := b.ChooseFloatingFeat(src, c.BonusFeats[src]); err != nil {
			return nil, err
		}
	}
	b.Dump(e.logger)
	return b, nil
}

// Sheet assembles c and derives its sheet.
//
// Postcondition: Returns the Sheet, or an assembly error, or character.ErrIncomplete.
func (e *Engine) Sheet(c Choices) (*character.Sheet, error) {
	b, err := e.Assemble(c)
	if err != nil {
		return nil, err
	}
	return character.Derive(b)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
