package rules

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/ruleset"
	"github.com/cory-johannsen/charforge/internal/scripting"
)

// ErrTraitNotAvailable is returned when an alternate trait cannot be selected
// for the current race and trait list.
var ErrTraitNotAvailable = errors.New("trait not available")

// RaceBuilder tracks the trait list of one race while the player swaps
// alternate traits in and out. A new RaceBuilder is made whenever the selected
// race changes.
//
// A RaceBuilder is not safe for concurrent use.
type RaceBuilder struct {
	race     *ruleset.Race
	defaults []RacialTraitName
	alts     map[string]*ruleset.AltTrait
	order    []*ruleset.AltTrait
	selected []string
	traits   []RacialTraitName
	runner   *scripting.Runner
}

// RaceOption configures a RaceBuilder.
type RaceOption func(*RaceBuilder)

// WithScriptRunner lets the builder apply scripted alternate traits.
func WithScriptRunner(r *scripting.Runner) RaceOption {
	return func(rb *RaceBuilder) { rb.runner = r }
}

// NewRaceBuilder returns a builder holding exactly the default traits of race.
//
// Precondition: lib must be non-nil.
// Postcondition: Returns the builder, or an error wrapping ruleset.ErrNotFound
// when race or its default traits are not in lib.
func NewRaceBuilder(race PlayableRace, lib *ruleset.Library, opts ...RaceOption) (*RaceBuilder, error) {
	r, err := lib.Race(string(race))
	if err != nil {
		return nil, err
	}
	d, err := lib.DefaultTraitsFor(r.ID)
	if err != nil {
		return nil, err
	}
	rb := &RaceBuilder{
		race:  r,
		alts:  make(map[string]*ruleset.AltTrait),
		order: lib.AltTraitsFor(r.ID),
	}
	for _, id := range d.IDs() {
		rb.defaults = append(rb.defaults, RacialTraitName(id))
	}
	for _, a := range rb.order {
		rb.alts[a.ID] = a
	}
	for _, o := range opts {
		o(rb)
	}
	rb.recompute()
	return rb, nil
}

// Race returns the race content the builder was made for.
func (rb *RaceBuilder) Race() *ruleset.Race {
	return rb.race
}

// Traits returns the current trait list: defaults in content order with each
// selected alternate in the place of the first trait it replaces.
func (rb *RaceBuilder) Traits() []RacialTraitName {
	return append([]RacialTraitName(nil), rb.traits...)
}

// Defaults returns the race's default traits in content order.
func (rb *RaceBuilder) Defaults() []RacialTraitName {
	return append([]RacialTraitName(nil), rb.defaults...)
}

// Selected returns the selected alternate trait ids in selection order.
func (rb *RaceBuilder) Selected() []string {
	return append([]string(nil), rb.selected...)
}

// Available returns the alternate traits of the race sorted by name.
func (rb *RaceBuilder) Available() []*ruleset.AltTrait {
	return append([]*ruleset.AltTrait(nil), rb.order...)
}

// IsSelected reports whether the alternate trait id is selected.
func (rb *RaceBuilder) IsSelected(id string) bool {
	for _, s := range rb.selected {
		if s == id {
			return true
		}
	}
	return false
}

// Has reports whether trait is in the current trait list.
func (rb *RaceBuilder) Has(trait RacialTraitName) bool {
	for _, t := range rb.traits {
		if t == trait {
			return true
		}
	}
	return false
}

// Select swaps in the alternate trait id, removing every trait it replaces.
// Selecting an already selected trait is a no-op.
//
// Postcondition: Returns nil on success, or an error wrapping
// ErrTraitNotAvailable when id is not an alternate trait of this race or one
// of the traits it replaces was already replaced by another selection.
func (rb *RaceBuilder) Select(id string) error {
	a, ok := rb.alts[id]
	if !ok {
		return fmt.Errorf("alternate trait %q for %s: %w", id, rb.race.Name, ErrTraitNotAvailable)
	}
	if rb.IsSelected(id) {
		return nil
	}
	for _, r := range a.Replaces {
		if !rb.Has(RacialTraitName(r)) {
			return fmt.Errorf("alternate trait %q replaces %q which is no longer present: %w", id, r, ErrTraitNotAvailable)
		}
	}
	rb.selected = append(rb.selected, id)
	rb.recompute()
	return nil
}

// Deselect removes the alternate trait id and restores the defaults it replaced.
//
// Postcondition: Returns nil on success, or an error wrapping
// ErrTraitNotAvailable when id is not selected.
func (rb *RaceBuilder) Deselect(id string) error {
	for i, s := range rb.selected {
		if s == id {
			rb.selected = append(rb.selected[:i], rb.selected[i+1:]...)
			rb.recompute()
			return nil
		}
	}
	return fmt.Errorf("alternate trait %q is not selected: %w", id, ErrTraitNotAvailable)
}

// Toggle selects id when it is not selected and deselects it otherwise.
//
// Postcondition: selected reports the state after the call.
func (rb *RaceBuilder) Toggle(id string) (selected bool, err error) {
	if rb.IsSelected(id) {
		return false, rb.Deselect(id)
	}
	if err := rb.Select(id); err != nil {
		return false, err
	}
	return true, nil
}

func (rb *RaceBuilder) recompute() {
	replacedBy := make(map[RacialTraitName]string)
	for _, id := range rb.selected {
		for _, r := range rb.alts[id].Replaces {
			replacedBy[RacialTraitName(r)] = id
		}
	}
	placed := make(map[string]bool)
	rb.traits = rb.traits[:0]
	for _, d := range rb.defaults {
		alt, ok := replacedBy[d]
		if !ok {
			rb.traits = append(rb.traits, d)
			continue
		}
		if !placed[alt] {
			rb.traits = append(rb.traits, RacialTraitName(alt))
			placed[alt] = true
		}
	}
}

// TraitEffects returns the effects of trait as this builder would apply them:
// built-in effects first, then the alternate trait's script if it has one.
//
// Postcondition: Returns the effects, or an error wrapping ErrUnknownTrait,
// or a script error.
func (rb *RaceBuilder) TraitEffects(trait RacialTraitName) ([]Effect, error) {
	effects, err := Effects(trait)
	if err == nil {
		return effects, nil
	}
	a, ok := rb.alts[string(trait)]
	if !ok || !a.Scripted() || rb.runner == nil {
		return nil, err
	}
	return ScriptEffects(rb.runner, a.ID, a.Script)
}

// Build applies every current trait to b and records the race and selected
// alternates on it. Traits without effects are skipped and logged.
//
// Precondition: b and logger must be non-nil.
// Postcondition: Returns the traits that were skipped.
func (rb *RaceBuilder) Build(b *character.Builder, logger *zap.Logger) []RacialTraitName {
	b.Race = rb.race.ID
	b.AltTraits = rb.Selected()
	var skipped []RacialTraitName
	for _, t := range rb.traits {
		effects, err := rb.TraitEffects(t)
		if err != nil {
			if errors.Is(err, ErrUnknownTrait) {
				logger.Debug("skipping unrecognized trait",
					zap.String("race", rb.race.ID),
					zap.String("trait", string(t)),
				)
			} else {
				logger.Warn("skipping trait",
					zap.String("race", rb.race.ID),
					zap.String("trait", string(t)),
					zap.Error(err),
				)
			}
			skipped = append(skipped, t)
			continue
		}
		for _, e := range effects {
			e.Apply(b)
		}
	}
	return skipped
}
