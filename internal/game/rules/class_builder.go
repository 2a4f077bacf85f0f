package rules

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/ruleset"
)

// ErrArchetypeConflict is returned when an archetype belongs to another class
// or replaces a feature already replaced by a chosen archetype.
var ErrArchetypeConflict = errors.New("archetype conflict")

// ClassBuilder tracks a class and the archetypes applied to it.
//
// A ClassBuilder is not safe for concurrent use.
type ClassBuilder struct {
	class      *ruleset.Class
	lib        *ruleset.Library
	archetypes []*ruleset.Archetype
	favored    *ruleset.FavoredClassOption
}

// NewClassBuilder returns a builder for class with no archetypes.
//
// Precondition: lib must be non-nil.
// Postcondition: Returns the builder, or an error wrapping ruleset.ErrNotFound.
func NewClassBuilder(class PlayableClass, lib *ruleset.Library) (*ClassBuilder, error) {
	c, err := lib.Class(string(class))
	if err != nil {
		return nil, err
	}
	return &ClassBuilder{class: c, lib: lib}, nil
}

// Class returns the class content.
func (cb *ClassBuilder) Class() *ruleset.Class {
	return cb.class
}

// Archetypes returns the chosen archetype ids in the order they were added.
func (cb *ClassBuilder) Archetypes() []string {
	out := make([]string, len(cb.archetypes))
	for i, a := range cb.archetypes {
		out[i] = a.ID
	}
	return out
}

// HasArchetype reports whether the archetype id has been added.
func (cb *ClassBuilder) HasArchetype(id string) bool {
	for _, a := range cb.archetypes {
		if a.ID == id {
			return true
		}
	}
	return false
}

// AddArchetype applies the archetype, given as an id or display name. Adding
// an archetype twice is a no-op.
//
// Postcondition: Returns nil on success, an error wrapping ruleset.ErrNotFound
// for an unknown id, or an error wrapping ErrArchetypeConflict.
func (cb *ClassBuilder) AddArchetype(id string) error {
	name, err := ParseArchetypeName(id)
	if err != nil {
		return err
	}
	if name.Class() != PlayableClass(cb.class.ID) {
		return fmt.Errorf("archetype %q modifies %s, not %s: %w", id, name.Class(), PlayableClass(cb.class.ID), ErrArchetypeConflict)
	}
	a, err := cb.lib.Archetype(string(name))
	if err != nil {
		return err
	}
	if a.Class != cb.class.ID {
		return fmt.Errorf("archetype %q belongs to %q, not %q: %w", id, a.Class, cb.class.ID, ErrArchetypeConflict)
	}
	if cb.HasArchetype(a.ID) {
		return nil
	}
	for _, r := range a.Replaces {
		for _, existing := range cb.archetypes {
			if existing.ReplacesFeature(r) {
				return fmt.Errorf("archetype %q and %q both replace %q: %w", id, existing.ID, r, ErrArchetypeConflict)
			}
		}
	}
	cb.archetypes = append(cb.archetypes, a)
	return nil
}

// RemoveArchetype drops the archetype id.
//
// Postcondition: Returns an error wrapping ruleset.ErrNotFound if it was not added.
func (cb *ClassBuilder) RemoveArchetype(id string) error {
	for i, a := range cb.archetypes {
		if a.ID == id {
			cb.archetypes = append(cb.archetypes[:i], cb.archetypes[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("archetype %q is not applied: %w", id, ruleset.ErrNotFound)
}

// ToggleArchetype adds id when absent and removes it otherwise.
//
// Postcondition: added reports the state after the call.
func (cb *ClassBuilder) ToggleArchetype(id string) (added bool, err error) {
	if name, err := ParseArchetypeName(id); err == nil {
		id = string(name)
	}
	if cb.HasArchetype(id) {
		return false, cb.RemoveArchetype(id)
	}
	if err := cb.AddArchetype(id); err != nil {
		return false, err
	}
	return true, nil
}

// SetFavored chooses the favored class reward taken at first level. nil clears it.
func (cb *ClassBuilder) SetFavored(opt *ruleset.FavoredClassOption) {
	cb.favored = opt
}

// Favored returns the chosen favored class reward, or nil.
func (cb *ClassBuilder) Favored() *ruleset.FavoredClassOption {
	return cb.favored
}

// Features returns the class features for levels 1-20 after archetype
// replacements, ordered by level.
func (cb *ClassBuilder) Features() []ruleset.ClassFeature {
	var out []ruleset.ClassFeature
	for _, f := range cb.class.SortedFeatures() {
		replaced := false
		for _, a := range cb.archetypes {
			if a.ReplacesFeature(f.Name) {
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, f)
		}
	}
	for _, a := range cb.archetypes {
		out = append(out, a.Features...)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Level < out[j].Level })
	return out
}

// Build records the class at b.Level on b: hit die, base attack, base saves,
// class skills, features gained so far and the favored class reward.
//
// Precondition: b and logger must be non-nil; b.Level >= 1.
func (cb *ClassBuilder) Build(b *character.Builder, logger *zap.Logger) {
	c := cb.class
	info := &character.ClassInfo{
		ID:         c.ID,
		Name:       c.Name,
		HitDie:     c.HitDie,
		BaseAttack: c.BaseAttack(b.Level),
		BaseSaves:  make(map[character.Save]int, 3),
		SkillRanks: c.SkillRanks,
	}
	for _, s := range character.Saves() {
		info.BaseSaves[s] = c.BaseSave(string(s), b.Level)
	}
	for _, name := range c.ClassSkills {
		sk, err := character.ParseSkill(name)
		if err != nil {
			logger.Debug("skipping unknown class skill",
				zap.String("class", c.ID),
				zap.String("skill", name),
			)
			continue
		}
		info.ClassSkills = append(info.ClassSkills, sk)
	}
	for _, f := range cb.Features() {
		if f.Level <= b.Level {
			info.Features = append(info.Features, f.Name)
		}
	}
	if cb.favored != nil {
		info.FavoredKind = cb.favored.Kind
		info.FavoredDescription = cb.favored.Description
		if cb.favored.Kind == ruleset.FavoredRacial {
			b.AddNote("favored class: " + cb.favored.Description)
		}
	}
	b.SetClass(info)
	b.Archetypes = cb.Archetypes()
}
