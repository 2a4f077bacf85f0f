package rules

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/charforge/internal/game/bonus"
	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/scripting"
)

// scriptGrants collects the effects declared by a trait script.
type scriptGrants struct {
	effects []Effect
}

var _ scripting.Grants = (*scriptGrants)(nil)

func (g *scriptGrants) Skill(name, bonusType string, value int, condition string) error {
	s, err := character.ParseSkill(name)
	if err != nil {
		return err
	}
	t, err := bonus.ParseBonusType(bonusType)
	if err != nil {
		return err
	}
	g.effects = append(g.effects, SkillEffect{Skill: s, Type: t, Value: value, Condition: condition})
	return nil
}

func (g *scriptGrants) Ability(name, bonusType string, value int) error {
	a, err := character.ParseAbility(name)
	if err != nil {
		return err
	}
	t, err := bonus.ParseBonusType(bonusType)
	if err != nil {
		return err
	}
	g.effects = append(g.effects, AbilityEffect{Ability: a, Type: t, Value: value})
	return nil
}

func (g *scriptGrants) Save(name, bonusType string, value int, condition string) error {
	t, err := bonus.ParseBonusType(bonusType)
	if err != nil {
		return err
	}
	e := SaveEffect{Type: t, Value: value, Condition: condition}
	if name != "all" {
		found := false
		for _, s := range character.Saves() {
			if string(s) == normalize(name) {
				e.Saves = []character.Save{s}
				found = true
			}
		}
		if !found {
			return fmt.Errorf("unknown save %q", name)
		}
	}
	g.effects = append(g.effects, e)
	return nil
}

func (g *scriptGrants) Language(name string) error {
	if name == "" {
		return errors.New("language name must not be empty")
	}
	g.effects = append(g.effects, LanguageEffect{Automatic: []string{name}})
	return nil
}

func (g *scriptGrants) Sense(name string, feet int) error {
	var s character.Sense
	switch character.Sense(normalize(name)) {
	case character.Darkvision:
		s = character.Darkvision
	case character.LowLightVision:
		s = character.LowLightVision
	case character.Scent:
		s = character.Scent
	default:
		return fmt.Errorf("unknown sense %q", name)
	}
	if feet < 0 {
		return fmt.Errorf("sense range must be >= 0, got %d", feet)
	}
	g.effects = append(g.effects, SenseEffect{Sense: s, Feet: feet})
	return nil
}

// ScriptEffects runs a trait script and returns the effects it declares, each
// carrying trait as its source.
//
// Precondition: runner must be non-nil.
// Postcondition: Returns the effects, or the script error.
func ScriptEffects(runner *scripting.Runner, trait, src string) ([]Effect, error) {
	g := &scriptGrants{}
	if err := runner.Run(trait, src, g); err != nil {
		return nil, err
	}
	out := make([]Effect, len(g.effects))
	for i, e := range g.effects {
		out[i] = e.withSource(trait)
	}
	return out, nil
}
