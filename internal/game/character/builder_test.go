package character_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charforge/internal/game/bonus"
	"github.com/cory-johannsen/charforge/internal/game/character"
)

func TestNew_Defaults(t *testing.T) {
	b := character.New()
	assert.Equal(t, 1, b.Level)
	assert.Equal(t, character.Medium, b.Size)
	assert.Equal(t, 30, b.Speed)
	assert.Equal(t, 1, b.FavoredClassSlots)
	assert.Equal(t, character.DefaultAbilityScores(), b.BaseAbilities)
	assert.Equal(t, 0, b.Skills.Len())
	assert.Empty(t, b.FloatingAbility)
	assert.Empty(t, b.FloatingFeats)
}

func TestReset_KeepsNameOnly(t *testing.T) {
	b := character.New()
	b.Name = "Ragna"
	b.Race = "dwarf"
	b.Speed = 20
	b.Skills.Add(character.Perception, bonus.Bonus{Type: bonus.Racial, Value: 2, Source: "KeenSenses"})
	b.AddLanguage("Dwarven")
	b.AddFloatingFeat(character.FloatingFeat{Source: "BonusFeat"})

	b.Reset()

	assert.Equal(t, "Ragna", b.Name)
	assert.Empty(t, b.Race)
	assert.Equal(t, 30, b.Speed)
	assert.Equal(t, 0, b.Skills.Len())
	assert.Empty(t, b.Languages)
	assert.Empty(t, b.FloatingFeats)
}

func TestAddLanguage_Unique(t *testing.T) {
	b := character.New()
	b.AddLanguage("Common")
	b.AddLanguage("Common")
	b.AddBonusLanguage("Giant")
	b.AddBonusLanguage("Giant")
	assert.Equal(t, []string{"Common"}, b.Languages)
	assert.Equal(t, []string{"Giant"}, b.BonusLanguages)
}

func TestProperty_ResetLeavesNoTrace(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		b := character.New()
		sources := []string{"A", "B", "C"}
		n := rapid.IntRange(1, 20).Draw(rt, "n")
		for i := 0; i < n; i++ {
			src := rapid.SampledFrom(sources).Draw(rt, "source")
			skill := rapid.SampledFrom(character.AllSkills()).Draw(rt, "skill")
			v := rapid.IntRange(-4, 4).Draw(rt, "value")
			b.Skills.Add(skill, bonus.Bonus{Type: bonus.Racial, Value: v, Source: src})
			b.Saves.Add(character.Will, bonus.Bonus{Type: bonus.Luck, Value: v, Source: src})
			b.AddFloatingAbility(character.FloatingAbilityBonus{Source: src, Type: bonus.Racial, Value: 2})
			b.AddSense(character.Darkvision, 60)
		}
		b.Reset()
		if b.Skills.Len() != 0 || b.Saves.Len() != 0 || len(b.FloatingAbility) != 0 || len(b.Senses) != 0 {
			rt.Fatalf("builder not empty after Reset")
		}
	})
}

func TestFloatingAbility_SlotsFromOneSourceMustDiffer(t *testing.T) {
	b := character.New()
	b.AddFloatingAbility(character.FloatingAbilityBonus{Source: "DualTalent", Type: bonus.Racial, Value: 2})
	b.AddFloatingAbility(character.FloatingAbilityBonus{Source: "DualTalent", Slot: 1, Type: bonus.Racial, Value: 2})
	require.Len(t, b.FloatingAbility, 2)
	assert.Equal(t, "DualTalent", b.FloatingAbility[0].Key())
	assert.Equal(t, "DualTalent#2", b.FloatingAbility[1].Key())

	require.NoError(t, b.ChooseFloatingAbility("DualTalent", character.Strength))
	assert.Error(t, b.ChooseFloatingAbility("DualTalent#2", character.Strength))
	require.NoError(t, b.ChooseFloatingAbility("DualTalent#2", character.Constitution))
	require.NoError(t, b.ChooseFloatingAbility("DualTalent", character.Strength), "re-choosing the same target is allowed")
	assert.Empty(t, b.PendingFloatingAbility())
}
