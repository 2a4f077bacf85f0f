package draft_test

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/dice"
	"github.com/cory-johannsen/charforge/internal/storage/draft"
)

func TestAssign_RequiresMethod(t *testing.T) {
	d := draft.New(1)
	assert.ErrorIs(t, d.Assign(character.Strength, 15), draft.ErrNoMethod)
}

func TestAssign_RolledPool(t *testing.T) {
	d := draft.New(1)
	d.StartRolled(dice.MethodStandard, []int{12, 16, 9, 14, 16, 11})
	assert.Equal(t, []int{16, 16, 14, 12, 11, 9}, d.Remaining())
	assert.Nil(t, d.Choices.Abilities)

	require.NoError(t, d.Assign(character.Strength, 16))
	require.NoError(t, d.Assign(character.Constitution, 16))
	assert.Error(t, d.Assign(character.Dexterity, 16), "both 16s are used")
	assert.Error(t, d.Assign(character.Dexterity, 18))
	assert.Equal(t, []int{14, 12, 11, 9}, d.Remaining())

	require.NoError(t, d.Assign(character.Strength, 14), "reassigning frees the old score")
	assert.Equal(t, []int{16, 12, 11, 9}, d.Remaining())
	require.NotNil(t, d.Choices.Abilities)
	assert.Equal(t, 14, d.Choices.Abilities.Strength)
	assert.Equal(t, 10, d.Choices.Abilities.Wisdom)
	assert.Len(t, d.Unassigned(), 4)
}

func TestStartRolled_DiscardsAssignments(t *testing.T) {
	d := draft.New(1)
	d.StartRolled(dice.MethodClassic, []int{10, 11, 12, 13, 14, 15})
	require.NoError(t, d.Assign(character.Wisdom, 15))
	d.StartRolled(dice.MethodHeroic, []int{18, 17, 16, 15, 14, 13})
	assert.Len(t, d.Remaining(), 6)
	assert.Len(t, d.Unassigned(), 6)
	assert.Equal(t, "heroic", d.Choices.Method)
}

func TestAssign_PointBuy(t *testing.T) {
	d := draft.New(1)
	d.StartPointBuy(dice.BudgetStandard)
	assert.True(t, d.PointBuy())
	require.NotNil(t, d.Choices.Abilities)
	assert.Equal(t, 0, d.PointsSpent())

	require.NoError(t, d.Assign(character.Strength, 16))
	assert.Equal(t, 10, d.PointsSpent())
	require.NoError(t, d.Assign(character.Charisma, 7))
	assert.Equal(t, 6, d.PointsSpent())
	require.NoError(t, d.Assign(character.Constitution, 15))
	assert.Equal(t, 13, d.PointsSpent())

	assert.Error(t, d.Assign(character.Dexterity, 14), "would spend 18 of 15")
	assert.Equal(t, 10, d.Choices.Abilities.Dexterity, "failed assignment leaves the draft unchanged")
	assert.Error(t, d.Assign(character.Dexterity, 19))
}

// Property: the remaining pool plus the assigned scores is always the rolled pool.
func TestPropertyPoolConserved(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		rolled := rapid.SliceOfN(rapid.IntRange(3, 18), 6, 6).Draw(rt, "rolled")
		d := draft.New(1)
		d.StartRolled(dice.MethodStandard, rolled)
		steps := rapid.IntRange(0, 12).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			a := rapid.SampledFrom(character.Abilities()).Draw(rt, "ability")
			score := rapid.SampledFrom(rolled).Draw(rt, "score")
			_ = d.Assign(a, score)
		}
		all := d.Remaining()
		for _, v := range d.Assigned {
			all = append(all, v)
		}
		want := append([]int(nil), rolled...)
		sort.Ints(all)
		sort.Ints(want)
		if len(all) != len(want) {
			rt.Fatalf("pool %v, want %v", all, want)
		}
		for i := range all {
			if all[i] != want[i] {
				rt.Fatalf("pool %v, want %v", all, want)
			}
		}
	})
}
