package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/charforge/internal/game/dice"
)

// sequence returns the given die faces in order, cycling when exhausted.
type sequence struct {
	faces []int
	i     int
}

func (s *sequence) Intn(n int) int {
	f := s.faces[s.i%len(s.faces)]
	s.i++
	return (f - 1) % n
}

func TestRollResult_TotalIgnoresDropped(t *testing.T) {
	r := dice.RollResult{Expression: "4d6kh3", Dice: []int{6, 5, 3}, Dropped: []int{1}}
	assert.Equal(t, 14, r.Total())
}

func TestRollResult_String(t *testing.T) {
	r := dice.RollResult{Expression: "2d6+3", Dice: []int{4, 5}, Modifier: 3}
	assert.Equal(t, "2d6+3 → [4 5] +3 = 12", r.String())

	r = dice.RollResult{Expression: "4d6kh3", Dice: []int{6, 5, 3}, Dropped: []int{1}}
	assert.Equal(t, "4d6kh3 → [6 5 3] (dropped [1]) +0 = 14", r.String())
}

func TestRollResult_String_PanicsOnEmptyExpression(t *testing.T) {
	assert.Panics(t, func() { _ = dice.RollResult{}.String() })
}

func TestParse_Valid(t *testing.T) {
	cases := []struct {
		in   string
		want dice.Expression
	}{
		{"d20", dice.Expression{Raw: "d20", Count: 1, Sides: 20}},
		{"3d6", dice.Expression{Raw: "3d6", Count: 3, Sides: 6}},
		{"2d6+6", dice.Expression{Raw: "2d6+6", Count: 2, Sides: 6, Modifier: 6}},
		{"1d8-1", dice.Expression{Raw: "1d8-1", Count: 1, Sides: 8, Modifier: -1}},
		{"4d6kh3", dice.Expression{Raw: "4d6kh3", Count: 4, Sides: 6, KeepHighest: 3}},
		{"4D6KH3+1", dice.Expression{Raw: "4D6KH3+1", Count: 4, Sides: 6, KeepHighest: 3, Modifier: 1}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := dice.Parse(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, in := range []string{"", "d", "6", "0d6", "2d1", "4d6kh4", "4d6kh0", "2d6+", "2x6", "d6d6"} {
		t.Run(in, func(t *testing.T) {
			_, err := dice.Parse(in)
			assert.Error(t, err)
		})
	}
}

func TestMustParse_Panics(t *testing.T) {
	assert.Panics(t, func() { dice.MustParse("nope") })
}

func TestRoll_KeepHighestDropsLowest(t *testing.T) {
	res := dice.Roll(dice.MustParse("4d6kh3"), &sequence{faces: []int{2, 6, 1, 4}})
	assert.Equal(t, []int{6, 4, 2}, res.Dice)
	assert.Equal(t, []int{1}, res.Dropped)
	assert.Equal(t, 12, res.Total())
}

func TestRollExpr_Modifier(t *testing.T) {
	res, err := dice.RollExpr("2d6+6", &sequence{faces: []int{3, 5}})
	require.NoError(t, err)
	assert.Equal(t, 14, res.Total())

	_, err = dice.RollExpr("bad", &sequence{faces: []int{1}})
	assert.Error(t, err)
}

func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 500; i++ {
		v := src.Intn(6)
		require.True(t, v >= 0 && v < 6, "got %d", v)
	}
	assert.Panics(t, func() { src.Intn(0) })
}

func TestSeededSource_Reproducible(t *testing.T) {
	a, b := dice.NewSeededSource(42), dice.NewSeededSource(42)
	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(20), b.Intn(20))
	}
}

func TestRoller_LogsAtDebug(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := dice.NewLoggedRoller(&sequence{faces: []int{4}}, zap.New(core))
	res, err := r.RollExpr("1d6+1")
	require.NoError(t, err)
	assert.Equal(t, 5, res.Total())

	entries := logs.FilterMessage("dice roll").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "1d6+1", entries[0].ContextMap()["expression"])
	assert.EqualValues(t, 5, entries[0].ContextMap()["total"])
}

func TestNewLoggedRoller_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { dice.NewLoggedRoller(nil, zap.NewNop()) })
}

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]dice.Method{
		"standard": dice.MethodStandard,
		"4d6":      dice.MethodStandard,
		"Classic":  dice.MethodClassic,
		"2d6+6":    dice.MethodHeroic,
		"pointbuy": dice.MethodPointBuy,
	} {
		got, err := dice.ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := dice.ParseMethod("5d6")
	assert.Error(t, err)
}

func TestRollAbilities_Standard(t *testing.T) {
	r := dice.NewLoggedRoller(&sequence{faces: []int{1, 6, 5, 3}}, zaptest.NewLogger(t))
	rolls, err := r.RollAbilities(dice.MethodStandard)
	require.NoError(t, err)
	assert.Equal(t, []int{14, 14, 14, 14, 14, 14}, dice.Totals(rolls))
	for _, roll := range rolls {
		assert.Equal(t, []int{1}, roll.Dropped)
	}
}

func TestRollAbilities_PointBuyIsNotRolled(t *testing.T) {
	r := dice.NewLoggedRoller(dice.NewCryptoSource(), zap.NewNop())
	_, err := r.RollAbilities(dice.MethodPointBuy)
	assert.ErrorIs(t, err, dice.ErrNotRolled)
	_, err = r.RollAbilities(dice.Method("5d6"))
	assert.Error(t, err)
}

func TestPointBuyCost(t *testing.T) {
	want := map[int]int{7: -4, 8: -2, 9: -1, 10: 0, 11: 1, 12: 2, 13: 3, 14: 5, 15: 7, 16: 10, 17: 13, 18: 17}
	for score, cost := range want {
		got, err := dice.PointBuyCost(score)
		require.NoError(t, err)
		assert.Equal(t, cost, got, "score %d", score)
	}
	_, err := dice.PointBuyCost(6)
	assert.Error(t, err)
	_, err = dice.PointBuyCost(19)
	assert.Error(t, err)
}

func TestValidatePointBuy(t *testing.T) {
	spent, err := dice.ValidatePointBuy([]int{16, 12, 14, 10, 12, 8}, dice.BudgetStandard)
	require.NoError(t, err)
	assert.Equal(t, 17, spent)

	spent, err = dice.ValidatePointBuy([]int{14, 14, 14, 10, 10, 10}, dice.BudgetStandard)
	require.NoError(t, err)
	assert.Equal(t, 15, spent)

	_, err = dice.ValidatePointBuy([]int{18, 18, 10, 10, 10, 10}, dice.BudgetHigh)
	assert.Error(t, err)

	_, err = dice.ValidatePointBuy([]int{10, 10, 10}, dice.BudgetEpic)
	assert.Error(t, err)
}

func TestParseBudget(t *testing.T) {
	b, err := dice.ParseBudget("Epic")
	require.NoError(t, err)
	assert.Equal(t, dice.BudgetEpic, b)
	b, err = dice.ParseBudget("")
	require.NoError(t, err)
	assert.Equal(t, dice.BudgetStandard, b)
	_, err = dice.ParseBudget("mythic")
	assert.Error(t, err)
}

// Property: kept and dropped dice partition the roll, and every die is in range.
func TestProperty_RollPartitionsDice(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		count := rapid.IntRange(2, 10).Draw(rt, "count")
		sides := rapid.IntRange(2, 20).Draw(rt, "sides")
		keep := rapid.IntRange(0, count-1).Draw(rt, "keep")
		expr := dice.Expression{Raw: "x", Count: count, Sides: sides, KeepHighest: keep}
		res := dice.Roll(expr, dice.NewSeededSource(rapid.Int64().Draw(rt, "seed")))

		if len(res.Dice)+len(res.Dropped) != count {
			rt.Fatalf("kept %d + dropped %d != %d", len(res.Dice), len(res.Dropped), count)
		}
		for _, d := range append(append([]int(nil), res.Dice...), res.Dropped...) {
			if d < 1 || d > sides {
				rt.Fatalf("die %d out of range 1..%d", d, sides)
			}
		}
		if keep > 0 {
			for _, d := range res.Dropped {
				if d > res.Dice[len(res.Dice)-1] {
					rt.Fatalf("dropped %d exceeds kept %v", d, res.Dice)
				}
			}
		}
	})
}

// Property: a point-buy spread is valid exactly when its cost fits the budget.
func TestProperty_ValidatePointBuy(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		scores := rapid.SliceOfN(rapid.IntRange(dice.MinPurchase, dice.MaxPurchase), 6, 6).Draw(rt, "scores")
		budget := rapid.SampledFrom([]dice.Budget{dice.BudgetLow, dice.BudgetStandard, dice.BudgetHigh, dice.BudgetEpic}).Draw(rt, "budget")
		cost := 0
		for _, s := range scores {
			c, _ := dice.PointBuyCost(s)
			cost += c
		}
		_, err := dice.ValidatePointBuy(scores, budget)
		if (err == nil) != (cost <= int(budget)) {
			rt.Fatalf("cost %d budget %d err %v", cost, budget, err)
		}
	})
}
