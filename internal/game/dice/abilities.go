package dice

import (
	"errors"
	"fmt"
	"strings"
)

// Method is a way of generating the six ability scores.
type Method string

// Generation methods.
const (
	MethodStandard Method = "standard"  // 4d6, drop the lowest
	MethodClassic  Method = "classic"   // 3d6
	MethodHeroic   Method = "heroic"    // 2d6+6
	MethodPointBuy Method = "point_buy" // spend a budget on purchased scores
)

// AbilityCount is the number of scores a character has.
const AbilityCount = 6

var methodExprs = map[Method]Expression{
	MethodStandard: MustParse("4d6kh3"),
	MethodClassic:  MustParse("3d6"),
	MethodHeroic:   MustParse("2d6+6"),
}

// Methods returns every method in display order.
func Methods() []Method {
	return []Method{MethodStandard, MethodClassic, MethodHeroic, MethodPointBuy}
}

// ParseMethod resolves a method name. "4d6", "3d6", "2d6+6" and "pointbuy"
// are accepted as aliases.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "4d6", "4d6kh3":
		return MethodStandard, nil
	case "classic", "3d6":
		return MethodClassic, nil
	case "heroic", "2d6+6":
		return MethodHeroic, nil
	case "point_buy", "pointbuy", "point-buy", "buy":
		return MethodPointBuy, nil
	}
	return "", fmt.Errorf("dice: unknown ability method %q", s)
}

// Expression returns the dice rolled per score. Point buy rolls nothing.
func (m Method) Expression() (Expression, bool) {
	e, ok := methodExprs[m]
	return e, ok
}

// ErrNotRolled is returned when a point-buy method is asked to roll.
var ErrNotRolled = errors.New("dice: point buy scores are purchased, not rolled")

// RollAbilities rolls six scores with m, in roll order.
//
// Postcondition: len(result) == AbilityCount or err is non-nil.
func (r *Roller) RollAbilities(m Method) ([]RollResult, error) {
	e, ok := m.Expression()
	if !ok {
		if m == MethodPointBuy {
			return nil, ErrNotRolled
		}
		return nil, fmt.Errorf("dice: unknown ability method %q", m)
	}
	out := make([]RollResult, AbilityCount)
	for i := range out {
		out[i] = r.Roll(e)
	}
	r.logger.Debug("ability scores rolled", zapMethod(m), zapTotals(out))
	return out, nil
}

// Totals returns the total of every roll.
func Totals(rolls []RollResult) []int {
	out := make([]int, len(rolls))
	for i, r := range rolls {
		out[i] = r.Total()
	}
	return out
}

// Budget is the number of points available to a point-buy character.
type Budget int

// Point-buy budgets by campaign type.
const (
	BudgetLow      Budget = 10
	BudgetStandard Budget = 15
	BudgetHigh     Budget = 20
	BudgetEpic     Budget = 25
)

// ParseBudget resolves a campaign name ("low", "standard", "high", "epic").
func ParseBudget(s string) (Budget, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return BudgetLow, nil
	case "standard", "":
		return BudgetStandard, nil
	case "high":
		return BudgetHigh, nil
	case "epic":
		return BudgetEpic, nil
	}
	return 0, fmt.Errorf("dice: unknown point buy budget %q", s)
}

// Point-buy score limits before racial adjustments.
const (
	MinPurchase = 7
	MaxPurchase = 18
)

var pointCost = map[int]int{
	7: -4, 8: -2, 9: -1, 10: 0, 11: 1, 12: 2,
	13: 3, 14: 5, 15: 7, 16: 10, 17: 13, 18: 17,
}

// PointBuyCost returns the points a purchased score costs. Scores below 10
// refund points.
//
// Postcondition: err is non-nil iff score is outside [MinPurchase, MaxPurchase].
func PointBuyCost(score int) (int, error) {
	c, ok := pointCost[score]
	if !ok {
		return 0, fmt.Errorf("dice: score %d cannot be purchased (range %d-%d)", score, MinPurchase, MaxPurchase)
	}
	return c, nil
}

// ValidatePointBuy checks that scores can be bought with budget.
//
// Postcondition: Returns the points spent; err is non-nil when a score is
// out of range, the count is wrong, or the total exceeds budget.
func ValidatePointBuy(scores []int, budget Budget) (int, error) {
	if len(scores) != AbilityCount {
		return 0, fmt.Errorf("dice: point buy needs %d scores, got %d", AbilityCount, len(scores))
	}
	spent := 0
	for _, s := range scores {
		c, err := PointBuyCost(s)
		if err != nil {
			return 0, err
		}
		spent += c
	}
	if spent > int(budget) {
		return spent, fmt.Errorf("dice: point buy spends %d of a %d point budget", spent, budget)
	}
	return spent, nil
}
