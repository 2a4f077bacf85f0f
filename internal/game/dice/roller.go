package dice

import "sort"

// Roll evaluates expr with src.
//
// Precondition: expr comes from Parse; src is non-nil.
// Postcondition: len(Dice)+len(Dropped) == expr.Count; when KeepHighest > 0,
// len(Dice) == KeepHighest and no dropped die exceeds a kept one.
func Roll(expr Expression, src Source) RollResult {
	rolled := make([]int, expr.Count)
	for i := range rolled {
		rolled[i] = src.Intn(expr.Sides) + 1
	}

	res := RollResult{Expression: expr.Raw, Dice: rolled, Modifier: expr.Modifier}
	if expr.KeepHighest > 0 {
		sort.Sort(sort.Reverse(sort.IntSlice(rolled)))
		res.Dice = rolled[:expr.KeepHighest]
		res.Dropped = rolled[expr.KeepHighest:]
	}
	return res
}

// RollExpr parses and rolls expr.
func RollExpr(expr string, src Source) (RollResult, error) {
	e, err := Parse(expr)
	if err != nil {
		return RollResult{}, err
	}
	return Roll(e, src), nil
}
