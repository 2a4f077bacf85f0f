// Package dice parses and rolls dice expressions and generates ability
// scores for new characters.
package dice

import (
	"fmt"
	"strings"
)

// RollResult is the record of one evaluated expression.
//
// Postcondition: Total() == sum(Dice) + Modifier. Dropped dice never count.
type RollResult struct {
	Expression string // e.g. "4d6kh3"
	Dice       []int  // kept dice, highest first when a keep rule applied
	Dropped    []int  // dice discarded by a keep rule
	Modifier   int
}

// Total returns the sum of the kept dice plus the modifier.
func (r RollResult) Total() int {
	total := r.Modifier
	for _, d := range r.Dice {
		total += d
	}
	return total
}

// String formats the roll for display:
//
//	"4d6kh3 → [6 5 3] (dropped [1]) +0 = 14"
//
// Precondition: r.Expression is non-empty.
func (r RollResult) String() string {
	if r.Expression == "" {
		panic("dice: RollResult.String() precondition violated: Expression must be non-empty")
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s → %v", r.Expression, r.Dice)
	if len(r.Dropped) > 0 {
		fmt.Fprintf(&b, " (dropped %v)", r.Dropped)
	}
	fmt.Fprintf(&b, " %+d = %d", r.Modifier, r.Total())
	return b.String()
}

// Source supplies randomness to the roller.
//
// Implementations MUST be safe for concurrent use.
type Source interface {
	// Intn returns a value in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
