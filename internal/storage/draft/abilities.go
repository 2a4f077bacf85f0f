package draft

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cory-johannsen/charforge/internal/game/character"
	"github.com/cory-johannsen/charforge/internal/game/dice"
)

// ErrNoMethod is returned when scores are assigned before a generation
// method has been chosen.
var ErrNoMethod = errors.New("no ability score method chosen")

// StartRolled begins assigning the rolled totals. Every previous assignment
// is discarded and all abilities return to 10 until assigned.
func (d *Draft) StartRolled(m dice.Method, totals []int) {
	pool := append([]int(nil), totals...)
	sort.Sort(sort.Reverse(sort.IntSlice(pool)))
	d.Choices.Method = string(m)
	d.Rolled = pool
	d.Budget = 0
	d.Assigned = nil
	d.Choices.Abilities = nil
}

// StartPointBuy begins purchasing scores with budget. Every ability starts
// at 10, which costs nothing.
func (d *Draft) StartPointBuy(budget dice.Budget) {
	d.Choices.Method = string(dice.MethodPointBuy)
	d.Rolled = nil
	d.Budget = int(budget)
	d.Assigned = nil
	scores := character.DefaultAbilityScores()
	d.Choices.Abilities = &scores
}

// PointBuy reports whether the draft is buying its scores.
func (d *Draft) PointBuy() bool {
	return d.Choices.Method == string(dice.MethodPointBuy)
}

// Remaining returns the rolled totals not yet assigned, highest first.
// Reassigning an ability returns its previous score to the pool.
func (d *Draft) Remaining() []int {
	left := append([]int(nil), d.Rolled...)
	for _, a := range character.Abilities() {
		v, ok := d.Assigned[a]
		if !ok {
			continue
		}
		if i := indexOf(left, v); i >= 0 {
			left = append(left[:i], left[i+1:]...)
		}
	}
	return left
}

// Assign places score on ability a.
//
// Postcondition: For rolled methods score must be an unassigned rolled total
// (the ability's own previous score counts as unassigned). For point buy the
// resulting scores must fit the budget. On error the draft is unchanged.
func (d *Draft) Assign(a character.Ability, score int) error {
	if d.Choices.Method == "" {
		return ErrNoMethod
	}
	next := make(map[character.Ability]int, len(d.Assigned)+1)
	for k, v := range d.Assigned {
		next[k] = v
	}

	if d.PointBuy() {
		next[a] = score
		scores := overlay(next)
		if _, err := dice.ValidatePointBuy(scores.Slice(), dice.Budget(d.Budget)); err != nil {
			return err
		}
	} else {
		delete(next, a)
		pool := (&Draft{Rolled: d.Rolled, Assigned: next}).Remaining()
		if indexOf(pool, score) < 0 {
			return fmt.Errorf("%d is not an unassigned rolled score (left: %v)", score, pool)
		}
		next[a] = score
	}

	d.Assigned = next
	scores := overlay(next)
	d.Choices.Abilities = &scores
	return nil
}

// PointsSpent returns the point-buy cost of the current scores.
func (d *Draft) PointsSpent() int {
	spent := 0
	for _, v := range overlay(d.Assigned).Slice() {
		c, _ := dice.PointBuyCost(v)
		spent += c
	}
	return spent
}

// Unassigned lists the abilities still at their default under a rolled method.
func (d *Draft) Unassigned() []character.Ability {
	var out []character.Ability
	for _, a := range character.Abilities() {
		if _, ok := d.Assigned[a]; !ok {
			out = append(out, a)
		}
	}
	return out
}

func overlay(assigned map[character.Ability]int) character.AbilityScores {
	scores := character.DefaultAbilityScores()
	for a, v := range assigned {
		scores.Set(a, v)
	}
	return scores
}

func indexOf(list []int, v int) int {
	for i, x := range list {
		if x == v {
			return i
		}
	}
	return -1
}
