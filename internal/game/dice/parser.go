package dice

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Expression is a parsed dice expression.
//
// Invariant: Count >= 1, Sides >= 2, 0 <= KeepHighest < Count.
type Expression struct {
	Raw         string
	Count       int
	Sides       int
	Modifier    int
	KeepHighest int // 0 keeps every die
}

var exprPattern = regexp.MustCompile(`^(\d*)d(\d+)(?:kh(\d+))?([+-]\d+)?$`)

// Parse reads expressions such as "d20", "3d6", "2d6+6", "1d8-1" and "4d6kh3".
//
// Postcondition: Returns a valid Expression or a descriptive error.
func Parse(expr string) (Expression, error) {
	s := strings.ToLower(strings.ReplaceAll(expr, " ", ""))
	if s == "" {
		return Expression{}, fmt.Errorf("dice: empty expression")
	}
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return Expression{}, fmt.Errorf("dice: malformed expression %q", expr)
	}

	e := Expression{Raw: expr, Count: 1}
	var err error
	if m[1] != "" {
		if e.Count, err = strconv.Atoi(m[1]); err != nil || e.Count < 1 {
			return Expression{}, fmt.Errorf("dice: invalid die count in %q", expr)
		}
	}
	if e.Sides, err = strconv.Atoi(m[2]); err != nil || e.Sides < 2 {
		return Expression{}, fmt.Errorf("dice: invalid die sides in %q: must be >= 2", expr)
	}
	if m[3] != "" {
		e.KeepHighest, _ = strconv.Atoi(m[3])
		if e.KeepHighest <= 0 || e.KeepHighest >= e.Count {
			return Expression{}, fmt.Errorf("dice: kh value %d must be > 0 and < count %d in %q", e.KeepHighest, e.Count, expr)
		}
	}
	if m[4] != "" {
		if e.Modifier, err = strconv.Atoi(m[4]); err != nil {
			return Expression{}, fmt.Errorf("dice: invalid modifier in %q: %w", expr, err)
		}
	}
	return e, nil
}

// MustParse is Parse for package-level expressions. It panics on error.
func MustParse(expr string) Expression {
	e, err := Parse(expr)
	if err != nil {
		panic("dice: MustParse failed for expression " + expr + ": " + err.Error())
	}
	return e
}

// String returns the expression as written.
func (e Expression) String() string {
	return e.Raw
}
