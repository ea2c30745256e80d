// Package dice parses dice notation ("2d6+1", "3-5", "20") and rolls it
// against a caller-supplied random source so results follow the floor seed.
package dice

import (
	"fmt"
	"math/rand"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	diceNotationRegex = regexp.MustCompile(`^(\d*)d(\d+)(?:([+-])(\d+))?$`)
	rangeRegex        = regexp.MustCompile(`^(\d+)-(\d+)$`)
	flatRegex         = regexp.MustCompile(`^\d+$`)
)

// Expr is a parsed dice expression. The zero value always rolls 0.
type Expr struct {
	Count int // number of dice
	Sides int // faces per die
	Bonus int // flat modifier, may be negative

	ranged bool
	lo, hi int
}

// Flat returns an expression that always yields n.
func Flat(n int) Expr {
	return Expr{Bonus: n}
}

// Range returns an expression rolling uniformly between lo and hi inclusive.
func Range(lo, hi int) Expr {
	return Expr{ranged: true, lo: lo, hi: hi}
}

// Parse parses dice notation. Accepted forms: "N", "A-B", "NdS", "dS",
// "NdS+B", "NdS-B". An empty string yields the zero expression.
func Parse(notation string) (Expr, error) {
	s := strings.ToLower(strings.ReplaceAll(strings.TrimSpace(notation), " ", ""))
	if s == "" {
		return Expr{}, nil
	}

	if flatRegex.MatchString(s) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return Expr{}, fmt.Errorf("invalid flat value in notation %q: %w", notation, err)
		}
		return Flat(n), nil
	}

	if m := rangeRegex.FindStringSubmatch(s); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		return Range(lo, hi), nil
	}

	m := diceNotationRegex.FindStringSubmatch(s)
	if m == nil {
		return Expr{}, fmt.Errorf("invalid dice notation: %q (expected N, A-B or XdY[+Z])", notation)
	}

	count := 1
	if m[1] != "" {
		count, _ = strconv.Atoi(m[1])
	}
	sides, _ := strconv.Atoi(m[2])
	if count <= 0 || sides <= 0 {
		return Expr{}, fmt.Errorf("dice count and size must be positive: %q", notation)
	}

	bonus := 0
	if m[3] != "" {
		bonus, _ = strconv.Atoi(m[4])
		if m[3] == "-" {
			bonus = -bonus
		}
	}

	return Expr{Count: count, Sides: sides, Bonus: bonus}, nil
}

// MustParse is like Parse but panics on malformed notation.
func MustParse(notation string) Expr {
	e, err := Parse(notation)
	if err != nil {
		panic(err)
	}
	return e
}

// Min returns the smallest value the expression can produce (never below 0).
func (e Expr) Min() int {
	if e.ranged {
		return max(0, min(e.lo, e.hi))
	}
	return max(0, e.Count+e.Bonus)
}

// Max returns the largest value the expression can produce (never below 0).
func (e Expr) Max() int {
	if e.ranged {
		return max(0, max(e.lo, e.hi))
	}
	return max(0, e.Count*e.Sides+e.Bonus)
}

// IsZero reports whether the expression always yields 0.
func (e Expr) IsZero() bool {
	return e.Max() == 0
}

// Roll rolls the expression. Dice are summed; ranges are uniform.
func (e Expr) Roll(r *rand.Rand) int {
	if e.ranged {
		return Between(r, e.lo, e.hi)
	}
	total := e.Bonus
	for i := 0; i < e.Count; i++ {
		total += r.Intn(e.Sides) + 1
	}
	return max(0, total)
}

// RollRange returns a uniform value in [Min, Max], ignoring the dice
// distribution. Used for counts where every value should be equally likely.
func (e Expr) RollRange(r *rand.Rand) int {
	return Between(r, e.Min(), e.Max())
}

// Between returns a uniform integer in [lo, hi], swapping the bounds if lo > hi.
func Between(r *rand.Rand, lo, hi int) int {
	if lo > hi {
		lo, hi = hi, lo
	}
	if lo == hi {
		return lo
	}
	return lo + r.Intn(hi-lo+1)
}

// String renders the expression back into notation.
func (e Expr) String() string {
	switch {
	case e.ranged:
		return fmt.Sprintf("%d-%d", e.lo, e.hi)
	case e.Count == 0:
		return strconv.Itoa(e.Bonus)
	case e.Bonus > 0:
		return fmt.Sprintf("%dd%d+%d", e.Count, e.Sides, e.Bonus)
	case e.Bonus < 0:
		return fmt.Sprintf("%dd%d%d", e.Count, e.Sides, e.Bonus)
	default:
		return fmt.Sprintf("%dd%d", e.Count, e.Sides)
	}
}

// UnmarshalYAML lets catalog files write notation as a plain scalar.
func (e *Expr) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: dice notation must be a scalar", value.Line)
	}
	parsed, err := Parse(value.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*e = parsed
	return nil
}

// MarshalYAML writes the expression as notation.
func (e Expr) MarshalYAML() (any, error) {
	return e.String(), nil
}
