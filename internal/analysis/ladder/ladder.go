// Package ladder evaluates ordered threshold tables.
//
// Every scoring rule in the engine has the shape "if x < 30 add 20, else if
// x < 40 add 10, ...". A Ladder holds such a rule as data: steps are checked
// top-down and the first match wins.
package ladder

// Op is the comparison a step applies to its input.
type Op int

const (
	Less Op = iota
	LessEq
	Greater
	GreaterEq
)

// Step is one rung of a ladder.
type Step struct {
	Op    Op
	Bound float64
	Delta float64
	Label string
}

func (s Step) matches(x float64) bool {
	switch s.Op {
	case Less:
		return x < s.Bound
	case LessEq:
		return x <= s.Bound
	case Greater:
		return x > s.Bound
	case GreaterEq:
		return x >= s.Bound
	}
	return false
}

// Ladder is an ordered list of steps. Default labels inputs no step matches.
type Ladder struct {
	Steps   []Step
	Default string
}

// Eval returns the delta and label of the first matching step, or 0 and the
// default label.
func (l Ladder) Eval(x float64) (float64, string) {
	for _, s := range l.Steps {
		if s.matches(x) {
			return s.Delta, s.Label
		}
	}
	return 0, l.Default
}

// Delta is Eval without the label.
func (l Ladder) Delta(x float64) float64 {
	d, _ := l.Eval(x)
	return d
}

// Label is Eval without the delta.
func (l Ladder) Label(x float64) string {
	_, lbl := l.Eval(x)
	return lbl
}

// Scaled returns a copy of the ladder with every bound multiplied by k.
// Used for ladders expressed relative to a benchmark.
func (l Ladder) Scaled(k float64) Ladder {
	out := Ladder{Steps: make([]Step, len(l.Steps)), Default: l.Default}
	for i, s := range l.Steps {
		s.Bound *= k
		out.Steps[i] = s
	}
	return out
}

// Lt, Le, Gt and Ge build steps.
func Lt(bound, delta float64, label string) Step { return Step{Less, bound, delta, label} }
func Le(bound, delta float64, label string) Step { return Step{LessEq, bound, delta, label} }
func Gt(bound, delta float64, label string) Step { return Step{Greater, bound, delta, label} }
func Ge(bound, delta float64, label string) Step { return Step{GreaterEq, bound, delta, label} }

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Clamp100 limits a score to [0, 100].
func Clamp100(v float64) float64 {
	return Clamp(v, 0, 100)
}
