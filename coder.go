// coder.go implements the rank/unrank traversal shared by both codecs.
//
// Both shaping variants enumerate the same kind of object: at every step a
// set of candidate transitions is considered in a fixed order, each carrying
// the exact number of sequences routed through it, and an index is mapped to
// a sequence by picking the first transition whose count interval contains
// the index (unrank), or a sequence to an index by summing the counts of the
// transitions ordered before the one taken (rank). What differs between the
// variants is only the direction of travel, the transition order and how the
// shell boundary is entered; a walker captures exactly that.

package adess

import (
	"fmt"
	"math/big"

	"github.com/kit-cel/ad-ess/internal/trellis"
)

// edge is one candidate transition considered during ranking: taking the
// alphabet symbol at position sym arrives at weight level node, with count
// sequences routed through it.
type edge struct {
	sym   int
	node  int
	count *big.Int
}

// walker drives the shared rank/unrank traversal for one codec variant.
type walker interface {
	// steps returns the number of symbol-emitting steps (the sequence
	// length n).
	steps() int

	// position maps a traversal step to the output sequence position.
	position(step int) int

	// enter consumes the shell-selection portion of rem (if any) and
	// returns the starting weight level of the walk.
	enter(rem *big.Int) (node int, err error)

	// enterFor returns the starting weight level and base index for the
	// given alphabet-position sequence.
	enterFor(positions []int) (node int, base *big.Int, err error)

	// edges lists the candidate transitions from node at the given step,
	// in enumeration order.
	edges(step, node int) []edge
}

// unrank maps an index in [0, total) to an alphabet-position sequence.
func unrank(w walker, index, total *big.Int) ([]int, error) {
	if index == nil || index.Sign() < 0 || index.Cmp(total) >= 0 {
		return nil, fmt.Errorf("%w: encode index must be in [0, %s)", ErrIndexOutOfRange, total.String())
	}

	rem := new(big.Int).Set(index)
	node, err := w.enter(rem)
	if err != nil {
		return nil, err
	}

	positions := make([]int, w.steps())
	for step := 0; step < w.steps(); step++ {
		matched := false
		for _, e := range w.edges(step, node) {
			if rem.Cmp(e.count) < 0 {
				positions[w.position(step)] = e.sym
				node = e.node
				matched = true
				break
			}
			rem.Sub(rem, e.count)
		}
		if !matched {
			// unreachable for index < total; kept as a guard
			return nil, fmt.Errorf("%w: index not reachable", ErrIndexOutOfRange)
		}
	}
	return positions, nil
}

// rank maps an alphabet-position sequence to its index.
func rank(w walker, positions []int) (*big.Int, error) {
	if len(positions) != w.steps() {
		return nil, fmt.Errorf("%w: sequence length %d, want %d", ErrInfeasibleSequence, len(positions), w.steps())
	}

	node, index, err := w.enterFor(positions)
	if err != nil {
		return nil, err
	}

	for step := 0; step < w.steps(); step++ {
		want := positions[w.position(step)]
		matched := false
		for _, e := range w.edges(step, node) {
			if e.sym == want {
				if e.count.Sign() == 0 {
					return nil, fmt.Errorf("%w: no enumerable continuation at position %d", ErrInfeasibleSequence, w.position(step))
				}
				node = e.node
				matched = true
				break
			}
			index.Add(index, e.count)
		}
		if !matched {
			return nil, fmt.Errorf("%w: symbol not affordable at position %d", ErrInfeasibleSequence, w.position(step))
		}
	}
	return index, nil
}

// forwardWalker walks a suffix-count trellis from stage 0 forward, the
// enumeration order of arbitrary-distribution sphere shaping: per position,
// symbols ascending by (cost, alphabet position).
type forwardWalker struct {
	t *trellis.Trellis
}

func (w forwardWalker) steps() int            { return w.t.Stages() }
func (w forwardWalker) position(step int) int { return step }

func (w forwardWalker) enter(*big.Int) (int, error) { return 0, nil }

func (w forwardWalker) enterFor([]int) (int, *big.Int, error) {
	return 0, new(big.Int), nil
}

func (w forwardWalker) edges(step, node int) []edge {
	succ := w.t.Successors(node)
	out := make([]edge, len(succ))
	for i, e := range succ {
		out[i] = edge{sym: e.Index, node: e.Level, count: w.t.Get(step+1, e.Level)}
	}
	return out
}

// reverseWalker walks a prefix-count trellis from the terminal stage
// backward, the enumeration order of reverse trellis shaping: sequences
// ascending by total weight (energy), the split-shell boundary entered
// through the terminal-stage node selection.
type reverseWalker struct {
	t *trellis.Trellis
}

func (w reverseWalker) steps() int            { return w.t.Stages() }
func (w reverseWalker) position(step int) int { return w.t.Stages() - 1 - step }

func (w reverseWalker) enter(rem *big.Int) (int, error) {
	levels := w.t.Levels()
	final := w.t.Stage(w.t.Stages())
	for i := range final {
		if rem.Cmp(&final[i]) < 0 {
			return levels[i], nil
		}
		rem.Sub(rem, &final[i])
	}
	return 0, fmt.Errorf("%w: index beyond the final shell", ErrIndexOutOfRange)
}

func (w reverseWalker) enterFor(positions []int) (int, *big.Int, error) {
	total := 0
	for _, p := range positions {
		total += w.t.Weight(p)
	}
	if total > w.t.Threshold() || !w.t.LevelValid(total) {
		return 0, nil, fmt.Errorf("%w: sequence weight %d outside the shell", ErrInfeasibleSequence, total)
	}

	// all sequences ending in a lower shell level come first
	base := new(big.Int)
	final := w.t.Stage(w.t.Stages())
	for i := 0; i < w.t.LevelIndex(total); i++ {
		base.Add(base, &final[i])
	}
	return total, base, nil
}

func (w reverseWalker) edges(step, node int) []edge {
	stage := w.t.Stages() - step
	pred := w.t.Predecessors(node)
	out := make([]edge, len(pred))
	for i, e := range pred {
		out[i] = edge{sym: e.Index, node: e.Level, count: w.t.Get(stage-1, e.Level)}
	}
	return out
}
