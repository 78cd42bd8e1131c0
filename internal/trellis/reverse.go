package trellis

import (
	"errors"
	"fmt"
	"io"
	"math/big"
)

// ErrCodebookTooLarge indicates that the requested number of sequences
// exceeds what the full trellis can enumerate.
var ErrCodebookTooLarge = errors.New("trellis: requested codebook exceeds the full trellis")

// Reverse builds the prefix-count trellis: node (stage, wl) counts the
// length-stage prefixes whose cumulative weight is exactly wl.
func Reverse(threshold, stages int, weights []int) *Trellis {
	t := New(threshold, stages, weights)
	t.Set(0, 0, big.NewInt(1))

	for stage := 0; stage < stages; stage++ {
		for _, wl := range t.levels {
			v := t.Get(stage, wl)
			if v.Sign() == 0 {
				continue
			}
			for _, e := range t.Successors(wl) {
				t.Add(stage+1, e.Level, v)
			}
		}
	}
	return t
}

// ReverseUpTo builds the smallest reverse trellis that enumerates at least
// numSequences sequences of length stages.
//
// The trellis grows one weight level at a time, computing each new column
// from the already stored lower levels, until the terminal stage holds the
// requested count. The final weight level is in general only partially
// consumed by a power-of-two codebook; that partial level is the split
// shell that gives energy-ordered shaping its minimal rate loss.
func ReverseUpTo(numSequences *big.Int, stages int, weights []int) (*Trellis, error) {
	t := NewExpandable(stages, weights)

	total := new(big.Int)
	for _, wl := range t.levels {
		preds := t.Predecessors(wl)

		col := make([]big.Int, stages+1)
		if wl == 0 {
			col[0].SetInt64(1)
		}
		for stage := 1; stage <= stages; stage++ {
			node := &col[stage]
			for _, e := range preds {
				if e.Level == wl {
					// zero-weight self transition: the predecessor value
					// lives in the column still being built
					node.Add(node, &col[stage-1])
				} else {
					node.Add(node, t.Get(stage-1, e.Level))
				}
			}
		}
		t.ExpandWith(col)

		total.Add(total, t.Get(stages, wl))
		if total.Cmp(numSequences) >= 0 {
			return t, nil
		}
	}
	return nil, ErrCodebookTooLarge
}

// ReverseLexBounded builds a reverse trellis that counts, at each node, the
// prefixes reaching it that are enumerated strictly before the boundary
// sequence. boundary is given as a weight-index sequence of length stages.
func ReverseLexBounded(threshold, stages int, weights []int, boundary []int) *Trellis {
	t := New(threshold, stages, weights)

	bwl := make([]int, stages+1)
	for i, idx := range boundary {
		bwl[i+1] = bwl[i] + weights[idx]
	}

	one := big.NewInt(1)
	for stage := 0; stage < stages; stage++ {
		for _, wl := range t.levels {
			v := t.Get(stage, wl)
			for _, e := range t.Successors(wl) {
				if wl == bwl[stage] && e.Level < bwl[stage+1] {
					t.Add(stage+1, e.Level, new(big.Int).Add(v, one))
				} else if v.Sign() != 0 {
					t.Add(stage+1, e.Level, v)
				}
			}
		}
	}
	return t
}

// Fprint writes a human-readable dump of the trellis to w: one line per
// stored weight level, highest first, node values in stage order.
func Fprint(w io.Writer, t *Trellis) {
	for i := t.NumStoredLevels() - 1; i >= 0; i-- {
		wl := t.levels[i]
		fmt.Fprintf(w, "%-5d|", wl)
		for stage := 0; stage <= t.stages; stage++ {
			fmt.Fprintf(w, " %5s", t.data[stage][i].String())
		}
		fmt.Fprintln(w)
	}
}
