// Package trellis implements the bounded counting trellis shared by the
// shaping codecs.
//
// A trellis node is addressed by (stage, weight level) and holds an exact
// big-integer count. The weight levels of a trellis are all cumulative
// weight sums reachable from level 0 without exceeding the threshold; a
// lookup table maps level values to storage columns so that lookups stay
// O(1) even for sparse level sets.
//
// Counts routinely exceed 64-bit range for sequence lengths in the hundreds,
// so every node holds a math/big integer. Values are stored inline in
// stage-major rows to avoid per-node allocations.
package trellis

import "math/big"

// Edge is a single trellis transition: taking the symbol with weight index
// Index arrives at weight level Level.
type Edge struct {
	Index int
	Level int
}

// Trellis holds a bounded trellis of big-integer node values.
//
// A Trellis is not safe for concurrent mutation. Once filled it is never
// written again and may be shared freely between readers.
type Trellis struct {
	threshold int
	stages    int
	weights   []int
	levels    []int // all reachable weight levels, ascending
	lookup    []int // level value -> column index, -1 if unreachable
	sorted    []Edge // weights ascending, index ascending within ties
	data      [][]big.Int
}

// New returns an empty trellis with stages+1 rows and one column per weight
// level reachable within threshold.
//
// The smallest weight must be 0; this anchors level 0 as the start node.
func New(threshold, stages int, weights []int) *Trellis {
	t := newShape(threshold, stages, weights)
	for i := range t.data {
		t.data[i] = make([]big.Int, len(t.levels))
	}
	return t
}

// NewExpandable returns a trellis whose level set covers every weight level
// reachable in stages steps, but with no columns stored yet. Columns are
// moved in one weight level at a time with ExpandWith; the threshold tracks
// the highest stored level.
func NewExpandable(stages int, weights []int) *Trellis {
	maxWeight := 0
	for _, w := range weights {
		if w > maxWeight {
			maxWeight = w
		}
	}
	t := newShape(stages*maxWeight, stages, weights)
	t.threshold = t.levels[0]
	return t
}

func newShape(threshold, stages int, weights []int) *Trellis {
	if len(weights) == 0 {
		panic("trellis: empty weight set")
	}
	minWeight := weights[0]
	for _, w := range weights {
		if w < minWeight {
			minWeight = w
		}
	}
	if minWeight != 0 {
		panic("trellis: smallest weight must be 0")
	}

	sorted := make([]Edge, len(weights))
	for i, w := range weights {
		sorted[i] = Edge{Index: i, Level: w}
	}
	// Stable by weight keeps equal weights in index order.
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j].Level < sorted[j-1].Level; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}

	levels, lookup := levelSet(threshold, weights)

	return &Trellis{
		threshold: threshold,
		stages:    stages,
		weights:   append([]int(nil), weights...),
		levels:    levels,
		lookup:    lookup,
		sorted:    sorted,
		data:      make([][]big.Int, stages+1),
	}
}

// levelSet computes all weight sums reachable from 0 without exceeding
// threshold, as a sorted slice plus a value-to-column lookup.
func levelSet(threshold int, weights []int) (levels []int, lookup []int) {
	reach := make([]bool, threshold+1)
	reach[0] = true
	for wl := 0; wl <= threshold; wl++ {
		if !reach[wl] {
			continue
		}
		for _, w := range weights {
			if w > 0 && wl+w <= threshold {
				reach[wl+w] = true
			}
		}
	}

	lookup = make([]int, threshold+1)
	for wl, ok := range reach {
		if ok {
			lookup[wl] = len(levels)
			levels = append(levels, wl)
		} else {
			lookup[wl] = -1
		}
	}
	return levels, lookup
}

// Threshold returns the highest weight level currently admitted.
func (t *Trellis) Threshold() int { return t.threshold }

// Stages returns the number of transition stages (the sequence length).
func (t *Trellis) Stages() int { return t.stages }

// Weights returns a copy of the weight set in alphabet order.
func (t *Trellis) Weights() []int {
	return append([]int(nil), t.weights...)
}

// Weight returns the weight of the symbol with the given index.
func (t *Trellis) Weight(index int) int { return t.weights[index] }

// Levels returns a copy of all weight levels of the trellis, ascending.
// For an expandable trellis this includes levels not yet stored.
func (t *Trellis) Levels() []int {
	return append([]int(nil), t.levels...)
}

// NumStoredLevels returns the number of weight levels with stored columns.
func (t *Trellis) NumStoredLevels() int { return len(t.data[0]) }

// LevelValid reports whether level is a reachable weight level.
func (t *Trellis) LevelValid(level int) bool {
	return level >= 0 && level < len(t.lookup) && t.lookup[level] >= 0
}

// LevelIndex returns the column index of the given weight level.
// It panics if the level is not reachable.
func (t *Trellis) LevelIndex(level int) int {
	idx := t.lookup[level]
	if idx < 0 {
		panic("trellis: invalid weight level")
	}
	return idx
}

// Get returns the node value at (stage, level). The returned value is owned
// by the trellis and must not be modified. Panics on an invalid level.
func (t *Trellis) Get(stage, level int) *big.Int {
	return &t.data[stage][t.LevelIndex(level)]
}

// GetOrZero returns the node value at (stage, level), or zero when the level
// is unreachable or not stored. The returned value must not be modified.
func (t *Trellis) GetOrZero(stage, level int) *big.Int {
	if !t.LevelValid(level) {
		return new(big.Int)
	}
	idx := t.lookup[level]
	if idx >= len(t.data[stage]) {
		return new(big.Int)
	}
	return &t.data[stage][idx]
}

// Stage returns the stored row for the given stage, ordered by ascending
// weight level. The row is owned by the trellis and must not be modified.
func (t *Trellis) Stage(stage int) []big.Int {
	return t.data[stage]
}

// Set overwrites the node value at (stage, level).
func (t *Trellis) Set(stage, level int, v *big.Int) {
	t.data[stage][t.LevelIndex(level)].Set(v)
}

// Add adds v to the node value at (stage, level).
func (t *Trellis) Add(stage, level int, v *big.Int) {
	node := &t.data[stage][t.LevelIndex(level)]
	node.Add(node, v)
}

// Successors returns the transitions leaving the given weight level, in
// ascending (weight, index) order. Transitions past the threshold are
// omitted.
func (t *Trellis) Successors(level int) []Edge {
	succ := make([]Edge, 0, len(t.sorted))
	for _, e := range t.sorted {
		next := level + t.weights[e.Index]
		if next <= t.threshold {
			succ = append(succ, Edge{Index: e.Index, Level: next})
		}
	}
	return succ
}

// Predecessors returns the transitions arriving at the given weight level,
// in ascending order of predecessor level. Within a tie (equal weights) the
// symbol index descends; the shaping codecs rely on this ordering.
func (t *Trellis) Predecessors(level int) []Edge {
	pred := make([]Edge, 0, len(t.sorted))
	for i := len(t.sorted) - 1; i >= 0; i-- {
		e := t.sorted[i]
		w := t.weights[e.Index]
		if level >= w && t.LevelValid(level-w) {
			pred = append(pred, Edge{Index: e.Index, Level: level - w})
		}
	}
	return pred
}

// ExpandWith grows the trellis by one weight level, moving in one column
// value per stage. col[i] becomes the value at stage i for the new level.
// The threshold advances to the newly stored level.
func (t *Trellis) ExpandWith(col []big.Int) bool {
	if len(col) != len(t.data) {
		panic("trellis: column height mismatch")
	}
	stored := t.NumStoredLevels()
	if stored >= len(t.levels) {
		return false
	}
	for stage := range t.data {
		t.data[stage] = append(t.data[stage], col[stage])
	}
	t.threshold = t.levels[stored]
	return true
}

// Equal reports whether two trellises have identical weights, dimensions
// and node values.
func (t *Trellis) Equal(o *Trellis) bool {
	if t.stages != o.stages || t.NumStoredLevels() != o.NumStoredLevels() {
		return false
	}
	if len(t.weights) != len(o.weights) {
		return false
	}
	for i, w := range t.weights {
		if o.weights[i] != w {
			return false
		}
	}
	for stage := range t.data {
		for col := range t.data[stage] {
			if t.data[stage][col].Cmp(&o.data[stage][col]) != 0 {
				return false
			}
		}
	}
	return true
}
