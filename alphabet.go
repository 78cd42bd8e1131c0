// alphabet.go defines the amplitude alphabet and its cost model.

package adess

import (
	"fmt"
	"math"
)

// Alphabet is a finite, totally ordered amplitude alphabet with a
// per-symbol shaping cost.
//
// The cost of a symbol is a non-negative integer weight used by the count
// tables: for energy-ordered shaping it is a quantized symbol energy, for
// arbitrary-distribution shaping a quantization of -log2 of the target
// probability (see WeightsForDistribution). The energy of a symbol, the
// squared amplitude, is independent of the cost and is used only for
// metric reporting.
//
// An Alphabet is immutable after construction and safe for concurrent use.
type Alphabet struct {
	symbols []int
	costs   []int
	index   map[int]int
}

// NewAlphabet returns an alphabet over the given symbol values, in the
// given fixed order, with costs[i] as the shaping cost of symbols[i].
//
// The alphabet must be non-empty and free of duplicate symbols, costs must
// be non-negative and at least one symbol must have cost 0 (weight sets are
// normalized so the cheapest symbol anchors level zero; see
// WeightsForDistribution). Violations fail with ErrConfiguration.
func NewAlphabet(symbols, costs []int) (*Alphabet, error) {
	if len(symbols) == 0 {
		return nil, fmt.Errorf("%w: empty alphabet", ErrConfiguration)
	}
	if len(symbols) != len(costs) {
		return nil, fmt.Errorf("%w: %d symbols but %d costs", ErrConfiguration, len(symbols), len(costs))
	}

	minCost := costs[0]
	index := make(map[int]int, len(symbols))
	for i, s := range symbols {
		if _, dup := index[s]; dup {
			return nil, fmt.Errorf("%w: duplicate symbol %d", ErrConfiguration, s)
		}
		index[s] = i
		if costs[i] < 0 {
			return nil, fmt.Errorf("%w: negative cost for symbol %d", ErrConfiguration, s)
		}
		if costs[i] < minCost {
			minCost = costs[i]
		}
	}
	if minCost != 0 {
		return nil, fmt.Errorf("%w: smallest cost must be 0, got %d", ErrConfiguration, minCost)
	}

	return &Alphabet{
		symbols: append([]int(nil), symbols...),
		costs:   append([]int(nil), costs...),
		index:   index,
	}, nil
}

// NewASKAlphabet returns the alphabet of the first len(costs) positive
// odd amplitudes 1, 3, 5, ... with the given shaping costs, the alphabet of
// a 2M-ASK (or square 4M²-QAM) amplitude shaper.
func NewASKAlphabet(costs []int) (*Alphabet, error) {
	return NewAlphabet(ASKSymbols(len(costs)), costs)
}

// ASKSymbols returns the m smallest positive odd amplitudes 1, 3, ..., 2m-1.
func ASKSymbols(m int) []int {
	symbols := make([]int, m)
	for i := range symbols {
		symbols[i] = 2*i + 1
	}
	return symbols
}

// Len returns the alphabet size M.
func (a *Alphabet) Len() int { return len(a.symbols) }

// Symbol returns the symbol value at position i of the alphabet order.
func (a *Alphabet) Symbol(i int) int { return a.symbols[i] }

// Cost returns the shaping cost of the symbol at position i.
func (a *Alphabet) Cost(i int) int { return a.costs[i] }

// Energy returns the energy (squared amplitude) of the symbol at position i.
func (a *Alphabet) Energy(i int) float64 {
	s := float64(a.symbols[i])
	return s * s
}

// Symbols returns a copy of the symbol values in alphabet order.
func (a *Alphabet) Symbols() []int {
	return append([]int(nil), a.symbols...)
}

// Costs returns a copy of the per-symbol shaping costs in alphabet order.
func (a *Alphabet) Costs() []int {
	return append([]int(nil), a.costs...)
}

// positionOf returns the alphabet position of a symbol value.
func (a *Alphabet) positionOf(symbol int) (int, bool) {
	i, ok := a.index[symbol]
	return i, ok
}

// sequenceOf maps alphabet positions back to symbol values.
func (a *Alphabet) sequenceOf(positions []int) []int {
	seq := make([]int, len(positions))
	for i, p := range positions {
		seq[i] = a.symbols[p]
	}
	return seq
}

// positionsOf maps a symbol sequence to alphabet positions. Unknown symbols
// fail with ErrInfeasibleSequence.
func (a *Alphabet) positionsOf(seq []int) ([]int, error) {
	positions := make([]int, len(seq))
	for i, s := range seq {
		p, ok := a.index[s]
		if !ok {
			return nil, fmt.Errorf("%w: symbol %d not in alphabet", ErrInfeasibleSequence, s)
		}
		positions[i] = p
	}
	return positions, nil
}

// costLevels returns the cumulative cost levels along a sequence of
// alphabet positions, starting at 0 before the first symbol.
func (a *Alphabet) costLevels(positions []int) []int {
	costs := make([]int, len(positions))
	for i, p := range positions {
		costs[i] = a.costs[p]
	}
	return cumsum(costs)
}

// WeightsForDistribution quantizes a target amplitude distribution into
// integer shaping costs.
//
// Each probability p maps to -log2(p) * resFactor, shifted so the most
// probable symbol gets cost 0, then rounded to the nearest integer. The
// resolution factor is the quantization policy knob: a high resFactor gives
// a fine-grained approximation of the target distribution at the price of a
// larger count table.
func WeightsForDistribution(distribution []float64, resFactor float64) ([]int, error) {
	if len(distribution) == 0 {
		return nil, fmt.Errorf("%w: empty distribution", ErrConfiguration)
	}
	if resFactor <= 0 {
		return nil, fmt.Errorf("%w: resolution factor must be positive", ErrConfiguration)
	}

	raw := make([]float64, len(distribution))
	minWeight := math.Inf(1)
	for i, p := range distribution {
		if p <= 0 || p > 1 {
			return nil, fmt.Errorf("%w: probability %v outside (0, 1]", ErrConfiguration, p)
		}
		raw[i] = -math.Log2(p) * resFactor
		if raw[i] < minWeight {
			minWeight = raw[i]
		}
	}

	weights := make([]int, len(raw))
	for i, w := range raw {
		weights[i] = int(w - minWeight + 0.5)
	}
	return weights, nil
}
