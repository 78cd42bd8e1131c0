// adess.go implements arbitrary-distribution enumerative sphere shaping.

package adess

import (
	"fmt"
	"math"
	"math/big"

	"github.com/kit-cel/ad-ess/internal/trellis"
)

// AdEss is an arbitrary-distribution enumerative sphere shaping codec.
//
// It realizes a bijection between indices in [0, NumSequences) and
// amplitude sequences of a fixed length whose total shaping cost lies in a
// configured shell, enumerated against an exact big-integer count table.
// Because the shaping cost is decoupled from the symbol energy, the output
// distribution follows whatever cost model the alphabet carries; costs
// quantized from -log2 of a target distribution reproduce that
// distribution, energy-proportional costs reproduce classic sphere shaping.
//
// The count table is built once by the constructor and never mutated;
// Encode and Decode calls may run concurrently.
type AdEss struct {
	alphabet *Alphabet
	table    *trellis.Trellis
	num      *big.Int
}

// New returns a codec for sequences of length n whose total cost is at most
// threshold, the full cost sphere.
func New(threshold, n int, alphabet *Alphabet) (*AdEss, error) {
	return NewShell(0, threshold, n, alphabet)
}

// NewShell returns a codec for sequences of length n whose total cost lies
// in the shell [lo, hi]. NewShell(b, b, n, a) enumerates the sequences of
// one exact total cost.
func NewShell(lo, hi, n int, alphabet *Alphabet) (*AdEss, error) {
	if alphabet == nil || alphabet.Len() == 0 {
		return nil, fmt.Errorf("%w: empty alphabet", ErrConfiguration)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative sequence length %d", ErrConfiguration, n)
	}
	if lo < 0 || hi < lo {
		return nil, fmt.Errorf("%w: invalid cost shell [%d, %d]", ErrConfiguration, lo, hi)
	}
	if n == 0 && hi > 0 {
		return nil, fmt.Errorf("%w: a length-0 sequence cannot carry positive cost", ErrConfiguration)
	}

	table := trellis.Forward(lo, hi, n, alphabet.Costs())
	return &AdEss{
		alphabet: alphabet,
		table:    table,
		num:      new(big.Int).Set(table.Get(0, 0)),
	}, nil
}

// NewForDistribution returns a codec targeting the given amplitude
// distribution over the odd amplitudes 1, 3, 5, ..., using costs quantized
// with WeightsForDistribution. The second return value is the quantized
// target distribution actually realized by the weight set.
func NewForDistribution(threshold, n int, distribution []float64, resFactor float64) (*AdEss, []float64, error) {
	weights, err := WeightsForDistribution(distribution, resFactor)
	if err != nil {
		return nil, nil, err
	}
	alphabet, err := NewASKAlphabet(weights)
	if err != nil {
		return nil, nil, err
	}
	c, err := New(threshold, n, alphabet)
	if err != nil {
		return nil, nil, err
	}
	return c, DistributionFromWeights(weights, resFactor), nil
}

// NewForDistributionNumBits returns the smallest codec for the given target
// distribution that encodes at least numBits bits per length-n sequence.
// The threshold is found by growing a reverse (prefix-count) trellis until
// it holds 2^numBits sequences; in some cases the resulting codec encodes
// more than numBits bits.
func NewForDistributionNumBits(numBits, n int, distribution []float64, resFactor float64) (*AdEss, []float64, error) {
	weights, err := WeightsForDistribution(distribution, resFactor)
	if err != nil {
		return nil, nil, err
	}
	want := new(big.Int).Lsh(big.NewInt(1), uint(numBits))
	rev, err := trellis.ReverseUpTo(want, n, weights)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}
	return NewForDistribution(rev.Threshold(), n, distribution, resFactor)
}

// NewForDistributionOptimalThreshold returns a codec for the given target
// distribution using the threshold selected by OptimalThreshold.
func NewForDistributionOptimalThreshold(n int, distribution []float64, resFactor float64, searchWidth int, revFraction float64) (*AdEss, []float64, error) {
	threshold, err := OptimalThreshold(n, distribution, resFactor, searchWidth, revFraction)
	if err != nil {
		return nil, nil, err
	}
	return NewForDistribution(threshold, n, distribution, resFactor)
}

// OptimalThreshold returns the cost threshold that maximizes the lower
// bound on mutual information for the given target distribution, following
// formulas (13) and (14) in https://doi.org/10.1109/LWC.2018.2890595.
//
// searchWidth is the number of weight levels checked below and above the
// entropy-based initial estimate. revFraction is the fraction of the full
// reverse trellis computed to locate that estimate; if it is too small the
// estimate falls outside the computed range and the search fails.
func OptimalThreshold(n int, distribution []float64, resFactor float64, searchWidth int, revFraction float64) (int, error) {
	if revFraction <= 0 {
		return 0, fmt.Errorf("%w: reverse trellis fraction must be positive", ErrConfiguration)
	}
	weights, err := WeightsForDistribution(distribution, resFactor)
	if err != nil {
		return 0, err
	}

	maxWeight := 0
	for _, w := range weights {
		if w > maxWeight {
			maxWeight = w
		}
	}
	revThreshold := int(float64(maxWeight*n) * revFraction)
	rev := trellis.Reverse(revThreshold, n, weights)

	// cumulative codebook size per candidate final weight level
	final := rev.Stage(n)
	sizes := make([]*big.Int, len(final))
	running := new(big.Int)
	for i := range final {
		running.Add(running, &final[i])
		sizes[i] = new(big.Int).Set(running)
	}

	target := float64(n) * Entropy(distribution)
	est := -1
	for i, size := range sizes {
		if size.Sign() > 0 && bigLog2(size) >= target {
			est = i
			break
		}
	}
	if est < 0 {
		return 0, fmt.Errorf("%w: computed reverse trellis fraction is too small", ErrConfiguration)
	}

	levels := rev.Levels()
	start := est - searchWidth
	if start < 0 {
		start = 0
	}
	end := est + searchWidth
	if end > len(levels) {
		end = len(levels)
	}

	best, bestLoss := -1, math.Inf(1)
	for i := start; i < end; i++ {
		c, _, err := NewForDistribution(levels[i], n, distribution, resFactor)
		if err != nil {
			return 0, err
		}
		amp, err := c.AmplitudeDistribution()
		if err != nil {
			return 0, err
		}
		// upper bound on the reduction in mutual information
		loss := Entropy(amp) - float64(c.NumBits())/float64(n) + KLDivergence(amp, distribution)
		if loss < bestLoss {
			best, bestLoss = levels[i], loss
		}
	}
	if best < 0 {
		return 0, fmt.Errorf("%w: empty threshold search range", ErrConfiguration)
	}
	return best, nil
}

// Alphabet returns the configured amplitude alphabet.
func (c *AdEss) Alphabet() *Alphabet { return c.alphabet }

// SequenceLength returns the number of amplitudes per sequence.
func (c *AdEss) SequenceLength() int { return c.table.Stages() }

// Threshold returns the upper edge of the configured cost shell.
func (c *AdEss) Threshold() int { return c.table.Threshold() }

// Weights returns the per-symbol shaping costs in alphabet order.
func (c *AdEss) Weights() []int { return c.alphabet.Costs() }

// NumSequences returns the number of sequences the codec can enumerate.
func (c *AdEss) NumSequences() *big.Int { return new(big.Int).Set(c.num) }

// NumBits returns the number of data bits encoded per sequence,
// floor(log2(NumSequences)).
func (c *AdEss) NumBits() int {
	if c.num.Sign() == 0 {
		return 0
	}
	return c.num.BitLen() - 1
}

// Distribution returns the target distribution the codec's weight set
// realizes for the given resolution factor.
func (c *AdEss) Distribution(resFactor float64) []float64 {
	return DistributionFromWeights(c.alphabet.Costs(), resFactor)
}

// Encode maps an index in [0, NumSequences) to its amplitude sequence,
// algorithm 1 in section III-C of https://doi.org/10.1109/TWC.2019.2951139.
// Indices outside the range fail with ErrIndexOutOfRange.
func (c *AdEss) Encode(index *big.Int) ([]int, error) {
	positions, err := unrank(forwardWalker{c.table}, index, c.num)
	if err != nil {
		return nil, err
	}
	return c.alphabet.sequenceOf(positions), nil
}

// Decode maps an amplitude sequence back to its index, algorithm 2 in
// section III-C of https://doi.org/10.1109/TWC.2019.2951139. Sequences
// outside the configured shell fail with ErrInfeasibleSequence.
func (c *AdEss) Decode(sequence []int) (*big.Int, error) {
	positions, err := c.alphabet.positionsOf(sequence)
	if err != nil {
		return nil, err
	}
	return rank(forwardWalker{c.table}, positions)
}

// usedSequences returns 2^NumBits, the number of sequences addressable by
// whole data words.
func (c *AdEss) usedSequences() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(c.NumBits()))
}

// reverseTrellis returns the prefix-count trellis matching this codec's
// configuration.
func (c *AdEss) reverseTrellis() *trellis.Trellis {
	return trellis.Reverse(c.table.Threshold(), c.table.Stages(), c.alphabet.Costs())
}

// AmplitudeDistribution returns the per-symbol occurrence probabilities
// when only the 2^NumBits sequences addressable by whole data words are
// used, computed analytically from the count table.
//
// The computation splits the used codebook along the first abandoned
// sequence (the sequence at index 2^NumBits): each used sequence leaves it
// at exactly one position, and the suffix counts beyond that position come
// straight from the table. No sequence is ever enumerated.
func (c *AdEss) AmplitudeDistribution() ([]float64, error) {
	if c.num.Sign() == 0 {
		return nil, ErrEmptyCodebook
	}
	used := c.usedSequences()
	if used.Cmp(c.num) == 0 {
		return c.fullUtilizationDistribution(), nil
	}

	fas, err := unrank(forwardWalker{c.table}, used, c.num)
	if err != nil {
		return nil, err
	}
	fasWL := c.alphabet.costLevels(fas)

	n := c.table.Stages()
	denom := new(big.Int).Mul(used, big.NewInt(int64(n)))
	dist := make([]float64, c.alphabet.Len())
	for sym := range dist {
		total := new(big.Int)
		for stage := 0; stage < n; stage++ {
			total.Add(total, c.countSymbolInStage(sym, stage, fas, fasWL))
		}
		dist[sym] = ratio(total, denom)
	}
	return dist, nil
}

// fullUtilizationDistribution returns the per-symbol probabilities when all
// NumSequences sequences are used equiprobably. First-position counts
// suffice: the shell constraint is permutation invariant, so every position
// has the same marginal.
func (c *AdEss) fullUtilizationDistribution() []float64 {
	dist := make([]float64, c.alphabet.Len())
	if c.table.Stages() == 0 {
		return dist
	}
	for _, e := range c.table.Successors(0) {
		dist[e.Index] = ratio(c.table.Get(1, e.Level), c.num)
	}
	return dist
}

// countSymbolInStage counts occurrences of the symbol at alphabet position
// sym, in position stage, over the used codebook. fas is the first
// abandoned sequence as alphabet positions, fasWL its cumulative cost
// levels. The split by the position where a sequence leaves the first
// abandoned sequence keeps every term a plain table lookup.
func (c *AdEss) countSymbolInStage(sym, stage int, fas, fasWL []int) *big.Int {
	w := c.alphabet.Cost(sym)
	n := c.table.Stages()
	count := new(big.Int)

	// sequences leaving the first abandoned sequence before this stage:
	// their suffix is free, and by permutation invariance the occurrence
	// count at any one free position is the same single table lookup
	for s := 0; s < stage; s++ {
		for _, e := range c.table.Successors(fasWL[s]) {
			if e.Index == fas[s] {
				break
			}
			count.Add(count, c.table.GetOrZero(s+2, e.Level+w))
		}
	}

	// sequences leaving exactly at this stage with the counted symbol;
	// only symbols enumerated before the abandoned one qualify
	fw := c.alphabet.Cost(fas[stage])
	if w < fw || (w == fw && sym < fas[stage]) {
		count.Add(count, c.table.GetOrZero(stage+1, fasWL[stage]+w))
	}

	// sequences still following the first abandoned sequence here; they
	// carry its symbol at this stage
	if sym == fas[stage] {
		for s := stage + 1; s < n; s++ {
			for _, e := range c.table.Successors(fasWL[s]) {
				if e.Index == fas[s] {
					break
				}
				count.Add(count, c.table.GetOrZero(s+1, e.Level))
			}
		}
	}
	return count
}

// AverageEnergy returns the expected energy per amplitude when only whole
// data words are encoded, computed from the analytic amplitude
// distribution.
func (c *AdEss) AverageEnergy() (float64, error) {
	dist, err := c.AmplitudeDistribution()
	if err != nil {
		return 0, err
	}
	var avg float64
	for i, p := range dist {
		avg += p * c.alphabet.Energy(i)
	}
	return avg, nil
}

// Metrics evaluates the codec against the target distribution its weight
// set realizes for the given resolution factor.
func (c *AdEss) Metrics(resFactor float64) (Metrics, error) {
	return ComputeMetrics(c, c.Distribution(resFactor))
}

// ratio returns the float64 value of a/b.
func ratio(a, b *big.Int) float64 {
	f, _ := new(big.Rat).SetFrac(a, b).Float64()
	return f
}
