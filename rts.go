// rts.go implements reverse trellis shaping.

package adess

import (
	"fmt"
	"math/big"

	"github.com/kit-cel/ad-ess/internal/trellis"
)

// RTS is a reverse trellis shaping codec.
//
// Unlike AdEss it is built from a requested bit count rather than a cost
// threshold: the prefix-count trellis grows one weight level at a time until
// it holds at least 2^numBits sequences, so the codebook overshoots the
// requested size by less than one weight level. Sequences are enumerated
// from the last amplitude to the first.
//
// The count table is built once by the constructor and never mutated;
// Encode and Decode calls may run concurrently.
type RTS struct {
	alphabet *Alphabet
	table    *trellis.Trellis
	num      *big.Int
}

// NewRTS returns a codec for sequences of length n that encodes at least
// numBits bits. The smallest trellis holding 2^numBits sequences is used;
// in some cases it encodes more than numBits bits. If even the unbounded
// trellis holds fewer sequences the constructor fails with
// ErrConfiguration.
func NewRTS(numBits, n int, alphabet *Alphabet) (*RTS, error) {
	if alphabet == nil || alphabet.Len() == 0 {
		return nil, fmt.Errorf("%w: empty alphabet", ErrConfiguration)
	}
	if numBits < 0 {
		return nil, fmt.Errorf("%w: negative bit count %d", ErrConfiguration, numBits)
	}
	if n < 0 {
		return nil, fmt.Errorf("%w: negative sequence length %d", ErrConfiguration, n)
	}

	want := new(big.Int).Lsh(big.NewInt(1), uint(numBits))
	table, err := trellis.ReverseUpTo(want, n, alphabet.Costs())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfiguration, err)
	}

	num := new(big.Int)
	final := table.Stage(n)
	for i := range final {
		num.Add(num, &final[i])
	}
	return &RTS{alphabet: alphabet, table: table, num: num}, nil
}

// Alphabet returns the configured amplitude alphabet.
func (c *RTS) Alphabet() *Alphabet { return c.alphabet }

// SequenceLength returns the number of amplitudes per sequence.
func (c *RTS) SequenceLength() int { return c.table.Stages() }

// Threshold returns the cost threshold the trellis grew to.
func (c *RTS) Threshold() int { return c.table.Threshold() }

// Weights returns the per-symbol shaping costs in alphabet order.
func (c *RTS) Weights() []int { return c.alphabet.Costs() }

// NumSequences returns the number of sequences the codec can enumerate.
// This is at least 2^numBits but can exceed it, because the trellis grows
// in whole weight levels.
func (c *RTS) NumSequences() *big.Int { return new(big.Int).Set(c.num) }

// NumBits returns the number of data bits encoded per sequence,
// floor(log2(NumSequences)).
func (c *RTS) NumBits() int {
	if c.num.Sign() == 0 {
		return 0
	}
	return c.num.BitLen() - 1
}

// Distribution returns the target distribution the codec's weight set
// realizes for the given resolution factor.
func (c *RTS) Distribution(resFactor float64) []float64 {
	return DistributionFromWeights(c.alphabet.Costs(), resFactor)
}

// Encode maps an index in [0, NumSequences) to its amplitude sequence.
// Indices outside the range fail with ErrIndexOutOfRange.
func (c *RTS) Encode(index *big.Int) ([]int, error) {
	positions, err := unrank(reverseWalker{c.table}, index, c.num)
	if err != nil {
		return nil, err
	}
	return c.alphabet.sequenceOf(positions), nil
}

// Decode maps an amplitude sequence back to its index. Sequences whose
// total cost exceeds the trellis threshold fail with
// ErrInfeasibleSequence.
func (c *RTS) Decode(sequence []int) (*big.Int, error) {
	positions, err := c.alphabet.positionsOf(sequence)
	if err != nil {
		return nil, err
	}
	return rank(reverseWalker{c.table}, positions)
}

// usedSequences returns 2^NumBits, the number of sequences addressable by
// whole data words.
func (c *RTS) usedSequences() *big.Int {
	return new(big.Int).Lsh(big.NewInt(1), uint(c.NumBits()))
}

// AmplitudeDistribution returns the per-symbol occurrence probabilities
// when only the 2^NumBits sequences addressable by whole data words are
// used, computed analytically from the count table.
//
// As in AdEss the used codebook is split along the first abandoned
// sequence, here by the stage in which a sequence joins it; every term is
// a plain table lookup and no sequence is enumerated.
func (c *RTS) AmplitudeDistribution() ([]float64, error) {
	if c.num.Sign() == 0 {
		return nil, ErrEmptyCodebook
	}
	used := c.usedSequences()
	if used.Cmp(c.num) == 0 {
		return c.fullUtilizationDistribution(), nil
	}

	fas, err := unrank(reverseWalker{c.table}, used, c.num)
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

// fullUtilizationDistribution returns the per-symbol probabilities when
// all NumSequences sequences are used equiprobably. The prefix counts one
// stage before the end give the occurrence count of each final symbol,
// and by permutation invariance every position has the same marginal.
func (c *RTS) fullUtilizationDistribution() []float64 {
	n := c.table.Stages()
	dist := make([]float64, c.alphabet.Len())
	if n == 0 {
		return dist
	}
	threshold := c.table.Threshold()
	for sym := range dist {
		w := c.alphabet.Cost(sym)
		count := new(big.Int)
		for _, wl := range c.table.Levels() {
			if wl+w > threshold {
				break
			}
			count.Add(count, c.table.Get(n-1, wl))
		}
		dist[sym] = ratio(count, c.num)
	}
	return dist
}

// countSymbolInStage counts occurrences of the symbol at alphabet position
// sym, in position stage, over the used codebook. fas is the first
// abandoned sequence as alphabet positions, fasWL its cumulative cost
// levels.
//
// Enumeration runs from the last amplitude to the first, so used sequences
// share a suffix with the first abandoned sequence and the split is by the
// stage in which a sequence joins it (or never does).
func (c *RTS) countSymbolInStage(sym, stage int, fas, fasWL []int) *big.Int {
	w := c.alphabet.Cost(sym)
	n := c.table.Stages()
	count := new(big.Int)

	// sequences that end at a lower weight level and never join; the
	// counted symbol sits at a free position, and by permutation
	// invariance one prefix-count lookup covers it
	fasFinal := fasWL[n]
	for _, wl := range c.table.Levels() {
		if wl >= fasFinal {
			break
		}
		if wl < w {
			continue
		}
		count.Add(count, c.table.GetOrZero(n-1, wl-w))
	}

	// sequences joining between stages stage+2 and n: the suffix from the
	// join onward is shared, the counted position is still free
	for s := stage + 2; s <= n; s++ {
		for _, e := range c.table.Predecessors(fasWL[s]) {
			if e.Index == fas[s-1] {
				break
			}
			if e.Level < w {
				continue
			}
			count.Add(count, c.table.GetOrZero(s-2, e.Level-w))
		}
	}

	// sequences joining exactly at stage+1 with the counted symbol as the
	// departing transition; only symbols enumerated after the abandoned
	// one at this stage qualify
	fw := c.alphabet.Cost(fas[stage])
	if (w > fw || (w == fw && sym > fas[stage])) && fasWL[stage+1] >= w {
		count.Add(count, c.table.GetOrZero(stage, fasWL[stage+1]-w))
	}

	// sequences joining at this stage or earlier follow the first
	// abandoned sequence here and carry its symbol
	if sym == fas[stage] {
		for s := 1; s <= stage; s++ {
			for _, e := range c.table.Predecessors(fasWL[s]) {
				if e.Index == fas[s-1] {
					break
				}
				count.Add(count, c.table.GetOrZero(s-1, e.Level))
			}
		}
	}
	return count
}

// Metrics evaluates the codec against the target distribution its weight
// set realizes for the given resolution factor.
func (c *RTS) Metrics(resFactor float64) (Metrics, error) {
	return ComputeMetrics(c, c.Distribution(resFactor))
}

// AverageEnergy returns the expected energy per amplitude when only whole
// data words are encoded, computed from the analytic amplitude
// distribution.
func (c *RTS) AverageEnergy() (float64, error) {
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
