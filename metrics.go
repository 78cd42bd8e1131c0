// metrics.go evaluates shaping codecs against a target distribution.

package adess

import (
	"math"
	"math/big"
)

// Shaper is the read side shared by the shaping codecs, enough to evaluate
// a configured codec without knowing how its codebook is enumerated.
type Shaper interface {
	NumSequences() *big.Int
	NumBits() int
	SequenceLength() int
	AmplitudeDistribution() ([]float64, error)
	Alphabet() *Alphabet
}

// Metrics summarizes a configured shaping codec.
type Metrics struct {
	// AverageEnergy is the expected energy per amplitude when only whole
	// data words are encoded.
	AverageEnergy float64
	// Rate is the number of data bits carried per amplitude.
	Rate float64
	// RateLoss is the gap between the entropy of the target distribution
	// and the achieved rate, in bits per amplitude.
	RateLoss float64
}

// ComputeMetrics evaluates a codec against the target distribution it was
// configured for. A codec with an empty codebook fails with
// ErrEmptyCodebook.
func ComputeMetrics(s Shaper, target []float64) (Metrics, error) {
	if s.NumSequences().Sign() == 0 {
		return Metrics{}, ErrEmptyCodebook
	}

	dist, err := s.AmplitudeDistribution()
	if err != nil {
		return Metrics{}, err
	}
	alphabet := s.Alphabet()
	var avg float64
	for i, p := range dist {
		avg += p * alphabet.Energy(i)
	}

	rate := float64(s.NumBits()) / float64(s.SequenceLength())
	return Metrics{
		AverageEnergy: avg,
		Rate:          rate,
		RateLoss:      Entropy(target) - rate,
	}, nil
}

// ShapingLoss returns an upper bound on the reduction in mutual
// information caused by using the codec instead of an ideal shaper for the
// target distribution, formula (13) in
// https://doi.org/10.1109/LWC.2018.2890595.
func ShapingLoss(s Shaper, target []float64) (float64, error) {
	if s.NumSequences().Sign() == 0 {
		return 0, ErrEmptyCodebook
	}
	dist, err := s.AmplitudeDistribution()
	if err != nil {
		return 0, err
	}
	rate := float64(s.NumBits()) / float64(s.SequenceLength())
	return Entropy(dist) - rate + KLDivergence(dist, target), nil
}

// bigLog2 returns log2(x) for a positive big integer without loss of the
// exponent range.
func bigLog2(x *big.Int) float64 {
	mant := new(big.Float)
	exp := new(big.Float).SetInt(x).MantExp(mant)
	m, _ := mant.Float64()
	return float64(exp) + math.Log2(m)
}
