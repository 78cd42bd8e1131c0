// dist.go provides distribution helpers shared by the codecs and metrics.

package adess

import "math"

// Entropy returns the Shannon entropy of a probability distribution in bits.
// Zero-probability entries contribute nothing.
func Entropy(p []float64) float64 {
	var h float64
	for _, pi := range p {
		if pi > 0 {
			h -= pi * math.Log2(pi)
		}
	}
	return h
}

// KLDivergence returns the Kullback-Leibler divergence D(p || q) in bits.
func KLDivergence(p, q []float64) float64 {
	var d float64
	for i, pi := range p {
		if pi > 0 {
			d += pi * math.Log2(pi/q[i])
		}
	}
	return d
}

// Information returns the self-information -log2(p) of each entry in bits.
func Information(p []float64) []float64 {
	info := make([]float64, len(p))
	for i, pi := range p {
		info[i] = -math.Log2(pi)
	}
	return info
}

// DistributionFromWeights returns the target distribution realized by a
// quantized weight set: p_i proportional to 2^(-w_i / resFactor). This is
// the inverse of WeightsForDistribution up to quantization error.
func DistributionFromWeights(weights []int, resFactor float64) []float64 {
	exps := make([]float64, len(weights))
	var sum float64
	for i, w := range weights {
		exps[i] = math.Exp2(float64(w) / -resFactor)
		sum += exps[i]
	}
	for i := range exps {
		exps[i] /= sum
	}
	return exps
}

// cumsum returns the running sums of vals with a leading zero, so that
// out[i] is the sum of the first i values.
func cumsum(vals []int) []int {
	out := make([]int, len(vals)+1)
	for i, v := range vals {
		out[i+1] = out[i] + v
	}
	return out
}
