package trellis

import "math/big"

// Forward builds the suffix-count trellis for sequences of length stages
// whose total weight lands in the shell [lo, hi].
//
// Node (stage, wl) counts the length-(stages-stage) suffixes that continue
// from cumulative weight wl to a terminal level inside the shell. The full
// sphere of classic enumerative sphere shaping is the shell [0, hi]; the
// shell [hi, hi] counts sequences of one exact total weight.
//
// The fill runs backward from the terminal stage, so row stage+1 is always
// complete before row stage is computed.
func Forward(lo, hi, stages int, weights []int) *Trellis {
	t := New(hi, stages, weights)

	one := big.NewInt(1)
	for _, wl := range t.levels {
		if wl >= lo {
			t.Set(stages, wl, one)
		}
	}

	for stage := stages - 1; stage >= 0; stage-- {
		for _, wl := range t.levels {
			node := &t.data[stage][t.lookup[wl]]
			for _, e := range t.Successors(wl) {
				node.Add(node, t.Get(stage+1, e.Level))
			}
		}
	}
	return t
}
