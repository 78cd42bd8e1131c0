package adess

import (
	"errors"
	"math"
	"math/big"
	"sync"
	"testing"
)

func mustASK(t *testing.T, costs ...int) *Alphabet {
	t.Helper()
	a, err := NewASKAlphabet(costs)
	if err != nil {
		t.Fatalf("NewASKAlphabet(%v): %v", costs, err)
	}
	return a
}

func mustAdEss(t *testing.T, threshold, n int, costs ...int) *AdEss {
	t.Helper()
	c, err := New(threshold, n, mustASK(t, costs...))
	if err != nil {
		t.Fatalf("New(%d, %d, %v): %v", threshold, n, costs, err)
	}
	return c
}

var adEssConfigs = []struct {
	threshold, n int
	costs        []int
}{
	{9, 4, []int{2, 0, 2, 5}},
	{8, 5, []int{2, 0, 2, 5}},
	{6, 3, []int{5, 0, 2, 0}},
	{4, 5, []int{0, 1, 1, 3}},
	{30, 5, []int{0, 1, 3, 6}},
}

func TestAdEssRoundTrip(t *testing.T) {
	for _, cfg := range adEssConfigs {
		c := mustAdEss(t, cfg.threshold, cfg.n, cfg.costs...)
		num := c.NumSequences().Int64()
		if num == 0 {
			t.Fatalf("config %+v: empty codebook", cfg)
		}
		for i := int64(0); i < num; i++ {
			seq, err := c.Encode(big.NewInt(i))
			if err != nil {
				t.Fatalf("config %+v: Encode(%d): %v", cfg, i, err)
			}
			back, err := c.Decode(seq)
			if err != nil {
				t.Fatalf("config %+v: Decode(%v): %v", cfg, seq, err)
			}
			if back.Int64() != i {
				t.Fatalf("config %+v: index %d round-tripped to %s via %v", cfg, i, back, seq)
			}
		}
	}
}

func TestAdEssIndexOutOfRange(t *testing.T) {
	c := mustAdEss(t, 7, 4, 0, 1, 3, 6)
	for _, index := range []*big.Int{
		nil,
		big.NewInt(-1),
		c.NumSequences(),
		new(big.Int).Add(c.NumSequences(), big.NewInt(5)),
	} {
		if _, err := c.Encode(index); !errors.Is(err, ErrIndexOutOfRange) {
			t.Errorf("Encode(%v) err = %v, want ErrIndexOutOfRange", index, err)
		}
	}
}

func TestAdEssDecodeInfeasible(t *testing.T) {
	c := mustAdEss(t, 7, 4, 0, 1, 3, 6)

	// total cost 6+6+6+6 is far past the threshold
	if _, err := c.Decode([]int{7, 7, 7, 7}); !errors.Is(err, ErrInfeasibleSequence) {
		t.Errorf("overweight sequence err = %v, want ErrInfeasibleSequence", err)
	}
	if _, err := c.Decode([]int{1, 1, 1}); !errors.Is(err, ErrInfeasibleSequence) {
		t.Errorf("short sequence err = %v, want ErrInfeasibleSequence", err)
	}
	if _, err := c.Decode([]int{1, 1, 1, 4}); !errors.Is(err, ErrInfeasibleSequence) {
		t.Errorf("unknown symbol err = %v, want ErrInfeasibleSequence", err)
	}
}

func TestAdEssExactShell(t *testing.T) {
	alphabet, err := NewAlphabet([]int{0, 1, 2, 3}, []int{0, 1, 4, 9})
	if err != nil {
		t.Fatalf("NewAlphabet: %v", err)
	}
	c, err := NewShell(6, 6, 4, alphabet)
	if err != nil {
		t.Fatalf("NewShell: %v", err)
	}

	// cost 6 over 4 positions decomposes only as 4+1+1+0, in 12 orders
	if num := c.NumSequences().Int64(); num != 12 {
		t.Fatalf("NumSequences = %d, want 12", num)
	}
	for i := int64(0); i < 12; i++ {
		seq, err := c.Encode(big.NewInt(i))
		if err != nil {
			t.Fatalf("Encode(%d): %v", i, err)
		}
		cost := 0
		for _, s := range seq {
			cost += alphabet.Cost(s) // symbols 0..3 coincide with positions
		}
		if cost != 6 {
			t.Errorf("Encode(%d) = %v has cost %d, want exactly 6", i, seq, cost)
		}
		back, err := c.Decode(seq)
		if err != nil {
			t.Fatalf("Decode(%v): %v", seq, err)
		}
		if back.Int64() != i {
			t.Errorf("index %d round-tripped to %s", i, back)
		}
	}

	// inside the sphere but off the shell
	if _, err := c.Decode([]int{0, 0, 0, 0}); !errors.Is(err, ErrInfeasibleSequence) {
		t.Errorf("off-shell sequence err = %v, want ErrInfeasibleSequence", err)
	}
}

func TestAdEssConfigurationErrors(t *testing.T) {
	alphabet := mustASK(t, 0, 1, 3, 6)
	tests := []struct {
		name string
		err  error
	}{
		{"nil alphabet", func() error { _, err := New(7, 4, nil); return err }()},
		{"negative length", func() error { _, err := New(7, -1, alphabet); return err }()},
		{"inverted shell", func() error { _, err := NewShell(5, 3, 4, alphabet); return err }()},
		{"negative shell", func() error { _, err := NewShell(-1, 3, 4, alphabet); return err }()},
		{"zero length positive cost", func() error { _, err := New(3, 0, alphabet); return err }()},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, ErrConfiguration) {
			t.Errorf("%s: err = %v, want ErrConfiguration", tt.name, tt.err)
		}
	}
}

func TestAdEssAmplitudeDistributionWorkedExample(t *testing.T) {
	c := mustAdEss(t, 7, 4, 0, 1, 3, 6)
	if bits := c.NumBits(); bits != 6 {
		t.Fatalf("NumBits = %d, want 6", bits)
	}

	dist, err := c.AmplitudeDistribution()
	if err != nil {
		t.Fatalf("AmplitudeDistribution: %v", err)
	}
	wantFreq := []float64{114, 84, 46, 12}
	for i, p := range dist {
		freq := p * 64 * 4
		if math.Round(freq) != wantFreq[i] {
			t.Errorf("amplitude %d frequency = %v, want %v", c.Alphabet().Symbol(i), freq, wantFreq[i])
		}
	}
}

func TestAdEssAmplitudeDistributionMatchesEnumeration(t *testing.T) {
	for _, cfg := range adEssConfigs {
		c := mustAdEss(t, cfg.threshold, cfg.n, cfg.costs...)
		used := c.usedSequences().Int64()

		counts := make([]int64, c.Alphabet().Len())
		for i := int64(0); i < used; i++ {
			seq, err := c.Encode(big.NewInt(i))
			if err != nil {
				t.Fatalf("config %+v: Encode(%d): %v", cfg, i, err)
			}
			positions, err := c.Alphabet().positionsOf(seq)
			if err != nil {
				t.Fatal(err)
			}
			for _, p := range positions {
				counts[p]++
			}
		}

		dist, err := c.AmplitudeDistribution()
		if err != nil {
			t.Fatalf("config %+v: AmplitudeDistribution: %v", cfg, err)
		}
		for i, p := range dist {
			got := math.Round(p * float64(used) * float64(cfg.n))
			if got != float64(counts[i]) {
				t.Errorf("config %+v: symbol %d count = %v, enumerated %d", cfg, i, got, counts[i])
			}
		}
	}
}

func TestAdEssFullUtilizationDistribution(t *testing.T) {
	for _, cfg := range adEssConfigs {
		c := mustAdEss(t, cfg.threshold, cfg.n, cfg.costs...)
		num := c.NumSequences().Int64()

		counts := make([]int64, c.Alphabet().Len())
		for i := int64(0); i < num; i++ {
			seq, err := c.Encode(big.NewInt(i))
			if err != nil {
				t.Fatal(err)
			}
			positions, err := c.Alphabet().positionsOf(seq)
			if err != nil {
				t.Fatal(err)
			}
			for _, p := range positions {
				counts[p]++
			}
		}

		for i, p := range c.fullUtilizationDistribution() {
			got := math.Round(p * float64(num) * float64(cfg.n))
			if got != float64(counts[i]) {
				t.Errorf("config %+v: symbol %d count = %v, enumerated %d", cfg, i, got, counts[i])
			}
		}
	}
}

func TestAdEssAverageEnergy(t *testing.T) {
	for _, cfg := range adEssConfigs {
		c := mustAdEss(t, cfg.threshold, cfg.n, cfg.costs...)
		used := c.usedSequences().Int64()

		var total float64
		for i := int64(0); i < used; i++ {
			seq, err := c.Encode(big.NewInt(i))
			if err != nil {
				t.Fatal(err)
			}
			for _, a := range seq {
				total += float64(a) * float64(a)
			}
		}
		want := total / float64(used) / float64(cfg.n)

		got, err := c.AverageEnergy()
		if err != nil {
			t.Fatalf("config %+v: AverageEnergy: %v", cfg, err)
		}
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("config %+v: AverageEnergy = %v, enumerated %v", cfg, got, want)
		}
	}
}

func TestAdEssReverseTrellisConsistency(t *testing.T) {
	c := mustAdEss(t, 9, 4, 2, 0, 2, 5)
	rev := c.reverseTrellis()

	total := new(big.Int)
	for _, wl := range rev.Levels() {
		total.Add(total, rev.Get(c.SequenceLength(), wl))
	}
	if total.Cmp(c.NumSequences()) != 0 {
		t.Errorf("reverse trellis enumerates %s sequences, codec %s", total, c.NumSequences())
	}
}

func TestNewForDistributionNumBits(t *testing.T) {
	// per-amplitude Maxwell-Boltzmann target of a shaped 64-QAM
	target := []float64{0.3229397, 0.14510616, 0.02929643, 0.00265771}

	c, quantized, err := NewForDistributionNumBits(336, 224, target, 10)
	if err != nil {
		t.Fatalf("NewForDistributionNumBits: %v", err)
	}
	if bits := c.NumBits(); bits < 336 {
		t.Fatalf("NumBits = %d, want at least 336", bits)
	}
	if len(quantized) != len(target) {
		t.Fatalf("quantized target has %d entries, want %d", len(quantized), len(target))
	}

	// codebook far beyond 64-bit range round-trips exactly
	for _, index := range []*big.Int{
		big.NewInt(0),
		new(big.Int).Lsh(big.NewInt(1), 335),
		new(big.Int).Sub(c.usedSequences(), big.NewInt(1)),
	} {
		seq, err := c.Encode(index)
		if err != nil {
			t.Fatalf("Encode(%s): %v", index, err)
		}
		back, err := c.Decode(seq)
		if err != nil {
			t.Fatalf("Decode: %v", err)
		}
		if back.Cmp(index) != 0 {
			t.Fatalf("index %s round-tripped to %s", index, back)
		}
	}

	avg, err := c.AverageEnergy()
	if err != nil {
		t.Fatalf("AverageEnergy: %v", err)
	}
	if avg <= 1 || avg >= 49 {
		t.Errorf("AverageEnergy = %v, want inside (1, 49)", avg)
	}
}

func TestOptimalThresholdFractionErrors(t *testing.T) {
	target := []float64{0.4, 0.3, 0.2, 0.1}
	for _, revFraction := range []float64{0, -0.5} {
		if _, err := OptimalThreshold(16, target, 4, 3, revFraction); !errors.Is(err, ErrConfiguration) {
			t.Errorf("revFraction %v: err = %v, want ErrConfiguration", revFraction, err)
		}
	}
}

func TestOptimalThreshold(t *testing.T) {
	target := []float64{0.4, 0.3, 0.2, 0.1}

	threshold, err := OptimalThreshold(16, target, 4, 3, 0.5)
	if err != nil {
		t.Fatalf("OptimalThreshold: %v", err)
	}
	if threshold <= 0 {
		t.Fatalf("threshold = %d, want positive", threshold)
	}

	c, quantized, err := NewForDistributionOptimalThreshold(16, target, 4, 3, 0.5)
	if err != nil {
		t.Fatalf("NewForDistributionOptimalThreshold: %v", err)
	}
	if c.Threshold() != threshold {
		t.Errorf("codec threshold = %d, OptimalThreshold = %d", c.Threshold(), threshold)
	}
	if c.NumBits() == 0 {
		t.Error("optimal codec encodes no bits")
	}
	loss, err := ShapingLoss(c, quantized)
	if err != nil {
		t.Fatalf("ShapingLoss: %v", err)
	}
	if loss < -1e-9 || loss > 1 {
		t.Errorf("ShapingLoss = %v, want within [0, 1]", loss)
	}
}

func TestAdEssConcurrentUse(t *testing.T) {
	c := mustAdEss(t, 30, 5, 0, 1, 3, 6)
	num := c.NumSequences().Int64()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(offset int64) {
			defer wg.Done()
			for i := offset; i < num; i += 8 {
				seq, err := c.Encode(big.NewInt(i))
				if err != nil {
					t.Errorf("Encode(%d): %v", i, err)
					return
				}
				back, err := c.Decode(seq)
				if err != nil {
					t.Errorf("Decode(%v): %v", seq, err)
					return
				}
				if back.Int64() != i {
					t.Errorf("index %d round-tripped to %s", i, back)
					return
				}
			}
		}(int64(g))
	}
	wg.Wait()
}
