package adess

import (
	"errors"
	"math"
	"math/big"
	"testing"
)

func TestComputeMetrics(t *testing.T) {
	c := mustAdEss(t, 7, 4, 0, 1, 3, 6)
	target := c.Distribution(1)

	m, err := ComputeMetrics(c, target)
	if err != nil {
		t.Fatalf("ComputeMetrics: %v", err)
	}

	if want := 6.0 / 4.0; m.Rate != want {
		t.Errorf("Rate = %v, want %v", m.Rate, want)
	}
	if want := Entropy(target) - 1.5; math.Abs(m.RateLoss-want) > 1e-12 {
		t.Errorf("RateLoss = %v, want %v", m.RateLoss, want)
	}

	// 114*1 + 84*9 + 46*25 + 12*49 over 256 amplitudes
	wantEnergy := (114.0 + 84*9 + 46*25 + 12*49) / 256
	if math.Abs(m.AverageEnergy-wantEnergy) > 1e-9 {
		t.Errorf("AverageEnergy = %v, want %v", m.AverageEnergy, wantEnergy)
	}
}

func TestMetricsMethodsAgree(t *testing.T) {
	a := mustAdEss(t, 7, 4, 0, 1, 3, 6)
	am, err := a.Metrics(1)
	if err != nil {
		t.Fatalf("AdEss.Metrics: %v", err)
	}
	cm, err := ComputeMetrics(a, a.Distribution(1))
	if err != nil {
		t.Fatalf("ComputeMetrics: %v", err)
	}
	if am != cm {
		t.Errorf("AdEss.Metrics = %+v, ComputeMetrics = %+v", am, cm)
	}

	r := mustRTS(t, 6, 4, 0, 1, 3, 6)
	rm, err := r.Metrics(1)
	if err != nil {
		t.Fatalf("RTS.Metrics: %v", err)
	}
	if rm.Rate != 6.0/4.0 {
		t.Errorf("RTS Rate = %v, want 1.5", rm.Rate)
	}
}

func TestShapingLossNonNegative(t *testing.T) {
	c := mustAdEss(t, 7, 4, 0, 1, 3, 6)
	loss, err := ShapingLoss(c, c.Distribution(1))
	if err != nil {
		t.Fatalf("ShapingLoss: %v", err)
	}
	if loss < -1e-9 {
		t.Errorf("ShapingLoss = %v, want non-negative", loss)
	}
}

func TestMetricsEmptyCodebook(t *testing.T) {
	// no length-2 sequence over costs {0, 2} has total cost exactly 1
	alphabet, err := NewAlphabet([]int{1, 3}, []int{0, 2})
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewShell(1, 1, 2, alphabet)
	if err != nil {
		t.Fatalf("NewShell: %v", err)
	}
	if c.NumSequences().Sign() != 0 {
		t.Fatalf("NumSequences = %s, want 0", c.NumSequences())
	}

	if _, err := ComputeMetrics(c, []float64{0.5, 0.5}); !errors.Is(err, ErrEmptyCodebook) {
		t.Errorf("ComputeMetrics err = %v, want ErrEmptyCodebook", err)
	}
	if _, err := c.AmplitudeDistribution(); !errors.Is(err, ErrEmptyCodebook) {
		t.Errorf("AmplitudeDistribution err = %v, want ErrEmptyCodebook", err)
	}
	if _, err := c.Encode(big.NewInt(0)); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("Encode err = %v, want ErrIndexOutOfRange", err)
	}
}

func TestBigLog2(t *testing.T) {
	tests := []struct {
		x    *big.Int
		want float64
	}{
		{big.NewInt(1), 0},
		{big.NewInt(2), 1},
		{big.NewInt(1024), 10},
		{new(big.Int).Lsh(big.NewInt(1), 400), 400},
	}
	for _, tt := range tests {
		if got := bigLog2(tt.x); math.Abs(got-tt.want) > 1e-9 {
			t.Errorf("bigLog2(%s) = %v, want %v", tt.x, got, tt.want)
		}
	}
	if got := bigLog2(big.NewInt(3)); math.Abs(got-math.Log2(3)) > 1e-9 {
		t.Errorf("bigLog2(3) = %v, want %v", got, math.Log2(3))
	}
}
