package indicator

import (
	"math"
	"testing"
)

var refPrices = []float64{100, 102, 101, 103, 105, 104, 106}

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-3 }

func TestSMAReferenceSeries(t *testing.T) {
	result := SMA(refPrices, 3)
	if len(result) != len(refPrices) {
		t.Fatalf("expected same length, got %d", len(result))
	}
	if !math.IsNaN(result[0]) || !math.IsNaN(result[1]) {
		t.Fatal("expected NaN warmup entries")
	}
	expected := []float64{101, 102, 103, 104, 105}
	for i, want := range expected {
		if !almostEqual(result[i+2], want) {
			t.Fatalf("index %d: expected %v, got %v", i+2, want, result[i+2])
		}
	}
}

func TestSMAInsufficientData(t *testing.T) {
	result := SMA([]float64{100, 102}, 3)
	for i, v := range result {
		if !math.IsNaN(v) {
			t.Fatalf("index %d: expected NaN, got %v", i, v)
		}
	}
}

func TestEMAReferenceSeries(t *testing.T) {
	result := EMA(refPrices, 3)
	if !math.IsNaN(result[0]) || !math.IsNaN(result[1]) {
		t.Fatal("expected NaN warmup entries")
	}
	// seed is the SMA of the first 3 prices
	if !almostEqual(result[2], 101.0) {
		t.Fatalf("expected seed 101, got %v", result[2])
	}
	// k = 0.5 for period 3: 103*0.5 + 101*0.5
	if !almostEqual(result[3], 102.0) {
		t.Fatalf("expected 102, got %v", result[3])
	}
	if !almostEqual(result[4], 103.5) {
		t.Fatalf("expected 103.5, got %v", result[4])
	}
}

func TestRSIWarmupAndBounds(t *testing.T) {
	result := RSI(refPrices, 3)
	for i := 0; i < 3; i++ {
		if !math.IsNaN(result[i]) {
			t.Fatalf("index %d: expected NaN warmup, got %v", i, result[i])
		}
	}
	for i := 3; i < len(result); i++ {
		if result[i] < 0 || result[i] > 100 {
			t.Fatalf("index %d: RSI %v out of range", i, result[i])
		}
	}
}

func TestRSIAllGainsIsHundred(t *testing.T) {
	prices := []float64{100, 101, 102, 103, 104, 105}
	result := RSI(prices, 3)
	if !almostEqual(result[len(result)-1], 100.0) {
		t.Fatalf("expected RSI 100 with zero losses, got %v", result[len(result)-1])
	}
}

func TestRSIWilderSmoothing(t *testing.T) {
	prices := []float64{100, 102, 101, 103, 105}
	result := RSI(prices, 3)

	// seed: deltas +2, -1, +2 over the first 3 steps
	avgGain := (2.0 + 0.0 + 2.0) / 3.0
	avgLoss := 1.0 / 3.0
	want := 100.0 - 100.0/(1.0+avgGain/avgLoss)
	if !almostEqual(result[3], want) {
		t.Fatalf("seed value: expected %v, got %v", want, result[3])
	}

	// next step applies Wilder smoothing with delta +2
	avgGain = (avgGain*2 + 2.0) / 3.0
	avgLoss = (avgLoss * 2) / 3.0
	want = 100.0 - 100.0/(1.0+avgGain/avgLoss)
	if !almostEqual(result[4], want) {
		t.Fatalf("smoothed value: expected %v, got %v", want, result[4])
	}
}
