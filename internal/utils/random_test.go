package utils

import (
	"testing"
	"time"
)

func TestRandomReproducibility(t *testing.T) {
	seed := int64(42)

	// Create two RNGs with the same seed
	rng1 := NewRandom(seed)
	rng2 := NewRandom(seed)

	// Verify they produce identical sequences
	t.Run("IntN", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			v1 := rng1.IntN(1000)
			v2 := rng2.IntN(1000)
			if v1 != v2 {
				t.Errorf("Mismatch at iteration %d: %d != %d", i, v1, v2)
				return
			}
		}
	})

	// Reset with new RNGs
	rng1 = NewRandom(seed)
	rng2 = NewRandom(seed)

	t.Run("Float64", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			v1 := rng1.Float64()
			v2 := rng2.Float64()
			if v1 != v2 {
				t.Errorf("Mismatch at iteration %d: %f != %f", i, v1, v2)
				return
			}
		}
	})

	// Reset with new RNGs
	rng1 = NewRandom(seed)
	rng2 = NewRandom(seed)

	t.Run("Mixed operations", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			if rng1.IntN(100) != rng2.IntN(100) {
				t.Error("IntN mismatch")
				return
			}
			if rng1.Float64() != rng2.Float64() {
				t.Error("Float64 mismatch")
				return
			}
			if rng1.Probability(0.5) != rng2.Probability(0.5) {
				t.Error("Probability mismatch")
				return
			}
			if rng1.IntRange(10, 20) != rng2.IntRange(10, 20) {
				t.Error("IntRange mismatch")
				return
			}
		}
	})
}

func TestRandomSeedStorage(t *testing.T) {
	// Test explicit seed
	rng := NewRandom(12345)
	if rng.Seed() != 12345 {
		t.Errorf("Expected seed 12345, got %d", rng.Seed())
	}

	// Test auto-generated seed (seed 0)
	rng = NewRandom(0)
	if rng.Seed() == 0 {
		t.Error("Expected non-zero auto-generated seed")
	}
}

func TestRandomFork(t *testing.T) {
	seed := int64(42)
	rng1 := NewRandom(seed)
	rng2 := NewRandom(seed)

	// Fork both in the same order
	fork1a := rng1.Fork()
	fork1b := rng1.Fork()
	fork2a := rng2.Fork()
	fork2b := rng2.Fork()

	// Forked RNGs from the same parent should produce the same sequences
	for i := 0; i < 100; i++ {
		if fork1a.IntN(1000) != fork2a.IntN(1000) {
			t.Error("Fork A sequences don't match")
			return
		}
		if fork1b.IntN(1000) != fork2b.IntN(1000) {
			t.Error("Fork B sequences don't match")
			return
		}
	}
}

func TestRandomForkN(t *testing.T) {
	seed := int64(42)
	rng1 := NewRandom(seed)
	rng2 := NewRandom(seed)

	forks1 := rng1.ForkN(5)
	forks2 := rng2.ForkN(5)

	// Each corresponding fork should produce the same sequence
	for i := range forks1 {
		for j := 0; j < 100; j++ {
			if forks1[i].IntN(1000) != forks2[i].IntN(1000) {
				t.Errorf("Fork %d sequences don't match at iteration %d", i, j)
				return
			}
		}
	}
}

func TestRandomRanges(t *testing.T) {
	rng := NewRandom(42)

	t.Run("IntRange", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			v := rng.IntRange(10, 20)
			if v < 10 || v > 20 {
				t.Errorf("IntRange(10, 20) returned %d", v)
			}
		}
	})

	t.Run("Int64Range", func(t *testing.T) {
		for i := 0; i < 1000; i++ {
			v := rng.Int64Range(100, 200)
			if v < 100 || v > 200 {
				t.Errorf("Int64Range(100, 200) returned %d", v)
			}
		}
	})
}

func TestRandomProbability(t *testing.T) {
	rng := NewRandom(42)

	// Probability(0) should always return false
	for i := 0; i < 100; i++ {
		if rng.Probability(0) {
			t.Error("Probability(0) returned true")
		}
	}

	// Probability(1) should always return true
	for i := 0; i < 100; i++ {
		if !rng.Probability(1) {
			t.Error("Probability(1) returned false")
		}
	}

	// Probability(0.5) should return roughly 50% true
	trueCount := 0
	iterations := 10000
	for i := 0; i < iterations; i++ {
		if rng.Probability(0.5) {
			trueCount++
		}
	}
	ratio := float64(trueCount) / float64(iterations)
	if ratio < 0.45 || ratio > 0.55 {
		t.Errorf("Probability(0.5) returned %.2f%% true, expected ~50%%", ratio*100)
	}
}

func TestRandomWeightedPickFloat(t *testing.T) {
	rng := NewRandom(42)

	t.Run("zero weight never picked", func(t *testing.T) {
		weights := []float64{0.6, 0, 0.4, 0}
		for i := 0; i < 10000; i++ {
			idx := rng.WeightedPickFloat(weights)
			if idx == 1 || idx == 3 {
				t.Fatalf("picked zero-weight index %d", idx)
			}
		}
	})

	t.Run("proportions", func(t *testing.T) {
		weights := []float64{0.75, 0.17, 0.08}
		counts := make([]int, len(weights))
		iterations := 20000
		for i := 0; i < iterations; i++ {
			counts[rng.WeightedPickFloat(weights)]++
		}
		ratio := float64(counts[0]) / float64(iterations)
		if ratio < 0.72 || ratio > 0.78 {
			t.Errorf("index 0 picked %.3f of the time, expected ~0.75", ratio)
		}
	})

	t.Run("no positive weight", func(t *testing.T) {
		if idx := rng.WeightedPickFloat([]float64{0, -1}); idx != -1 {
			t.Errorf("expected -1, got %d", idx)
		}
		if idx := rng.WeightedPickFloat(nil); idx != -1 {
			t.Errorf("expected -1 for nil, got %d", idx)
		}
	})
}

func TestRandomDay(t *testing.T) {
	rng := NewRandom(42)
	start := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	seen := make(map[int]bool)
	for i := 0; i < 2000; i++ {
		d := rng.Day(start, end)
		if d.Before(start) || !d.Before(end) {
			t.Fatalf("Day returned %v outside [%v, %v)", d, start, end)
		}
		if d.Hour() != 0 || d.Minute() != 0 {
			t.Fatalf("Day returned non-midnight %v", d)
		}
		seen[d.Day()] = true
	}
	if len(seen) != 28 {
		t.Errorf("expected all 28 days of February, saw %d", len(seen))
	}

	if got := rng.Day(start, start); !got.Equal(start) {
		t.Errorf("empty range should return start, got %v", got)
	}
}
