package util

import (
	"math"
	"testing"
)

func TestRoundToTick(t *testing.T) {
	tests := []struct {
		name     string
		x        float64
		tick     float64
		expected float64
	}{
		{
			name:     "basic rounding down",
			x:        1.2345,
			tick:     0.01,
			expected: 1.23,
		},
		{
			name:     "tie rounds away from zero",
			x:        1.235,
			tick:     0.01,
			expected: 1.24,
		},
		{
			name:     "negative basic rounding",
			x:        -1.2345,
			tick:     0.01,
			expected: -1.23,
		},
		{
			name:     "larger tick size",
			x:        1.27,
			tick:     0.05,
			expected: 1.25,
		},
		{
			name:     "exact multiple",
			x:        1.25,
			tick:     0.05,
			expected: 1.25,
		},
		{
			name:     "whole dollar strikes",
			x:        97.6,
			tick:     1,
			expected: 98,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := RoundToTick(tt.x, tt.tick)
			if math.Abs(result-tt.expected) > 1e-10 {
				t.Errorf("RoundToTick(%v, %v) = %v, expected %v", tt.x, tt.tick, result, tt.expected)
			}
		})
	}

	t.Run("zero tick returns input", func(t *testing.T) {
		input := 1.2345
		if result := RoundToTick(input, 0); result != input {
			t.Errorf("RoundToTick(%v, 0) = %v, expected %v", input, result, input)
		}
	})

	t.Run("NaN input returns NaN", func(t *testing.T) {
		if result := RoundToTick(math.NaN(), 0.01); !math.IsNaN(result) {
			t.Errorf("RoundToTick(NaN, 0.01) = %v, expected NaN", result)
		}
	})
}

func TestMidPrice(t *testing.T) {
	tests := []struct {
		name     string
		bid, ask float64
		expected float64
	}{
		{name: "typical quote", bid: 1.10, ask: 1.20, expected: 1.15},
		{name: "zero bid", bid: 0, ask: 0.10, expected: 0.05},
		{name: "equal sides", bid: 2.5, ask: 2.5, expected: 2.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := MidPrice(tt.bid, tt.ask); math.Abs(result-tt.expected) > 1e-10 {
				t.Errorf("MidPrice(%v, %v) = %v, expected %v", tt.bid, tt.ask, result, tt.expected)
			}
		})
	}

	t.Run("missing side propagates NaN", func(t *testing.T) {
		if result := MidPrice(math.NaN(), 1.2); !math.IsNaN(result) {
			t.Errorf("MidPrice(NaN, 1.2) = %v, expected NaN", result)
		}
	})
}
