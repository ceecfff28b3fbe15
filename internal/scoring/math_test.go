package scoring

import (
	"math"
	"testing"
)

func TestMean(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty", []float64{}, 0},
		{"Single", []float64{5.0}, 5.0},
		{"Several", []float64{1, 2, 3, 4}, 2.5},
		{"Negative", []float64{-10, 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mean(tt.values); got != tt.expected {
				t.Errorf("mean() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSampleStdDev(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected float64
	}{
		{"Empty", []float64{}, 0},
		{"Single", []float64{7}, 0},
		{"Constant", []float64{3, 3, 3}, 0},
		{"Simple", []float64{2, 4}, math.Sqrt(2)},
		{"Known", []float64{2, 4, 4, 4, 5, 5, 7, 9}, math.Sqrt(32.0 / 7.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sampleStdDev(tt.values)
			if math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("sampleStdDev() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestConsecutiveDeltas(t *testing.T) {
	tests := []struct {
		name     string
		values   []float64
		expected []float64
	}{
		{"Empty", nil, nil},
		{"Single", []float64{5}, nil},
		{"Rising", []float64{0, 14, 28}, []float64{14, 14}},
		{"Mixed", []float64{10, 5, 20}, []float64{-5, 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := consecutiveDeltas(tt.values)
			if len(got) != len(tt.expected) {
				t.Fatalf("consecutiveDeltas() has %d deltas, want %d", len(got), len(tt.expected))
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("delta[%d] = %v, want %v", i, got[i], tt.expected[i])
				}
			}
		})
	}
}

func TestClamp(t *testing.T) {
	if got := clamp(5, 0, 2); got != 2 {
		t.Errorf("clamp(5,0,2) = %v, want 2", got)
	}
	if got := clamp(-1, 0, 2); got != 0 {
		t.Errorf("clamp(-1,0,2) = %v, want 0", got)
	}
	if got := clamp01(0.5); got != 0.5 {
		t.Errorf("clamp01(0.5) = %v, want 0.5", got)
	}
}
