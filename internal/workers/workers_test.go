package workers

import (
	"runtime"
	"testing"
)

func TestCount(t *testing.T) {
	t.Setenv(EnvOverride, "")

	availableCPU := runtime.GOMAXPROCS(0)

	tests := []struct {
		name       string
		multiplier float64
		limit      int
		minExpect  int
		maxExpect  int
	}{
		{"one per CPU", 1.0, 0, 1, availableCPU},
		{"two per CPU", 2.0, 0, 1, availableCPU * 2},
		{"capped by limit", 2.0, 2, 1, 2},
		{"tiny multiplier still yields one", 0.01, 0, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Count(tt.multiplier, tt.limit)
			if got < tt.minExpect || got > tt.maxExpect {
				t.Errorf("Count(%v, %d) = %d, want in [%d, %d]",
					tt.multiplier, tt.limit, got, tt.minExpect, tt.maxExpect)
			}
		})
	}
}

func TestCountWithEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		limit    int
		expected int // 0 means the computed default
	}{
		{"valid override", "8", 0, 8},
		{"override capped by limit", "20", 10, 10},
		{"override below limit", "5", 10, 5},
		{"non-numeric ignored", "many", 0, 0},
		{"zero ignored", "0", 0, 0},
		{"negative ignored", "-5", 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvOverride, tt.envValue)

			got := Count(1.0, tt.limit)
			want := tt.expected
			if want == 0 {
				want = runtime.GOMAXPROCS(0)
			}
			if got != want {
				t.Errorf("Count(1.0, %d) with %s=%q = %d, want %d",
					tt.limit, EnvOverride, tt.envValue, got, want)
			}
		})
	}
}

func TestForIO(t *testing.T) {
	t.Setenv(EnvOverride, "")

	want := runtime.GOMAXPROCS(0) * 2
	if want > DefaultScanLimit {
		want = DefaultScanLimit
	}
	if got := ForIO(DefaultScanLimit); got != want {
		t.Errorf("ForIO(%d) = %d, want %d", DefaultScanLimit, got, want)
	}
}
