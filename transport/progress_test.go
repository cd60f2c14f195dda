package transport

import "testing"

func TestPercent(t *testing.T) {
	tests := []struct {
		name          string
		loaded, total int64
		want          int
	}{
		{"quarter", 50, 200, 25},
		{"complete", 200, 200, 100},
		{"rounds half up", 1, 200, 1},
		{"rounds down", 1, 300, 0},
		{"zero total", 50, 0, 0},
		{"negative total", 50, -1, 0},
		{"nothing loaded", 0, 100, 0},
		{"not clamped", 300, 200, 150},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Percent(tc.loaded, tc.total); got != tc.want {
				t.Fatalf("Percent(%d, %d) = %d, want %d", tc.loaded, tc.total, got, tc.want)
			}
			if got := (Progress{Loaded: tc.loaded, Total: tc.total}).Percent(); got != tc.want {
				t.Fatalf("Progress.Percent() = %d, want %d", got, tc.want)
			}
		})
	}
}
