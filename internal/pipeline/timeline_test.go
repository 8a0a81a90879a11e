package pipeline

import "testing"

func TestLoopCount(t *testing.T) {
	tests := []struct {
		name   string
		target float64
		cycle  float64
		want   int
	}{
		{"exact fit", 16, 16, 1},
		{"needs two cycles", 20, 16, 2},
		{"intro plus loop", 25, 16, 2},
		{"short target", 5, 16, 1},
		{"many loops", 100, 16, 7},
		{"zero cycle", 10, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := LoopCount(tt.target, tt.cycle); got != tt.want {
				t.Errorf("LoopCount(%v, %v) = %d, want %d", tt.target, tt.cycle, got, tt.want)
			}
		})
	}
}

func TestRemainingTime(t *testing.T) {
	// A 30s narration with a 5s intro leaves 25s of slideshow. Two
	// plays of a 16s cycle cover it, trimmed down to 25s.
	remaining := RemainingTime(30, 5)
	if remaining != 25 {
		t.Fatalf("RemainingTime(30, 5) = %v, want 25", remaining)
	}
	if loops := LoopCount(remaining, 16); loops != 2 {
		t.Errorf("LoopCount(25, 16) = %d, want 2", loops)
	}

	// Intros longer than the narration leave nothing for slides.
	if got := RemainingTime(10, 12); got != -2 {
		t.Errorf("RemainingTime(10, 12) = %v, want -2", got)
	}
}
