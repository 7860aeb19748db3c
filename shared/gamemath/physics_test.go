package gamemath

import "testing"

func TestDirection(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{3, 1},
		{-0.5, -1},
		{0, -1},
	}
	for _, tt := range tests {
		if got := Direction(tt.in); got != tt.want {
			t.Errorf("Direction(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestOverlap(t *testing.T) {
	if got := Overlap(0, 10, 15, 10); got != 5 {
		t.Errorf("overlapping extents = %v, want 5", got)
	}
	if got := Overlap(0, 10, 25, 10); got != -5 {
		t.Errorf("separated extents = %v, want -5", got)
	}
}

func TestLerpAndDamp(t *testing.T) {
	if got := Lerp(10, 20, 0.1); got != 11 {
		t.Errorf("Lerp = %v, want 11", got)
	}
	if got := Damp(2, 0.5); got != 1 {
		t.Errorf("Damp = %v, want 1", got)
	}
}

func TestDotUnclamped(t *testing.T) {
	if got := Dot(6.65, 0, 1, 0); got != 6.65 {
		t.Errorf("Dot along axis = %v, want 6.65", got)
	}
	if got := Dot(3, -4, -2, 1); got != -10 {
		t.Errorf("Dot = %v, want -10", got)
	}
}
