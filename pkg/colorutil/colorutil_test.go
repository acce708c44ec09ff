package colorutil

import (
	"math"
	"testing"
)

func TestLuma(t *testing.T) {
	if got := Luma(255, 255, 255); math.Abs(got-255) > 1e-9 {
		t.Errorf("Luma(white) = %v, want 255", got)
	}
	if got := Luma(0, 0, 0); got != 0 {
		t.Errorf("Luma(black) = %v, want 0", got)
	}
	if got := Luma(100, 0, 0); math.Abs(got-29.9) > 1e-9 {
		t.Errorf("Luma(100,0,0) = %v, want 29.9", got)
	}
}

func TestAverage(t *testing.T) {
	if got := Average(255, 255, 255); got != 255 {
		t.Errorf("Average(white) = %d, want 255", got)
	}
	if got := Average(10, 20, 31); got != 20 {
		t.Errorf("Average(10,20,31) = %d, want 20", got)
	}
	if got := Average(20, 40, 200); got != 87 {
		t.Errorf("Average(20,40,200) = %d, want 87", got)
	}
}

func TestClamp8(t *testing.T) {
	tests := []struct {
		in   float64
		want uint8
	}{
		{-5, 0},
		{0, 0},
		{127.4, 127},
		{127.5, 128},
		{254.9, 255},
		{300, 255},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := Clamp8(tt.in); got != tt.want {
			t.Errorf("Clamp8(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
