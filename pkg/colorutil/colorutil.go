// Package colorutil provides shared color utilities for the X-ray simulator.
package colorutil

import (
	"image/color"
	"math"
)

// Common colors used throughout the application.
var (
	White  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black  = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	Red    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	Orange = color.RGBA{R: 249, G: 115, B: 22, A: 255}

	// Slate fills an authoring canvas that has no background loaded.
	Slate = color.RGBA{R: 15, G: 23, B: 42, A: 255}
)

// Luma returns the Rec. 601 luminance of an 8-bit RGB triple.
func Luma(r, g, b float64) float64 {
	return 0.299*r + 0.587*g + 0.114*b
}

// Average returns the mean of the three channels, rounded to nearest.
func Average(r, g, b uint8) uint8 {
	return Clamp8(float64(int(r)+int(g)+int(b)) / 3)
}

// Clamp8 rounds v to the nearest integer and clamps it to [0, 255].
func Clamp8(v float64) uint8 {
	if v <= 0 || math.IsNaN(v) {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
