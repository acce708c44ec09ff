//go:build !gocv

package filter

import (
	"image"
	"math"
)

// edgeMagnitude computes the 3x3 Sobel gradient magnitude of the luma plane.
// Samples outside the image read as zero.
func edgeMagnitude(img *image.RGBA) []float64 {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	luma := lumaPlane(img)
	at := func(x, y int) float64 {
		if x < 0 || x >= w || y < 0 || y >= h {
			return 0
		}
		return luma[y*w+x]
	}

	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			tl, t, tr := at(x-1, y-1), at(x, y-1), at(x+1, y-1)
			l, r := at(x-1, y), at(x+1, y)
			bl, b, br := at(x-1, y+1), at(x, y+1), at(x+1, y+1)

			gx := -tl + tr - 2*l + 2*r - bl + br
			gy := -tl - 2*t - tr + bl + 2*b + br
			out[y*w+x] = math.Sqrt(gx*gx + gy*gy)
		}
	}
	return out
}
