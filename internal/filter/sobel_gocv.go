//go:build gocv

package filter

import (
	"image"

	"gocv.io/x/gocv"
)

// edgeMagnitude computes the Sobel gradient magnitude of the luma plane with
// OpenCV. The constant border matches the pure Go kernel, which reads zero
// outside the image.
func edgeMagnitude(img *image.RGBA) []float64 {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	luma := lumaPlane(img)

	src := gocv.NewMatWithSize(h, w, gocv.MatTypeCV32F)
	defer src.Close()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			src.SetFloatAt(y, x, float32(luma[y*w+x]))
		}
	}

	gx := gocv.NewMat()
	defer gx.Close()
	gy := gocv.NewMat()
	defer gy.Close()
	gocv.Sobel(src, &gx, gocv.MatTypeCV32F, 1, 0, 3, 1, 0, gocv.BorderConstant)
	gocv.Sobel(src, &gy, gocv.MatTypeCV32F, 0, 1, 3, 1, 0, gocv.BorderConstant)

	mag := gocv.NewMat()
	defer mag.Close()
	gocv.Magnitude(gx, gy, &mag)

	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = float64(mag.GetFloatAt(y, x))
		}
	}
	return out
}
