// Package filter implements the screening filters applied to a rendered X-ray view.
//
// Every filter reads the pixels currently on the surface and rewrites them in
// place. Callers re-render the unfiltered composite before applying a filter,
// so filters never stack.
package filter

import (
	"fmt"
	"image"
	"strings"

	"xsim/pkg/colorutil"
)

// Kind identifies a filter.
type Kind int

const (
	Normal Kind = iota
	Grayscale
	Negative
	OrganicIsolation
	OrganicStrip
	Brightness
	SuperEnhance
)

// String returns the short label shown on the operator HUD.
func (k Kind) String() string {
	switch k {
	case Normal:
		return "Normal"
	case Grayscale:
		return "B&W"
	case Negative:
		return "NEG"
	case OrganicIsolation:
		return "O2"
	case OrganicStrip:
		return "OS"
	case Brightness:
		return "HI"
	case SuperEnhance:
		return "SEN"
	default:
		return "Unknown"
	}
}

// Kinds lists every filter in key order.
var Kinds = []Kind{Normal, Grayscale, Negative, OrganicIsolation, OrganicStrip, Brightness, SuperEnhance}

// ParseKind accepts a HUD label ("NEG") or a long name ("negative").
func ParseKind(s string) (Kind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	switch name {
	case "", "none":
		return Normal, nil
	case "grayscale", "greyscale", "bw":
		return Grayscale, nil
	case "negative":
		return Negative, nil
	case "organic", "organic-isolation":
		return OrganicIsolation, nil
	case "strip", "organic-strip":
		return OrganicStrip, nil
	case "bright", "brightness":
		return Brightness, nil
	case "enhance", "super-enhance":
		return SuperEnhance, nil
	}
	for _, k := range Kinds {
		if strings.ToLower(k.String()) == name {
			return k, nil
		}
	}
	return Normal, fmt.Errorf("unknown filter %q", s)
}

// EnhanceMode selects the super-enhance algorithm.
type EnhanceMode int

const (
	// EnhanceSobel adds a luminance Sobel edge magnitude to brightened channels.
	EnhanceSobel EnhanceMode = iota
	// EnhanceThreshold boosts pixels above a luma threshold and darkens the rest.
	EnhanceThreshold
)

func (m EnhanceMode) String() string {
	switch m {
	case EnhanceSobel:
		return "sobel"
	case EnhanceThreshold:
		return "threshold"
	default:
		return "unknown"
	}
}

// ParseEnhanceMode parses the configuration spelling of an EnhanceMode.
func ParseEnhanceMode(s string) (EnhanceMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "sobel":
		return EnhanceSobel, nil
	case "threshold":
		return EnhanceThreshold, nil
	default:
		return EnhanceSobel, fmt.Errorf("unknown super-enhance mode %q", s)
	}
}

// Tuning constants.
const (
	brightnessGain = 1.5

	sobelEdgeGain    = 1.5
	sobelChannelGain = 1.1
	sobelBias        = -10

	thresholdLuma   = 128
	thresholdBoost  = 1.3
	thresholdDarken = 0.6
)

// Options configures filter behaviour.
type Options struct {
	Enhance EnhanceMode
}

// Apply runs filter k over img in place. A nil or empty image is left alone.
func Apply(k Kind, img *image.RGBA, opts Options) {
	if img == nil || img.Rect.Empty() {
		return
	}
	switch k {
	case Grayscale:
		eachPixel(img, func(p []uint8) {
			avg := colorutil.Average(p[0], p[1], p[2])
			p[0], p[1], p[2] = avg, avg, avg
		})
	case Negative:
		eachPixel(img, func(p []uint8) {
			p[0], p[1], p[2] = 255-p[0], 255-p[1], 255-p[2]
		})
	case OrganicIsolation:
		eachPixel(img, func(p []uint8) {
			if IsOrganicBlue(p[0], p[1], p[2]) {
				avg := colorutil.Average(p[0], p[1], p[2])
				p[0], p[1], p[2] = avg, avg, avg
			}
		})
	case OrganicStrip:
		eachPixel(img, func(p []uint8) {
			if IsOrganicOrange(p[0], p[1], p[2]) {
				avg := colorutil.Average(p[0], p[1], p[2])
				p[0], p[1], p[2] = avg, avg, avg
			}
		})
	case Brightness:
		eachPixel(img, func(p []uint8) {
			p[0] = colorutil.Clamp8(float64(p[0]) * brightnessGain)
			p[1] = colorutil.Clamp8(float64(p[1]) * brightnessGain)
			p[2] = colorutil.Clamp8(float64(p[2]) * brightnessGain)
		})
	case SuperEnhance:
		if opts.Enhance == EnhanceThreshold {
			applyThresholdSplit(img)
		} else {
			applySobel(img)
		}
	}
}

// IsOrganicBlue reports whether a pixel looks like the blue rendering of
// low-density material, either dark blue or light cyan-blue.
func IsOrganicBlue(r, g, b uint8) bool {
	ri, gi, bi := int(r), int(g), int(b)
	dark := bi > 30 && bi > ri && bi > gi-20
	light := bi > 150 && gi > 130 && ri < 210
	return dark || light
}

// IsOrganicOrange reports whether a pixel looks like the orange/tan rendering
// typical of organic material on screening monitors.
func IsOrganicOrange(r, g, b uint8) bool {
	return r > 110 && g > 50 && g < 220 && b < 160 && r > g && g > b
}

func eachPixel(img *image.RGBA, fn func(p []uint8)) {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	for y := 0; y < h; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+w*4]
		for x := 0; x < len(row); x += 4 {
			fn(row[x : x+4 : x+4])
		}
	}
}

func applySobel(img *image.RGBA) {
	edges := edgeMagnitude(img)
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			e := edges[y*w+x] * sobelEdgeGain
			for c := 0; c < 3; c++ {
				img.Pix[i+c] = colorutil.Clamp8(float64(img.Pix[i+c])*sobelChannelGain + e + sobelBias)
			}
		}
	}
}

func applyThresholdSplit(img *image.RGBA) {
	eachPixel(img, func(p []uint8) {
		gain := thresholdDarken
		if colorutil.Luma(float64(p[0]), float64(p[1]), float64(p[2])) > thresholdLuma {
			gain = thresholdBoost
		}
		p[0] = colorutil.Clamp8(float64(p[0]) * gain)
		p[1] = colorutil.Clamp8(float64(p[1]) * gain)
		p[2] = colorutil.Clamp8(float64(p[2]) * gain)
	})
}

// lumaPlane returns the Rec. 601 luminance of every pixel, row-major.
func lumaPlane(img *image.RGBA) []float64 {
	w := img.Rect.Dx()
	h := img.Rect.Dy()
	out := make([]float64, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := y*img.Stride + x*4
			out[y*w+x] = colorutil.Luma(float64(img.Pix[i]), float64(img.Pix[i+1]), float64(img.Pix[i+2]))
		}
	}
	return out
}
