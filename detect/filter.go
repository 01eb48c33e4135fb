package detect

import (
	"image"
	"math"
)

// grayImage is a tightly packed single-channel intensity buffer.
type grayImage struct {
	pix  []uint8
	w, h int
}

func (g *grayImage) at(x, y int) uint8 {
	return g.pix[y*g.w+x]
}

// atClamped replicates border pixels, matching the replicate border mode
// used by the reference segmentation.
func (g *grayImage) atClamped(x, y int) uint8 {
	if x < 0 {
		x = 0
	} else if x >= g.w {
		x = g.w - 1
	}
	if y < 0 {
		y = 0
	} else if y >= g.h {
		y = g.h - 1
	}
	return g.pix[y*g.w+x]
}

// grayscale converts an image to single-channel intensity using ITU-R
// BT.601 luminance weights.
func grayscale(img image.Image) *grayImage {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	g := &grayImage{pix: make([]uint8, w*h), w: w, h: h}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, gr, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			v := 0.299*float64(r>>8) + 0.587*float64(gr>>8) + 0.114*float64(b>>8)
			g.pix[y*w+x] = uint8(v + 0.5)
		}
	}
	return g
}

// bilateral applies edge-preserving smoothing: each output pixel is a
// weighted mean of its neighborhood where weights fall off with both
// spatial distance and intensity difference, so scan noise is suppressed
// without destroying symbol edges.
func bilateral(src *grayImage, diameter int, sigmaColor, sigmaSpace float64) *grayImage {
	if diameter < 3 {
		return src
	}
	radius := diameter / 2

	// Spatial weights depend only on the offset; precompute the kernel.
	space := make([]float64, diameter*diameter)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			d2 := float64(dx*dx + dy*dy)
			space[(dy+radius)*diameter+(dx+radius)] = math.Exp(-d2 / (2 * sigmaSpace * sigmaSpace))
		}
	}

	// Color weights depend only on the intensity delta; precompute a table.
	colorW := make([]float64, 256)
	for d := 0; d < 256; d++ {
		colorW[d] = math.Exp(-float64(d*d) / (2 * sigmaColor * sigmaColor))
	}

	dst := &grayImage{pix: make([]uint8, len(src.pix)), w: src.w, h: src.h}
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			center := float64(src.at(x, y))
			var sum, norm float64
			for dy := -radius; dy <= radius; dy++ {
				for dx := -radius; dx <= radius; dx++ {
					v := float64(src.atClamped(x+dx, y+dy))
					delta := int(math.Abs(v - center))
					w := space[(dy+radius)*diameter+(dx+radius)] * colorW[delta]
					sum += w * v
					norm += w
				}
			}
			dst.pix[y*src.w+x] = uint8(sum/norm + 0.5)
		}
	}
	return dst
}

// adaptiveThresholdInv binarizes against a Gaussian-weighted local mean:
// a pixel becomes foreground when its intensity is at or below the local
// mean minus offset. Inversion makes ink-dark regions the foreground.
func adaptiveThresholdInv(src *grayImage, window int, offset float64) *bitmap {
	if window%2 == 0 {
		window++
	}
	mean := gaussianBlur(src, window)

	dst := newBitmap(src.w, src.h)
	for i, v := range src.pix {
		if float64(v) <= float64(mean.pix[i])-offset {
			dst.bits[i] = true
		}
	}
	return dst
}

// gaussianBlur computes a separable Gaussian-weighted local mean with the
// conventional sigma for the window size (0.3*((n-1)*0.5-1)+0.8).
func gaussianBlur(src *grayImage, window int) *grayImage {
	radius := window / 2
	sigma := 0.3*(float64(window-1)*0.5-1) + 0.8

	kernel := make([]float64, window)
	var ksum float64
	for i := range kernel {
		d := float64(i - radius)
		kernel[i] = math.Exp(-d * d / (2 * sigma * sigma))
		ksum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= ksum
	}

	// Horizontal pass into a float buffer, vertical pass back to bytes.
	tmp := make([]float64, len(src.pix))
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				sum += kernel[k+radius] * float64(src.atClamped(x+k, y))
			}
			tmp[y*src.w+x] = sum
		}
	}

	dst := &grayImage{pix: make([]uint8, len(src.pix)), w: src.w, h: src.h}
	for y := 0; y < src.h; y++ {
		for x := 0; x < src.w; x++ {
			var sum float64
			for k := -radius; k <= radius; k++ {
				yy := y + k
				if yy < 0 {
					yy = 0
				} else if yy >= src.h {
					yy = src.h - 1
				}
				sum += kernel[k+radius] * tmp[yy*src.w+x]
			}
			dst.pix[y*src.w+x] = uint8(sum + 0.5)
		}
	}
	return dst
}
