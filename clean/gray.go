package clean

import (
	"image"
)

// grayOf converts any image to single-channel intensity using ITU-R
// BT.601 luminance weights.
func grayOf(img image.Image) *image.Gray {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	out := image.NewGray(image.Rect(0, 0, w, h))

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			v := 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(b>>8)
			out.Pix[y*out.Stride+x] = uint8(v + 0.5)
		}
	}
	return out
}

// subtract returns a - b per pixel, saturating at zero.
func subtract(a, b image.Image) *image.Gray {
	ga := grayOf(a)
	gb := grayOf(b)
	out := image.NewGray(ga.Bounds())
	for i := range ga.Pix {
		va, vb := int(ga.Pix[i]), int(gb.Pix[i])
		if va > vb {
			out.Pix[i] = uint8(va - vb)
		}
	}
	return out
}

// otsuLevel picks the global threshold maximizing between-class variance
// over the intensity histogram. Pixels strictly above the returned level
// are foreground.
func otsuLevel(img *image.Gray) uint8 {
	var hist [256]int
	for _, v := range img.Pix {
		hist[v]++
	}

	total := len(img.Pix)
	var sumAll float64
	for v, n := range hist {
		sumAll += float64(v) * float64(n)
	}

	var best float64
	var level uint8
	var wB, sumB float64
	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(hist[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > best {
			best = between
			level = uint8(t)
		}
	}
	return level
}

// clampLevel converts a strictly-greater-than threshold into the
// at-or-above level the segmentation primitive expects.
func clampLevel(v int) uint8 {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return uint8(v)
}

// binarize snaps a grayscale mask back to strict 0/255 after filters
// that may round interior values.
func binarize(img *image.Gray) *image.Gray {
	out := image.NewGray(img.Bounds())
	for i, v := range img.Pix {
		if v >= 128 {
			out.Pix[i] = 0xff
		}
	}
	return out
}
