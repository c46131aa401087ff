package costumeclean

import (
	"image"
	"image/color"
	"testing"
)

// solidImage is a flat-colour raster; its dHash is all zero bits.
func solidImage(w, h int, c color.NRGBA) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// gradientImage has a strong horizontal gradient; its dHash is all one bits,
// maximally distant from a solid image.
func gradientImage(w, h int) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			v := uint8(x * 255 / (w - 1))
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: v, B: v, A: 255})
		}
	}
	return img
}

func TestDedupFilter(t *testing.T) {
	t.Parallel()

	var d dedupFilter
	grey := color.NRGBA{128, 128, 128, 255}

	if d.isDuplicate(solidImage(64, 64, grey)) {
		t.Fatal("first image reported as duplicate")
	}
	if !d.isDuplicate(solidImage(64, 64, grey)) {
		t.Error("identical image not reported as duplicate")
	}
	if d.isDuplicate(gradientImage(64, 64)) {
		t.Error("dissimilar image reported as duplicate")
	}
	if !d.isDuplicate(gradientImage(64, 64)) {
		t.Error("repeated gradient not reported as duplicate")
	}
}
