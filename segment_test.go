package costumeclean

import (
	"image"
	"image/color"
	"image/draw"
	"testing"
)

// makeMask builds a w x h foreground map with value v inside fg.
func makeMask(w, h int, fg image.Rectangle, v uint8) *SegmentationMap {
	mask := image.NewGray(image.Rect(0, 0, w, h))
	draw.Draw(mask, fg, image.NewUniform(color.Gray{Y: v}), image.Point{}, draw.Src)
	return NewSegmentationMap(mask)
}

func TestSegmentationMap_BoundingBox(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		m      *SegmentationMap
		want   image.Rectangle
		wantOK bool
	}{
		{
			name:   "tight box around foreground block",
			m:      makeMask(10, 10, image.Rect(2, 3, 7, 8), 255),
			want:   image.Rect(2, 3, 7, 8),
			wantOK: true,
		},
		{
			name:   "faint foreground still counts",
			m:      makeMask(10, 10, image.Rect(4, 4, 6, 6), 1),
			want:   image.Rect(4, 4, 6, 6),
			wantOK: true,
		},
		{
			name:   "single pixel",
			m:      makeMask(10, 10, image.Rect(4, 5, 5, 6), 255),
			want:   image.Rect(4, 5, 5, 6),
			wantOK: true,
		},
		{
			name:   "empty map has no box",
			m:      makeMask(10, 10, image.Rectangle{}, 0),
			wantOK: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := tc.m.BoundingBox()
			if ok != tc.wantOK {
				t.Fatalf("BoundingBox() ok = %v, want %v", ok, tc.wantOK)
			}
			if ok && got != tc.want {
				t.Errorf("BoundingBox() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestSegmentationMap_RemoveBackground(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 3, 1))
	for x := range 3 {
		src.SetNRGBA(x, 0, color.NRGBA{R: 30, G: 144, B: 255, A: 255})
	}
	mask := image.NewGray(image.Rect(0, 0, 3, 1))
	mask.SetGray(0, 0, color.Gray{Y: 0})
	mask.SetGray(1, 0, color.Gray{Y: 255})
	mask.SetGray(2, 0, color.Gray{Y: 128})

	out := NewSegmentationMap(mask).RemoveBackground(src)

	wantAlpha := []uint8{0, 255, 128}
	for x, want := range wantAlpha {
		got := out.NRGBAAt(x, 0)
		if got.A != want {
			t.Errorf("pixel %d alpha = %d, want %d", x, got.A, want)
		}
		if got.R != 30 || got.G != 144 || got.B != 255 {
			t.Errorf("pixel %d colour channels changed: %v", x, got)
		}
	}
}

func TestCrop(t *testing.T) {
	t.Parallel()

	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := range 4 {
		for x := range 4 {
			src.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 0, A: 255})
		}
	}

	out := Crop(src, image.Rect(1, 1, 3, 3))

	if b := out.Bounds(); b.Dx() != 2 || b.Dy() != 2 {
		t.Fatalf("cropped bounds = %v, want 2x2", b)
	}
	for y := range 2 {
		for x := range 2 {
			got := out.NRGBAAt(x, y)
			if got.R != uint8(x+1) || got.G != uint8(y+1) {
				t.Errorf("pixel (%d,%d) = %v, want offset (1,1) source pixel", x, y, got)
			}
		}
	}
}
