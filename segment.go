package costumeclean

import (
	"image"
	"image/color"
)

// SegmentationMap is a per-pixel foreground confidence for one image,
// aligned with the source bounds: 0 = background, 255 = certain foreground.
// It is owned by the pipeline step that produced it and never shared across
// files.
type SegmentationMap struct {
	mask *image.Gray
}

// NewSegmentationMap wraps a grayscale foreground mask.
func NewSegmentationMap(mask *image.Gray) *SegmentationMap {
	return &SegmentationMap{mask: mask}
}

// Bounds returns the pixel bounds the map covers.
func (m *SegmentationMap) Bounds() image.Rectangle {
	return m.mask.Bounds()
}

// BoundingBox returns the tight rectangle enclosing all foreground pixels
// (any non-zero confidence, matching getbbox semantics). ok is false when
// the map contains no foreground at all — the caller skips such files rather
// than cropping to a degenerate region.
func (m *SegmentationMap) BoundingBox() (box image.Rectangle, ok bool) {
	b := m.mask.Bounds()
	left, top := b.Max.X, b.Max.Y
	right, bottom := b.Min.X, b.Min.Y
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := m.mask.Pix[(y-b.Min.Y)*m.mask.Stride : (y-b.Min.Y)*m.mask.Stride+b.Dx()]
		for x, v := range row {
			if v == 0 {
				continue
			}
			px := b.Min.X + x
			if px < left {
				left = px
			}
			if px >= right {
				right = px + 1
			}
			if y < top {
				top = y
			}
			if y >= bottom {
				bottom = y + 1
			}
		}
	}
	if right <= left || bottom <= top {
		return image.Rectangle{}, false
	}
	return image.Rect(left, top, right, bottom), true
}

// RemoveBackground returns src with the background made transparent: each
// pixel's alpha is attenuated by the map's foreground confidence.
func (m *SegmentationMap) RemoveBackground(src image.Image) *image.NRGBA {
	b := src.Bounds()
	out := image.NewNRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := color.NRGBAModel.Convert(src.At(x, y)).(color.NRGBA)
			conf := m.mask.GrayAt(x, y).Y
			c.A = uint8(uint16(c.A) * uint16(conf) / 255)
			out.SetNRGBA(x, y, c)
		}
	}
	return out
}

// Crop copies the box region of img into a fresh image anchored at the
// origin. The box must lie within img's bounds.
func Crop(img *image.NRGBA, box image.Rectangle) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, box.Dx(), box.Dy()))
	for y := 0; y < box.Dy(); y++ {
		srcOff := img.PixOffset(box.Min.X, box.Min.Y+y)
		dstOff := out.PixOffset(0, y)
		copy(out.Pix[dstOff:dstOff+box.Dx()*4], img.Pix[srcOff:srcOff+box.Dx()*4])
	}
	return out
}
