package costumeclean

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"strings"

	"github.com/bep/imagemeta"
	"golang.org/x/image/colornames"
	_ "golang.org/x/image/webp"
)

// DecodeImage reads and decodes one source image. JPEGs from phones often
// carry an EXIF Orientation tag that the decoder ignores; the decoded image
// is normalized to upright so detection and cropping see what the
// photographer saw.
func DecodeImage(path string) (image.Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if o := exifOrientation(data); o > 1 {
		img = applyOrientation(img, o)
	}
	return img, nil
}

// exifOrientation extracts the EXIF Orientation value (1-8) from raw image
// bytes. Returns 0 when absent or unreadable; never fails.
func exifOrientation(data []byte) int {
	orientation := 0
	_, err := imagemeta.Decode(imagemeta.Options{
		R:       bytes.NewReader(data),
		Sources: imagemeta.EXIF,
		ShouldHandleTag: func(ti imagemeta.TagInfo) bool {
			return ti.Tag == "Orientation"
		},
		HandleTag: func(ti imagemeta.TagInfo) error {
			orientation = tagValueInt(ti.Value)
			return nil
		},
	})
	if err != nil {
		return 0
	}
	return orientation
}

// tagValueInt coerces the numeric types imagemeta may hand back for a
// SHORT tag.
func tagValueInt(v any) int {
	switch val := v.(type) {
	case uint16:
		return int(val)
	case uint32:
		return int(val)
	case int:
		return val
	case int64:
		return int(val)
	default:
		return 0
	}
}

// applyOrientation maps a decoded image through one of the eight canonical
// EXIF orientations back to upright.
func applyOrientation(img image.Image, orientation int) image.Image {
	switch orientation {
	case 2:
		return transformImage(img, func(b image.Rectangle, x, y int) (int, int) {
			return b.Max.X - 1 - x, y
		}, false)
	case 3:
		return transformImage(img, func(b image.Rectangle, x, y int) (int, int) {
			return b.Max.X - 1 - x, b.Max.Y - 1 - y
		}, false)
	case 4:
		return transformImage(img, func(b image.Rectangle, x, y int) (int, int) {
			return x, b.Max.Y - 1 - y
		}, false)
	case 5:
		return transformImage(img, func(b image.Rectangle, x, y int) (int, int) {
			return y, x
		}, true)
	case 6: // 90 degrees clockwise
		return transformImage(img, func(b image.Rectangle, x, y int) (int, int) {
			return y, b.Max.X - 1 - x
		}, true)
	case 7:
		return transformImage(img, func(b image.Rectangle, x, y int) (int, int) {
			return b.Max.Y - 1 - y, b.Max.X - 1 - x
		}, true)
	case 8: // 90 degrees counter-clockwise
		return transformImage(img, func(b image.Rectangle, x, y int) (int, int) {
			return b.Max.Y - 1 - y, x
		}, true)
	default:
		return img
	}
}

// transformImage builds a new NRGBA by pulling each destination pixel from
// the source coordinate given by src. swap indicates the axes exchange
// (destination is the transposed size).
func transformImage(img image.Image, src func(b image.Rectangle, dx, dy int) (int, int), swap bool) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if swap {
		w, h = h, w
	}
	db := image.Rect(0, 0, w, h)
	dst := image.NewNRGBA(db)
	for y := range h {
		for x := range w {
			sx, sy := src(db, x, y)
			dst.Set(x, y, img.At(b.Min.X+sx, b.Min.Y+sy))
		}
	}
	return dst
}

// ParseColour resolves a background colour: a case-insensitive SVG 1.1 name
// ("white", "papayawhip") or "#rgb"/"#rrggbb" hex.
func ParseColour(name string) (color.Color, error) {
	s := strings.ToLower(strings.TrimSpace(name))
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	if hex, ok := strings.CutPrefix(s, "#"); ok {
		if c, err := parseHexColour(hex); err == nil {
			return c, nil
		}
	}
	return nil, fmt.Errorf("unknown colour %q", name)
}

func parseHexColour(hex string) (color.Color, error) {
	var r, g, b uint8
	switch len(hex) {
	case 3:
		if _, err := fmt.Sscanf(hex, "%1x%1x%1x", &r, &g, &b); err != nil {
			return nil, err
		}
		// 0xf -> 0xff
		r, g, b = r*17, g*17, b*17
	case 6:
		if _, err := fmt.Sscanf(hex, "%02x%02x%02x", &r, &g, &b); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("hex colour must have 3 or 6 digits")
	}
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Flatten composites img source-over onto an opaque background of the same
// dimensions filled with bg, removing any alpha channel. A fully transparent
// pixel becomes exactly bg; a fully opaque pixel keeps its colour channels.
func Flatten(img image.Image, bg color.Color) *image.RGBA {
	b := img.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(dst, b, img, b.Min, draw.Over)
	return dst
}

// writePNG persists the final artifact. The png encoder emits an RGB image
// when the raster is fully opaque, so flattened output carries no alpha.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
