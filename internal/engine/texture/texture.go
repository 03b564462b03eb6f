// Package texture decodes element textures and renders label glyphs into
// RGBA images ready for upload.
package texture

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg" // decoder registration
	_ "image/png"  // decoder registration

	_ "golang.org/x/image/bmp" // decoder registration
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	_ "golang.org/x/image/webp" // decoder registration

	"github.com/Faultbox/smolview/pkg/molecule"
)

// DefaultMaxSize bounds the longer side of uploaded textures.
const DefaultMaxSize = 1024

// ErrEmptyImage is returned for images with no pixels.
var ErrEmptyImage = errors.New("empty image")

// Decode decodes a PNG, JPEG, BMP or WebP image and converts it to RGBA,
// scaling it down so neither side exceeds maxSize.
func Decode(data []byte, maxSize int) (*image.RGBA, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, fmt.Errorf("%s: %w", format, ErrEmptyImage)
	}
	return Fit(img, maxSize), nil
}

// Fit returns img as RGBA with its longer side at most maxSize, keeping
// the aspect ratio. A non-positive maxSize only converts.
func Fit(img image.Image, maxSize int) *image.RGBA {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if maxSize > 0 && (w > maxSize || h > maxSize) {
		if w >= h {
			h = max(1, h*maxSize/w)
			w = maxSize
		} else {
			w = max(1, w*maxSize/h)
			h = maxSize
		}
		dst := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
		return dst
	}

	if rgba, ok := img.(*image.RGBA); ok && b.Min == (image.Point{}) {
		return rgba
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

// White returns a 1x1 opaque white image. Spheres without a texture are
// drawn with it so the element color passes through unchanged.
func White() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	return img
}

// Label renders text in the 7x13 bitmap face on a transparent
// background, scaled up by an integer factor.
func Label(text string, c molecule.Color, scale int) *image.RGBA {
	face := basicfont.Face7x13
	scale = max(1, scale)

	d := &font.Drawer{Face: face}
	width := d.MeasureString(text).Ceil()
	height := face.Metrics().Height.Ceil()
	glyphs := image.NewRGBA(image.Rect(0, 0, max(1, width), height))

	rgb := c.RGB()
	d.Dst = glyphs
	d.Src = image.NewUniform(color.RGBA{
		R: uint8(rgb[0] * 255),
		G: uint8(rgb[1] * 255),
		B: uint8(rgb[2] * 255),
		A: 255,
	})
	d.Dot = fixed.Point26_6{Y: face.Metrics().Ascent}
	d.DrawString(text)

	if scale == 1 {
		return glyphs
	}
	gb := glyphs.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, gb.Dx()*scale, gb.Dy()*scale))
	draw.NearestNeighbor.Scale(out, out.Bounds(), glyphs, gb, draw.Src, nil)
	return out
}
