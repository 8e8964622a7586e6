package watermark

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	_ "image/png"

	"github.com/Duffman2k/duffvouchbot/internal/models"
	"github.com/disintegration/imaging"
)

const (
	MarkWidth     = 140
	MarkHeight    = 100
	MarkOpacity   = 0.6
	MarkRotation  = 20.0
	RowSpacing    = 350
	ColumnDivisor = 3
	JPEGQuality   = 90
)

// Compositor tiles a semi-transparent, rotated watermark across an image.
// It holds no state; identical inputs give identical output.
type Compositor struct{}

func NewCompositor() *Compositor {
	return &Compositor{}
}

// PrepareMark resizes the mark to the fixed footprint, scales its alpha and
// rotates it counter-clockwise on an expanded canvas.
func (c *Compositor) PrepareMark(mark image.Image) *image.NRGBA {
	resized := imaging.Resize(mark, MarkWidth, MarkHeight, imaging.Lanczos)
	for i := 3; i < len(resized.Pix); i += 4 {
		resized.Pix[i] = uint8(float64(resized.Pix[i]) * MarkOpacity)
	}
	return imaging.Rotate(resized, MarkRotation, color.NRGBA{})
}

// TilePositions returns the anchor of every watermark tile for a w×h image.
// Columns are w/3 apart (a single column when that is zero), rows 350 apart.
func TilePositions(w, h int) []image.Point {
	if w <= 0 || h <= 0 {
		return nil
	}
	step := w / ColumnDivisor
	if step == 0 {
		step = w
	}
	var out []image.Point
	for y := 0; y < h; y += RowSpacing {
		for x := 0; x < w; x += step {
			out = append(out, image.Pt(x, y))
		}
	}
	return out
}

// Composite returns base with the tiled watermark blended on top, alpha dropped.
func (c *Compositor) Composite(base, mark image.Image) *image.RGBA {
	canvas := imaging.Clone(base)
	bounds := canvas.Bounds()
	tile := c.PrepareMark(mark)

	overlay := imaging.New(bounds.Dx(), bounds.Dy(), color.NRGBA{})
	for _, pt := range TilePositions(bounds.Dx(), bounds.Dy()) {
		overlay = imaging.Overlay(overlay, tile, pt, 1.0)
	}

	return flatten(imaging.Overlay(canvas, overlay, image.Pt(0, 0), 1.0))
}

// CompositeBytes decodes both images, composites them and encodes a JPEG.
func (c *Compositor) CompositeBytes(base, mark []byte) ([]byte, error) {
	baseImg, _, err := image.Decode(bytes.NewReader(base))
	if err != nil {
		return nil, &models.DecodeError{What: "base image", Err: err}
	}
	markImg, _, err := image.Decode(bytes.NewReader(mark))
	if err != nil {
		return nil, &models.DecodeError{What: "watermark", Err: err}
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, c.Composite(baseImg, markImg), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, &models.DecodeError{What: "jpeg encode", Err: err}
	}
	return buf.Bytes(), nil
}

// flatten discards the alpha channel without matting against a background.
func flatten(src *image.NRGBA) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := 0; y < b.Dy(); y++ {
		s := src.Pix[y*src.Stride : y*src.Stride+b.Dx()*4]
		d := dst.Pix[y*dst.Stride : y*dst.Stride+b.Dx()*4]
		for x := 0; x < len(s); x += 4 {
			d[x], d[x+1], d[x+2], d[x+3] = s[x], s[x+1], s[x+2], 0xff
		}
	}
	return dst
}
