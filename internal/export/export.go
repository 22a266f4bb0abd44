// Package export rasterizes documents to PNG.
package export

import (
	"errors"
	"fmt"
	"image"
	"io"
	"math"

	"github.com/disintegration/imaging"

	"github.com/inamate/vecedit/internal/document"
	"github.com/inamate/vecedit/internal/geom"
	"github.com/inamate/vecedit/internal/render"
)

const (
	MaxScale     = 4.0
	maxDimension = 8192
)

var ErrEmptySheet = errors.New("sheet has no area")

// Options controls rasterization. A zero Scale renders at 1:1. When
// MaxWidth or MaxHeight is set the image is shrunk to fit inside them.
type Options struct {
	Scale     float64
	MaxWidth  int
	MaxHeight int
}

// Render paints the figures of doc onto a raster the size of its sheet.
func Render(doc *document.Document, opts Options) (image.Image, error) {
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	if scale < 0 || scale > MaxScale || math.IsNaN(scale) {
		return nil, fmt.Errorf("render: scale %g out of range (0, %g]", scale, MaxScale)
	}
	w := int(math.Ceil(float64(doc.Sheet.Width) * scale))
	h := int(math.Ceil(float64(doc.Sheet.Height) * scale))
	if w <= 0 || h <= 0 {
		return nil, ErrEmptySheet
	}
	if w > maxDimension || h > maxDimension {
		return nil, fmt.Errorf("render: %dx%d exceeds %d pixels per side", w, h, maxDimension)
	}

	figs, err := document.Decode(doc)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	bg := doc.Sheet.Background
	if bg == "" {
		bg = "#ffffff"
	}
	pen := render.NewGG(w, h, bg)
	defer pen.Close()
	pen.Multiply(geom.Scale(scale, scale))
	for _, f := range figs {
		f.Paint(pen)
	}
	if err := pen.Err(); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}

	// The raster belongs to the context, so copy it out before Close.
	img := imaging.Clone(pen.Image())
	if opts.MaxWidth > 0 || opts.MaxHeight > 0 {
		return Thumbnail(img, opts.MaxWidth, opts.MaxHeight), nil
	}
	return img, nil
}

// Thumbnail shrinks img to fit inside maxWidth x maxHeight, keeping its
// aspect ratio. A zero bound leaves that side unconstrained.
func Thumbnail(img image.Image, maxWidth, maxHeight int) image.Image {
	b := img.Bounds()
	if maxWidth <= 0 {
		maxWidth = b.Dx()
	}
	if maxHeight <= 0 {
		maxHeight = b.Dy()
	}
	return imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)
}

// PNG renders doc and writes it as PNG.
func PNG(w io.Writer, doc *document.Document, opts Options) error {
	img, err := Render(doc, opts)
	if err != nil {
		return err
	}
	return EncodePNG(w, img)
}

// EncodePNG writes img as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return imaging.Encode(w, img, imaging.PNG)
}
