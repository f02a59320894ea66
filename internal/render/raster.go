package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/disintegration/imaging"
	"github.com/sergeymakinen/go-ico"
	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/bmp"

	"github.com/hpungsan/sicon/internal/errors"
)

// Rasterize draws doc onto a size×size transparent canvas.
// The view box is stretched to the full square.
func Rasterize(doc []byte, size int) (img *image.NRGBA, err error) {
	if size < 1 {
		return nil, errors.NewRender("rasterize", fmt.Errorf("invalid size %d", size))
	}

	// oksvg and rasterx panic on some malformed path data
	defer func() {
		if r := recover(); r != nil {
			img = nil
			err = errors.NewRender("rasterize", fmt.Errorf("%v", r))
		}
	}()

	icon, err := oksvg.ReadIconStream(bytes.NewReader(doc))
	if err != nil {
		return nil, errors.NewRender("parse svg", err)
	}
	icon.SetTarget(0, 0, float64(size), float64(size))

	rgba := image.NewRGBA(image.Rect(0, 0, size, size))
	scanner := rasterx.NewScannerGV(size, size, rgba, rgba.Bounds())
	raster := rasterx.NewDasher(size, size, scanner)
	icon.Draw(raster, 1.0)

	return imaging.Clone(rgba), nil
}

// Flatten composites img over an opaque bg. The result has no transparency.
func Flatten(img image.Image, bg color.Color) *image.NRGBA {
	b := img.Bounds()
	canvas := imaging.New(b.Dx(), b.Dy(), opaque(bg))
	return imaging.Overlay(canvas, img, image.Pt(0, 0), 1.0)
}

func opaque(c color.Color) color.NRGBA {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	n.A = 0xFF
	return n
}

// Encode writes img in format f.
func Encode(w io.Writer, img image.Image, f Format) error {
	var err error
	switch f {
	case FormatPNG:
		err = imaging.Encode(w, img, imaging.PNG)
	case FormatJPG:
		err = imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(95))
	case FormatBMP:
		err = bmp.Encode(w, img)
	case FormatICO:
		err = ico.Encode(w, img)
	default:
		err = fmt.Errorf("%s is not a single-image raster format", f)
	}
	if err != nil {
		return errors.NewRender("encode "+string(f), err)
	}
	return nil
}

// renderRaster rasterizes doc at size and flattens it when req asks for it.
func renderRaster(doc []byte, size int, req Request) (*image.NRGBA, error) {
	img, err := Rasterize(doc, size)
	if err != nil {
		return nil, err
	}
	if req.Flattened() {
		img = Flatten(img, req.BackgroundColor())
	}
	return img, nil
}
