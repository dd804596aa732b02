package rasterizer

import (
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

// Writer encodes an image.
type Writer func(w io.Writer, img image.Image) error

// PNGWriter writes the image as a PNG file.
func PNGWriter() Writer {
	return func(w io.Writer, img image.Image) error {
		return png.Encode(w, img)
	}
}

// JPGWriter writes the image as a JPG file. JPG has no transparency, so the image is drawn over background first.
func JPGWriter(opts *jpeg.Options, background image.Image) Writer {
	return func(w io.Writer, img image.Image) error {
		return jpeg.Encode(w, flatten(img, background), opts)
	}
}

// GIFWriter writes the image as a GIF file.
func GIFWriter(opts *gif.Options) Writer {
	return func(w io.Writer, img image.Image) error {
		return gif.Encode(w, img, opts)
	}
}

// TIFFWriter writes the image as a TIFF file.
func TIFFWriter(opts *tiff.Options) Writer {
	return func(w io.Writer, img image.Image) error {
		return tiff.Encode(w, img, opts)
	}
}

// BMPWriter writes the image as a BMP file.
func BMPWriter() Writer {
	return func(w io.Writer, img image.Image) error {
		return bmp.Encode(w, img)
	}
}

// WriterForFile returns the writer matching the extension of filename. JPG files get a white background.
func WriterForFile(filename string) (Writer, error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".png":
		return PNGWriter(), nil
	case ".jpg", ".jpeg":
		return JPGWriter(&jpeg.Options{Quality: 90}, image.White), nil
	case ".gif":
		return GIFWriter(nil), nil
	case ".tif", ".tiff":
		return TIFFWriter(&tiff.Options{Compression: tiff.Deflate}), nil
	case ".bmp":
		return BMPWriter(), nil
	default:
		return nil, fmt.Errorf("unknown image format: %s", ext)
	}
}

// Write encodes the surface's image.
func (s *Surface) Write(w io.Writer, writer Writer) error {
	return writer(w, s.img)
}

func flatten(img image.Image, background image.Image) image.Image {
	if background == nil {
		return img
	}
	dst := image.NewRGBA(img.Bounds())
	draw.Draw(dst, dst.Bounds(), background, image.Point{}, draw.Src)
	draw.Draw(dst, dst.Bounds(), img, img.Bounds().Min, draw.Over)
	return dst
}
