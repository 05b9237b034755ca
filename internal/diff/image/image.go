// Package image compares two raster images pixel by pixel and renders the
// differing pixels through a pluggable markup policy.
package image

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
)

var (
	// ErrInvalidArgument is returned for nil images, negative regions and
	// negative tolerances.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotInitialized is returned when a markup policy is asked to render
	// before it received its output buffer.
	ErrNotInitialized = errors.New("diff image is not initialized")
)

// newBufferLike allocates a blank width x height image with the same pixel
// format as like. Formats without a drawable counterpart fall back to RGBA.
func newBufferLike(like image.Image, width int, height int) draw.Image {
	rect := image.Rect(0, 0, width, height)
	switch src := like.(type) {
	case *image.RGBA:
		return image.NewRGBA(rect)
	case *image.NRGBA:
		return image.NewNRGBA(rect)
	case *image.RGBA64:
		return image.NewRGBA64(rect)
	case *image.NRGBA64:
		return image.NewNRGBA64(rect)
	case *image.Gray:
		return image.NewGray(rect)
	case *image.Gray16:
		return image.NewGray16(rect)
	case *image.CMYK:
		return image.NewCMYK(rect)
	case *image.Paletted:
		palette := make(color.Palette, len(src.Palette))
		copy(palette, src.Palette)
		return image.NewPaletted(rect, palette)
	default:
		return image.NewRGBA(rect)
	}
}

// cloneImage returns a copy of src in the same pixel format.
func cloneImage(src draw.Image) draw.Image {
	bounds := src.Bounds()
	dst := newBufferLike(src, bounds.Dx(), bounds.Dy())
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return dst
}
