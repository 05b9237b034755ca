package image

import (
	"image"
	"image/draw"

	"golang.org/x/xerrors"
)

// ImageDiffer is a fluent comparison configuration. It is not safe to
// reconfigure while MakeDiff runs on another goroutine.
type ImageDiffer struct {
	colorDistortion int
	policy          MarkupPolicyFactory
}

func NewImageDiffer() *ImageDiffer {
	return &ImageDiffer{
		colorDistortion: 0,
		policy:          RectangleMarkup,
	}
}

// WithColorDistortion sets the largest channel difference still considered
// the same color.
func (d *ImageDiffer) WithColorDistortion(distortion int) *ImageDiffer {
	d.colorDistortion = distortion
	return d
}

// WithDiffMarkupPolicy selects the policy; every MakeDiff call gets a fresh
// instance from f.
func (d *ImageDiffer) WithDiffMarkupPolicy(f MarkupPolicyFactory) *ImageDiffer {
	d.policy = f
	return d
}

func (d *ImageDiffer) MakeImageDiff(expected image.Image, actual image.Image) (*ImageDiff, error) {
	if expected == nil || actual == nil {
		return nil, xerrors.Errorf("nil image: %w", ErrInvalidArgument)
	}
	return d.MakeDiff(NewScreenshot(expected), NewScreenshot(actual))
}

// MakeDiff scans every pixel of the union of both images. A pixel is compared
// only when it is eligible under both screenshots' scopes; a pixel present in
// one image only is always different.
func (d *ImageDiffer) MakeDiff(expected *Screenshot, actual *Screenshot) (*ImageDiff, error) {
	if expected == nil || actual == nil || expected.Image == nil || actual.Image == nil {
		return nil, xerrors.Errorf("nil screenshot: %w", ErrInvalidArgument)
	}
	if d.colorDistortion < 0 {
		return nil, xerrors.Errorf("color distortion %d: %w", d.colorDistortion, ErrInvalidArgument)
	}
	factory := d.policy
	if factory == nil {
		factory = RectangleMarkup
	}

	policy := factory()
	diff := newImageDiff(expected.Image, actual.Image, policy)
	canvas, err := policy.DiffImage()
	if err != nil {
		return nil, xerrors.Errorf("failed to initialize diff image: %w", err)
	}

	e := newSampler(expected.Image)
	a := newSampler(actual.Image)
	compose(canvas, e, a)

	width := max(e.width(), a.width())
	height := max(e.height(), a.height())
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if !expected.eligible(x, y) || !actual.eligible(x, y) {
				continue
			}

			ec, eok := e.at(x, y)
			ac, aok := a.at(x, y)
			if !samePixel(ec, eok, ac, aok, d.colorDistortion) {
				policy.AddDiffPoint(x, y)
			}
		}
	}

	return diff, nil
}

// compose paints the actual image over the expected one.
func compose(canvas draw.Image, expected *sampler, actual *sampler) {
	draw.Draw(canvas, image.Rect(0, 0, expected.width(), expected.height()), expected.img, expected.bounds.Min, draw.Src)
	draw.Draw(canvas, image.Rect(0, 0, actual.width(), actual.height()), actual.img, actual.bounds.Min, draw.Src)
}
