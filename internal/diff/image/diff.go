package image

import (
	"image"
	"image/color"
	"image/draw"
)

// ImageDiff is the result of one comparison. Its structure is fixed after
// construction; only the diff color and the size trigger can be changed.
type ImageDiff struct {
	policy MarkupPolicy
}

func newImageDiff(expected image.Image, actual image.Image, policy MarkupPolicy) *ImageDiff {
	width := max(expected.Bounds().Dx(), actual.Bounds().Dx())
	height := max(expected.Bounds().Dy(), actual.Bounds().Dy())
	policy.SetDiffImage(newBufferLike(actual, width, height))
	return &ImageDiff{
		policy: policy,
	}
}

// EmptyDiff returns a diff without points and without an output buffer.
func EmptyDiff() *ImageDiff {
	return &ImageDiff{
		policy: NewPointsMarkupPolicy(),
	}
}

// WithDiffColor sets the color marking the differences. The rectangle
// policy alternates it with white in a checkerboard pattern.
func (d *ImageDiff) WithDiffColor(c color.Color) *ImageDiff {
	d.policy.SetDiffColor(c)
	return d
}

// WithDiffSizeTrigger sets how many differing pixels make HasDiff true.
func (d *ImageDiff) WithDiffSizeTrigger(n int) *ImageDiff {
	d.policy.SetDiffSizeTrigger(n)
	return d
}

func (d *ImageDiff) HasDiff() bool {
	return d.policy.HasDiff()
}

func (d *ImageDiff) DiffSize() int {
	return d.policy.DiffSize()
}

func (d *ImageDiff) DiffPoints() []image.Point {
	return d.policy.DiffPoints()
}

// DiffAmount is the share of differing pixels in the output area.
func (d *ImageDiff) DiffAmount() float64 {
	img, err := d.policy.DiffImage()
	if err != nil {
		return 0.0
	}
	total := img.Bounds().Dx() * img.Bounds().Dy()
	if total == 0 {
		return 0.0
	}
	return float64(d.policy.DiffSize()) / float64(total)
}

// DiffImage returns the comparison canvas without any markup.
func (d *ImageDiff) DiffImage() (draw.Image, error) {
	return d.policy.DiffImage()
}

// MarkedImage returns the canvas with the differences marked. Idempotent.
func (d *ImageDiff) MarkedImage() (image.Image, error) {
	return d.policy.MarkedImage()
}

// Rectangles returns the cluster rectangles when the rectangle policy is in
// use and nil otherwise.
func (d *ImageDiff) Rectangles() []Region {
	if p, ok := d.policy.(*RectangleMarkupPolicy); ok {
		return p.Rectangles()
	}
	return nil
}

func (d *ImageDiff) Policy() MarkupPolicy {
	return d.policy
}

func (d *ImageDiff) Equal(o *ImageDiff) bool {
	if d == nil || o == nil {
		return d == o
	}
	return d.policy.Equal(o.policy)
}

func (d *ImageDiff) Fingerprint() string {
	return d.policy.Fingerprint()
}
