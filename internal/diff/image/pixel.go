package image

import (
	"image"
	"image/color"
	"image/draw"
)

// PointsMarkupPolicy paints every differing pixel with the diff color.
type PointsMarkupPolicy struct {
	diffImage       draw.Image
	marked          image.Image
	points          pointSet
	diffColor       color.Color
	diffSizeTrigger int
}

func NewPointsMarkupPolicy() *PointsMarkupPolicy {
	return &PointsMarkupPolicy{
		points:          newPointSet(),
		diffColor:       DefaultDiffColor,
		diffSizeTrigger: 1,
	}
}

func (p *PointsMarkupPolicy) SetDiffImage(img draw.Image) {
	p.diffImage = img
	p.marked = nil
}

func (p *PointsMarkupPolicy) AddDiffPoint(x int, y int) {
	if p.points.add(image.Pt(x, y)) {
		p.marked = nil
	}
}

func (p *PointsMarkupPolicy) HasDiff() bool {
	return reachedTrigger(p.points.len(), p.diffSizeTrigger)
}

func (p *PointsMarkupPolicy) DiffSize() int {
	return p.points.len()
}

func (p *PointsMarkupPolicy) DiffPoints() []image.Point {
	return append([]image.Point(nil), p.points.list()...)
}

func (p *PointsMarkupPolicy) SetDiffColor(c color.Color) MarkupPolicy {
	p.diffColor = c
	p.marked = nil
	return p
}

func (p *PointsMarkupPolicy) SetDiffSizeTrigger(n int) MarkupPolicy {
	p.diffSizeTrigger = n
	p.marked = nil
	return p
}

func (p *PointsMarkupPolicy) DiffImage() (draw.Image, error) {
	if p.diffImage == nil {
		return nil, ErrNotInitialized
	}
	return p.diffImage, nil
}

func (p *PointsMarkupPolicy) MarkedImage() (image.Image, error) {
	if p.diffImage == nil {
		return nil, ErrNotInitialized
	}
	if p.marked != nil {
		return p.marked, nil
	}

	marked := cloneImage(p.diffImage)
	bounds := marked.Bounds()
	for _, point := range p.points.list() {
		if point.In(bounds) {
			marked.Set(point.X, point.Y, p.diffColor)
		}
	}
	p.marked = marked
	return marked, nil
}

func (p *PointsMarkupPolicy) Equal(other MarkupPolicy) bool {
	o, ok := other.(*PointsMarkupPolicy)
	if !ok {
		return false
	}
	return max(p.diffSizeTrigger, 1) == max(o.diffSizeTrigger, 1) &&
		sameColor(p.diffColor, o.diffColor) &&
		p.points.equal(&o.points)
}

func (p *PointsMarkupPolicy) Fingerprint() string {
	return fingerprint("pixel", p.points.list(), p.diffColor, p.diffSizeTrigger)
}
