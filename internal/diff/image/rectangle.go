package image

import (
	"image"
	"image/color"
	"image/draw"
	"sort"
)

// RectangleMarkupPolicy groups differing pixels into clusters and outlines
// the bounding rectangle of each cluster with a checkerboard of the diff
// color and ContrastColor. The inside of a rectangle is left untouched.
type RectangleMarkupPolicy struct {
	diffImage       draw.Image
	marked          image.Image
	points          pointSet
	diffColor       color.Color
	diffSizeTrigger int
	mergeDistance   int
	rectangles      []image.Rectangle
}

func NewRectangleMarkupPolicy() *RectangleMarkupPolicy {
	return &RectangleMarkupPolicy{
		points:          newPointSet(),
		diffColor:       DefaultDiffColor,
		diffSizeTrigger: 1,
		mergeDistance:   1,
	}
}

// WithMergeDistance sets the largest Chebyshev distance between two points
// of the same cluster. Values below 1 mean plain 8-connectivity.
func (p *RectangleMarkupPolicy) WithMergeDistance(d int) *RectangleMarkupPolicy {
	p.mergeDistance = max(d, 1)
	p.rectangles = nil
	p.marked = nil
	return p
}

func (p *RectangleMarkupPolicy) SetDiffImage(img draw.Image) {
	p.diffImage = img
	p.marked = nil
}

func (p *RectangleMarkupPolicy) AddDiffPoint(x int, y int) {
	if p.points.add(image.Pt(x, y)) {
		p.rectangles = nil
		p.marked = nil
	}
}

func (p *RectangleMarkupPolicy) HasDiff() bool {
	return reachedTrigger(p.points.len(), p.diffSizeTrigger)
}

func (p *RectangleMarkupPolicy) DiffSize() int {
	return p.points.len()
}

func (p *RectangleMarkupPolicy) DiffPoints() []image.Point {
	return append([]image.Point(nil), p.points.list()...)
}

func (p *RectangleMarkupPolicy) SetDiffColor(c color.Color) MarkupPolicy {
	p.diffColor = c
	p.marked = nil
	return p
}

func (p *RectangleMarkupPolicy) SetDiffSizeTrigger(n int) MarkupPolicy {
	p.diffSizeTrigger = n
	p.marked = nil
	return p
}

func (p *RectangleMarkupPolicy) DiffImage() (draw.Image, error) {
	if p.diffImage == nil {
		return nil, ErrNotInitialized
	}
	return p.diffImage, nil
}

func (p *RectangleMarkupPolicy) MarkedImage() (image.Image, error) {
	if p.diffImage == nil {
		return nil, ErrNotInitialized
	}
	if p.marked != nil {
		return p.marked, nil
	}

	marked := cloneImage(p.diffImage)
	for _, rect := range p.clusters() {
		p.drawOutline(marked, rect)
	}
	p.marked = marked
	return marked, nil
}

// Rectangles returns the bounding rectangle of every cluster, ordered by
// their top-left corner.
func (p *RectangleMarkupPolicy) Rectangles() []Region {
	clusters := p.clusters()
	regions := make([]Region, 0, len(clusters))
	for _, rect := range clusters {
		regions = append(regions, RegionFromRectangle(rect))
	}
	return regions
}

func (p *RectangleMarkupPolicy) Equal(other MarkupPolicy) bool {
	o, ok := other.(*RectangleMarkupPolicy)
	if !ok {
		return false
	}
	return max(p.diffSizeTrigger, 1) == max(o.diffSizeTrigger, 1) &&
		sameColor(p.diffColor, o.diffColor) &&
		p.points.equal(&o.points)
}

func (p *RectangleMarkupPolicy) Fingerprint() string {
	return fingerprint("rectangle", p.points.list(), p.diffColor, p.diffSizeTrigger)
}

// clusters runs a union-find over the whole point set, so the result does
// not depend on the order the points were added in.
func (p *RectangleMarkupPolicy) clusters() []image.Rectangle {
	if p.rectangles != nil {
		return p.rectangles
	}

	points := p.points.list()
	index := make(map[image.Point]int, len(points))
	for i, point := range points {
		index[point] = i
	}

	parent := make([]int, len(points))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	union := func(i int, j int) {
		ri, rj := find(i), find(j)
		if ri == rj {
			return
		}
		// The smaller index becomes the root to keep roots stable.
		if ri < rj {
			parent[rj] = ri
		} else {
			parent[ri] = rj
		}
	}

	d := p.mergeDistance
	for i, point := range points {
		for dy := -d; dy <= d; dy++ {
			for dx := -d; dx <= d; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				if j, ok := index[image.Pt(point.X+dx, point.Y+dy)]; ok {
					union(i, j)
				}
			}
		}
	}

	bounds := make(map[int]image.Rectangle)
	for i, point := range points {
		root := find(i)
		pixel := image.Rect(point.X, point.Y, point.X+1, point.Y+1)
		if rect, ok := bounds[root]; ok {
			bounds[root] = rect.Union(pixel)
		} else {
			bounds[root] = pixel
		}
	}

	rectangles := make([]image.Rectangle, 0, len(bounds))
	for _, rect := range bounds {
		rectangles = append(rectangles, rect)
	}
	sort.Slice(rectangles, func(i, j int) bool {
		a, b := rectangles[i], rectangles[j]
		if a.Min.Y != b.Min.Y {
			return a.Min.Y < b.Min.Y
		}
		if a.Min.X != b.Min.X {
			return a.Min.X < b.Min.X
		}
		if a.Max.Y != b.Max.Y {
			return a.Max.Y < b.Max.Y
		}
		return a.Max.X < b.Max.X
	})

	p.rectangles = rectangles
	return rectangles
}

func (p *RectangleMarkupPolicy) drawOutline(img draw.Image, rect image.Rectangle) {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return
	}

	set := func(x int, y int) {
		if (x+y)%2 == 0 {
			img.Set(x, y, p.diffColor)
		} else {
			img.Set(x, y, ContrastColor)
		}
	}

	for x := rect.Min.X; x < rect.Max.X; x++ {
		set(x, rect.Min.Y)
		set(x, rect.Max.Y-1)
	}
	for y := rect.Min.Y; y < rect.Max.Y; y++ {
		set(rect.Min.X, y)
		set(rect.Max.X-1, y)
	}
}
