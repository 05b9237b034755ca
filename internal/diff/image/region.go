package image

import (
	"fmt"
	"image"
	"strconv"
	"strings"

	"golang.org/x/xerrors"
)

// Region is an axis-aligned rectangle in pixel space. A zero width or height
// is one pixel thick, so NewPoint(x, y) covers exactly the pixel (x, y).
type Region struct {
	x      int
	y      int
	width  int
	height int
}

func NewRegion(x int, y int, width int, height int) (Region, error) {
	if width < 0 || height < 0 {
		return Region{}, xerrors.Errorf("region %dx%d at (%d,%d): negative size: %w", width, height, x, y, ErrInvalidArgument)
	}
	return Region{
		x:      x,
		y:      y,
		width:  width,
		height: height,
	}, nil
}

func NewPoint(x int, y int) Region {
	return Region{x: x, y: y}
}

// MustRegion is like NewRegion but panics on a negative size.
func MustRegion(x int, y int, width int, height int) Region {
	r, err := NewRegion(x, y, width, height)
	if err != nil {
		panic(err)
	}
	return r
}

func RegionFromRectangle(r image.Rectangle) Region {
	r = r.Canon()
	return Region{
		x:      r.Min.X,
		y:      r.Min.Y,
		width:  r.Dx(),
		height: r.Dy(),
	}
}

// ParseRegion parses "x,y,width,height" or the point form "x,y".
func ParseRegion(s string) (Region, error) {
	fields := strings.Split(s, ",")
	if len(fields) != 2 && len(fields) != 4 {
		return Region{}, xerrors.Errorf("region %q: want x,y or x,y,width,height: %w", s, ErrInvalidArgument)
	}

	values := make([]int, len(fields))
	for i, field := range fields {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			return Region{}, xerrors.Errorf("region %q: %v: %w", s, err, ErrInvalidArgument)
		}
		values[i] = v
	}

	if len(values) == 2 {
		return NewPoint(values[0], values[1]), nil
	}
	return NewRegion(values[0], values[1], values[2], values[3])
}

func (r Region) X() int      { return r.x }
func (r Region) Y() int      { return r.y }
func (r Region) Width() int  { return r.width }
func (r Region) Height() int { return r.height }

// Rectangle returns the pixels covered by r.
func (r Region) Rectangle() image.Rectangle {
	return image.Rect(r.x, r.y, r.x+max(r.width, 1), r.y+max(r.height, 1))
}

func (r Region) Contains(x int, y int) bool {
	return image.Pt(x, y).In(r.Rectangle())
}

func (r Region) Intersects(o Region) bool {
	return r.Rectangle().Overlaps(o.Rectangle())
}

// Intersection returns the pixels covered by both regions. The second result
// is false when they do not overlap.
func (r Region) Intersection(o Region) (Region, bool) {
	i := r.Rectangle().Intersect(o.Rectangle())
	if i.Empty() {
		return Region{}, false
	}
	return RegionFromRectangle(i), true
}

// Union returns the smallest region covering both regions.
func (r Region) Union(o Region) Region {
	return RegionFromRectangle(r.Rectangle().Union(o.Rectangle()))
}

// Equal reports whether both regions cover the same pixels, so a point equals
// the 1x1 region at the same place.
func (r Region) Equal(o Region) bool {
	return r.Rectangle() == o.Rectangle()
}

func (r Region) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", r.x, r.y, r.width, r.height)
}

func containsAny(regions []Region, x int, y int) bool {
	for _, r := range regions {
		if r.Contains(x, y) {
			return true
		}
	}
	return false
}
