package image

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sort"
	"strings"

	"golang.org/x/xerrors"
)

// MarkupPolicy collects differing coordinates and renders them.
//
// A policy is owned by one ImageDiff and is not safe for concurrent use.
type MarkupPolicy interface {
	// SetDiffImage installs the blank output buffer.
	SetDiffImage(img draw.Image)
	// AddDiffPoint records a differing coordinate. Duplicates are ignored.
	AddDiffPoint(x int, y int)
	// HasDiff reports whether at least DiffSizeTrigger points were recorded.
	HasDiff() bool
	DiffSize() int
	// DiffPoints returns the recorded points ordered by y, then x.
	DiffPoints() []image.Point
	SetDiffColor(c color.Color) MarkupPolicy
	SetDiffSizeTrigger(n int) MarkupPolicy
	// DiffImage returns the output buffer without markup.
	DiffImage() (draw.Image, error)
	// MarkedImage returns a copy of the output buffer with markup drawn.
	// Repeated calls without configuration changes return the same image.
	MarkedImage() (image.Image, error)
	Equal(other MarkupPolicy) bool
	// Fingerprint identifies the recorded points, color and trigger.
	Fingerprint() string
}

type MarkupPolicyFactory func() MarkupPolicy

var (
	PixelMarkup MarkupPolicyFactory = func() MarkupPolicy {
		return NewPointsMarkupPolicy()
	}
	RectangleMarkup MarkupPolicyFactory = func() MarkupPolicy {
		return NewRectangleMarkupPolicy()
	}
)

// MarkupPolicyByName maps a format name ("pixel" or "rectangle") to a factory.
func MarkupPolicyByName(name string) (MarkupPolicyFactory, error) {
	switch strings.ToLower(name) {
	case "pixel", "points":
		return PixelMarkup, nil
	case "rectangle", "", "rectangles":
		return RectangleMarkup, nil
	default:
		return nil, xerrors.Errorf("unknown markup policy %q: %w", name, ErrInvalidArgument)
	}
}

// pointSet is a set of coordinates with a deterministic listing order.
type pointSet struct {
	points map[image.Point]struct{}
	sorted []image.Point
}

func newPointSet() pointSet {
	return pointSet{
		points: make(map[image.Point]struct{}),
	}
}

// add reports whether p was not recorded before.
func (s *pointSet) add(p image.Point) bool {
	if _, ok := s.points[p]; ok {
		return false
	}
	s.points[p] = struct{}{}
	s.sorted = nil
	return true
}

func (s *pointSet) len() int {
	return len(s.points)
}

func (s *pointSet) list() []image.Point {
	if s.sorted == nil {
		s.sorted = make([]image.Point, 0, len(s.points))
		for p := range s.points {
			s.sorted = append(s.sorted, p)
		}
		sort.Slice(s.sorted, func(i, j int) bool {
			if s.sorted[i].Y != s.sorted[j].Y {
				return s.sorted[i].Y < s.sorted[j].Y
			}
			return s.sorted[i].X < s.sorted[j].X
		})
	}
	return s.sorted
}

func (s *pointSet) equal(o *pointSet) bool {
	if len(s.points) != len(o.points) {
		return false
	}
	for p := range s.points {
		if _, ok := o.points[p]; !ok {
			return false
		}
	}
	return true
}

func reachedTrigger(size int, trigger int) bool {
	return size >= max(trigger, 1)
}

func sameColor(a color.Color, b color.Color) bool {
	ar, ag, ab, aa := a.RGBA()
	br, bg, bb, ba := b.RGBA()
	return ar == br && ag == bg && ab == bb && aa == ba
}

func fingerprint(kind string, points []image.Point, c color.Color, trigger int) string {
	h := sha256.New()
	h.Write([]byte(kind))

	r, g, b, a := c.RGBA()
	var buf [8]byte
	for _, v := range []uint32{r, g, b, a, uint32(max(trigger, 1))} {
		binary.BigEndian.PutUint32(buf[:4], v)
		h.Write(buf[:4])
	}
	for _, p := range points {
		binary.BigEndian.PutUint32(buf[:4], uint32(int32(p.X)))
		binary.BigEndian.PutUint32(buf[4:], uint32(int32(p.Y)))
		h.Write(buf[:])
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
