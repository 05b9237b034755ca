package image

import (
	"image"
)

// Screenshot is an image together with its own comparison scope.
type Screenshot struct {
	Image image.Image
	// IgnoredAreas are skipped.
	IgnoredAreas []Region
	// CoordsToCompare, when non-empty, restricts the comparison to pixels
	// inside at least one of them.
	CoordsToCompare []Region
}

func NewScreenshot(img image.Image) *Screenshot {
	return &Screenshot{
		Image: img,
	}
}

func (s *Screenshot) WithIgnoredAreas(regions ...Region) *Screenshot {
	s.IgnoredAreas = append(s.IgnoredAreas, regions...)
	return s
}

func (s *Screenshot) WithCoordsToCompare(regions ...Region) *Screenshot {
	s.CoordsToCompare = append(s.CoordsToCompare, regions...)
	return s
}

func (s *Screenshot) eligible(x int, y int) bool {
	return IsEligible(x, y, s.IgnoredAreas, s.CoordsToCompare)
}

// IsEligible decides whether (x, y) takes part in the comparison for one image.
// An ignored area inside a restricted area still suppresses the pixel.
func IsEligible(x int, y int, ignored []Region, restrict []Region) bool {
	if len(restrict) > 0 && !containsAny(restrict, x, y) {
		return false
	}
	return !containsAny(ignored, x, y)
}
