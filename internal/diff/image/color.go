package image

import (
	"image"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/xerrors"
)

var (
	// DefaultDiffColor marks differences unless configured otherwise.
	DefaultDiffColor = color.RGBA{R: 255, A: 255}
	// ContrastColor alternates with the diff color in the rectangle outline.
	ContrastColor = color.RGBA{R: 255, G: 255, B: 255, A: 255}
)

var namedColors = map[string]color.RGBA{
	"black":   {A: 255},
	"white":   {R: 255, G: 255, B: 255, A: 255},
	"red":     {R: 255, A: 255},
	"green":   {G: 255, A: 255},
	"blue":    {B: 255, A: 255},
	"yellow":  {R: 255, G: 255, A: 255},
	"magenta": {R: 255, B: 255, A: 255},
	"cyan":    {G: 255, B: 255, A: 255},
}

// ParseColor accepts a color name or a #rgb / #rrggbb hex string.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}

	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, xerrors.Errorf("color %q: %v: %w", s, err, ErrInvalidArgument)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}, nil
}

// Distance is the largest absolute difference between the 8-bit R, G, B and
// A channels of a and b.
func Distance(a color.Color, b color.Color) int {
	ca := color.RGBAModel.Convert(a).(color.RGBA)
	cb := color.RGBAModel.Convert(b).(color.RGBA)
	return channelDistance(ca, cb)
}

// SameColor reports whether a and b are at most distortion apart.
func SameColor(a color.Color, b color.Color, distortion int) bool {
	return Distance(a, b) <= distortion
}

func channelDistance(a color.RGBA, b color.RGBA) int {
	return max(
		absDiff(a.R, b.R),
		absDiff(a.G, b.G),
		absDiff(a.B, b.B),
		absDiff(a.A, b.A),
	)
}

func absDiff(a uint8, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// sampler reads pixels of one image in a coordinate space where the image's
// top-left corner is (0, 0).
type sampler struct {
	img    image.Image
	rgba   *image.RGBA
	bounds image.Rectangle
}

func newSampler(img image.Image) *sampler {
	s := &sampler{
		img:    img,
		bounds: img.Bounds(),
	}
	if rgba, ok := img.(*image.RGBA); ok {
		s.rgba = rgba
	}
	return s
}

func (s *sampler) width() int  { return s.bounds.Dx() }
func (s *sampler) height() int { return s.bounds.Dy() }

// at returns the color at (x, y); ok is false outside the image.
func (s *sampler) at(x int, y int) (color.RGBA, bool) {
	if x < 0 || y < 0 || x >= s.bounds.Dx() || y >= s.bounds.Dy() {
		return color.RGBA{}, false
	}

	px := s.bounds.Min.X + x
	py := s.bounds.Min.Y + y
	if s.rgba != nil {
		offset := s.rgba.PixOffset(px, py)
		pix := s.rgba.Pix[offset : offset+4 : offset+4]
		return color.RGBA{R: pix[0], G: pix[1], B: pix[2], A: pix[3]}, true
	}
	return color.RGBAModel.Convert(s.img.At(px, py)).(color.RGBA), true
}

// samePixel applies the tolerance model to two possibly absent samples.
func samePixel(a color.RGBA, aok bool, b color.RGBA, bok bool, distortion int) bool {
	if !aok || !bok {
		return aok == bok
	}
	return channelDistance(a, b) <= distortion
}
