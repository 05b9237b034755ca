// Package compare turns serializable comparison options into an image diff
// and its rendered artifact. It is shared by the CLI, the diff server, the
// worker and the controller.
package compare

import (
	"bytes"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"strings"

	"golang.org/x/xerrors"

	diffimage "image-diff-controller/internal/diff/image"
)

// Scope restricts the comparison for one image. Areas use the
// "x,y,width,height" or "x,y" notation.
type Scope struct {
	IgnoredAreas    []string `json:"ignoredAreas,omitempty"`
	CoordsToCompare []string `json:"coordsToCompare,omitempty"`
}

type Options struct {
	// Format is "pixel" or "rectangle".
	Format          string `json:"format,omitempty"`
	ColorDistortion int    `json:"colorDistortion,omitempty"`
	DiffColor       string `json:"diffColor,omitempty"`
	DiffSizeTrigger int    `json:"diffSizeTrigger,omitempty"`
	// MergeDistance applies to the rectangle format only.
	MergeDistance int `json:"mergeDistance,omitempty"`
	// Raw renders the composited canvas without markup.
	Raw      bool  `json:"raw,omitempty"`
	Expected Scope `json:"expected,omitempty"`
	Actual   Scope `json:"actual,omitempty"`
}

type Result struct {
	Image       []byte   `json:"-"`
	DiffAmount  float64  `json:"diffAmount"`
	DiffSize    int      `json:"diffSize"`
	HasDiff     bool     `json:"hasDiff"`
	Fingerprint string   `json:"fingerprint"`
	Rectangles  []string `json:"rectangles,omitempty"`
}

func (o Options) differ() (*diffimage.ImageDiffer, error) {
	factory, err := diffimage.MarkupPolicyByName(o.Format)
	if err != nil {
		return nil, err
	}
	if o.MergeDistance > 1 && strings.ToLower(o.Format) != "pixel" {
		distance := o.MergeDistance
		factory = func() diffimage.MarkupPolicy {
			return diffimage.NewRectangleMarkupPolicy().WithMergeDistance(distance)
		}
	}
	return diffimage.NewImageDiffer().
		WithColorDistortion(o.ColorDistortion).
		WithDiffMarkupPolicy(factory), nil
}

func (s Scope) screenshot(img image.Image) (*diffimage.Screenshot, error) {
	ignored, err := ParseRegions(s.IgnoredAreas)
	if err != nil {
		return nil, err
	}
	restrict, err := ParseRegions(s.CoordsToCompare)
	if err != nil {
		return nil, err
	}
	return diffimage.NewScreenshot(img).WithIgnoredAreas(ignored...).WithCoordsToCompare(restrict...), nil
}

func ParseRegions(areas []string) ([]diffimage.Region, error) {
	regions := make([]diffimage.Region, 0, len(areas))
	for _, area := range areas {
		r, err := diffimage.ParseRegion(area)
		if err != nil {
			return nil, err
		}
		regions = append(regions, r)
	}
	return regions, nil
}

// Diff runs the comparison without rendering anything.
func Diff(expected image.Image, actual image.Image, o Options) (*diffimage.ImageDiff, error) {
	differ, err := o.differ()
	if err != nil {
		return nil, err
	}
	e, err := o.Expected.screenshot(expected)
	if err != nil {
		return nil, xerrors.Errorf("expected scope: %w", err)
	}
	a, err := o.Actual.screenshot(actual)
	if err != nil {
		return nil, xerrors.Errorf("actual scope: %w", err)
	}

	diff, err := differ.MakeDiff(e, a)
	if err != nil {
		return nil, xerrors.Errorf("failed to compare images: %w", err)
	}
	if o.DiffColor != "" {
		c, err := diffimage.ParseColor(o.DiffColor)
		if err != nil {
			return nil, err
		}
		diff.WithDiffColor(c)
	}
	if o.DiffSizeTrigger > 0 {
		diff.WithDiffSizeTrigger(o.DiffSizeTrigger)
	}
	return diff, nil
}

// Run compares the images and encodes the marked (or raw) canvas as PNG.
func Run(expected image.Image, actual image.Image, o Options) (*Result, error) {
	diff, err := Diff(expected, actual, o)
	if err != nil {
		return nil, err
	}

	var rendered image.Image
	if o.Raw {
		rendered, err = diff.DiffImage()
	} else {
		rendered, err = diff.MarkedImage()
	}
	if err != nil {
		return nil, xerrors.Errorf("failed to render diff: %w", err)
	}

	var buffer bytes.Buffer
	if err := png.Encode(&buffer, rendered); err != nil {
		return nil, xerrors.Errorf("failed to encode diff image: %w", err)
	}

	result := &Result{
		Image:       buffer.Bytes(),
		DiffAmount:  diff.DiffAmount(),
		DiffSize:    diff.DiffSize(),
		HasDiff:     diff.HasDiff(),
		Fingerprint: diff.Fingerprint(),
	}
	for _, r := range diff.Rectangles() {
		result.Rectangles = append(result.Rectangles, r.String())
	}
	return result, nil
}

// Key identifies a comparison by the encoded inputs and the options.
func Key(expected []byte, actual []byte, o Options) string {
	options, _ := json.Marshal(o)

	h := sha256.New()
	for _, part := range [][]byte{expected, actual, options} {
		fmt.Fprintf(h, "%d:", len(part))
		h.Write(part)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
