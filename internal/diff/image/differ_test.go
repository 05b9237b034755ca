package image

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/google/go-cmp/cmp"
)

var policies = []struct {
	name    string
	factory MarkupPolicyFactory
}{
	{"Pixel", PixelMarkup},
	{"Rectangle", RectangleMarkup},
}

func TestImageDiffer_MakeDiff(t *testing.T) {
	for _, policy := range policies {
		factory := policy.factory
		t.Run(policy.name, func(t *testing.T) {
			differ := NewImageDiffer().WithColorDistortion(10).WithDiffMarkupPolicy(factory)
			a, b := fixturePair()

			t.Run("SameImage", func(t *testing.T) {
				diff, err := differ.MakeImageDiff(a, a)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if diff.HasDiff() {
					t.Error("Expected no difference for the same image")
				}
				if diff.DiffAmount() != 0.0 {
					t.Errorf("Expected DiffAmount to be 0.0, got %f", diff.DiffAmount())
				}
			})

			t.Run("DiffSizeTrigger", func(t *testing.T) {
				diff, err := differ.MakeImageDiff(a, b)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if diff.DiffSize() != 623 {
					t.Fatalf("Expected 623 differing pixels, got %d", diff.DiffSize())
				}
				if diff.WithDiffSizeTrigger(624).HasDiff() {
					t.Error("Expected no difference with trigger 624")
				}
				if !diff.WithDiffSizeTrigger(623).HasDiff() {
					t.Error("Expected a difference with trigger 623")
				}
				if diff.DiffSize() != 623 {
					t.Errorf("Expected trigger changes not to touch the points, got %d", diff.DiffSize())
				}
			})

			t.Run("ColorDistortion", func(t *testing.T) {
				c := createTestImage(10, 10, color.RGBA{R: 100, G: 100, B: 100, A: 255})
				d := createTestImage(10, 10, color.RGBA{R: 100, G: 100, B: 100, A: 255})
				d.Set(3, 3, color.RGBA{R: 108, G: 100, B: 100, A: 255})

				within, err := NewImageDiffer().WithColorDistortion(8).WithDiffMarkupPolicy(factory).MakeImageDiff(c, d)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if within.HasDiff() {
					t.Error("Expected no difference at distortion 8")
				}

				beyond, err := NewImageDiffer().WithColorDistortion(7).WithDiffMarkupPolicy(factory).MakeImageDiff(c, d)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if diff := cmp.Diff([]image.Point{{3, 3}}, beyond.DiffPoints()); diff != "" {
					t.Errorf("(-want +got):\n%s", diff)
				}
			})

			t.Run("IgnoredOnBoth", func(t *testing.T) {
				ignored := MustRegion(40, 40, 25, 25)
				diff, err := differ.MakeDiff(
					NewScreenshot(a).WithIgnoredAreas(ignored),
					NewScreenshot(b).WithIgnoredAreas(ignored),
				)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if diff.HasDiff() {
					t.Errorf("Expected no difference, got %d points", diff.DiffSize())
				}
			})

			t.Run("IgnoredOnOneSide", func(t *testing.T) {
				diff, err := differ.MakeDiff(
					NewScreenshot(a).WithIgnoredAreas(NewPoint(50, 50)),
					NewScreenshot(b).WithIgnoredAreas(NewPoint(60, 60)),
				)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if diff.DiffSize() != 621 {
					t.Errorf("Expected 621 differing pixels, got %d", diff.DiffSize())
				}
			})

			t.Run("RestrictOutside", func(t *testing.T) {
				restrict := MustRegion(0, 0, 30, 30)
				diff, err := differ.MakeDiff(
					NewScreenshot(a).WithCoordsToCompare(restrict),
					NewScreenshot(b).WithCoordsToCompare(restrict),
				)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if diff.HasDiff() {
					t.Errorf("Expected no difference, got %d points", diff.DiffSize())
				}
			})

			t.Run("RestrictInside", func(t *testing.T) {
				restrict := MustRegion(50, 50, 5, 5)
				diff, err := differ.MakeDiff(
					NewScreenshot(a).WithCoordsToCompare(restrict),
					NewScreenshot(b).WithCoordsToCompare(restrict),
				)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				if diff.DiffSize() != 25 {
					t.Errorf("Expected 25 differing pixels, got %d", diff.DiffSize())
				}
			})

			t.Run("IgnoreInsideRestrict", func(t *testing.T) {
				restrict := MustRegion(50, 50, 100, 100)
				diff, err := differ.MakeDiff(
					NewScreenshot(a).WithCoordsToCompare(restrict).WithIgnoredAreas(NewPoint(60, 60)),
					NewScreenshot(b).WithCoordsToCompare(restrict).WithIgnoredAreas(NewPoint(55, 55)),
				)
				if err != nil {
					t.Fatalf("Unexpected error: %v", err)
				}
				// 15x15 block inside the restricted area, one corner restored, two ignored.
				if diff.DiffSize() != 15*15-1-2 {
					t.Errorf("Expected %d differing pixels, got %d", 15*15-1-2, diff.DiffSize())
				}
				for _, p := range diff.DiffPoints() {
					if p.X < 50 || p.Y < 50 {
						t.Fatalf("Unexpected point outside the restricted area: %v", p)
					}
				}
			})
		})
	}
}

func TestImageDiffer_UnequalSizes(t *testing.T) {
	t.Run("ExtraAreaDiffers", func(t *testing.T) {
		a := createTestImage(10, 10, color.White)
		b := createTestImage(12, 10, color.White)

		diff, err := NewImageDiffer().MakeImageDiff(a, b)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff.DiffSize() != 20 {
			t.Errorf("Expected 20 differing pixels, got %d", diff.DiffSize())
		}
		if diff := cmp.Diff([]Region{MustRegion(10, 0, 2, 10)}, diff.Rectangles()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("AbsentOnBothSides", func(t *testing.T) {
		a := createTestImage(10, 5, color.White)
		b := createTestImage(5, 10, color.White)

		diff, err := NewImageDiffer().MakeImageDiff(a, b)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		img, err := diff.DiffImage()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff(image.Rect(0, 0, 10, 10), img.Bounds()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
		if diff.DiffSize() != 50 {
			t.Errorf("Expected 50 differing pixels, got %d", diff.DiffSize())
		}
	})

	t.Run("ExtraAreaIgnored", func(t *testing.T) {
		a := createTestImage(10, 10, color.White)
		b := createTestImage(12, 10, color.White)

		diff, err := NewImageDiffer().MakeDiff(
			NewScreenshot(a),
			NewScreenshot(b).WithIgnoredAreas(MustRegion(10, 0, 2, 10)),
		)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff.HasDiff() {
			t.Errorf("Expected no difference, got %d points", diff.DiffSize())
		}
	})
}

func TestImageDiffer_Canvas(t *testing.T) {
	t.Run("ActualPixelFormat", func(t *testing.T) {
		a := createTestImage(4, 4, color.White)
		b := image.NewNRGBA(image.Rect(0, 0, 6, 3))

		diff, err := NewImageDiffer().MakeImageDiff(a, b)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		img, err := diff.DiffImage()
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if _, ok := img.(*image.NRGBA); !ok {
			t.Errorf("Expected *image.NRGBA, got %T", img)
		}
		if diff := cmp.Diff(image.Rect(0, 0, 6, 4), img.Bounds()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("NonZeroOrigin", func(t *testing.T) {
		a := createTestImage(4, 4, color.White)
		b := image.NewRGBA(image.Rect(100, 100, 104, 104))
		fillRect(b, b.Bounds(), color.White)
		b.Set(101, 102, color.Black)

		diff, err := NewImageDiffer().MakeImageDiff(a, b)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff := cmp.Diff([]image.Point{{1, 2}}, diff.DiffPoints()); diff != "" {
			t.Errorf("(-want +got):\n%s", diff)
		}
	})

	t.Run("ZeroSized", func(t *testing.T) {
		empty := image.NewRGBA(image.Rectangle{})

		diff, err := NewImageDiffer().MakeImageDiff(empty, empty)
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if diff.HasDiff() {
			t.Error("Expected no difference for zero-sized images")
		}
		if _, err := diff.MarkedImage(); err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
	})
}

func TestImageDiffer_InvalidArguments(t *testing.T) {
	img := createTestImage(1, 1, color.White)

	t.Run("NilImage", func(t *testing.T) {
		if _, err := NewImageDiffer().MakeImageDiff(nil, img); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("NilScreenshot", func(t *testing.T) {
		if _, err := NewImageDiffer().MakeDiff(NewScreenshot(img), nil); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("NegativeDistortion", func(t *testing.T) {
		if _, err := NewImageDiffer().WithColorDistortion(-1).MakeImageDiff(img, img); !errors.Is(err, ErrInvalidArgument) {
			t.Errorf("Expected ErrInvalidArgument, got %v", err)
		}
	})
}

func TestImageDiffer_PolicyEquivalence(t *testing.T) {
	a, b := fixturePair()
	b.Set(2, 2, color.Black)

	pixel, err := NewImageDiffer().WithDiffMarkupPolicy(PixelMarkup).MakeImageDiff(a, b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	rectangle, err := NewImageDiffer().WithDiffMarkupPolicy(RectangleMarkup).MakeImageDiff(a, b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if pixel.HasDiff() != rectangle.HasDiff() {
		t.Error("Expected both policies to agree on HasDiff")
	}
	if diff := cmp.Diff(pixel.DiffPoints(), rectangle.DiffPoints()); diff != "" {
		t.Errorf("(-pixel +rectangle):\n%s", diff)
	}

	pixelMarked, _ := pixel.MarkedImage()
	rectangleMarked, _ := rectangle.MarkedImage()
	if pixelsEqual(pixelMarked, rectangleMarked) {
		t.Error("Expected the rendered artifacts to differ in style")
	}
	if pixel.Equal(rectangle) {
		t.Error("Expected diffs of different policies not to be equal")
	}
}

func TestImageDiff_Equal(t *testing.T) {
	a, b := fixturePair()
	differ := NewImageDiffer().WithDiffMarkupPolicy(PixelMarkup)

	first, err := differ.MakeImageDiff(a, b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	second, err := differ.MakeImageDiff(a, b)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if !first.Equal(second) {
		t.Error("Expected diffs of the same inputs to be equal")
	}
	if first.Fingerprint() != second.Fingerprint() {
		t.Error("Expected equal diffs to share a fingerprint")
	}

	second.WithDiffColor(color.RGBA{G: 255, A: 255})
	if first.Equal(second) {
		t.Error("Expected diffs with different colors not to be equal")
	}
	if first.Fingerprint() == second.Fingerprint() {
		t.Error("Expected different fingerprints after a color change")
	}

	second.WithDiffColor(DefaultDiffColor).WithDiffSizeTrigger(2)
	if first.Equal(second) {
		t.Error("Expected diffs with different triggers not to be equal")
	}
}

func TestEmptyDiff(t *testing.T) {
	diff := EmptyDiff()
	if diff.HasDiff() {
		t.Error("Expected the empty diff to have no difference")
	}
	if _, err := diff.MarkedImage(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("Expected ErrNotInitialized, got %v", err)
	}
	if diff.DiffAmount() != 0.0 {
		t.Errorf("Expected DiffAmount to be 0.0, got %f", diff.DiffAmount())
	}
}

func BenchmarkImageDiffer_MakeDiff_Small(b *testing.B) {
	img1 := createTestImage(1920, 1080, color.White)
	img2 := createTestImage(1920, 1080, color.White)
	fillRect(img2, image.Rect(100, 100, 300, 300), color.Black)
	differ := NewImageDiffer()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := differ.MakeImageDiff(img1, img2); err != nil {
			b.Fatal(err)
		}
	}
}
