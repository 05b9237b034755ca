package image

import (
	"image"
	"image/color"
	"image/draw"
)

func createTestImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
	return img
}

func fillRect(img draw.Image, rect image.Rectangle, c color.Color) {
	draw.Draw(img, rect, &image.Uniform{C: c}, image.Point{}, draw.Src)
}

func pixelsEqual(a image.Image, b image.Image) bool {
	if a.Bounds() != b.Bounds() {
		return false
	}
	bounds := a.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if !sameColor(a.At(x, y), b.At(x, y)) {
				return false
			}
		}
	}
	return true
}

// fixturePair returns two 100x100 white images where the second one has a
// black block with exactly 623 pixels.
func fixturePair() (*image.RGBA, *image.RGBA) {
	a := createTestImage(100, 100, color.White)
	b := createTestImage(100, 100, color.White)
	fillRect(b, image.Rect(40, 40, 65, 65), color.Black)
	b.Set(40, 40, color.White)
	b.Set(64, 64, color.White)
	return a, b
}
