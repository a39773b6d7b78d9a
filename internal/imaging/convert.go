package imaging

import (
	"image"

	"golang.org/x/image/draw"
)

// ToRGBA converts any image to *image.RGBA with its origin at (0, 0).
//
// Images that are already RGBA at the origin are returned as is.
func ToRGBA(src image.Image) *image.RGBA {
	if rgba, ok := src.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
	return dst
}

// Downscale shrinks src so that neither side exceeds maxDim, keeping the
// aspect ratio. Images already within bounds, or maxDim <= 0, are returned
// unchanged.
//
// The Catmull-Rom kernel is used for high-quality scaling.
func Downscale(src image.Image, maxDim int) image.Image {
	b := src.Bounds()
	if maxDim <= 0 || (b.Dx() <= maxDim && b.Dy() <= maxDim) {
		return src
	}

	w, h := FitWithin(b.Dx(), b.Dy(), maxDim, maxDim)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
