package render

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"github.com/valerio/go-emutools/emutools/display"
)

var black = image.NewUniform(color.RGBA{display.BlackLevel, display.BlackLevel, display.BlackLevel, display.FullAlpha})

// Scaler returns the interpolator matching a render scale quality.
func Scaler(q display.ScaleQuality) draw.Scaler {
	q.MustBeValid()

	switch q {
	case display.QualityLinear:
		return draw.ApproxBiLinear
	case display.QualityBest:
		return draw.CatmullRom
	default:
		return draw.NearestNeighbor
	}
}

// Compose clears dst to black and draws src scaled into viewport.
func Compose(dst *image.RGBA, src image.Image, viewport display.Rect, q display.ScaleQuality) {
	draw.Draw(dst, dst.Bounds(), black, image.Point{}, draw.Src)
	if viewport.Empty() {
		return
	}

	dr := image.Rect(viewport.X, viewport.Y, viewport.X+viewport.W, viewport.Y+viewport.H)
	Scaler(q).Scale(dst, dr, src, src.Bounds(), draw.Src, nil)
}
