package render

import (
	"image"

	"github.com/valerio/go-emutools/emutools/display"
)

// TextureImage converts native pixels laid out with pitch into an RGBA image.
func TextureImage(pixels []uint32, pitch, width, height int, format display.PixelFormat) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		row := pixels[y*pitch : y*pitch+width]
		dst := img.Pix[y*img.Stride:]
		for x, v := range row {
			r, g, b := format.RGB(v)
			i := x * display.BytesPerPixel
			dst[i] = r
			dst[i+1] = g
			dst[i+2] = b
			dst[i+3] = display.FullAlpha
		}
	}

	return img
}
