package render

import (
	"image"
	"image/color"
)

// HalfBlock is one text cell showing two vertically stacked pixels with the
// upper half block character: foreground is the top pixel, background the
// bottom one.
type HalfBlock struct {
	Top    color.RGBA
	Bottom color.RGBA
}

// UpperHalfBlock is the rune used to draw a HalfBlock
const UpperHalfBlock = '▀'

// HalfBlocks folds an image into rows of text cells, two pixel rows per cell.
// An odd last row is paired with black.
func HalfBlocks(img *image.RGBA) [][]HalfBlock {
	b := img.Bounds()
	textHeight := (b.Dy() + 1) / 2

	rows := make([][]HalfBlock, textHeight)
	for ty := 0; ty < textHeight; ty++ {
		row := make([]HalfBlock, b.Dx())
		y := b.Min.Y + ty*2
		for x := 0; x < b.Dx(); x++ {
			cell := HalfBlock{Top: img.RGBAAt(b.Min.X+x, y)}
			if y+1 < b.Max.Y {
				cell.Bottom = img.RGBAAt(b.Min.X+x, y+1)
			} else {
				cell.Bottom = color.RGBA{A: 0xFF}
			}
			row[x] = cell
		}
		rows[ty] = row
	}

	return rows
}
