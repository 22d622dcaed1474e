// Package pattern draws palette-indexed test pictures, used to check the
// display pipeline without an emulator core.
package pattern

import (
	"fmt"
	"strings"

	"github.com/valerio/go-emutools/emutools/display"
	"github.com/valerio/go-emutools/emutools/surface"
)

// Kind selects a test picture
type Kind int

const (
	Checkerboard Kind = iota
	Bars
	Stripes
	Diagonal
)

const (
	// TileSize is the edge of checkerboard squares and diagonal bands
	TileSize = 8
	// StripeWidth is the width of one vertical stripe
	StripeWidth = 4
	// AnimationFrames is the number of frames between animation steps
	AnimationFrames = 30
	// StripeSpeed and DiagonalSpeed are the pixels moved per animation step
	StripeSpeed   = 2
	DiagonalSpeed = 4
)

var names = []string{"checkerboard", "bars", "stripes", "diagonal"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(names) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return names[k]
}

// Kinds returns every pattern in cycling order.
func Kinds() []Kind {
	return []Kind{Checkerboard, Bars, Stripes, Diagonal}
}

// Next returns the pattern after k, wrapping around.
func (k Kind) Next() Kind {
	return Kind((int(k) + 1) % len(names))
}

// Parse resolves a pattern by name, case-insensitively.
func Parse(name string) (Kind, error) {
	for i, n := range names {
		if strings.EqualFold(n, name) {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("unknown pattern %q, expected one of %s", name, strings.Join(names, ", "))
}

// Step converts a frame counter into an animation step.
func Step(frame int) int {
	return frame / AnimationFrames
}

// Index returns the palette index of pixel (x, y) in a picture width pixels
// wide, at the given animation step, for a palette of colors entries.
func Index(k Kind, x, y, width, step, colors int) int {
	if colors < 2 {
		return 0
	}

	switch k {
	case Checkerboard:
		if (x/TileSize+y/TileSize+step)%2 == 0 {
			return 1
		}
		return 0
	case Bars:
		return (x*colors/width + step) % colors
	case Stripes:
		if ((x+step*StripeSpeed)/StripeWidth)%2 == 0 {
			return 1
		}
		return colors - 1
	case Diagonal:
		return ((x + y + step*DiagonalSpeed) / TileSize) % colors
	}
	return 0
}

// Draw writes every visible pixel of f, leaving the row tails alone.
func Draw(f surface.Frame, palette display.Palette, k Kind, step int) {
	for y := 0; y < f.Height; y++ {
		row := f.Row(y)
		for x := range row {
			row[x] = palette[Index(k, x, y, f.Width, step, len(palette))]
		}
	}
}
