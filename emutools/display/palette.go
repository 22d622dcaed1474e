package display

import "fmt"

// Palette maps emulator colour indices to native pixel values.
type Palette []uint32

// NewPalette encodes a sequence of RGB byte triples into the given format.
// The result has exactly len(rgb)/3 entries, in input order.
func NewPalette(format PixelFormat, rgb []byte) (Palette, error) {
	if !format.Valid() {
		return nil, fmt.Errorf("unsupported pixel format %v", format)
	}
	if len(rgb)%3 != 0 {
		return nil, fmt.Errorf("colour data must be RGB triples, got %d bytes", len(rgb))
	}

	palette := make(Palette, len(rgb)/3)
	for i := range palette {
		palette[i] = format.MapRGB(rgb[i*3], rgb[i*3+1], rgb[i*3+2])
	}
	return palette, nil
}
