package backend

import (
	"errors"
	"fmt"

	"github.com/valerio/go-emutools/emutools/display"
)

// ErrLocked is returned when a texture is locked twice or used while locked
var ErrLocked = errors.New("texture is locked")

// MemoryTexture is a streaming texture kept in main memory, for drivers that
// do not have GPU textures. Rows may be padded to pitch pixels.
type MemoryTexture struct {
	format        display.PixelFormat
	width, height int
	pitch         int
	pixels        []uint32
	locked        bool
	destroyed     bool
}

// NewMemoryTexture allocates a texture whose rows are padded to a multiple
// of align pixels.
func NewMemoryTexture(format display.PixelFormat, width, height, align int) (*MemoryTexture, error) {
	if !format.Valid() || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid texture %v %dx%d", format, width, height)
	}
	if align < 1 {
		align = 1
	}

	pitch := (width + align - 1) / align * align
	return &MemoryTexture{
		format: format,
		width:  width,
		height: height,
		pitch:  pitch,
		pixels: make([]uint32, pitch*height),
	}, nil
}

func (t *MemoryTexture) Format() display.PixelFormat { return t.format }
func (t *MemoryTexture) Size() (int, int)            { return t.width, t.height }

// Pitch returns the row length in pixels
func (t *MemoryTexture) Pitch() int { return t.pitch }

// Pixels returns the backing store, padding included
func (t *MemoryTexture) Pixels() []uint32 { return t.pixels }

func (t *MemoryTexture) Lock() ([]uint32, int, error) {
	if t.locked {
		return nil, 0, ErrLocked
	}
	t.locked = true
	return t.pixels, t.pitch, nil
}

func (t *MemoryTexture) Unlock() { t.locked = false }

func (t *MemoryTexture) Update(pixels []uint32, pitch int) error {
	if t.locked {
		return fmt.Errorf("update: %w", ErrLocked)
	}
	if pitch < t.width || len(pixels) < pitch*(t.height-1)+t.width {
		return fmt.Errorf("update needs %dx%d pixels, got %d with pitch %d", t.width, t.height, len(pixels), pitch)
	}
	for y := 0; y < t.height; y++ {
		copy(t.pixels[y*t.pitch:y*t.pitch+t.width], pixels[y*pitch:y*pitch+t.width])
	}
	return nil
}

func (t *MemoryTexture) Destroy() { t.destroyed = true }

// Locked reports whether the texture is currently locked
func (t *MemoryTexture) Locked() bool { return t.locked }

// Destroyed reports whether Destroy was called
func (t *MemoryTexture) Destroyed() bool { return t.destroyed }

// Contents returns a copy of the texture without row padding
func (t *MemoryTexture) Contents() []uint32 {
	out := make([]uint32, t.width*t.height)
	for y := 0; y < t.height; y++ {
		copy(out[y*t.width:(y+1)*t.width], t.pixels[y*t.pitch:y*t.pitch+t.width])
	}
	return out
}
