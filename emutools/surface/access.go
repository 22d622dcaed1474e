package surface

import (
	"fmt"

	"github.com/valerio/go-emutools/emutools/backend"
	"github.com/valerio/go-emutools/emutools/display"
)

// Frame is the pixel buffer handed out for one acquire/commit cycle. Rows are
// Width pixels of data followed by Tail pixels of padding.
type Frame struct {
	Pixels []uint32
	Width  int
	Height int
	Tail   int
}

// Pitch returns the distance between two rows in pixels.
func (f Frame) Pitch() int {
	return f.Width + f.Tail
}

// Row returns the visible pixels of row y.
func (f Frame) Row(y int) []uint32 {
	start := y * f.Pitch()
	return f.Pixels[start : start+f.Width]
}

// Set writes the pixel at x, y.
func (f Frame) Set(x, y int, color uint32) {
	f.Pixels[y*f.Pitch()+x] = color
}

// At returns the pixel at x, y.
func (f Frame) At(x, y int) uint32 {
	return f.Pixels[y*f.Pitch()+x]
}

// Fill writes color to every visible pixel.
func (f Frame) Fill(color uint32) {
	for y := 0; y < f.Height; y++ {
		row := f.Row(y)
		for x := range row {
			row[x] = color
		}
	}
}

// PixelAccess is one discipline for reaching the texture pixels. Exactly one
// Acquire may be outstanding; Commit ends it and uploads the frame.
type PixelAccess interface {
	Acquire() (Frame, error)
	Commit() error
	// Outstanding reports whether an Acquire has not been committed yet.
	Outstanding() bool
	Mode() display.AccessMode
}

// LockedAccess hands out the texture's own backing store. The previous frame
// is not preserved: every pixel must be written before Commit.
type LockedAccess struct {
	texture       backend.Texture
	width, height int
	locked        bool
}

// NewLockedAccess creates a locked access for texture.
func NewLockedAccess(texture backend.Texture) *LockedAccess {
	w, h := texture.Size()
	return &LockedAccess{texture: texture, width: w, height: h}
}

// Acquire locks the texture and returns its pixels. The pitch may be wider
// than the texture.
func (l *LockedAccess) Acquire() (Frame, error) {
	if l.locked {
		panic("surface: pixel buffer acquired twice without commit")
	}

	pixels, pitch, err := l.texture.Lock()
	if err != nil {
		return Frame{}, fmt.Errorf("failed to lock texture: %w", err)
	}
	l.locked = true

	return Frame{Pixels: pixels, Width: l.width, Height: l.height, Tail: pitch - l.width}, nil
}

func (l *LockedAccess) Commit() error {
	if !l.locked {
		panic("surface: commit without acquire")
	}
	l.texture.Unlock()
	l.locked = false
	return nil
}

func (l *LockedAccess) Outstanding() bool        { return l.locked }
func (l *LockedAccess) Mode() display.AccessMode { return display.AccessLocked }

// ShadowAccess hands out a buffer owned by the surface that survives between
// frames, so callers may redraw only what changed. Commit uploads it whole.
type ShadowAccess struct {
	texture       backend.Texture
	width, height int
	buffer        []uint32
	acquired      bool
}

// NewShadowAccess creates a shadow access with a buffer the size of texture.
func NewShadowAccess(texture backend.Texture) *ShadowAccess {
	w, h := texture.Size()
	return &ShadowAccess{
		texture: texture,
		width:   w,
		height:  h,
		buffer:  make([]uint32, w*h),
	}
}

// Acquire returns the shadow buffer as it was left by the last frame.
func (s *ShadowAccess) Acquire() (Frame, error) {
	if s.acquired {
		panic("surface: pixel buffer acquired twice without commit")
	}
	s.acquired = true
	return s.frame(), nil
}

func (s *ShadowAccess) Commit() error {
	if !s.acquired {
		panic("surface: commit without acquire")
	}
	s.acquired = false

	if err := s.texture.Update(s.buffer, s.width); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}
	return nil
}

func (s *ShadowAccess) Outstanding() bool        { return s.acquired }
func (s *ShadowAccess) Mode() display.AccessMode { return display.AccessShadow }

// Fill overwrites the whole shadow buffer.
func (s *ShadowAccess) Fill(color uint32) {
	s.frame().Fill(color)
}

func (s *ShadowAccess) frame() Frame {
	return Frame{Pixels: s.buffer, Width: s.width, Height: s.height}
}
