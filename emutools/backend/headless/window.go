package headless

import (
	"errors"
	"fmt"
	"image"
	"log/slog"

	"github.com/valerio/go-emutools/emutools/backend"
	"github.com/valerio/go-emutools/emutools/display"
	"github.com/valerio/go-emutools/emutools/render"
)

// ScrambleValue fills locked textures when Options.ScrambleLocks is set
const ScrambleValue uint32 = 0xDEADBEEF

// Window is an in-memory window
type Window struct {
	driver        *Driver
	id            uint32
	title         string
	width, height int
	resizable     bool
	fullscreen    bool
	renderer      *Renderer
	destroyed     bool
}

func (w *Window) ID() uint32            { return w.id }
func (w *Window) Title() string         { return w.title }
func (w *Window) SetTitle(title string) { w.title = title }
func (w *Window) Fullscreen() bool      { return w.fullscreen }

func (w *Window) SetFullscreen(on bool) error {
	w.fullscreen = on
	width, height := w.Size()
	w.driver.Push(backend.Event{Kind: backend.EventResize, WindowID: w.id, Width: width, Height: height})
	return nil
}

func (w *Window) Size() (int, int) {
	if w.fullscreen {
		return w.driver.opts.DesktopWidth, w.driver.opts.DesktopHeight
	}
	return w.width, w.height
}

// Resize simulates the user dragging the window border. Non-resizable
// windows ignore it.
func (w *Window) Resize(width, height int) {
	if !w.resizable {
		return
	}
	w.width, w.height = width, height
	w.driver.Push(backend.Event{Kind: backend.EventResize, WindowID: w.id, Width: width, Height: height})
}

// Renderer returns the renderer created for this window, if any
func (w *Window) Renderer() *Renderer { return w.renderer }

// Destroyed reports whether Destroy was called
func (w *Window) Destroyed() bool { return w.destroyed }

func (w *Window) CreateRenderer(quality display.ScaleQuality) (backend.Renderer, error) {
	quality.MustBeValid()
	if w.driver.opts.FailAt == FailRenderer {
		return nil, fmt.Errorf("headless renderer: %w", ErrInjected)
	}
	if w.renderer != nil && !w.renderer.destroyed {
		return nil, errors.New("window already has a renderer")
	}
	w.renderer = &Renderer{window: w, quality: quality}
	return w.renderer, nil
}

func (w *Window) Destroy() { w.destroyed = true }

// Renderer composes presented textures into window-sized images
type Renderer struct {
	window       *Window
	quality      display.ScaleQuality
	textures     []*Texture
	frames       int
	last         *image.RGBA
	lastTexture  []uint32
	lastViewport display.Rect
	destroyed    bool
}

func (r *Renderer) CreateTexture(format display.PixelFormat, width, height int) (backend.Texture, error) {
	if r.window.driver.opts.FailAt == FailTexture {
		return nil, fmt.Errorf("headless texture: %w", ErrInjected)
	}
	mem, err := backend.NewMemoryTexture(format, width, height, r.window.driver.opts.RowAlignment)
	if err != nil {
		return nil, err
	}
	t := &Texture{MemoryTexture: mem, scramble: r.window.driver.opts.ScrambleLocks}
	r.textures = append(r.textures, t)
	return t, nil
}

func (r *Renderer) Present(texture backend.Texture, dst display.Rect) error {
	t, ok := texture.(*Texture)
	if !ok {
		return fmt.Errorf("texture %T does not belong to the headless driver", texture)
	}
	if t.Locked() {
		return fmt.Errorf("present: %w", backend.ErrLocked)
	}

	ww, wh := r.window.Size()
	frame := image.NewRGBA(image.Rect(0, 0, ww, wh))
	tw, th := t.Size()
	src := render.TextureImage(t.Pixels(), t.Pitch(), tw, th, t.Format())
	render.Compose(frame, src, dst, r.quality)

	r.frames++
	r.last = frame
	r.lastTexture = t.Contents()
	r.lastViewport = dst

	if snap := r.window.driver.opts.Snapshots; snap.Due(r.frames) {
		r.saveSnapshot(snap)
	}
	return nil
}

func (r *Renderer) Destroy() { r.destroyed = true }

// Frames returns how many frames were presented
func (r *Renderer) Frames() int { return r.frames }

// LastFrame returns the last presented window image
func (r *Renderer) LastFrame() *image.RGBA { return r.last }

// LastTexture returns the texture contents (without row padding) at the last
// present.
func (r *Renderer) LastTexture() []uint32 { return r.lastTexture }

// LastViewport returns the destination rectangle of the last present
func (r *Renderer) LastViewport() display.Rect { return r.lastViewport }

// Quality returns the scale quality the renderer was created with
func (r *Renderer) Quality() display.ScaleQuality { return r.quality }

// saveSnapshot saves a PNG snapshot of the last presented frame
func (r *Renderer) saveSnapshot(snap SnapshotConfig) {
	baseName := fmt.Sprintf("%s_frame_%d", snap.Name, r.frames)
	if _, err := render.SavePNG(r.last, baseName, snap.Directory); err != nil {
		slog.Error("Failed to save PNG snapshot", "frame", r.frames, "error", err)
	}
}

// Texture is a memory texture with padded rows that can hand out
// scrambled memory on Lock
type Texture struct {
	*backend.MemoryTexture
	scramble bool
}

func (t *Texture) Lock() ([]uint32, int, error) {
	if t.scramble && !t.Locked() {
		pixels := t.Pixels()
		for i := range pixels {
			pixels[i] = ScrambleValue
		}
	}
	return t.MemoryTexture.Lock()
}
