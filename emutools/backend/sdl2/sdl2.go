//go:build sdl2

// Package sdl2 implements the display backend with SDL2 windows, accelerated
// renderers and streaming textures.
// Note: building this requires SDL2 development libraries installed.
// Default builds skip this and use a stub, see build tags (sdl2)
package sdl2

import (
	"errors"
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/valerio/go-emutools/emutools/backend"
	"github.com/valerio/go-emutools/emutools/display"
	"github.com/veandco/go-sdl2/sdl"
)

var pixelFormats = map[display.PixelFormat]uint32{
	display.FormatARGB8888:    uint32(sdl.PIXELFORMAT_ARGB8888),
	display.FormatRGBA8888:    uint32(sdl.PIXELFORMAT_RGBA8888),
	display.FormatABGR8888:    uint32(sdl.PIXELFORMAT_ABGR8888),
	display.FormatBGRA8888:    uint32(sdl.PIXELFORMAT_BGRA8888),
	display.FormatRGB888:      uint32(sdl.PIXELFORMAT_RGB888),
	display.FormatBGR888:      uint32(sdl.PIXELFORMAT_BGR888),
	display.FormatARGB2101010: uint32(sdl.PIXELFORMAT_ARGB2101010),
}

var messageFlags = map[backend.MessageKind]uint32{
	backend.MessageInfo:    sdl.MESSAGEBOX_INFORMATION,
	backend.MessageWarning: sdl.MESSAGEBOX_WARNING,
	backend.MessageError:   sdl.MESSAGEBOX_ERROR,
}

// Driver implements backend.Driver with SDL2
type Driver struct {
	initialized bool
}

// New creates an SDL2 driver
func New() *Driver {
	return &Driver{}
}

func (d *Driver) Init() error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}
	d.initialized = true
	slog.Info("SDL2 video initialized")
	return nil
}

func (d *Driver) CreateWindow(config backend.WindowConfig) (backend.Window, error) {
	flags := uint32(sdl.WINDOW_SHOWN)
	if config.Resizable {
		flags |= sdl.WINDOW_RESIZABLE
	}
	if config.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		int32(config.Width),
		int32(config.Height),
		flags,
	)
	if err != nil {
		return nil, err
	}

	id, err := window.GetID()
	if err != nil {
		window.Destroy()
		return nil, err
	}

	return &Window{window: window, id: id, title: config.Title, fullscreen: config.Fullscreen}, nil
}

func (d *Driver) PrefPath(organization, app string) (string, error) {
	path := sdl.GetPrefPath(organization, app)
	if path == "" {
		return "", fmt.Errorf("no preferences path for %s/%s: %w", organization, app, sdl.GetError())
	}
	return path, nil
}

func (d *Driver) PollEvents() []backend.Event {
	var events []backend.Event

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch e := ev.(type) {
		case *sdl.QuitEvent:
			events = append(events, backend.Event{Kind: backend.EventQuit})
		case *sdl.WindowEvent:
			switch e.Event {
			case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
				events = append(events, backend.Event{
					Kind:     backend.EventResize,
					WindowID: e.WindowID,
					Width:    int(e.Data1),
					Height:   int(e.Data2),
				})
			case sdl.WINDOWEVENT_EXPOSED:
				events = append(events, backend.Event{Kind: backend.EventExpose, WindowID: e.WindowID})
			case sdl.WINDOWEVENT_CLOSE:
				events = append(events, backend.Event{Kind: backend.EventQuit, WindowID: e.WindowID})
			}
		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Repeat == 0 {
				events = append(events, backend.Event{
					Kind:     backend.EventKey,
					WindowID: e.WindowID,
					Key:      sdl.GetKeyName(e.Keysym.Sym),
				})
			}
		}
	}

	return events
}

func (d *Driver) ShowMessage(kind backend.MessageKind, title, text string, parent backend.Window) error {
	var window *sdl.Window
	if w, ok := parent.(*Window); ok && w != nil {
		window = w.window
	}
	return sdl.ShowSimpleMessageBox(messageFlags[kind], title, text, window)
}

func (d *Driver) Quit() {
	if !d.initialized {
		return
	}
	d.initialized = false
	sdl.Quit()
	slog.Debug("SDL2 video shut down")
}

// Window wraps an SDL window
type Window struct {
	window     *sdl.Window
	id         uint32
	title      string
	fullscreen bool
	renderer   *Renderer
}

func (w *Window) ID() uint32       { return w.id }
func (w *Window) Title() string    { return w.title }
func (w *Window) Fullscreen() bool { return w.fullscreen }

func (w *Window) SetTitle(title string) {
	w.title = title
	w.window.SetTitle(title)
}

func (w *Window) SetFullscreen(on bool) error {
	var flags uint32
	if on {
		flags = sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	if err := w.window.SetFullscreen(flags); err != nil {
		return err
	}
	w.fullscreen = on
	return nil
}

// Size returns the drawable size in pixels, which differs from the window
// size on high-DPI displays.
func (w *Window) Size() (int, int) {
	if w.renderer != nil {
		if rw, rh, err := w.renderer.renderer.GetOutputSize(); err == nil {
			return int(rw), int(rh)
		}
	}
	ww, wh := w.window.GetSize()
	return int(ww), int(wh)
}

// CreateRenderer creates an accelerated renderer. The scale quality hint
// must be set before the renderer's textures are created.
func (w *Window) CreateRenderer(quality display.ScaleQuality) (backend.Renderer, error) {
	quality.MustBeValid()
	if !sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, quality.Hint()) {
		slog.Warn("Render scale quality hint not applied", "quality", quality)
	}

	renderer, err := sdl.CreateRenderer(w.window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, err
	}
	w.renderer = &Renderer{renderer: renderer}
	return w.renderer, nil
}

func (w *Window) Destroy() {
	if err := w.window.Destroy(); err != nil {
		slog.Warn("Failed to destroy window", "error", err)
	}
}

// Renderer wraps an SDL renderer
type Renderer struct {
	renderer *sdl.Renderer
}

func (r *Renderer) CreateTexture(format display.PixelFormat, width, height int) (backend.Texture, error) {
	sdlFormat, ok := pixelFormats[format]
	if !ok {
		return nil, fmt.Errorf("unsupported pixel format %v", format)
	}

	texture, err := r.renderer.CreateTexture(sdlFormat, sdl.TEXTUREACCESS_STREAMING, int32(width), int32(height))
	if err != nil {
		return nil, err
	}
	return &Texture{texture: texture, format: format, width: width, height: height}, nil
}

func (r *Renderer) Present(texture backend.Texture, dst display.Rect) error {
	t, ok := texture.(*Texture)
	if !ok {
		return fmt.Errorf("texture %T does not belong to the SDL2 driver", texture)
	}

	if err := r.renderer.SetDrawColor(display.BlackLevel, display.BlackLevel, display.BlackLevel, display.FullAlpha); err != nil {
		return err
	}
	if err := r.renderer.Clear(); err != nil {
		return err
	}
	rect := &sdl.Rect{X: int32(dst.X), Y: int32(dst.Y), W: int32(dst.W), H: int32(dst.H)}
	if err := r.renderer.Copy(t.texture, nil, rect); err != nil {
		return err
	}
	r.renderer.Present()
	return nil
}

func (r *Renderer) Destroy() {
	if err := r.renderer.Destroy(); err != nil {
		slog.Warn("Failed to destroy renderer", "error", err)
	}
}

// Texture wraps a streaming SDL texture
type Texture struct {
	texture       *sdl.Texture
	format        display.PixelFormat
	width, height int
	locked        bool
}

func (t *Texture) Format() display.PixelFormat { return t.format }
func (t *Texture) Size() (int, int)            { return t.width, t.height }

// Lock maps the texture memory. The pitch SDL reports is in bytes; the
// returned pitch is in pixels.
func (t *Texture) Lock() ([]uint32, int, error) {
	if t.locked {
		return nil, 0, backend.ErrLocked
	}

	bytes, pitch, err := t.texture.Lock(nil)
	if err != nil {
		return nil, 0, err
	}
	if len(bytes) == 0 || pitch%display.BytesPerPixel != 0 {
		t.texture.Unlock()
		return nil, 0, errors.New("texture memory is not 32-bit aligned")
	}

	t.locked = true
	pixels := unsafe.Slice((*uint32)(unsafe.Pointer(&bytes[0])), len(bytes)/display.BytesPerPixel)
	return pixels, pitch / display.BytesPerPixel, nil
}

func (t *Texture) Unlock() {
	t.texture.Unlock()
	t.locked = false
}

func (t *Texture) Update(pixels []uint32, pitch int) error {
	if t.locked {
		return backend.ErrLocked
	}
	if len(pixels) < pitch*(t.height-1)+t.width {
		return fmt.Errorf("update needs %dx%d pixels, got %d", t.width, t.height, len(pixels))
	}
	return t.texture.Update(nil, unsafe.Pointer(&pixels[0]), pitch*display.BytesPerPixel)
}

func (t *Texture) Destroy() {
	if err := t.texture.Destroy(); err != nil {
		slog.Warn("Failed to destroy texture", "error", err)
	}
}
