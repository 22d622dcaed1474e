package surface

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-emutools/emutools/backend"
	"github.com/valerio/go-emutools/emutools/display"
)

// Surface owns the emulator window, its renderer and texture, the generated
// palette and the pixel access discipline. It must only be used from the
// thread that created it.
type Surface struct {
	driver   backend.Driver
	config   display.Config
	window   backend.Window
	renderer backend.Renderer
	texture  backend.Texture
	access   PixelAccess
	palette  display.Palette
	prefPath string

	titleAddon string

	viewport       display.Rect
	viewW, viewH   int // window size the viewport was computed for
	viewportStale  bool
	quitRequested  bool
	keyHandler     func(key string)
	cleanups       []func()
	shutdownCalled bool
	closed         bool
}

// New creates the window, renderer and streaming texture described by cfg
// and generates the palette. On error nothing stays allocated: everything
// created so far is released and cfg.OnShutdown has run.
//
// An invalid cfg.Quality is a programming error and panics.
func New(driver backend.Driver, cfg display.Config) (*Surface, error) {
	cfg.Quality.MustBeValid()
	cfg = cfg.WithDefaults()

	s := &Surface{
		driver:        driver,
		config:        cfg,
		viewportStale: true,
	}
	if err := s.init(); err != nil {
		s.teardown()
		return nil, err
	}

	slog.Info("Display surface initialized",
		"texture", fmt.Sprintf("%dx%d", cfg.TextureWidth, cfg.TextureHeight),
		"logical", fmt.Sprintf("%dx%d", cfg.LogicalWidth, cfg.LogicalHeight),
		"window", fmt.Sprintf("%dx%d", cfg.WindowWidth, cfg.WindowHeight),
		"format", cfg.Format,
		"colors", len(s.palette),
		"quality", cfg.Quality,
		"access", cfg.Access)
	return s, nil
}

func (s *Surface) init() error {
	cfg := s.config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid display configuration: %w", err)
	}

	palette, err := display.NewPalette(cfg.Format, cfg.Colors)
	if err != nil {
		return fmt.Errorf("failed to generate palette: %w", err)
	}
	s.palette = palette

	if err := s.driver.Init(); err != nil {
		return fmt.Errorf("failed to initialize video: %w", err)
	}
	s.onTeardown(s.driver.Quit)

	if cfg.Organization != "" || cfg.AppName != "" {
		path, err := s.driver.PrefPath(cfg.Organization, cfg.AppName)
		if err != nil {
			slog.Warn("Cannot resolve preferences path", "error", err)
		} else {
			s.prefPath = path
		}
	}

	window, err := s.driver.CreateWindow(backend.WindowConfig{
		Title:      cfg.Title,
		Width:      cfg.WindowWidth,
		Height:     cfg.WindowHeight,
		Resizable:  cfg.Resizable,
		Fullscreen: cfg.Fullscreen,
	})
	if err != nil {
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window
	s.onTeardown(window.Destroy)

	renderer, err := window.CreateRenderer(cfg.Quality)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer
	s.onTeardown(renderer.Destroy)

	texture, err := renderer.CreateTexture(cfg.Format, cfg.TextureWidth, cfg.TextureHeight)
	if err != nil {
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture
	s.onTeardown(texture.Destroy)

	switch cfg.Access {
	case display.AccessLocked:
		s.access = NewLockedAccess(texture)
	default:
		s.access = NewShadowAccess(texture)
	}

	return nil
}

// onTeardown registers a release step run in reverse order by teardown.
func (s *Surface) onTeardown(fn func()) {
	s.cleanups = append(s.cleanups, fn)
}

func (s *Surface) teardown() {
	if !s.shutdownCalled {
		s.shutdownCalled = true
		if s.config.OnShutdown != nil {
			s.config.OnShutdown()
		}
	}

	for i := len(s.cleanups) - 1; i >= 0; i-- {
		s.cleanups[i]()
	}
	s.cleanups = nil
}

// Close runs the emulator shutdown hook and releases the texture, renderer,
// window and video subsystem. Calling it more than once is a no-op.
func (s *Surface) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	if s.access != nil && s.access.Outstanding() {
		// release the texture lock before destroying it
		if err := s.access.Commit(); err != nil {
			slog.Warn("Dropping uncommitted frame", "error", err)
		}
	}

	slog.Info("Shutting down display surface")
	s.teardown()
	return nil
}

// Palette returns the generated palette, one native value per configured colour.
func (s *Surface) Palette() display.Palette { return s.palette }

// Config returns the configuration with defaults applied.
func (s *Surface) Config() display.Config { return s.config }

// Format returns the native pixel format of the texture.
func (s *Surface) Format() display.PixelFormat { return s.config.Format }

// PrefPath returns the preferences directory resolved at init, or "".
func (s *Surface) PrefPath() string { return s.prefPath }

// WindowID returns the platform id of the window.
func (s *Surface) WindowID() uint32 { return s.window.ID() }

// Window returns the underlying window.
func (s *Surface) Window() backend.Window { return s.window }

// Access returns the pixel access discipline chosen at init.
func (s *Surface) Access() PixelAccess { return s.access }

// Acquire starts a frame. In locked mode Tail is the per-row padding and all
// pixels must be written; in shadow mode Tail is 0 and the previous frame is
// still in the buffer.
func (s *Surface) Acquire() (Frame, error) {
	return s.access.Acquire()
}

// Update commits the acquired frame and presents it, letterboxed to keep the
// logical aspect ratio.
func (s *Surface) Update() error {
	if err := s.access.Commit(); err != nil {
		return err
	}
	return s.present()
}

// RenderDummyFrame fills the whole texture with one colour and presents it.
// It bypasses the access discipline; in shadow mode the shadow buffer is
// filled too so later partial updates start from the same picture. width and
// height must equal the texture size.
func (s *Surface) RenderDummyFrame(color uint32, width, height int) error {
	if width != s.config.TextureWidth || height != s.config.TextureHeight {
		panic(fmt.Sprintf("surface: dummy frame %dx%d does not match texture %dx%d",
			width, height, s.config.TextureWidth, s.config.TextureHeight))
	}
	if s.access.Outstanding() {
		panic("surface: dummy frame rendered while a frame is acquired")
	}

	pixels := make([]uint32, width*height)
	for i := range pixels {
		pixels[i] = color
	}
	if err := s.texture.Update(pixels, width); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}
	if shadow, ok := s.access.(*ShadowAccess); ok {
		shadow.Fill(color)
	}

	return s.present()
}

func (s *Surface) present() error {
	w, h := s.window.Size()
	if s.viewportStale || w != s.viewW || h != s.viewH {
		s.viewport = display.Letterbox(s.config.LogicalWidth, s.config.LogicalHeight, w, h)
		s.viewW, s.viewH = w, h
		s.viewportStale = false
		slog.Debug("Viewport updated", "window", fmt.Sprintf("%dx%d", w, h), "viewport", s.viewport)
	}

	if err := s.renderer.Present(s.texture, s.viewport); err != nil {
		return fmt.Errorf("failed to present frame: %w", err)
	}
	return nil
}

// Viewport returns the letterboxed destination rectangle used by the last
// present.
func (s *Surface) Viewport() display.Rect { return s.viewport }

// SetFullScreen switches between windowed and full-screen mode.
func (s *Surface) SetFullScreen(on bool) error {
	if err := s.window.SetFullscreen(on); err != nil {
		return fmt.Errorf("failed to switch full screen: %w", err)
	}
	s.viewportStale = true
	slog.Info("Full screen mode changed", "fullscreen", on)
	return nil
}

// ToggleFullScreen flips the full-screen mode.
func (s *Surface) ToggleFullScreen() error {
	return s.SetFullScreen(!s.window.Fullscreen())
}

// SetTitleAddon sets the text appended to the base window title.
func (s *Surface) SetTitleAddon(addon string) {
	s.titleAddon = addon
	s.window.SetTitle(display.WindowTitle(s.config.Title, addon))
}

// Title returns the title currently shown by the window.
func (s *Surface) Title() string {
	return display.WindowTitle(s.config.Title, s.titleAddon)
}

// HandleEvents drains the platform event queue. It returns false once the
// user asked to quit.
func (s *Surface) HandleEvents() bool {
	for _, ev := range s.driver.PollEvents() {
		switch ev.Kind {
		case backend.EventQuit:
			s.quitRequested = true
		case backend.EventResize, backend.EventExpose:
			s.viewportStale = true
		case backend.EventKey:
			if s.keyHandler != nil {
				s.keyHandler(ev.Key)
			}
		}
	}
	return !s.quitRequested
}

// OnKey registers the handler HandleEvents calls for every key press.
func (s *Surface) OnKey(fn func(key string)) {
	s.keyHandler = fn
}
