package surface_test

import (
	"image/color"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-emutools/emutools/backend"
	"github.com/valerio/go-emutools/emutools/backend/headless"
	"github.com/valerio/go-emutools/emutools/display"
	"github.com/valerio/go-emutools/emutools/surface"
)

// vic20Colors is the 16 colour VIC-20 palette
var vic20Colors = []byte{
	0x00, 0x00, 0x00, 0xFF, 0xFF, 0xFF, 0xB6, 0x1F, 0x21, 0x4D, 0xF0, 0xFF,
	0xB4, 0x3F, 0xFF, 0x44, 0xE2, 0x37, 0x1A, 0x34, 0xFF, 0xDC, 0xD7, 0x1B,
	0xCA, 0x54, 0x00, 0xE9, 0xB0, 0x72, 0xE7, 0x92, 0x93, 0x9A, 0xF7, 0xFD,
	0xE0, 0x9F, 0xFF, 0x8F, 0xE4, 0x93, 0x82, 0x90, 0xFF, 0xE5, 0xDE, 0x85,
}

func vic20Config(access display.AccessMode) display.Config {
	return display.Config{
		Title:         "VIC-20",
		TextureWidth:  384,
		TextureHeight: 240,
		LogicalWidth:  384,
		LogicalHeight: 240,
		WindowWidth:   768,
		WindowHeight:  480,
		Format:        display.FormatARGB8888,
		Colors:        vic20Colors,
		Quality:       display.QualityLinear,
		Access:        access,
	}
}

func newSurface(t *testing.T, opts headless.Options, cfg display.Config) (*surface.Surface, *headless.Driver) {
	t.Helper()
	driver := headless.New(opts)
	s, err := surface.New(driver, cfg)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, driver
}

func rendererOf(t *testing.T, driver *headless.Driver) *headless.Renderer {
	t.Helper()
	require.NotEmpty(t, driver.Windows())
	r := driver.Windows()[0].Renderer()
	require.NotNil(t, r)
	return r
}

func TestDummyFrameScenario(t *testing.T) {
	s, driver := newSurface(t, headless.Options{}, vic20Config(display.AccessLocked))

	palette := s.Palette()
	require.Len(t, palette, 16)

	require.NoError(t, s.RenderDummyFrame(palette[0], 384, 240))

	r := rendererOf(t, driver)
	assert.Equal(t, 1, r.Frames())
	for i, v := range r.LastTexture() {
		if v != palette[0] {
			t.Fatalf("texture pixel %d = %#x, want %#x", i, v, palette[0])
		}
	}

	red, green, blue := s.Format().RGB(palette[0])
	want := color.RGBA{red, green, blue, 0xFF}
	frame := r.LastFrame()
	require.Equal(t, 768, frame.Bounds().Dx())
	require.Equal(t, 480, frame.Bounds().Dy())
	for _, p := range [][2]int{{0, 0}, {767, 479}, {383, 240}, {100, 400}} {
		assert.Equal(t, want, frame.RGBAAt(p[0], p[1]), "pixel %v", p)
	}
}

func TestPaletteMatchesColors(t *testing.T) {
	s, _ := newSurface(t, headless.Options{}, vic20Config(display.AccessShadow))

	for i, v := range s.Palette() {
		r, g, b := s.Format().RGB(v)
		assert.Equal(t, vic20Colors[i*3:i*3+3], []byte{r, g, b}, "colour %d", i)
	}
}

func TestAccessTail(t *testing.T) {
	cfg := vic20Config(display.AccessLocked)
	cfg.TextureWidth, cfg.TextureHeight = 10, 4
	cfg.LogicalWidth, cfg.LogicalHeight = 10, 4
	cfg.WindowWidth, cfg.WindowHeight = 20, 8
	opts := headless.Options{RowAlignment: 16}

	t.Run("locked", func(t *testing.T) {
		s, _ := newSurface(t, opts, cfg)
		frame, err := s.Acquire()
		require.NoError(t, err)
		assert.Equal(t, 6, frame.Tail)
		assert.Equal(t, 16, frame.Pitch())
		assert.Len(t, frame.Pixels, 16*4)
		frame.Fill(0)
		require.NoError(t, s.Update())
	})

	t.Run("shadow", func(t *testing.T) {
		shadowCfg := cfg
		shadowCfg.Access = display.AccessShadow
		s, _ := newSurface(t, opts, shadowCfg)
		frame, err := s.Acquire()
		require.NoError(t, err)
		assert.Equal(t, 0, frame.Tail)
		assert.Len(t, frame.Pixels, 10*4)
		require.NoError(t, s.Update())
	})
}

// drawScene writes a deterministic full frame through the Frame helpers
func drawScene(f surface.Frame, palette display.Palette) {
	for y := 0; y < f.Height; y++ {
		row := f.Row(y)
		for x := range row {
			row[x] = palette[(x/8+y/8)%len(palette)]
		}
	}
}

func TestLockedAndShadowProduceSameFrame(t *testing.T) {
	opts := headless.Options{RowAlignment: 64, ScrambleLocks: true}

	results := map[display.AccessMode][]uint32{}
	for _, mode := range []display.AccessMode{display.AccessLocked, display.AccessShadow} {
		s, driver := newSurface(t, opts, vic20Config(mode))

		for i := 0; i < 3; i++ {
			frame, err := s.Acquire()
			require.NoError(t, err)
			drawScene(frame, s.Palette())
			require.NoError(t, s.Update())
		}

		results[mode] = rendererOf(t, driver).LastTexture()
	}

	assert.Equal(t, results[display.AccessShadow], results[display.AccessLocked])
}

func TestLockedModeDoesNotPreserveFrame(t *testing.T) {
	s, driver := newSurface(t, headless.Options{ScrambleLocks: true}, vic20Config(display.AccessLocked))

	frame, err := s.Acquire()
	require.NoError(t, err)
	frame.Fill(s.Palette()[1])
	require.NoError(t, s.Update())

	// second frame only touches one pixel
	frame, err = s.Acquire()
	require.NoError(t, err)
	frame.Set(0, 0, s.Palette()[2])
	require.NoError(t, s.Update())

	texture := rendererOf(t, driver).LastTexture()
	assert.Equal(t, s.Palette()[2], texture[0])
	assert.Equal(t, headless.ScrambleValue, texture[1], "unwritten pixels are undefined")
}

func TestShadowModeKeepsPartialUpdates(t *testing.T) {
	s, driver := newSurface(t, headless.Options{ScrambleLocks: true}, vic20Config(display.AccessShadow))
	palette := s.Palette()

	frame, err := s.Acquire()
	require.NoError(t, err)
	frame.Fill(palette[6])
	require.NoError(t, s.Update())

	frame, err = s.Acquire()
	require.NoError(t, err)
	assert.Equal(t, palette[6], frame.At(100, 100), "previous frame still in the buffer")
	frame.Set(5, 7, palette[2])
	require.NoError(t, s.Update())

	texture := rendererOf(t, driver).LastTexture()
	assert.Equal(t, palette[2], texture[7*384+5])
	assert.Equal(t, palette[6], texture[0])
	assert.Equal(t, palette[6], texture[len(texture)-1])
}

func TestDummyFrameFillsShadowBuffer(t *testing.T) {
	s, _ := newSurface(t, headless.Options{}, vic20Config(display.AccessShadow))
	require.NoError(t, s.RenderDummyFrame(s.Palette()[3], 384, 240))

	frame, err := s.Acquire()
	require.NoError(t, err)
	assert.Equal(t, s.Palette()[3], frame.At(383, 239))
	require.NoError(t, s.Update())
}

func TestAccessContractViolations(t *testing.T) {
	for _, mode := range []display.AccessMode{display.AccessLocked, display.AccessShadow} {
		t.Run(mode.String(), func(t *testing.T) {
			s, _ := newSurface(t, headless.Options{}, vic20Config(mode))

			assert.Panics(t, func() { s.Update() }, "commit without acquire")

			_, err := s.Acquire()
			require.NoError(t, err)
			assert.True(t, s.Access().Outstanding())
			assert.Panics(t, func() { s.Acquire() }, "second acquire before commit")
			assert.Panics(t, func() { s.RenderDummyFrame(0, 384, 240) }, "dummy frame while acquired")

			require.NoError(t, s.Update())
			assert.False(t, s.Access().Outstanding())
		})
	}
}

func TestDummyFrameSizeMismatchPanics(t *testing.T) {
	s, _ := newSurface(t, headless.Options{}, vic20Config(display.AccessLocked))
	assert.Panics(t, func() { s.RenderDummyFrame(0, 400, 240) })
}

func TestInvalidScaleQualityPanics(t *testing.T) {
	cfg := vic20Config(display.AccessLocked)
	cfg.Quality = 3
	assert.Panics(t, func() { surface.New(headless.New(headless.Options{}), cfg) })
}

func TestInitFailuresReleaseEverything(t *testing.T) {
	tests := []struct {
		stage   headless.Stage
		message string
		quits   int
	}{
		{headless.FailInit, "failed to initialize video", 0},
		{headless.FailWindow, "failed to create window", 1},
		{headless.FailRenderer, "failed to create renderer", 1},
		{headless.FailTexture, "failed to create texture", 1},
	}

	for _, tt := range tests {
		t.Run(tt.stage.String(), func(t *testing.T) {
			driver := headless.New(headless.Options{FailAt: tt.stage})
			shutdowns := 0
			cfg := vic20Config(display.AccessLocked)
			cfg.OnShutdown = func() { shutdowns++ }

			s, err := surface.New(driver, cfg)

			assert.Nil(t, s)
			require.Error(t, err)
			assert.ErrorIs(t, err, headless.ErrInjected)
			assert.Contains(t, err.Error(), tt.message)
			assert.Equal(t, 0, driver.LiveResources())
			assert.Equal(t, tt.quits, driver.QuitCalls())
			assert.Equal(t, 1, shutdowns)
		})
	}
}

func TestInvalidConfigRunsShutdown(t *testing.T) {
	driver := headless.New(headless.Options{})
	shutdowns := 0
	cfg := vic20Config(display.AccessLocked)
	cfg.Colors = []byte{1, 2}
	cfg.OnShutdown = func() { shutdowns++ }

	_, err := surface.New(driver, cfg)
	assert.Error(t, err)
	assert.Equal(t, 1, shutdowns)
	assert.False(t, driver.Initialized())
}

func TestCloseReleasesResourcesOnce(t *testing.T) {
	driver := headless.New(headless.Options{})
	shutdowns := 0
	cfg := vic20Config(display.AccessLocked)
	cfg.OnShutdown = func() { shutdowns++ }

	s, err := surface.New(driver, cfg)
	require.NoError(t, err)
	assert.Equal(t, 3, driver.LiveResources())

	_, err = s.Acquire()
	require.NoError(t, err)

	require.NoError(t, s.Close())
	require.NoError(t, s.Close())

	assert.Equal(t, 1, shutdowns)
	assert.Equal(t, 1, driver.QuitCalls())
	assert.Equal(t, 0, driver.LiveResources())
}

func TestResizeKeepsAspectRatio(t *testing.T) {
	cfg := vic20Config(display.AccessLocked)
	cfg.Resizable = true
	s, driver := newSurface(t, headless.Options{}, cfg)
	palette := s.Palette()

	require.NoError(t, s.RenderDummyFrame(palette[1], 384, 240))
	assert.Equal(t, display.Rect{X: 0, Y: 0, W: 768, H: 480}, s.Viewport())

	driver.Windows()[0].Resize(800, 480)
	assert.True(t, s.HandleEvents())

	frame, err := s.Acquire()
	require.NoError(t, err)
	frame.Fill(palette[1])
	require.NoError(t, s.Update())

	assert.Equal(t, display.Rect{X: 16, Y: 0, W: 768, H: 480}, s.Viewport())

	img := rendererOf(t, driver).LastFrame()
	black := color.RGBA{0, 0, 0, 0xFF}
	white := color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}
	assert.Equal(t, black, img.RGBAAt(0, 100), "left bar")
	assert.Equal(t, black, img.RGBAAt(799, 100), "right bar")
	assert.Equal(t, white, img.RGBAAt(16, 100))
	assert.Equal(t, white, img.RGBAAt(783, 100))
}

func TestFullScreenToggle(t *testing.T) {
	s, driver := newSurface(t, headless.Options{DesktopWidth: 1920, DesktopHeight: 1080}, vic20Config(display.AccessLocked))

	require.NoError(t, s.ToggleFullScreen())
	assert.True(t, driver.Windows()[0].Fullscreen())
	require.NoError(t, s.RenderDummyFrame(0, 384, 240))
	assert.Equal(t, display.Rect{X: 96, Y: 0, W: 1728, H: 1080}, s.Viewport())

	require.NoError(t, s.ToggleFullScreen())
	require.NoError(t, s.RenderDummyFrame(0, 384, 240))
	assert.Equal(t, display.Rect{X: 0, Y: 0, W: 768, H: 480}, s.Viewport())
}

func TestTitleAddon(t *testing.T) {
	s, driver := newSurface(t, headless.Options{}, vic20Config(display.AccessLocked))
	window := driver.Windows()[0]

	assert.Equal(t, "VIC-20", window.Title())

	s.SetTitleAddon(" [warp]")
	assert.Equal(t, "VIC-20 [warp]", window.Title())
	assert.Equal(t, "VIC-20 [warp]", s.Title())

	s.SetTitleAddon("")
	assert.Equal(t, "VIC-20", window.Title())
}

func TestHandleEvents(t *testing.T) {
	s, driver := newSurface(t, headless.Options{}, vic20Config(display.AccessLocked))

	var keys []string
	s.OnKey(func(key string) { keys = append(keys, key) })

	driver.Push(backend.Event{Kind: backend.EventKey, Key: "F11"})
	assert.True(t, s.HandleEvents())
	assert.Equal(t, []string{"F11"}, keys)

	driver.Push(backend.Event{Kind: backend.EventQuit})
	assert.False(t, s.HandleEvents())
	assert.False(t, s.HandleEvents(), "quit request is sticky")
}

func TestPrefPath(t *testing.T) {
	root := t.TempDir()
	cfg := vic20Config(display.AccessLocked)
	cfg.Organization = "xemu-lgb"
	cfg.AppName = "vic20"

	s, _ := newSurface(t, headless.Options{PrefRoot: root}, cfg)

	assert.Equal(t, filepath.Join(root, "xemu-lgb", "vic20"), s.PrefPath())
	assert.DirExists(t, s.PrefPath())
}

func TestWindowID(t *testing.T) {
	s, driver := newSurface(t, headless.Options{}, vic20Config(display.AccessLocked))
	assert.Equal(t, driver.Windows()[0].ID(), s.WindowID())
}
