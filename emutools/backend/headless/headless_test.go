package headless_test

import (
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-emutools/emutools/backend"
	"github.com/valerio/go-emutools/emutools/backend/headless"
	"github.com/valerio/go-emutools/emutools/display"
)

var _ backend.Driver = (*headless.Driver)(nil)

func newRenderer(t *testing.T, opts headless.Options, w, h int) (*headless.Driver, *headless.Window, *headless.Renderer) {
	t.Helper()
	d := headless.New(opts)
	require.NoError(t, d.Init())

	win, err := d.CreateWindow(backend.WindowConfig{Title: "test", Width: w, Height: h, Resizable: true})
	require.NoError(t, err)
	r, err := win.CreateRenderer(display.QualityNearest)
	require.NoError(t, err)
	return d, win.(*headless.Window), r.(*headless.Renderer)
}

func TestCreateWindowRequiresInit(t *testing.T) {
	d := headless.New(headless.Options{})
	_, err := d.CreateWindow(backend.WindowConfig{Width: 10, Height: 10})
	assert.Error(t, err)
}

func TestWindowIDsAreUnique(t *testing.T) {
	d := headless.New(headless.Options{})
	require.NoError(t, d.Init())

	a, err := d.CreateWindow(backend.WindowConfig{Width: 10, Height: 10})
	require.NoError(t, err)
	b, err := d.CreateWindow(backend.WindowConfig{Width: 10, Height: 10})
	require.NoError(t, err)

	assert.NotZero(t, a.ID())
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestTexturePitchFollowsAlignment(t *testing.T) {
	_, _, r := newRenderer(t, headless.Options{RowAlignment: 8}, 100, 100)

	tex, err := r.CreateTexture(display.FormatARGB8888, 10, 4)
	require.NoError(t, err)

	pixels, pitch, err := tex.Lock()
	require.NoError(t, err)
	assert.Equal(t, 16, pitch)
	assert.Len(t, pixels, 64)
	tex.Unlock()
}

func TestDefaultAlignment(t *testing.T) {
	_, _, r := newRenderer(t, headless.Options{}, 100, 100)

	tex, err := r.CreateTexture(display.FormatARGB8888, 20, 1)
	require.NoError(t, err)
	assert.Equal(t, 32, tex.(*headless.Texture).Pitch())
}

func TestScrambleLocks(t *testing.T) {
	_, _, r := newRenderer(t, headless.Options{ScrambleLocks: true, RowAlignment: 1}, 100, 100)

	tex, err := r.CreateTexture(display.FormatARGB8888, 2, 2)
	require.NoError(t, err)
	require.NoError(t, tex.Update([]uint32{1, 2, 3, 4}, 2))

	pixels, _, err := tex.Lock()
	require.NoError(t, err)
	for _, p := range pixels {
		assert.Equal(t, headless.ScrambleValue, p)
	}
	tex.Unlock()
}

func TestLockTwiceFails(t *testing.T) {
	_, _, r := newRenderer(t, headless.Options{}, 100, 100)

	tex, err := r.CreateTexture(display.FormatARGB8888, 2, 2)
	require.NoError(t, err)
	_, _, err = tex.Lock()
	require.NoError(t, err)

	_, _, err = tex.Lock()
	assert.ErrorIs(t, err, backend.ErrLocked)
	assert.ErrorIs(t, r.Present(tex, display.Rect{W: 2, H: 2}), backend.ErrLocked)
}

func TestPresentComposesLetterbox(t *testing.T) {
	_, _, r := newRenderer(t, headless.Options{RowAlignment: 1}, 8, 4)

	tex, err := r.CreateTexture(display.FormatARGB8888, 2, 2)
	require.NoError(t, err)
	red := display.FormatARGB8888.MapRGB(255, 0, 0)
	require.NoError(t, tex.Update([]uint32{red, red, red, red}, 2))

	viewport := display.Letterbox(2, 2, 8, 4)
	require.NoError(t, r.Present(tex, viewport))

	assert.Equal(t, 1, r.Frames())
	assert.Equal(t, display.Rect{X: 2, Y: 0, W: 4, H: 4}, r.LastViewport())
	assert.Equal(t, []uint32{red, red, red, red}, r.LastTexture())

	frame := r.LastFrame()
	require.NotNil(t, frame)
	assert.Equal(t, 8, frame.Bounds().Dx())
	assert.Equal(t, color.RGBA{A: 255}, frame.RGBAAt(0, 0), "bars are black")
	assert.Equal(t, color.RGBA{R: 255, A: 255}, frame.RGBAAt(3, 1))
	assert.Equal(t, color.RGBA{A: 255}, frame.RGBAAt(7, 3))
}

func TestPresentRejectsForeignTexture(t *testing.T) {
	_, _, r := newRenderer(t, headless.Options{}, 8, 8)

	foreign, err := backend.NewMemoryTexture(display.FormatARGB8888, 2, 2, 1)
	require.NoError(t, err)
	assert.Error(t, r.Present(foreign, display.Rect{W: 8, H: 8}))
}

func TestSnapshotsAreWritten(t *testing.T) {
	dir := t.TempDir()
	snaps, err := headless.CreateSnapshotConfig(2, dir, "roms/game.prg")
	require.NoError(t, err)
	assert.Equal(t, "game", snaps.Name)

	_, _, r := newRenderer(t, headless.Options{Snapshots: snaps}, 4, 4)
	tex, err := r.CreateTexture(display.FormatARGB8888, 4, 4)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, r.Present(tex, display.Rect{W: 4, H: 4}))
	}

	matches, err := filepath.Glob(filepath.Join(dir, "game_frame_*.png"))
	require.NoError(t, err)
	assert.Len(t, matches, 2)
}

func TestCreateSnapshotConfig(t *testing.T) {
	disabled, err := headless.CreateSnapshotConfig(0, "", "x")
	require.NoError(t, err)
	assert.False(t, disabled.Enabled)

	tmp, err := headless.CreateSnapshotConfig(10, "", "")
	require.NoError(t, err)
	defer os.RemoveAll(tmp.Directory)
	assert.True(t, tmp.Enabled)
	assert.DirExists(t, tmp.Directory)
	assert.Equal(t, "emutools", tmp.Name)
}

func TestFailAtStages(t *testing.T) {
	d := headless.New(headless.Options{FailAt: headless.FailInit})
	assert.ErrorIs(t, d.Init(), headless.ErrInjected)

	d = headless.New(headless.Options{FailAt: headless.FailWindow})
	require.NoError(t, d.Init())
	_, err := d.CreateWindow(backend.WindowConfig{Width: 1, Height: 1})
	assert.ErrorIs(t, err, headless.ErrInjected)

	d = headless.New(headless.Options{FailAt: headless.FailRenderer})
	require.NoError(t, d.Init())
	win, err := d.CreateWindow(backend.WindowConfig{Width: 1, Height: 1})
	require.NoError(t, err)
	_, err = win.CreateRenderer(display.QualityLinear)
	assert.ErrorIs(t, err, headless.ErrInjected)

	_, _, r := newRenderer(t, headless.Options{FailAt: headless.FailTexture}, 1, 1)
	_, err = r.CreateTexture(display.FormatARGB8888, 1, 1)
	assert.ErrorIs(t, err, headless.ErrInjected)

	assert.Equal(t, "texture", headless.FailTexture.String())
}

func TestLiveResources(t *testing.T) {
	d, win, r := newRenderer(t, headless.Options{}, 4, 4)
	tex, err := r.CreateTexture(display.FormatARGB8888, 4, 4)
	require.NoError(t, err)
	assert.Equal(t, 3, d.LiveResources())

	tex.Destroy()
	r.Destroy()
	win.Destroy()
	assert.Zero(t, d.LiveResources())
}

func TestResizeAndFullscreenPushEvents(t *testing.T) {
	d, win, _ := newRenderer(t, headless.Options{DesktopWidth: 640, DesktopHeight: 480}, 40, 30)

	win.Resize(80, 60)
	require.NoError(t, win.SetFullscreen(true))
	w, h := win.Size()
	assert.Equal(t, 640, w)
	assert.Equal(t, 480, h)

	events := d.PollEvents()
	require.Len(t, events, 2)
	assert.Equal(t, backend.EventResize, events[0].Kind)
	assert.Equal(t, 80, events[0].Width)
	assert.Equal(t, 640, events[1].Width)
	assert.Empty(t, d.PollEvents())
}

func TestResizeIgnoredWhenNotResizable(t *testing.T) {
	d := headless.New(headless.Options{})
	require.NoError(t, d.Init())
	win, err := d.CreateWindow(backend.WindowConfig{Width: 40, Height: 30})
	require.NoError(t, err)

	win.(*headless.Window).Resize(80, 60)
	w, h := win.Size()
	assert.Equal(t, 40, w)
	assert.Equal(t, 30, h)
	assert.Empty(t, d.PollEvents())
}

func TestPrefPathIsCreated(t *testing.T) {
	root := t.TempDir()
	d := headless.New(headless.Options{PrefRoot: root})

	path, err := d.PrefPath("acme", "vic")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "acme", "vic"), path)
	assert.DirExists(t, path)
}

func TestShowMessageIsRecorded(t *testing.T) {
	d, win, _ := newRenderer(t, headless.Options{}, 4, 4)

	require.NoError(t, d.ShowMessage(backend.MessageWarning, "Title", "text", win))
	require.NoError(t, d.ShowMessage(backend.MessageInfo, "Other", "no parent", nil))

	msgs := d.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, headless.Message{Kind: backend.MessageWarning, Title: "Title", Text: "text", WindowID: win.ID()}, msgs[0])
	assert.Zero(t, msgs[1].WindowID)
}

func TestQuit(t *testing.T) {
	d := headless.New(headless.Options{})
	require.NoError(t, d.Init())
	assert.True(t, d.Initialized())

	d.Quit()
	assert.False(t, d.Initialized())
	assert.Equal(t, 1, d.QuitCalls())
}

func TestSnapshotDue(t *testing.T) {
	cfg := headless.SnapshotConfig{Enabled: true, Interval: 3}
	assert.False(t, cfg.Due(1))
	assert.True(t, cfg.Due(3))
	assert.True(t, cfg.Due(6))

	assert.False(t, headless.SnapshotConfig{Interval: 3}.Due(3), "disabled")
	assert.False(t, headless.SnapshotConfig{Enabled: true}.Due(3), "no interval")
}
