// Package terminal draws the emulator display into a text terminal with
// tcell, two pixels per character cell.
package terminal

import (
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-emutools/emutools/backend"
	"github.com/valerio/go-emutools/emutools/display"
	"github.com/valerio/go-emutools/emutools/render"
)

const (
	logBufferSize = 200
	statusLines   = 1
)

// Driver implements backend.Driver on top of a tcell screen. The terminal
// is a single window; its size in pixels is the cell grid with two pixel rows
// per cell, minus the status line when not in full-screen mode.
type Driver struct {
	newScreen func() (tcell.Screen, error)
	screen    tcell.Screen
	logLevel  slog.Level
	logOut    io.Writer
	logSink   slog.Handler
	logBuffer *LogBuffer
	prevLog   *slog.Logger
	signals   chan os.Signal
	window    *Window
	status    string
	running   bool
}

// Option configures a Driver
type Option func(*Driver)

// WithScreen makes the driver use an existing screen, such as a
// tcell.SimulationScreen.
func WithScreen(s tcell.Screen) Option {
	return func(d *Driver) {
		d.newScreen = func() (tcell.Screen, error) { return s, nil }
	}
}

// WithLogLevel sets the lowest level captured while the terminal is in use.
func WithLogLevel(level slog.Level) Option {
	return func(d *Driver) { d.logLevel = level }
}

// WithLogOutput sets where captured logs are flushed on Quit.
func WithLogOutput(w io.Writer) Option {
	return func(d *Driver) { d.logOut = w }
}

// WithLogSink forwards every log record the sink accepts while the terminal
// is in use, such as a debug log file. The sink must not write to the
// terminal itself.
func WithLogSink(h slog.Handler) Option {
	return func(d *Driver) { d.logSink = h }
}

// New creates a terminal driver
func New(opts ...Option) *Driver {
	d := &Driver{
		newScreen: tcell.NewScreen,
		logLevel:  slog.LevelInfo,
		logOut:    os.Stderr,
		logBuffer: NewLogBuffer(logBufferSize),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *Driver) Init() error {
	screen, err := d.newScreen()
	if err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}

	d.screen = screen
	d.running = true
	d.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	d.screen.Clear()

	// nothing may be written to stderr while tcell owns the terminal
	d.prevLog = slog.Default()
	var handler slog.Handler = NewLogBufferHandler(d.logBuffer, d.logLevel)
	if d.logSink != nil {
		handler = NewFanoutHandler(handler, d.logSink)
	}
	slog.SetDefault(slog.New(handler))

	d.signals = make(chan os.Signal, 1)
	signal.Notify(d.signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	slog.Info("Terminal driver initialized")
	return nil
}

func (d *Driver) CreateWindow(config backend.WindowConfig) (backend.Window, error) {
	if !d.running {
		return nil, errors.New("terminal driver not initialized")
	}
	if d.window != nil && !d.window.destroyed {
		return nil, errors.New("terminal already has a window")
	}

	d.window = &Window{driver: d, title: config.Title, fullscreen: config.Fullscreen}
	return d.window, nil
}

// PrefPath returns (and creates) <user config dir>/<organization>/<app>.
func (d *Driver) PrefPath(organization, app string) (string, error) {
	root, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	path := filepath.Join(root, organization, app)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create preferences directory: %w", err)
	}
	return path, nil
}

func (d *Driver) PollEvents() []backend.Event {
	if !d.running {
		return nil
	}

	var events []backend.Event

	select {
	case sig := <-d.signals:
		slog.Info("Received signal", "signal", sig)
		events = append(events, backend.Event{Kind: backend.EventQuit})
	default:
	}

	for d.screen.HasPendingEvent() {
		switch ev := d.screen.PollEvent().(type) {
		case *tcell.EventResize:
			d.screen.Sync()
			e := backend.Event{Kind: backend.EventResize}
			if d.window != nil {
				e.WindowID = d.window.ID()
				e.Width, e.Height = d.window.Size()
			}
			events = append(events, e)
		case *tcell.EventKey:
			events = append(events, keyEvent(ev))
		}
	}
	return events
}

func keyEvent(ev *tcell.EventKey) backend.Event {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return backend.Event{Kind: backend.EventQuit}
	case tcell.KeyRune:
		if ev.Rune() == 'q' {
			return backend.Event{Kind: backend.EventQuit}
		}
		return backend.Event{Kind: backend.EventKey, Key: string(ev.Rune())}
	}

	name, ok := tcell.KeyNames[ev.Key()]
	if !ok {
		name = ev.Name()
	}
	return backend.Event{Kind: backend.EventKey, Key: name}
}

// ShowMessage logs the message and shows it on the status line. A terminal
// has no modal dialogs, so it never blocks.
func (d *Driver) ShowMessage(kind backend.MessageKind, title, text string, parent backend.Window) error {
	d.status = fmt.Sprintf("%s: %s: %s", kind, title, text)
	if d.running && d.window != nil {
		d.window.drawStatus()
		d.screen.Show()
	}
	return nil
}

// Status returns the text of the last message shown.
func (d *Driver) Status() string { return d.status }

// Logs returns the buffer capturing log records while the terminal is in use.
func (d *Driver) Logs() *LogBuffer { return d.logBuffer }

func (d *Driver) Quit() {
	if !d.running {
		return
	}
	d.running = false

	signal.Stop(d.signals)
	d.screen.Fini()

	if d.prevLog != nil {
		slog.SetDefault(d.prevLog)
	}
	entries := d.logBuffer.Recent(0)
	for i := len(entries) - 1; i >= 0; i-- {
		fmt.Fprintln(d.logOut, FormatLogEntry(entries[i]))
	}
	d.logBuffer.Clear()
}

// Window is the terminal screen seen as a window
type Window struct {
	driver     *Driver
	title      string
	fullscreen bool
	renderer   *Renderer
	destroyed  bool
}

func (w *Window) ID() uint32            { return 1 }
func (w *Window) Title() string         { return w.title }
func (w *Window) SetTitle(title string) { w.title = title }
func (w *Window) Fullscreen() bool      { return w.fullscreen }

// SetFullscreen hides or shows the status line.
func (w *Window) SetFullscreen(on bool) error {
	w.fullscreen = on
	w.driver.screen.Clear()
	return nil
}

// Size returns the drawable area in pixels.
func (w *Window) Size() (int, int) {
	cols, rows := w.driver.screen.Size()
	if !w.fullscreen {
		rows -= statusLines
	}
	if rows < 0 {
		rows = 0
	}
	return cols, rows * 2
}

func (w *Window) CreateRenderer(quality display.ScaleQuality) (backend.Renderer, error) {
	quality.MustBeValid()
	if w.renderer != nil && !w.renderer.destroyed {
		return nil, errors.New("window already has a renderer")
	}
	w.renderer = &Renderer{window: w, quality: quality}
	return w.renderer, nil
}

func (w *Window) Destroy() {
	w.destroyed = true
	if w.driver.running {
		w.driver.screen.Clear()
		w.driver.screen.Show()
	}
}

func (w *Window) drawStatus() {
	if w.fullscreen {
		return
	}
	cols, rows := w.driver.screen.Size()
	y := rows - statusLines
	if y < 0 {
		return
	}

	text := " " + w.title
	if w.driver.status != "" {
		text += " | " + w.driver.status
	}
	style := tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorSilver)
	runes := []rune(text)
	for x := 0; x < cols; x++ {
		r := ' '
		if x < len(runes) {
			r = runes[x]
		}
		w.driver.screen.SetContent(x, y, r, nil, style)
	}
}

// Renderer draws textures as half-block cells
type Renderer struct {
	window    *Window
	quality   display.ScaleQuality
	destroyed bool
}

func (r *Renderer) CreateTexture(format display.PixelFormat, width, height int) (backend.Texture, error) {
	return backend.NewMemoryTexture(format, width, height, 1)
}

func (r *Renderer) Present(texture backend.Texture, dst display.Rect) error {
	t, ok := texture.(*backend.MemoryTexture)
	if !ok {
		return fmt.Errorf("texture %T does not belong to the terminal driver", texture)
	}
	if t.Locked() {
		return fmt.Errorf("present: %w", backend.ErrLocked)
	}

	ww, wh := r.window.Size()
	if ww == 0 || wh == 0 {
		return nil
	}

	tw, th := t.Size()
	frame := image.NewRGBA(image.Rect(0, 0, ww, wh))
	render.Compose(frame, render.TextureImage(t.Pixels(), t.Pitch(), tw, th, t.Format()), dst, r.quality)

	screen := r.window.driver.screen
	for y, row := range render.HalfBlocks(frame) {
		for x, cell := range row {
			style := tcell.StyleDefault.
				Foreground(tcell.NewRGBColor(int32(cell.Top.R), int32(cell.Top.G), int32(cell.Top.B))).
				Background(tcell.NewRGBColor(int32(cell.Bottom.R), int32(cell.Bottom.G), int32(cell.Bottom.B)))
			screen.SetContent(x, y, render.UpperHalfBlock, nil, style)
		}
	}
	r.window.drawStatus()
	screen.Show()
	return nil
}

func (r *Renderer) Destroy() { r.destroyed = true }
