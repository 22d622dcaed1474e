package headless

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/valerio/go-emutools/emutools/backend"
	"github.com/valerio/go-emutools/emutools/display"
)

// Stage names an initialization step that can be made to fail
type Stage int

const (
	FailNone Stage = iota
	FailInit
	FailWindow
	FailRenderer
	FailTexture
)

func (s Stage) String() string {
	switch s {
	case FailInit:
		return "init"
	case FailWindow:
		return "window"
	case FailRenderer:
		return "renderer"
	case FailTexture:
		return "texture"
	}
	return "none"
}

// ErrInjected is returned by the step selected with Options.FailAt
var ErrInjected = errors.New("injected failure")

// Options configures the headless driver
type Options struct {
	// RowAlignment rounds texture rows up to a multiple of this many pixels.
	// Zero uses display.DefaultRowAlignment, one disables padding.
	RowAlignment int
	// ScrambleLocks overwrites the backing store on every Lock, the way a
	// GPU driver hands out memory with undefined contents.
	ScrambleLocks bool
	// FailAt makes one initialization step return ErrInjected.
	FailAt Stage
	// PrefRoot is the base of PrefPath; the user config dir when empty.
	PrefRoot string
	// DesktopWidth and DesktopHeight are the window size in full-screen mode.
	DesktopWidth  int
	DesktopHeight int
	Snapshots     SnapshotConfig
}

// Message is a recorded message box
type Message struct {
	Kind     backend.MessageKind
	Title    string
	Text     string
	WindowID uint32
}

// Driver implements backend.Driver without any platform window. Presented
// frames are kept in memory, and optionally written out as PNG snapshots.
type Driver struct {
	opts        Options
	initialized bool
	quitCalls   int
	polls       int
	nextID      uint32
	windows     []*Window
	pending     []backend.Event
	messages    []Message
}

// New creates a headless driver
func New(opts Options) *Driver {
	if opts.RowAlignment == 0 {
		opts.RowAlignment = display.DefaultRowAlignment
	}
	if opts.DesktopWidth == 0 || opts.DesktopHeight == 0 {
		opts.DesktopWidth, opts.DesktopHeight = 1920, 1080
	}
	return &Driver{opts: opts, nextID: 1}
}

func (d *Driver) Init() error {
	if d.opts.FailAt == FailInit {
		return fmt.Errorf("headless init: %w", ErrInjected)
	}
	d.initialized = true
	slog.Debug("Headless driver initialized")
	return nil
}

func (d *Driver) CreateWindow(config backend.WindowConfig) (backend.Window, error) {
	if !d.initialized {
		return nil, errors.New("headless driver not initialized")
	}
	if d.opts.FailAt == FailWindow {
		return nil, fmt.Errorf("headless window: %w", ErrInjected)
	}

	w := &Window{
		driver:     d,
		id:         d.nextID,
		title:      config.Title,
		width:      config.Width,
		height:     config.Height,
		resizable:  config.Resizable,
		fullscreen: config.Fullscreen,
	}
	d.nextID++
	d.windows = append(d.windows, w)
	return w, nil
}

// PrefPath returns (and creates) <PrefRoot>/<organization>/<app>.
func (d *Driver) PrefPath(organization, app string) (string, error) {
	root := d.opts.PrefRoot
	if root == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve config directory: %w", err)
		}
		root = dir
	}

	path := filepath.Join(root, organization, app)
	if err := os.MkdirAll(path, 0755); err != nil {
		return "", fmt.Errorf("failed to create preferences directory: %w", err)
	}
	return path, nil
}

func (d *Driver) PollEvents() []backend.Event {
	d.polls++
	events := d.pending
	d.pending = nil
	return events
}

func (d *Driver) ShowMessage(kind backend.MessageKind, title, text string, parent backend.Window) error {
	msg := Message{Kind: kind, Title: title, Text: text}
	if parent != nil {
		msg.WindowID = parent.ID()
	}
	d.messages = append(d.messages, msg)
	slog.Info("Message box", "kind", kind, "title", title, "text", text)
	return nil
}

func (d *Driver) Quit() {
	d.quitCalls++
	d.initialized = false
	slog.Debug("Headless driver shut down")
}

// Push queues an event for the next PollEvents call
func (d *Driver) Push(ev backend.Event) {
	d.pending = append(d.pending, ev)
}

// Initialized reports whether Init succeeded and Quit was not called since.
func (d *Driver) Initialized() bool { return d.initialized }

// QuitCalls returns how many times Quit was called
func (d *Driver) QuitCalls() int { return d.quitCalls }

// Polls returns how many times the event queue was drained
func (d *Driver) Polls() int { return d.polls }

// Messages returns every message box shown so far
func (d *Driver) Messages() []Message { return d.messages }

// Windows returns every window created, destroyed ones included
func (d *Driver) Windows() []*Window { return d.windows }

// LiveResources counts windows, renderers and textures not yet destroyed.
func (d *Driver) LiveResources() int {
	n := 0
	for _, w := range d.windows {
		if !w.destroyed {
			n++
		}
		if r := w.renderer; r != nil {
			if !r.destroyed {
				n++
			}
			for _, t := range r.textures {
				if !t.Destroyed() {
					n++
				}
			}
		}
	}
	return n
}
