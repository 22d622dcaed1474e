package backend

import (
	"fmt"

	"github.com/valerio/go-emutools/emutools/display"
)

// Driver is the platform windowing service the display surface is built on.
// Drivers are responsible for:
// - Creating windows, renderers and streaming textures
// - Draining the platform event queue
// - Showing modal messages to the user
// - Resolving the per-application preferences directory
//
// All methods must be called from the thread that owns the window.
type Driver interface {
	// Init brings up the platform video subsystem. It must be called before
	// CreateWindow.
	Init() error

	// CreateWindow opens a window with a renderer attached later through
	// Window.CreateRenderer.
	CreateWindow(config WindowConfig) (Window, error)

	// PrefPath returns a writable per-user directory for the application.
	PrefPath(organization, app string) (string, error)

	// PollEvents drains every pending platform event.
	PollEvents() []Event

	// ShowMessage displays a modal message. parent may be nil.
	ShowMessage(kind MessageKind, title, text string, parent Window) error

	// Quit shuts the platform video subsystem down.
	Quit()
}

// Window is a platform window owning at most one renderer.
type Window interface {
	ID() uint32
	Title() string
	SetTitle(title string)
	Fullscreen() bool
	SetFullscreen(on bool) error
	// Size returns the drawable size in pixels.
	Size() (width, height int)
	CreateRenderer(quality display.ScaleQuality) (Renderer, error)
	Destroy()
}

// Renderer draws textures into its window.
type Renderer interface {
	CreateTexture(format display.PixelFormat, width, height int) (Texture, error)
	// Present clears the window to black, draws the whole texture scaled
	// into dst and shows the result.
	Present(texture Texture, dst display.Rect) error
	Destroy()
}

// Texture is a streaming texture in a native pixel format.
type Texture interface {
	Format() display.PixelFormat
	Size() (width, height int)
	// Lock gives write access to the backing store. pitch is the row length
	// in pixels and may exceed the texture width. The previous contents are
	// undefined.
	Lock() (pixels []uint32, pitch int, err error)
	Unlock()
	// Update replaces the whole texture from pixels laid out with pitch.
	Update(pixels []uint32, pitch int) error
	Destroy()
}

// WindowConfig holds the parameters of a new window
type WindowConfig struct {
	Title      string
	Width      int
	Height     int
	Resizable  bool
	Fullscreen bool
}

// EventKind identifies a platform event relevant to the surface
type EventKind int

const (
	EventQuit EventKind = iota
	EventResize
	EventExpose
	EventKey
)

func (k EventKind) String() string {
	switch k {
	case EventQuit:
		return "quit"
	case EventResize:
		return "resize"
	case EventExpose:
		return "expose"
	case EventKey:
		return "key"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event is a platform event translated by the driver
type Event struct {
	Kind     EventKind
	WindowID uint32
	Width    int // new drawable size for EventResize
	Height   int
	Key      string // key name for EventKey
}

// MessageKind selects the icon and severity of a message box
type MessageKind int

const (
	MessageInfo MessageKind = iota
	MessageWarning
	MessageError
)

func (k MessageKind) String() string {
	switch k {
	case MessageInfo:
		return "INFO"
	case MessageWarning:
		return "WARNING"
	case MessageError:
		return "ERROR"
	}
	return fmt.Sprintf("MessageKind(%d)", int(k))
}
