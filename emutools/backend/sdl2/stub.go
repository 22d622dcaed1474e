//go:build !sdl2

package sdl2

import (
	"errors"

	"github.com/valerio/go-emutools/emutools/backend"
)

// ErrUnavailable is returned by every call of the stub driver
var ErrUnavailable = errors.New("SDL2 backend not available - build with -tags sdl2 to enable")

// Driver stub for when SDL2 is not available
type Driver struct{}

// New creates a stub SDL2 driver whose Init fails
func New() *Driver {
	return &Driver{}
}

func (d *Driver) Init() error { return ErrUnavailable }

func (d *Driver) CreateWindow(backend.WindowConfig) (backend.Window, error) {
	return nil, ErrUnavailable
}

func (d *Driver) PrefPath(string, string) (string, error) { return "", ErrUnavailable }

func (d *Driver) PollEvents() []backend.Event { return nil }

func (d *Driver) ShowMessage(backend.MessageKind, string, string, backend.Window) error {
	return ErrUnavailable
}

func (d *Driver) Quit() {}
