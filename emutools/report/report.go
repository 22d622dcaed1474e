package report

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/valerio/go-emutools/emutools/backend"
)

// Reporter shows messages to the user. A modal message stops emulation while
// real time goes on, so after each one the emulator's input state is cleared,
// pending platform events are dropped and the frame pacer is re-armed.
type Reporter struct {
	driver        backend.Driver
	window        backend.Window
	title         func() string
	clearInput    func()
	resync        func()
	exit          func(code int)
	fallbackTitle string
}

// Option configures a Reporter
type Option func(*Reporter)

// WithWindow sets the parent window of message boxes; its title is used as
// the message box title.
func WithWindow(w backend.Window) Option {
	return func(r *Reporter) { r.window = w }
}

// WithTitle sets the message box title used when there is no window yet.
func WithTitle(title string) Option {
	return func(r *Reporter) { r.fallbackTitle = title }
}

// WithClearInput sets the hook that resets emulated input (keyboard matrix,
// joystick) so keys held when the dialog opened do not stay stuck.
func WithClearInput(fn func()) Option {
	return func(r *Reporter) { r.clearInput = fn }
}

// WithResync sets the hook that re-arms frame pacing, usually Pacer.Start.
func WithResync(fn func()) Option {
	return func(r *Reporter) { r.resync = fn }
}

// WithExit replaces os.Exit for Fatal.
func WithExit(fn func(code int)) Option {
	return func(r *Reporter) { r.exit = fn }
}

// New creates a reporter on top of a windowing driver.
func New(driver backend.Driver, opts ...Option) *Reporter {
	r := &Reporter{
		driver:        driver,
		exit:          os.Exit,
		fallbackTitle: "emutools",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetWindow attaches the message boxes to w from now on.
func (r *Reporter) SetWindow(w backend.Window) {
	r.window = w
}

func (r *Reporter) Info(format string, args ...any) {
	r.show(backend.MessageInfo, fmt.Sprintf(format, args...))
}

func (r *Reporter) Warning(format string, args ...any) {
	r.show(backend.MessageWarning, fmt.Sprintf(format, args...))
}

func (r *Reporter) Error(format string, args ...any) {
	r.show(backend.MessageError, fmt.Sprintf(format, args...))
}

// Fatal reports an error and terminates the process with status 1.
func (r *Reporter) Fatal(format string, args ...any) {
	r.Error(format, args...)
	r.exit(1)
}

func (r *Reporter) show(kind backend.MessageKind, text string) {
	switch kind {
	case backend.MessageError:
		slog.Error(text)
	case backend.MessageWarning:
		slog.Warn(text)
	default:
		slog.Info(text)
	}

	if r.driver != nil {
		if err := r.driver.ShowMessage(kind, r.messageTitle(), text, r.window); err != nil {
			slog.Warn("Cannot show message box", "error", err)
		}
		// the dialog swallowed key releases and let events pile up
		if r.clearInput != nil {
			r.clearInput()
		}
		r.driver.PollEvents()
	}

	if r.resync != nil {
		r.resync()
	}
}

func (r *Reporter) messageTitle() string {
	if r.window != nil {
		return r.window.Title()
	}
	return r.fallbackTitle
}
