package display

import (
	"errors"
	"fmt"
)

// ScaleQuality selects the filter used when the texture is scaled to the window.
type ScaleQuality int

const (
	QualityNearest ScaleQuality = iota
	QualityLinear
	QualityBest
)

// Valid reports whether q is one of the three supported qualities.
func (q ScaleQuality) Valid() bool {
	return q >= QualityNearest && q <= QualityBest
}

// Hint returns the value of the SDL render scale quality hint.
func (q ScaleQuality) Hint() string {
	return fmt.Sprintf("%d", int(q))
}

func (q ScaleQuality) String() string {
	switch q {
	case QualityNearest:
		return "nearest"
	case QualityLinear:
		return "linear"
	case QualityBest:
		return "best"
	}
	return fmt.Sprintf("ScaleQuality(%d)", int(q))
}

// MustBeValid panics when q is outside the three supported values. Passing
// another value is a programming error, not a runtime condition.
func (q ScaleQuality) MustBeValid() {
	if !q.Valid() {
		panic(fmt.Sprintf("display: render scale quality must be 0, 1 or 2, got %d", int(q)))
	}
}

// AccessMode selects how callers reach the pixels of a frame.
type AccessMode int

const (
	// AccessLocked writes straight into the texture's backing store. Every
	// pixel must be written each frame.
	AccessLocked AccessMode = iota
	// AccessShadow writes into a persistent buffer that is uploaded on commit.
	AccessShadow
)

func (m AccessMode) String() string {
	switch m {
	case AccessLocked:
		return "locked"
	case AccessShadow:
		return "shadow"
	}
	return fmt.Sprintf("AccessMode(%d)", int(m))
}

// ParseAccessMode converts a flag value into an AccessMode.
func ParseAccessMode(s string) (AccessMode, error) {
	switch s {
	case "locked":
		return AccessLocked, nil
	case "shadow":
		return AccessShadow, nil
	}
	return 0, fmt.Errorf("unknown access mode %q (want locked or shadow)", s)
}

// Config holds the display surface configuration. It is not modified after
// the surface has been created.
type Config struct {
	Title        string
	Organization string // used with AppName to resolve the preferences path
	AppName      string
	Resizable    bool
	Fullscreen   bool

	TextureWidth  int
	TextureHeight int
	LogicalWidth  int // aspect-corrected size, defaults to the texture size
	LogicalHeight int
	WindowWidth   int // initial window size, defaults to DefaultPixelScale * logical
	WindowHeight  int

	Format  PixelFormat
	Colors  []byte // RGB triples, one per palette entry
	Quality ScaleQuality
	Access  AccessMode

	// OnShutdown runs once when the surface is torn down, including when
	// initialization fails halfway.
	OnShutdown func()
}

// WithDefaults fills the optional sizes.
func (c Config) WithDefaults() Config {
	if c.LogicalWidth == 0 && c.LogicalHeight == 0 {
		c.LogicalWidth = c.TextureWidth
		c.LogicalHeight = c.TextureHeight
	}
	if c.WindowWidth == 0 && c.WindowHeight == 0 {
		c.WindowWidth = c.LogicalWidth * DefaultPixelScale
		c.WindowHeight = c.LogicalHeight * DefaultPixelScale
	}
	return c
}

// Validate reports configuration values that cannot produce a surface.
func (c Config) Validate() error {
	var errs []error
	if c.TextureWidth <= 0 || c.TextureHeight <= 0 {
		errs = append(errs, fmt.Errorf("invalid texture size %dx%d", c.TextureWidth, c.TextureHeight))
	}
	if c.LogicalWidth <= 0 || c.LogicalHeight <= 0 {
		errs = append(errs, fmt.Errorf("invalid logical size %dx%d", c.LogicalWidth, c.LogicalHeight))
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		errs = append(errs, fmt.Errorf("invalid window size %dx%d", c.WindowWidth, c.WindowHeight))
	}
	if !c.Format.Valid() {
		errs = append(errs, fmt.Errorf("unsupported pixel format %v", c.Format))
	}
	if len(c.Colors)%3 != 0 {
		errs = append(errs, fmt.Errorf("colour data must be RGB triples, got %d bytes", len(c.Colors)))
	}
	if c.Access != AccessLocked && c.Access != AccessShadow {
		errs = append(errs, fmt.Errorf("unknown access mode %v", c.Access))
	}
	return errors.Join(errs...)
}
