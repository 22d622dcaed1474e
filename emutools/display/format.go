package display

import "fmt"

// PixelFormat identifies the native layout of a 32-bit packed pixel.
type PixelFormat int

const (
	FormatUnknown PixelFormat = iota
	FormatARGB8888
	FormatRGBA8888
	FormatABGR8888
	FormatBGRA8888
	FormatRGB888 // XRGB, top byte unused
	FormatBGR888 // XBGR, top byte unused
	FormatARGB2101010
)

type channel struct {
	shift uint
	bits  uint
}

type layout struct {
	name       string
	r, g, b, a channel
}

var layouts = map[PixelFormat]layout{
	FormatARGB8888:    {"ARGB8888", channel{16, 8}, channel{8, 8}, channel{0, 8}, channel{24, 8}},
	FormatRGBA8888:    {"RGBA8888", channel{24, 8}, channel{16, 8}, channel{8, 8}, channel{0, 8}},
	FormatABGR8888:    {"ABGR8888", channel{0, 8}, channel{8, 8}, channel{16, 8}, channel{24, 8}},
	FormatBGRA8888:    {"BGRA8888", channel{8, 8}, channel{16, 8}, channel{24, 8}, channel{0, 8}},
	FormatRGB888:      {"RGB888", channel{16, 8}, channel{8, 8}, channel{0, 8}, channel{}},
	FormatBGR888:      {"BGR888", channel{0, 8}, channel{8, 8}, channel{16, 8}, channel{}},
	FormatARGB2101010: {"ARGB2101010", channel{20, 10}, channel{10, 10}, channel{0, 10}, channel{30, 2}},
}

// Formats lists every supported pixel format.
func Formats() []PixelFormat {
	return []PixelFormat{
		FormatARGB8888, FormatRGBA8888, FormatABGR8888, FormatBGRA8888,
		FormatRGB888, FormatBGR888, FormatARGB2101010,
	}
}

// ParsePixelFormat resolves a format by its name (e.g. "ARGB8888").
func ParsePixelFormat(name string) (PixelFormat, error) {
	for f, l := range layouts {
		if l.name == name {
			return f, nil
		}
	}
	return FormatUnknown, fmt.Errorf("unknown pixel format %q", name)
}

func (f PixelFormat) String() string {
	if l, ok := layouts[f]; ok {
		return l.name
	}
	return fmt.Sprintf("PixelFormat(%d)", int(f))
}

// Valid reports whether the format is one of the supported layouts.
func (f PixelFormat) Valid() bool {
	_, ok := layouts[f]
	return ok
}

// HasAlpha reports whether the format stores an alpha channel.
func (f PixelFormat) HasAlpha() bool {
	return layouts[f].a.bits > 0
}

// MapRGB encodes an opaque colour into the native pixel value.
func (f PixelFormat) MapRGB(r, g, b uint8) uint32 {
	l, ok := layouts[f]
	if !ok {
		panic(fmt.Sprintf("display: MapRGB on unsupported format %v", f))
	}
	v := widen(r, l.r) | widen(g, l.g) | widen(b, l.b)
	if f.HasAlpha() {
		v |= (1<<l.a.bits - 1) << l.a.shift
	}
	return v
}

// RGB decodes a native pixel value back into 8-bit components.
func (f PixelFormat) RGB(v uint32) (r, g, b uint8) {
	l, ok := layouts[f]
	if !ok {
		panic(fmt.Sprintf("display: RGB on unsupported format %v", f))
	}
	return narrow(v, l.r), narrow(v, l.g), narrow(v, l.b)
}

// widen places an 8-bit component into a channel of 8 or more bits,
// replicating the high bits into the extra low bits.
func widen(c uint8, ch channel) uint32 {
	v := uint32(c)
	if ch.bits > 8 {
		extra := ch.bits - 8
		v = v<<extra | v>>(8-extra)
	}
	return v << ch.shift
}

func narrow(v uint32, ch channel) uint8 {
	c := (v >> ch.shift) & (1<<ch.bits - 1)
	return uint8(c >> (ch.bits - 8) & ColorMask)
}
