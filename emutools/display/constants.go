package display

// Pixel storage constants
const (
	// BytesPerPixel is the storage size of every supported pixel format
	BytesPerPixel = 4
	// ColorMask is the mask for an 8-bit colour component
	ColorMask = 0xFF
)

// Window defaults
const (
	// DefaultPixelScale is the window scale used when no window size is given
	DefaultPixelScale = 2
	// DefaultRowAlignment is the row alignment (in pixels) of headless textures
	DefaultRowAlignment = 16
)

// Colour constants used for letterbox bars and blank frames
const (
	// BlackLevel is the component value of the letterbox bars
	BlackLevel = 0
	// FullAlpha is the alpha value for fully opaque pixels
	FullAlpha = 255
)
