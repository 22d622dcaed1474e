package display

// Rect is an integer rectangle in window pixels.
type Rect struct {
	X, Y, W, H int
}

// Empty reports whether the rectangle covers no pixels.
func (r Rect) Empty() bool {
	return r.W <= 0 || r.H <= 0
}

// Letterbox returns the largest rectangle with the logical aspect ratio that
// fits the window, centred. The uncovered area is left for black bars.
func Letterbox(logicalW, logicalH, windowW, windowH int) Rect {
	if logicalW <= 0 || logicalH <= 0 || windowW <= 0 || windowH <= 0 {
		return Rect{}
	}

	// compare windowW/windowH against logicalW/logicalH without floats
	if windowW*logicalH > windowH*logicalW {
		// window is wider: bars left and right
		w := windowH * logicalW / logicalH
		return Rect{X: (windowW - w) / 2, Y: 0, W: w, H: windowH}
	}

	h := windowW * logicalH / logicalW
	return Rect{X: 0, Y: (windowH - h) / 2, W: windowW, H: h}
}

// WindowTitle builds the visible window title from the base title and an
// optional addon.
func WindowTitle(base, addon string) string {
	return base + addon
}
