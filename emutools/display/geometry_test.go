package display_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/valerio/go-emutools/emutools/display"
)

func TestLetterbox(t *testing.T) {
	tests := []struct {
		name           string
		lw, lh, ww, wh int
		want           display.Rect
	}{
		{"exact multiple", 384, 240, 768, 480, display.Rect{X: 0, Y: 0, W: 768, H: 480}},
		{"wider window", 384, 240, 800, 480, display.Rect{X: 16, Y: 0, W: 768, H: 480}},
		{"taller window", 320, 200, 640, 600, display.Rect{X: 0, Y: 100, W: 640, H: 400}},
		{"same size", 160, 144, 160, 144, display.Rect{X: 0, Y: 0, W: 160, H: 144}},
		{"minimised window", 160, 144, 0, 0, display.Rect{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := display.Letterbox(tt.lw, tt.lh, tt.ww, tt.wh)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWindowTitle(t *testing.T) {
	assert.Equal(t, "VIC-20", display.WindowTitle("VIC-20", ""))
	assert.Equal(t, "VIC-20 [paused]", display.WindowTitle("VIC-20", " [paused]"))
}
