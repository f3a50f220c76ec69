package chip8

import (
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDisplayXorPixel(t *testing.T) {
	var display Display

	// setting an unset pixel reports no collision
	assert.False(t, display.xorPixel(3, 4, true))
	assert.True(t, display.Pixel(3, 4))

	// XOR on a set pixel clears it and reports the collision
	assert.True(t, display.xorPixel(3, 4, true))
	assert.False(t, display.Pixel(3, 4))

	// an unset sprite bit never changes the pixel
	assert.False(t, display.xorPixel(3, 4, false))
	assert.False(t, display.Pixel(3, 4))
}

func TestDisplayCoordinateWrap(t *testing.T) {
	var display Display

	display.xorPixel(DisplayWidth+1, DisplayHeight+2, true)
	assert.True(t, display.Pixel(1, 2))
}

func TestDisplayDirtyFlag(t *testing.T) {
	var display Display
	assert.False(t, display.TakeDirty())

	display.xorPixel(0, 0, true)
	assert.True(t, display.TakeDirty())
	assert.False(t, display.TakeDirty())

	display.Clear()
	assert.True(t, display.TakeDirty())
}

func TestDisplayClear(t *testing.T) {
	var display Display
	display.xorPixel(10, 10, true)

	display.Clear()
	assert.False(t, display.Pixel(10, 10))
}
