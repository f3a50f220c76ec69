package chip8

// Display dimensions of the monochrome framebuffer.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Display is the 64x32 monochrome framebuffer. Pixels only change through
// XOR composition during sprite draws; Clear resets all pixels. A dirty
// flag records whether any pixel changed since the flag was last taken,
// letting the host decide whether a redraw is needed.
type Display struct {
	pixels [DisplayHeight][DisplayWidth]bool
	dirty  bool
}

// Pixel returns the state of the pixel at the given coordinates.
// Coordinates wrap around the display edges.
func (d *Display) Pixel(x, y int) bool {
	return d.pixels[y%DisplayHeight][x%DisplayWidth]
}

// xorPixel blends a sprite bit onto the pixel at the given coordinates and
// returns whether a previously set pixel was cleared.
func (d *Display) xorPixel(x, y int, bit bool) bool {
	if !bit {
		return false
	}
	px := &d.pixels[y%DisplayHeight][x%DisplayWidth]
	collision := *px
	*px = !*px
	d.dirty = true
	return collision
}

// Clear resets all pixels.
func (d *Display) Clear() {
	d.pixels = [DisplayHeight][DisplayWidth]bool{}
	d.dirty = true
}

// TakeDirty returns whether the framebuffer changed since the last call
// and resets the flag.
func (d *Display) TakeDirty() bool {
	dirty := d.dirty
	d.dirty = false
	return dirty
}

// Snapshot returns a copy of the framebuffer contents.
func (d *Display) Snapshot() [DisplayHeight][DisplayWidth]bool {
	return d.pixels
}
