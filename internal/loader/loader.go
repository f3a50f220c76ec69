// Package loader handles ROM file loading operations.
package loader

import (
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
)

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a raw CHIP-8 ROM file. The file is an opaque big-endian
// instruction stream without any header. Empty files and files larger than
// the program space are rejected before any execution begins.
func (l *Loader) Load(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("file %s is empty", path)
	}
	if len(data) > chip8.MaxRomSize {
		return nil, fmt.Errorf("file %s: %w: %d bytes, %d available",
			path, chip8.ErrRomTooLarge, len(data), chip8.MaxRomSize)
	}

	return data, nil
}
