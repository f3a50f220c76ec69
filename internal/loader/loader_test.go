package loader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func writeTempRom(t *testing.T, data []byte) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.ch8")
	assert.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoad(t *testing.T) {
	expected := []byte{0x12, 0x00, 0xAA}
	path := writeTempRom(t, expected)

	rom, err := New().Load(path)
	assert.NoError(t, err)
	assert.Equal(t, expected, rom)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := New().Load(filepath.Join(t.TempDir(), "missing.ch8"))
	assert.Error(t, err)
}

func TestLoadEmptyFile(t *testing.T) {
	path := writeTempRom(t, nil)

	_, err := New().Load(path)
	assert.ErrorContains(t, err, "empty")
}

func TestLoadTooLarge(t *testing.T) {
	path := writeTempRom(t, make([]byte, chip8.MaxRomSize+1))

	_, err := New().Load(path)
	assert.True(t, errors.Is(err, chip8.ErrRomTooLarge))
}
