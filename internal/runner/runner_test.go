package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func newTestRunner(t *testing.T, rom []byte, opts options.Emulator, output io.Writer) *Runner {
	t.Helper()

	system := chip8.New()
	assert.NoError(t, system.Reset(rom))

	return New(log.NewTestLogger(t), system, opts, output)
}

func TestRunFrameLimit(t *testing.T) {
	rom := []byte{0x12, 0x00} // jp $200
	opts := options.NewEmulator()
	opts.Frames = 2

	runner := newTestRunner(t, rom, opts, nil)
	assert.NoError(t, runner.Run(context.Background()))
}

func TestRunStopsOnEngineError(t *testing.T) {
	rom := []byte{0x00, 0x00} // invalid opcode
	opts := options.NewEmulator()
	opts.Frames = 1

	runner := newTestRunner(t, rom, opts, nil)
	err := runner.Run(context.Background())
	assert.True(t, errors.Is(err, chip8.ErrInvalidOpcode))
}

func TestRunContextCancel(t *testing.T) {
	rom := []byte{0x12, 0x00} // jp $200
	opts := options.NewEmulator()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := newTestRunner(t, rom, opts, nil)
	err := runner.Run(ctx)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRunRendersDirtyDisplay(t *testing.T) {
	rom := []byte{
		0xA0, 0x00, // ld i,$000 - font sprite for 0
		0xD0, 0x05, // drw v0,v0,5
		0x12, 0x04, // jp $204
	}
	opts := options.NewEmulator()
	opts.Frames = 1
	opts.Render = true

	var output bytes.Buffer
	runner := newTestRunner(t, rom, opts, &output)
	assert.NoError(t, runner.Run(context.Background()))

	rendered := output.String()
	assert.Contains(t, rendered, "####")
	assert.Equal(t, chip8.DisplayHeight, bytes.Count(output.Bytes(), []byte{'\n'}))
}
