// Package runner drives the execution engine with the host clocks.
package runner

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// frameDuration is the timer tick cadence, CHIP-8 timers decay at 60 Hz.
const frameDuration = time.Second / 60

// Runner schedules the two engine clocks: a configurable amount of
// instruction ticks per frame and one timer tick per frame at 60 Hz.
// Instruction execution and timer decay are decoupled, the ratio
// approximates a faster instruction clock against the fixed timer clock.
type Runner struct {
	logger  *log.Logger
	system  *chip8.System
	options options.Emulator
	output  io.Writer
}

// New creates a new runner. The output writer receives the terminal
// rendering of the framebuffer and can be nil when rendering is disabled.
func New(logger *log.Logger, system *chip8.System, opts options.Emulator, output io.Writer) *Runner {
	return &Runner{
		logger:  logger,
		system:  system,
		options: opts,
		output:  output,
	}
}

// Run executes the ROM until the context is canceled, the configured frame
// count is reached or the engine returns an error. Engine errors reflect
// ROM correctness problems and stop the run, there are no retries.
func (r *Runner) Run(ctx context.Context) error {
	r.logger.Debug("Starting execution",
		log.Int("cycles_per_frame", r.options.CyclesPerFrame),
		log.Int("frames", r.options.Frames),
	)

	ticker := time.NewTicker(frameDuration)
	defer ticker.Stop()

	for frame := 0; r.options.Frames == 0 || frame < r.options.Frames; frame++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := r.runFrame(); err != nil {
			return err
		}
	}
	return nil
}

// runFrame executes the instruction ticks of one frame, decays the timers
// and renders the display if it changed.
func (r *Runner) runFrame() error {
	for range r.options.CyclesPerFrame {
		if err := r.system.Tick(); err != nil {
			return fmt.Errorf("executing instruction: %w", err)
		}
	}
	r.system.TickTimers()

	if r.output != nil && r.options.Render && r.system.Display().TakeDirty() {
		if err := r.render(); err != nil {
			return err
		}
	}
	return nil
}

// render writes the framebuffer as ASCII rows to the output writer.
func (r *Runner) render() error {
	pixels := r.system.Display().Snapshot()

	buf := make([]byte, 0, (chip8.DisplayWidth+1)*chip8.DisplayHeight)
	for y := range chip8.DisplayHeight {
		for x := range chip8.DisplayWidth {
			if pixels[y][x] {
				buf = append(buf, '#')
			} else {
				buf = append(buf, '.')
			}
		}
		buf = append(buf, '\n')
	}

	if _, err := r.output.Write(buf); err != nil {
		return fmt.Errorf("rendering display: %w", err)
	}
	return nil
}
