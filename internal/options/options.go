// Package options contains the program options.
package options

import "github.com/retroenv/retrochip8/internal/chip8"

// Mode selects the program operation.
type Mode string

// Program modes.
const (
	ModeRun     Mode = "run"     // execute the ROM
	ModeAnalyze Mode = "analyze" // static control flow analysis
)

// Program options of the emulator and analyzer.
type Program struct {
	Mode   Mode
	Input  string // ROM file to process
	Output string // analysis output file, stdout if empty

	Debug bool // enable debug logging
	Quiet bool // perform operations quietly
}

// Emulator defines options to control the execution engine and run loop.
type Emulator struct {
	CyclesPerFrame int   // instructions executed per timer tick
	Frames         int   // stop after this many frames, 0 runs until error
	Seed           int64 // pseudo-random source seed
	Render         bool  // dump the framebuffer to the terminal when it changed

	Quirks chip8.Quirks
}

// Analyzer defines options to control the analysis report.
type Analyzer struct {
	HexComments    bool // output opcode bytes as hex values in comments
	OffsetComments bool // output addresses in comments
}

// NewEmulator returns emulator options with default values.
func NewEmulator() Emulator {
	return Emulator{
		CyclesPerFrame: 11, // ~700 instructions per second at 60 Hz
		Quirks: chip8.Quirks{
			IncrementIndex: true,
		},
	}
}

// NewAnalyzer returns analyzer options with default values.
func NewAnalyzer() Analyzer {
	return Analyzer{
		HexComments:    true,
		OffsetComments: true,
	}
}
