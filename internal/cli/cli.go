// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses command line flags and returns program, emulator and
// analyzer options.
func ParseFlags(args []string) (options.Program, options.Emulator, options.Analyzer, error) {
	flags := flag.NewFlagSet(args[0], flag.ContinueOnError)
	flags.SetOutput(os.Stderr)

	var opts options.Program
	emuOpts := options.NewEmulator()
	analyzerOpts := options.NewAnalyzer()

	var mode string
	var noIncrement, noHexComments, noOffsets bool
	readOptionFlags(flags, &opts, &mode)
	readEmulatorFlags(flags, &emuOpts, &noIncrement)
	readAnalyzerFlags(flags, &noHexComments, &noOffsets)

	err := flags.Parse(args[1:])
	positional := flags.Args()
	if err != nil || len(positional) == 0 {
		return opts, emuOpts, analyzerOpts, &UsageError{flags: flags}
	}

	if err := validateArgs(positional); err != nil {
		return opts, emuOpts, analyzerOpts, err
	}
	opts.Input = positional[0]
	opts.Mode = options.Mode(mode)

	emuOpts.Quirks.IncrementIndex = !noIncrement

	// Apply inverse logic for hex comments and offsets
	analyzerOpts.HexComments = !noHexComments
	analyzerOpts.OffsetComments = !noOffsets

	if err := normalizeOptions(&opts); err != nil {
		return opts, emuOpts, analyzerOpts, err
	}

	return opts, emuOpts, analyzerOpts, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <ROM file>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after the ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions validates option values
func normalizeOptions(opts *options.Program) error {
	switch opts.Mode {
	case options.ModeRun, options.ModeAnalyze:
		return nil
	}
	return fmt.Errorf("unsupported mode: %s. Valid options: %s, %s",
		opts.Mode, options.ModeRun, options.ModeAnalyze)
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program, mode *string) {
	flags.StringVar(mode, "m", string(options.ModeRun), "mode of operation (run/analyze)")
	flags.StringVar(&opts.Output, "o", "", "name of the analysis output file, printed on console if no name given")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

func readEmulatorFlags(flags *flag.FlagSet, opts *options.Emulator, noIncrement *bool) {
	flags.IntVar(&opts.CyclesPerFrame, "cycles", opts.CyclesPerFrame, "instructions to execute per 60 Hz timer tick")
	flags.IntVar(&opts.Frames, "frames", 0, "stop after the given amount of frames, 0 runs until an error occurs")
	flags.Int64Var(&opts.Seed, "seed", 0, "seed for the pseudo-random source")
	flags.BoolVar(&opts.Render, "render", false, "render the display to the terminal")
	flags.BoolVar(&opts.Quirks.ShiftSourceY, "shift-vy", false, "shift instructions read Vy instead of Vx (COSMAC VIP behavior)")
	flags.BoolVar(noIncrement, "no-increment-i", false, "register store/load instructions leave the index register unchanged")
}

func readAnalyzerFlags(flags *flag.FlagSet, noHexComments, noOffsets *bool) {
	flags.BoolVar(noHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(noOffsets, "nooffsets", false, "do not output addresses in comments")
}
