// Package main implements the main entry point for a CHIP-8 emulator
// and static ROM analyzer
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/analyzer"
	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/report"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := app.Context()

	opts, emuOpts, analyzerOpts, err := cli.ParseFlags(os.Args)
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(logger, opts)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	printBanner(logger, opts)

	if err := processFile(ctx, logger, opts, emuOpts, analyzerOpts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Operation cancelled")
			return
		}
		logger.Error("Processing failed", log.Err(err))
		os.Exit(1)
	}
}

// printBanner prints application version information
func printBanner(logger *log.Logger, opts options.Program) {
	if opts.Quiet {
		return
	}

	versionString := version
	if commit != "" {
		if len(commit) > 7 {
			commit = commit[:7]
		}
		versionString += fmt.Sprintf(" (%s)", commit)
	}

	logger.Info("retrochip8", log.String("version", versionString))

	if date != "" && !strings.Contains(date, "unknown") {
		logger.Info("Build", log.String("date", date))
	}
}

// processFile loads the ROM and dispatches to the selected mode.
func processFile(ctx context.Context, logger *log.Logger, opts options.Program,
	emuOpts options.Emulator, analyzerOpts options.Analyzer) error {

	rom, err := loader.New().Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	if opts.Mode == options.ModeAnalyze {
		return analyzeROM(logger, opts, analyzerOpts, rom)
	}
	return runROM(ctx, logger, opts, emuOpts, rom)
}

// runROM executes the ROM in the emulator until an error or cancellation.
func runROM(ctx context.Context, logger *log.Logger, opts options.Program,
	emuOpts options.Emulator, rom []byte) error {

	systemOptions := []chip8.Option{chip8.WithQuirks(emuOpts.Quirks)}
	if emuOpts.Seed != 0 {
		systemOptions = append(systemOptions, chip8.WithRandSeed(emuOpts.Seed))
	}

	system := chip8.New(systemOptions...)
	if err := system.Reset(rom); err != nil {
		return fmt.Errorf("resetting system: %w", err)
	}

	if !opts.Quiet {
		logger.Info("Running CHIP-8 ROM",
			log.String("file", opts.Input),
			log.Int("size", len(rom)),
		)
	}

	if err := runner.New(logger, system, emuOpts, os.Stdout).Run(ctx); err != nil {
		logger.Debug("Final state", log.String("system", system.String()))
		return err
	}
	return nil
}

// analyzeROM performs static control flow analysis and writes the listing.
func analyzeROM(logger *log.Logger, opts options.Program,
	analyzerOpts options.Analyzer, rom []byte) error {

	result, err := analyzer.New(logger).Analyze(rom, chip8.ProgramStart)
	if err != nil {
		return fmt.Errorf("analyzing ROM: %w", err)
	}

	if !opts.Quiet {
		logger.Info("Analyzing CHIP-8 ROM",
			log.String("file", opts.Input),
			log.Int("size", len(rom)),
			log.Int("code_instructions", len(result.Instructions)),
		)
	}

	var output io.WriteCloser = os.Stdout
	if opts.Output != "" {
		output, err = os.Create(opts.Output)
		if err != nil {
			return fmt.Errorf("creating file %s: %w", opts.Output, err)
		}
	}

	writer := report.New(rom, result, output, report.Options{
		HexComments:    analyzerOpts.HexComments,
		OffsetComments: analyzerOpts.OffsetComments,
	})
	if err := writer.Write(); err != nil {
		return fmt.Errorf("writing analysis report: %w", err)
	}

	if opts.Output != "" {
		if err := output.Close(); err != nil {
			return fmt.Errorf("closing file: %w", err)
		}
	}
	return nil
}
