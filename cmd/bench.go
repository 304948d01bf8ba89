/*
Copyright © 2025 jesse galley <jesse@jessegalley.net>
*/
package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime/pprof"

	"github.com/davecgh/go-spew/spew"

	"github.com/jessegalley/fsyncbench/internal/layout"
	"github.com/jessegalley/fsyncbench/internal/output"
	"github.com/jessegalley/fsyncbench/internal/plot"
	"github.com/jessegalley/fsyncbench/internal/policy"
	"github.com/jessegalley/fsyncbench/internal/runners"
)

// validateParameters checks all command line parameters for validity
func validateParameters(opts *options) error {
	// a missing block size falls back to the default
	if opts.blockSize <= 0 {
		opts.blockSize = runners.DefaultChunkSize
	}

	// validate block size
	if opts.blockSize > runners.MaxChunkSize {
		return fmt.Errorf("block size must be at most %d, got %d", runners.MaxChunkSize, opts.blockSize)
	}

	// validate target size
	if opts.targetSize < 0 {
		return fmt.Errorf("target size must not be negative, got %d", opts.targetSize)
	}

	// validate the flush policy
	if _, err := policy.Parse(opts.fsyncSize); err != nil {
		return err
	}

	// validate number of trials
	if opts.trials < 1 {
		return fmt.Errorf("trials must be at least 1, got %d", opts.trials)
	}

	// validate output format
	if _, err := output.ValidateFormat(opts.outFmt); err != nil {
		return err
	}

	// a plot only makes sense for the matrix
	if opts.plotPath != "" && !opts.bench {
		return fmt.Errorf("--plot requires the benchmark matrix (-r)")
	}

	// catch an unrenderable plot path before any timed run
	if opts.plotPath != "" {
		if _, err := plot.ValidatePath(opts.plotPath); err != nil {
			return err
		}
	}

	return nil
}

// runBench executes a single timed run or the benchmark matrix. results go
// to stdout, progress and diagnostics to stderr.
func runBench(stdout, stderr io.Writer, opts *options) error {
	p, err := policy.Parse(opts.fsyncSize)
	if err != nil {
		return err
	}

	format, err := output.ValidateFormat(opts.outFmt)
	if err != nil {
		return err
	}

	// start the cpu profile if asked for
	if opts.cpuProfile != "" {
		f, err := os.Create(opts.cpuProfile)
		if err != nil {
			return fmt.Errorf("failed to create cpu profile: %w", err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	// validate that the scratch dir exists and is writable by the
	// calling user. create it if possible
	if err := layout.EnsureScratchDirectory(opts.fileName); err != nil {
		return err
	}

	if opts.prealloc {
		fmt.Fprintf(stderr, "laying out %s with %d bytes\n", opts.fileName, opts.targetSize)
		if err := layout.LayoutScratchFile(opts.fileName, opts.targetSize, runners.Filler, opts.reinit); err != nil {
			return fmt.Errorf("failed to lay out scratch file %s: %w", opts.fileName, err)
		}
	}

	cfg := runners.NewConfig()
	cfg.FilePath = opts.fileName
	cfg.ChunkSize = opts.blockSize
	cfg.TargetSize = opts.targetSize
	cfg.Policy = p

	if !opts.bench {
		if opts.debug {
			spew.Fdump(stderr, cfg)
		}
		cfg.Progress = stderr

		result, err := runners.TimedWrite(cfg)
		if err != nil {
			return fmt.Errorf("test failed: %w", err)
		}

		fmt.Fprint(stdout, output.FormatSingle(result))
		return nil
	}

	mcfg := runners.NewMatrixConfig()
	mcfg.Config = cfg
	mcfg.Trials = opts.trials
	if opts.debug {
		spew.Fdump(stderr, mcfg)
	}
	mcfg.Progress = stderr

	report, err := runners.RunMatrix(mcfg)
	if err != nil {
		return fmt.Errorf("benchmark failed: %w", err)
	}

	// format and output the results
	out, err := output.FormatReport(report, format)
	if err != nil {
		return fmt.Errorf("failed to format results: %w", err)
	}
	fmt.Fprint(stdout, out)

	if opts.plotPath != "" {
		if err := plot.SaveBoxPlot(opts.plotPath, report); err != nil {
			return err
		}
		fmt.Fprintf(stderr, "wrote plot to %s\n", opts.plotPath)
	}

	return nil
}
