/*
Copyright © 2025 jesse galley <jesse@jessegalley.net>
*/
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jessegalley/fsyncbench/internal/runners"
)

// program info const
const progVersion string = "0.1.0"
const progAuthor string = "jesse galley <jesse@jessegalley.net>"

// options holds the values of the command line flags
type options struct {
	blockSize  int    // chunk size for each write call in bytes
	targetSize int64  // total bytes written per run
	fsyncSize  int64  // flush policy: 0 never, -1 on close, N every N bytes
	trials     int    // timed runs per policy in matrix mode
	bench      bool   // run the full flush interval matrix
	fileName   string // scratch file path
	outFmt     string // matrix output format
	plotPath   string // write a box plot of the matrix here
	prealloc   bool   // lay out the scratch file before measuring
	reinit     bool   // lay out the scratch file even if it already exists
	debug      bool   // dump the resolved configuration to stderr
	cpuProfile string // write a cpu profile here
	version    bool   // print version and exit
}

// newRootCmd builds the fsyncbench command with its flags bound to a fresh options
func newRootCmd() *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "fsyncbench [flags]",
		Short: "Measure the latency cost of periodic fdatasync during sequential writes.",
		Long: `Writes a fixed amount of data to a scratch file in fixed size chunks,
optionally forcing it to disk every N bytes, and reports how long the run took.

With -r the run is repeated -l times for each of a fixed set of flush intervals
(never, on close, 100MiB down to 16KiB) and the timings are printed per interval.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			// check if version flag was set
			if opts.version {
				fmt.Fprintf(cmd.OutOrStdout(), "fsyncbench v%s\n%s\n", progVersion, progAuthor)
				return nil
			}

			// flags parsed fine, so anything past here is not a usage problem
			cmd.SilenceUsage = true

			if err := validateParameters(opts); err != nil {
				return fmt.Errorf("error parsing flags: %w", err)
			}

			return runBench(cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
		},
	}

	bindFlags(cmd.Flags(), opts)

	return cmd
}

// bindFlags defines the command line flags, writing values to opts
func bindFlags(flags *pflag.FlagSet, opts *options) {
	flags.IntVarP(&opts.blockSize, "block", "b", runners.DefaultChunkSize, "write block size in bytes (0 uses the default)")
	flags.Int64VarP(&opts.targetSize, "target", "t", runners.DefaultTargetSize, "target size in bytes written per run")
	flags.Int64VarP(&opts.fsyncSize, "fsync", "f", -1, "call fdatasync after this many bytes; 0 never syncs and -1 syncs once at the end of writes")
	flags.IntVarP(&opts.trials, "trials", "l", runners.DefaultTrials, "number of trials per interval when running the benchmark matrix")
	flags.BoolVarP(&opts.bench, "bench", "r", false, "run the benchmark doing multiple trials at various fsync intervals")
	flags.StringVar(&opts.fileName, "file", runners.DefaultFilePath, "path of the scratch file")
	flags.StringVar(&opts.outFmt, "format", "map", "benchmark output format (map, json, table, or flat)")
	flags.StringVar(&opts.plotPath, "plot", "", "write a box plot of the benchmark to this image file (.png, .svg, .pdf)")
	flags.BoolVar(&opts.prealloc, "prealloc", false, "lay out the scratch file to the target size before measuring")
	flags.BoolVar(&opts.reinit, "reinit", false, "with --prealloc, lay out the scratch file even if it already exists")
	flags.BoolVar(&opts.debug, "debug", false, "dump the resolved configuration to stderr")
	flags.StringVar(&opts.cpuProfile, "cpuprofile", "", "write a cpu profile to this file")
	flags.BoolVarP(&opts.version, "version", "V", false, "print version and exit")
}

// Execute builds the root command and runs it.
// This is called by main.main(). It only needs to happen once.
func Execute() {
	err := newRootCmd().Execute()
	if err != nil {
		os.Exit(1)
	}
}
