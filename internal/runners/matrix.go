package runners

import (
	"fmt"

	"github.com/jessegalley/fsyncbench/internal/policy"
)

// MatrixConfig contains the configuration for a benchmark matrix.
// the embedded Config is the template for every run; its Policy is
// replaced by each matrix policy in turn.
type MatrixConfig struct {
	Config

	// number of timed runs per policy
	Trials int
}

// NewMatrixConfig creates a MatrixConfig with default sizes and trial count
func NewMatrixConfig() MatrixConfig {
	return MatrixConfig{
		Config: NewConfig(),
		Trials: DefaultTrials,
	}
}

// Entry holds the trial results of one policy, in execution order
type Entry struct {
	Policy policy.FlushPolicy
	Millis []int64
}

// Report is the outcome of a benchmark matrix, one entry per policy
// in matrix order
type Report struct {
	ChunkSize  int
	TargetSize int64
	Trials     int
	Entries    []Entry
}

// RunMatrix runs cfg.Trials timed writes for every matrix policy.
// policies and trials run strictly one after another so runs do not
// disturb each other's timing. the first failed run aborts the matrix.
func RunMatrix(cfg MatrixConfig) (*Report, error) {
	if cfg.Trials < 1 {
		return nil, fmt.Errorf("trials must be at least 1, got %d", cfg.Trials)
	}

	policies := policy.Matrix()
	report := &Report{
		ChunkSize:  cfg.ChunkSize,
		TargetSize: cfg.TargetSize,
		Trials:     cfg.Trials,
		Entries:    make([]Entry, 0, len(policies)),
	}

	fmt.Fprintf(cfg.progress(), "running %d trials writing %d KiB of data\n", cfg.Trials, cfg.TargetSize/1024)

	for _, p := range policies {
		// every trial of this policy shares the template config
		runCfg := cfg.Config
		runCfg.Policy = p

		entry := Entry{
			Policy: p,
			Millis: make([]int64, 0, cfg.Trials),
		}
		for trial := 0; trial < cfg.Trials; trial++ {
			result, err := TimedWrite(runCfg)
			if err != nil {
				return nil, fmt.Errorf("policy %s trial %d: %w", p, trial+1, err)
			}
			entry.Millis = append(entry.Millis, result.Millis())
		}

		report.Entries = append(report.Entries, entry)
	}

	return report, nil
}
