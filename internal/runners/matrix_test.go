package runners

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jessegalley/fsyncbench/internal/policy"
)

func TestRunMatrixShape(t *testing.T) {
	opener := &fakeOpener{sink: &fakeSink{}}

	cfg := NewMatrixConfig()
	cfg.ChunkSize = 1024
	cfg.TargetSize = 8 * 1024
	cfg.Trials = 3
	cfg.Open = opener.open

	report, err := RunMatrix(cfg)
	require.NoError(t, err)

	require.Len(t, report.Entries, 11)
	assert.Equal(t, 3, report.Trials)
	assert.Equal(t, 1024, report.ChunkSize)
	assert.Equal(t, int64(8*1024), report.TargetSize)

	want := []int64{0, -1, 100 << 20, 10 << 20, 1 << 20, 512 << 10, 256 << 10, 128 << 10, 64 << 10, 32 << 10, 16 << 10}
	for i, entry := range report.Entries {
		assert.Equal(t, want[i], entry.Policy.Value())
		assert.Len(t, entry.Millis, 3)
		for _, ms := range entry.Millis {
			assert.GreaterOrEqual(t, ms, int64(0))
		}
	}

	// every trial opens and closes the scratch file once
	assert.Equal(t, 11*3, opener.opens)
	assert.Equal(t, 11*3, opener.sink.count("close"))
	assert.Equal(t, 11*3*8, opener.sink.count("write"))
}

func TestRunMatrixFlushesPerPolicy(t *testing.T) {
	// record the flush count of each run by giving every open a fresh sink
	var sinks []*fakeSink
	open := func(string) (Sink, error) {
		s := &fakeSink{}
		sinks = append(sinks, s)
		return s, nil
	}

	cfg := NewMatrixConfig()
	cfg.ChunkSize = 4096
	cfg.TargetSize = 64 * 1024
	cfg.Trials = 1
	cfg.Open = open

	_, err := RunMatrix(cfg)
	require.NoError(t, err)
	require.Len(t, sinks, 11)

	flushes := make([]int, len(sinks))
	for i, s := range sinks {
		flushes[i] = s.count("flush")
	}

	// never, close, then 100M..64K flush once, 32K twice and 16K four times
	assert.Equal(t, []int{0, 1, 1, 1, 1, 1, 1, 1, 1, 2, 4}, flushes)
}

func TestRunMatrixAbortsOnError(t *testing.T) {
	boom := errors.New("disk gone")
	opener := &fakeOpener{sink: &fakeSink{}, err: boom}

	cfg := NewMatrixConfig()
	cfg.TargetSize = 4096
	cfg.Trials = 2
	cfg.Open = opener.open

	report, err := RunMatrix(cfg)
	assert.Nil(t, report)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "policy 0 trial 1")
}

func TestRunMatrixRejectsZeroTrials(t *testing.T) {
	cfg := NewMatrixConfig()
	cfg.Trials = 0

	_, err := RunMatrix(cfg)
	assert.Error(t, err)
}

func TestRunMatrixProgress(t *testing.T) {
	opener := &fakeOpener{sink: &fakeSink{}}
	var progress strings.Builder

	cfg := NewMatrixConfig()
	cfg.ChunkSize = 1024
	cfg.TargetSize = 4096
	cfg.Trials = 2
	cfg.Open = opener.open
	cfg.Progress = &progress

	_, err := RunMatrix(cfg)
	require.NoError(t, err)

	out := progress.String()
	assert.True(t, strings.HasPrefix(out, "running 2 trials writing 4 KiB of data\n"))
	assert.Equal(t, 11*2, strings.Count(out, "writing 0 MiB"))
	assert.Equal(t, 11*2, strings.Count(out, "done in "))
}

func TestMatrixPolicyIsReplacedPerRun(t *testing.T) {
	cfg := NewMatrixConfig()
	cfg.Policy = policy.NewNever()
	cfg.ChunkSize = 1024
	cfg.TargetSize = 1024
	cfg.Trials = 1
	cfg.Open = (&fakeOpener{sink: &fakeSink{}}).open

	report, err := RunMatrix(cfg)
	require.NoError(t, err)
	assert.Equal(t, policy.OnClose, report.Entries[1].Policy.Kind())
}
