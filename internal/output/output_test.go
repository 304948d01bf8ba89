package output

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jessegalley/fsyncbench/internal/policy"
	"github.com/jessegalley/fsyncbench/internal/runners"
)

// sampleReport builds a matrix shaped report with deterministic timings
func sampleReport(trials int) *runners.Report {
	report := &runners.Report{ChunkSize: 4096, TargetSize: 1 << 20, Trials: trials}
	for i, p := range policy.Matrix() {
		millis := make([]int64, trials)
		for j := range millis {
			millis[j] = int64(10*i + j)
		}
		report.Entries = append(report.Entries, runners.Entry{Policy: p, Millis: millis})
	}
	return report
}

func TestValidateFormat(t *testing.T) {
	for _, in := range []string{"map", "JSON", "Table", "flat"} {
		_, err := ValidateFormat(in)
		assert.NoError(t, err, in)
	}

	_, err := ValidateFormat("yaml")
	assert.Error(t, err)
}

func TestFormatSingle(t *testing.T) {
	result := runners.Result{Policy: policy.NewOnClose(), Elapsed: 1234567 * time.Microsecond}
	assert.Equal(t, "-1 -> 1234 millis\n", FormatSingle(result))

	p, err := policy.NewInterval(16384)
	require.NoError(t, err)
	result = runners.Result{Policy: p, Elapsed: 999 * time.Microsecond}
	assert.Equal(t, "16384 -> 0 millis\n", FormatSingle(result))
}

func TestFormatMap(t *testing.T) {
	out, err := FormatReport(sampleReport(2), MapFormat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 13)
	assert.Equal(t, "{", lines[0])
	assert.Equal(t, "  0: [0, 1],", lines[1])
	assert.Equal(t, "  -1: [10, 11],", lines[2])
	assert.Equal(t, "  104857600: [20, 21],", lines[3])
	assert.Equal(t, "  16384: [100, 101],", lines[11])
	assert.Equal(t, "}", lines[12])
}

func TestFormatJSON(t *testing.T) {
	out, err := FormatReport(sampleReport(3), JSONFormat)
	require.NoError(t, err)

	var parsed struct {
		ChunkSize int   `json:"chunk_size"`
		Trials    int   `json:"trials"`
		Results   []struct {
			Policy int64   `json:"policy"`
			Label  string  `json:"label"`
			Millis []int64 `json:"millis"`
		} `json:"results"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))

	assert.Equal(t, 4096, parsed.ChunkSize)
	assert.Equal(t, 3, parsed.Trials)
	require.Len(t, parsed.Results, 11)
	assert.Equal(t, int64(-1), parsed.Results[1].Policy)
	assert.Equal(t, "close", parsed.Results[1].Label)
	assert.Equal(t, "16KiB", parsed.Results[10].Label)
	assert.Equal(t, []int64{100, 101, 102}, parsed.Results[10].Millis)
}

func TestFormatTable(t *testing.T) {
	out, err := FormatReport(sampleReport(4), TableFormat)
	require.NoError(t, err)

	assert.Contains(t, out, "stddev")
	assert.Contains(t, out, "never")
	assert.Contains(t, out, "100MiB")
	assert.Contains(t, out, "512KiB")
	// header, blank leading line and one row per policy
	assert.Equal(t, 13, strings.Count(out, "\n"))
}

func TestFormatTableColumns(t *testing.T) {
	report := &runners.Report{ChunkSize: 4096, TargetSize: 1 << 20, Trials: 1,
		Entries: []runners.Entry{{Policy: policy.NewNever(), Millis: []int64{7}}}}

	out, err := FormatReport(report, TableFormat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, []string{"fsync", "trials", "min", "p50", "mean", "p90", "p99", "max", "stddev"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"never", "1", "7", "7.0", "7.0", "7.0", "7.0", "7", "0.00"}, strings.Fields(lines[1]))
}

func TestFormatFlat(t *testing.T) {
	out, err := FormatReport(sampleReport(2), FlatFormat)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 11)
	assert.Equal(t, "0 0 1", lines[0])
	assert.Equal(t, "-1 10 11", lines[1])
}

func TestFormatReportErrors(t *testing.T) {
	_, err := FormatReport(nil, MapFormat)
	assert.Error(t, err)

	_, err = FormatReport(sampleReport(1), OutputFormat("xml"))
	assert.Error(t, err)
}
