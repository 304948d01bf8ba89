// package output renders timed write results and benchmark
// matrix reports in the supported output formats
package output

import (
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/jessegalley/fsyncbench/internal/runners"
	"github.com/jessegalley/fsyncbench/internal/stats"
)

// OutputFormat represents the supported output format types
type OutputFormat string

// supported output format constants
const (
	// map format prints one "policy: [ms, ...]" entry per policy inside braces
	MapFormat OutputFormat = "map"

	// json format outputs the report as a json object
	JSONFormat OutputFormat = "json"

	// table format outputs a human-readable distribution summary per policy
	TableFormat OutputFormat = "table"

	// flat format outputs space-separated values, one policy per line
	FlatFormat OutputFormat = "flat"
)

// ValidateFormat checks if the provided format string is a valid output format
func ValidateFormat(format string) (OutputFormat, error) {
	// convert format to OutputFormat type
	f := OutputFormat(strings.ToLower(format))

	// check if format is supported
	switch f {
	case MapFormat, JSONFormat, TableFormat, FlatFormat:
		return f, nil
	default:
		return "", fmt.Errorf("invalid format '%s'. supported formats are: map, json, table, flat", format)
	}
}

// FormatSingle renders the result of a single timed run
func FormatSingle(result runners.Result) string {
	return fmt.Sprintf("%d -> %d millis\n", result.Policy.Value(), result.Millis())
}

// FormatReport formats a matrix report according to the specified format
func FormatReport(report *runners.Report, format OutputFormat) (string, error) {
	if report == nil {
		return "", fmt.Errorf("no report to format")
	}

	// handle each output format
	switch format {
	case MapFormat:
		return formatMap(report), nil
	case JSONFormat:
		return formatJSON(report)
	case TableFormat:
		return formatTable(report)
	case FlatFormat:
		return formatFlat(report), nil
	default:
		// return error for unsupported format
		return "", fmt.Errorf("unsupported output format: %s", format)
	}
}

func formatMap(report *runners.Report) string {
	var sb strings.Builder

	sb.WriteString("{\n")
	for _, entry := range report.Entries {
		fmt.Fprintf(&sb, "  %d: [%s],\n", entry.Policy.Value(), joinMillis(entry.Millis, ", "))
	}
	sb.WriteString("}\n")

	return sb.String()
}

func formatJSON(report *runners.Report) (string, error) {
	// create structs to hold the ordered report
	type jsonEntry struct {
		Policy int64   `json:"policy"`
		Label  string  `json:"label"`
		Millis []int64 `json:"millis"`
	}
	type jsonReport struct {
		ChunkSize  int         `json:"chunk_size"`
		TargetSize int64       `json:"target_size"`
		Trials     int         `json:"trials"`
		Results    []jsonEntry `json:"results"`
	}

	// populate the report struct in matrix order
	jr := jsonReport{
		ChunkSize:  report.ChunkSize,
		TargetSize: report.TargetSize,
		Trials:     report.Trials,
		Results:    make([]jsonEntry, 0, len(report.Entries)),
	}
	for _, entry := range report.Entries {
		jr.Results = append(jr.Results, jsonEntry{
			Policy: entry.Policy.Value(),
			Label:  entry.Policy.Label(),
			Millis: entry.Millis,
		})
	}

	// marshal the result to json
	jsonBytes, err := json.MarshalIndent(jr, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal json: %w", err)
	}

	return string(jsonBytes) + "\n", nil
}

func formatTable(report *runners.Report) (string, error) {
	// create string builder for table output
	var sb strings.Builder

	// write table header
	fmt.Fprintf(&sb, "\n%8s  %6s  %8s  %8s  %8s  %8s  %8s  %8s  %8s\n",
		"fsync", "trials", "min", "p50", "mean", "p90", "p99", "max", "stddev")

	// write one row per policy
	for _, entry := range report.Entries {
		s, err := stats.Summarize(entry.Millis)
		if err != nil {
			return "", fmt.Errorf("failed to summarize policy %s: %w", entry.Policy, err)
		}
		fmt.Fprintf(&sb, "%8s  %6d  %8d  %8.1f  %8.1f  %8.1f  %8.1f  %8d  %8.2f\n",
			entry.Policy.Label(), s.Count, s.MinMs, s.P50Ms, s.MeanMs, s.P90Ms, s.P99Ms, s.MaxMs, s.StdDevMs)
	}

	return sb.String(), nil
}

func formatFlat(report *runners.Report) string {
	// return space-separated values with no headers
	var sb strings.Builder
	for _, entry := range report.Entries {
		fmt.Fprintf(&sb, "%d %s\n", entry.Policy.Value(), joinMillis(entry.Millis, " "))
	}
	return sb.String()
}

func joinMillis(millis []int64, sep string) string {
	parts := make([]string, len(millis))
	for i, ms := range millis {
		parts[i] = fmt.Sprintf("%d", ms)
	}
	return strings.Join(parts, sep)
}
