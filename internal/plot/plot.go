// Package plot draws the per policy latency distributions of a
// benchmark matrix report as a box plot
package plot

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/jessegalley/fsyncbench/internal/runners"
)

// image dimensions and box width
const (
	plotWidth  = 12 * vg.Inch
	plotHeight = 6 * vg.Inch
	boxWidth   = 20
)

// image formats gonum/plot can render, keyed by file extension
var imageFormats = map[string]bool{
	"png": true, "svg": true, "pdf": true, "eps": true,
	"jpg": true, "jpeg": true, "tif": true, "tiff": true,
}

// ValidatePath checks that path names an image format the plot can be
// rendered in and returns that format
func ValidatePath(path string) (string, error) {
	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	if format == "" {
		return "", fmt.Errorf("plot path %s needs an image extension such as .png or .svg", path)
	}
	if !imageFormats[format] {
		return "", fmt.Errorf("unsupported plot format %q. supported formats are: png, svg, pdf, eps, jpg, jpeg, tif, tiff", format)
	}
	return format, nil
}

// NewBoxPlot builds a plot with one box per matrix policy, in report order
func NewBoxPlot(report *runners.Report) (*plot.Plot, error) {
	if report == nil || len(report.Entries) == 0 {
		return nil, fmt.Errorf("no results to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%d MiB in %d byte chunks, %d trials per policy",
		report.TargetSize/(1024*1024), report.ChunkSize, report.Trials)
	p.X.Label.Text = "fsync interval"
	p.Y.Label.Text = "elapsed (ms)"

	names := make([]string, 0, len(report.Entries))
	for i, entry := range report.Entries {
		if len(entry.Millis) == 0 {
			return nil, fmt.Errorf("policy %s has no trials", entry.Policy)
		}

		values := make(plotter.Values, len(entry.Millis))
		for j, ms := range entry.Millis {
			values[j] = float64(ms)
		}

		box, err := plotter.NewBoxPlot(vg.Points(boxWidth), float64(i), values)
		if err != nil {
			return nil, fmt.Errorf("failed to build box for policy %s: %w", entry.Policy, err)
		}
		p.Add(box)
		names = append(names, entry.Policy.Label())
	}
	p.NominalX(names...)

	return p, nil
}

// WriteBoxPlot renders the report's box plot to w in the given image
// format (png, svg, pdf, jpg, ...)
func WriteBoxPlot(w io.Writer, report *runners.Report, format string) error {
	p, err := NewBoxPlot(report)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(plotWidth, plotHeight, format)
	if err != nil {
		return fmt.Errorf("failed to render plot: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write plot: %w", err)
	}
	return nil
}

// SaveBoxPlot writes the report's box plot to path. the image format
// is taken from the file extension.
func SaveBoxPlot(path string, report *runners.Report) error {
	format, err := ValidatePath(path)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create plot %s: %w", path, err)
	}

	if err := WriteBoxPlot(f, report, format); err != nil {
		f.Close()
		return fmt.Errorf("failed to save plot %s: %w", path, err)
	}

	return f.Close()
}
