// Package csvout writes the pipeline's output streams to disk: one CSV file
// per flushed metric/window-size series, a histogram dump per spent/created
// script-type counter, and an anomaly log for non-fatal conditions like a
// subsidy mismatch.
package csvout

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"chainstats/pkg/window"
)

var statsHeader = []string{
	"mean_height", "min", "max", "mean", "median",
	"q1", "q5", "q10", "q25", "q75", "q90", "q95", "q99", "CV",
}

// Writer owns one open CSV file per target name, created lazily on first
// write and kept open for the life of a run.
type Writer struct {
	dir     string
	files   map[string]*csv.Writer
	handles map[string]*os.File
}

// New prepares a writer rooted at dir, which must already exist.
func New(dir string) *Writer {
	return &Writer{
		dir:     dir,
		files:   make(map[string]*csv.Writer),
		handles: make(map[string]*os.File),
	}
}

// WriteStats implements window.Sink: it appends one row to
// "<target>.csv", writing the header first if the file is new.
func (w *Writer) WriteStats(target string, meanHeight float64, stats window.Stats) {
	writer, err := w.writerFor(target, statsHeader)
	if err != nil {
		panic(fmt.Sprintf("csvout: %v", err)) // a write target failing to open is a setup bug, not a runtime condition to recover from
	}
	row := []string{
		formatFloat(meanHeight),
		formatFloat(stats.Min), formatFloat(stats.Max), formatFloat(stats.Mean), formatFloat(stats.Median),
		formatFloat(stats.Q1), formatFloat(stats.Q5), formatFloat(stats.Q10), formatFloat(stats.Q25),
		formatFloat(stats.Q75), formatFloat(stats.Q90), formatFloat(stats.Q95), formatFloat(stats.Q99),
		formatFloat(stats.CV),
	}
	if err := writer.Write(row); err != nil {
		panic(fmt.Sprintf("csvout: writing row for %s: %v", target, err))
	}
	writer.Flush()
}

// WriteAnomaly appends a single generic key/value row to "<target>.csv",
// used for the subsidy-mismatch anomaly log (target "lost_subsidy").
func (w *Writer) WriteAnomaly(target string, fields map[string]string) error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	writer, err := w.writerFor(target, keys)
	if err != nil {
		return err
	}
	row := make([]string, len(keys))
	for i, k := range keys {
		row[i] = fields[k]
	}
	if err := writer.Write(row); err != nil {
		return fmt.Errorf("csvout: writing anomaly row for %s: %w", target, err)
	}
	writer.Flush()
	return nil
}

func (w *Writer) writerFor(target string, header []string) (*csv.Writer, error) {
	if cw, ok := w.files[target]; ok {
		return cw, nil
	}
	path := filepath.Join(w.dir, target+".csv")
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	cw := csv.NewWriter(f)
	if err := cw.Write(header); err != nil {
		f.Close()
		return nil, fmt.Errorf("writing header for %s: %w", path, err)
	}
	cw.Flush()
	w.handles[target] = f
	w.files[target] = cw
	return cw, nil
}

// Close flushes and closes every file this writer has opened.
func (w *Writer) Close() error {
	var firstErr error
	for target, cw := range w.files {
		cw.Flush()
		if err := cw.Error(); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := w.handles[target].Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
