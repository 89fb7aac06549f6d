package csvout

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Histogram accumulates value -> occurrence counts for a single named
// series (for example, one spent-script-type's script_sig-size counter).
// It is not safe for concurrent use; the driver updates it from its single
// thread while processing each block, the same as every other component here.
type Histogram struct {
	counts map[int64]int64
}

// NewHistogram returns an empty histogram.
func NewHistogram() *Histogram {
	return &Histogram{counts: make(map[int64]int64)}
}

// Add increments the count for value by one.
func (h *Histogram) Add(value int64) {
	h.counts[value]++
}

// HistogramSet tracks one Histogram per named series, created on first use.
type HistogramSet struct {
	series map[string]*Histogram
}

// NewHistogramSet returns an empty set.
func NewHistogramSet() *HistogramSet {
	return &HistogramSet{series: make(map[string]*Histogram)}
}

// Add increments series's count for value, creating the series if this is
// its first observation.
func (s *HistogramSet) Add(series string, value int64) {
	h, ok := s.series[series]
	if !ok {
		h = NewHistogram()
		s.series[series] = h
	}
	h.Add(value)
}

// WriteHistograms dumps every tracked series to "<dir>/histogram_<series>.csv",
// each a two-column value,count table sorted by value ascending.
func WriteHistograms(dir string, set *HistogramSet) error {
	names := make([]string, 0, len(set.series))
	for name := range set.series {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := writeOneHistogram(dir, name, set.series[name]); err != nil {
			return err
		}
	}
	return nil
}

func writeOneHistogram(dir, name string, h *Histogram) error {
	path := filepath.Join(dir, "histogram_"+name+".csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csvout: creating %s: %w", path, err)
	}
	defer f.Close()

	values := make([]int64, 0, len(h.counts))
	for v := range h.counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	if _, err := fmt.Fprintln(f, "value,count"); err != nil {
		return err
	}
	for _, v := range values {
		if _, err := fmt.Fprintf(f, "%d,%d\n", v, h.counts[v]); err != nil {
			return fmt.Errorf("csvout: writing histogram %s: %w", path, err)
		}
	}
	return nil
}
