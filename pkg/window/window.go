// Package window buffers per-block metric values and periodically flushes
// them into summary statistics, matching the reference pipeline's windowed
// view of chain history: every metric is tracked simultaneously at several
// window sizes (per block, hourly, daily, and so on), and a window flushes
// the instant its block range closes.
package window

import "fmt"

// Sink receives one flushed window's summary. target is "<metric>-<size>";
// meanHeight is the window's block-height centroid, following the
// reference pipeline's height-(size-1)/2 convention so a window's reported
// height sits in the middle of the range it summarizes, not at its edge.
type Sink func(target string, meanHeight float64, stats Stats)

type kind int

const (
	kindUnset kind = iota
	kindScalar
	kindList
)

type bufferKey struct {
	metric string
	size   int
}

type buffer struct {
	kind   kind
	values []float64 // scalar: one entry per block; list: flattened across blocks
}

// Aggregator buffers metrics across a fixed set of window sizes and emits
// Stats to sink as each window closes.
type Aggregator struct {
	sizes   []int
	buffers map[bufferKey]*buffer
	sink    Sink
}

// New builds an Aggregator tracking every metric at each of sizes
// (block-count window lengths, e.g. 1, 6, 144, 432).
func New(sizes []int, sink Sink) *Aggregator {
	return &Aggregator{
		sizes:   sizes,
		buffers: make(map[bufferKey]*buffer),
		sink:    sink,
	}
}

// InsertScalar records one block's value of metric, identical across every
// configured window size.
func (a *Aggregator) InsertScalar(metric string, v float64) {
	for _, size := range a.sizes {
		b := a.bufferFor(metric, size, kindScalar)
		b.values = append(b.values, v)
	}
}

// InsertList records one block's list-valued observation of metric (for
// example, the per-transaction sizes within a block). Lists are flattened
// across blocks before statistics are computed, so a window's quantiles
// reflect every individual observation, not one value per block.
func (a *Aggregator) InsertList(metric string, v []float64) {
	for _, size := range a.sizes {
		b := a.bufferFor(metric, size, kindList)
		b.values = append(b.values, v...)
	}
}

func (a *Aggregator) bufferFor(metric string, size int, want kind) *buffer {
	key := bufferKey{metric, size}
	b, ok := a.buffers[key]
	if !ok {
		b = &buffer{kind: want}
		a.buffers[key] = b
	}
	if b.kind != want {
		panic(fmt.Sprintf("window: metric %q switched from %v to %v within the same run", metric, b.kind, want))
	}
	return b
}

// Flush closes every window size whose range ends at height (that is,
// every size where (height+1) % size == 0), emitting each tracked metric's
// Stats to the sink and clearing its buffer. A scalar buffer that received
// fewer values than its window size (because the metric was not recorded
// in some blocks of the window) is zero-padded up to size: a missing block
// contributes a zero, not a gap.
func (a *Aggregator) Flush(height int) {
	for _, size := range a.sizes {
		if (height+1)%size != 0 {
			continue
		}
		meanHeight := float64(height) - float64(size-1)/2

		for key, b := range a.buffers {
			if key.size != size {
				continue
			}
			a.flushOne(key, b, meanHeight)
			delete(a.buffers, key)
		}
	}
}

func (a *Aggregator) flushOne(key bufferKey, b *buffer, meanHeight float64) {
	if len(b.values) == 0 && b.kind != kindScalar {
		return
	}
	values := b.values
	if b.kind == kindScalar && len(values) < key.size {
		padded := make([]float64, key.size)
		copy(padded, values)
		values = padded
	}
	if len(values) == 0 {
		return
	}
	target := fmt.Sprintf("%s-%d", key.metric, key.size)
	a.sink(target, meanHeight, computeStats(values))
}
