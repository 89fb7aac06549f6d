// Package logging sets up the run's structured logger and the two
// recurring log shapes the driver emits: a heartbeat every 10,000 blocks
// and a one-line record for each non-fatal anomaly chainerr reports.
package logging

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
)

// New builds the run's logger: plain text to stderr, timestamps included,
// since this pipeline runs as a long-lived batch job rather than behind a
// log aggregator that would prefer JSON.
func New() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	l.SetLevel(logrus.InfoLevel)
	return l
}

// Heartbeat is the progress line printed every heartbeatInterval blocks,
// mirroring the reference pipeline's periodic status line minus the
// process-RSS figures (no memory usage is reported, neither here nor by
// the monitor endpoint).
type Heartbeat struct {
	Height         int
	Tip            int
	Elapsed        time.Duration
	ProcessedGB    float64
	TotalGB        float64
	OpenFiles      int
	BlockTimestamp time.Time
}

// Log emits one heartbeat line at INFO, with every figure as a structured
// field so a log-scraping dashboard can chart them without parsing prose.
func Log(l *logrus.Logger, hb Heartbeat) {
	remaining := time.Duration(0)
	if hb.ProcessedGB > 0 {
		remaining = time.Duration(float64(hb.Elapsed) * (hb.TotalGB - hb.ProcessedGB) / hb.ProcessedGB)
	}
	l.WithFields(logrus.Fields{
		"height":       hb.Height,
		"tip":          hb.Tip,
		"elapsed":      hb.Elapsed.Round(time.Second),
		"processed_gb": round1(hb.ProcessedGB),
		"total_gb":     round1(hb.TotalGB),
		"remaining":    remaining.Round(time.Second),
		"open_files":   hb.OpenFiles,
		"block_time":   hb.BlockTimestamp.UTC().Format(time.RFC3339),
	}).Info("processing")
}

// Anomaly logs a non-fatal chainerr condition (presently only
// SUBSIDY_ANOMALY) at WARN, since the run continues but the condition is
// worth a human's attention.
func Anomaly(l *logrus.Logger, kind string, height int, detail string) {
	l.WithFields(logrus.Fields{
		"kind":   kind,
		"height": height,
	}).Warn(detail)
}

func round1(v float64) float64 {
	return float64(int(v*10+0.5)) / 10
}
