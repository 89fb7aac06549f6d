// Command chainstats walks a Bitcoin Core datadir's block files from
// genesis to the tip named by an active-chain hash list, computing the
// pipeline's full set of windowed chain metrics and writing them out as
// CSV and histogram files.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"chainstats/internal/chainerr"
	"chainstats/internal/config"
	"chainstats/internal/logging"
	"chainstats/internal/monitor"
	"chainstats/pkg/bytesource"
	"chainstats/pkg/csvout"
	"chainstats/pkg/driver"
	"chainstats/pkg/window"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "chainstats: %v\n", err)
		os.Exit(2)
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "chainstats: creating output directory: %v\n", err)
		os.Exit(1)
	}

	log := logging.New()

	writer := csvout.New(cfg.OutputDir)

	hist := csvout.NewHistogramSet()
	agg := window.New(cfg.WindowSizes, writer.WriteStats)

	files, err := bytesource.NewFilePool(cfg.DataDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "chainstats: %v\n", err)
		os.Exit(1)
	}
	defer files.Close()

	var progress *monitor.Progress
	if cfg.HTTPAddr != "" {
		progress = &monitor.Progress{}
		srv := monitor.New(progress)
		go func() {
			if err := srv.Run(cfg.HTTPAddr); err != nil {
				log.WithError(err).Warn("progress monitor exited")
			}
		}()
	}

	d := driver.New(files, agg, hist, writer, log, progress)
	runErr := d.Run(cfg.HashListPath, cfg.IndexDBDir, cfg.ChainSizeGB)
	writeOutputs(log, cfg.OutputDir, hist, writer)

	if runErr != nil {
		os.Exit(reportFatal(log, runErr))
	}
	log.Info("run complete")
}

// reportFatal logs the failing height and chainerr kind, if the error
// carries one, and returns the process exit code to use.
func reportFatal(log *logrus.Logger, err error) int {
	var ce *chainerr.Error
	if errors.As(err, &ce) {
		log.WithError(ce.Err).Errorf("fatal %s at height %d", ce.Kind, ce.Height)
		return 1
	}
	log.WithError(err).Error("fatal")
	return 1
}

func writeOutputs(log *logrus.Logger, outDir string, hist *csvout.HistogramSet, writer *csvout.Writer) {
	if err := csvout.WriteHistograms(outDir, hist); err != nil {
		log.WithError(err).Error("writing histograms")
	}
	if err := writer.Close(); err != nil {
		log.WithError(err).Error("closing CSV writer")
	}
	if err := csvout.CompressAll(outDir, ".csv", csvout.GzipCompressor{}, func(path string, err error) {
		if err != nil {
			log.WithError(err).Warnf("compressing %s", path)
		}
	}); err != nil {
		log.WithError(err).Error("compressing output")
	}
}
