// Package config parses the pipeline's command-line flags. The reference
// pipeline hard-codes these as module-level constants; this one exposes
// them as flags so a run never needs a source edit to point at a different
// datadir. No example repo in this corpus pulls in a flag-parsing library
// (cobra/viper) for a single flat flag set, so this stays on the standard
// library's flag package, matching the corpus's own minimal CLIs
// (cmd/cli, cmd/web) rather than introducing a dependency nothing else
// here needs.
package config

import (
	"flag"
	"fmt"
	"strconv"
	"strings"
)

// Config holds everything a run needs to locate its inputs and outputs.
type Config struct {
	DataDir     string // directory containing blk*.dat
	IndexDBDir  string // node's blocks/index LevelDB directory
	HashListPath string // flat file of active-chain block hashes, display order
	OutputDir   string // destination for CSV/histogram output
	WindowSizes []int  // block-count window lengths metrics are aggregated at
	ChainSizeGB float64 // total blk*.dat size, used only for the heartbeat's ETA
	HTTPAddr    string // progress-monitor listen address; empty disables it
}

// defaultWindowSizes mirrors the reference pipeline's four standard
// windows: per block, hourly, daily, and every three days, at Bitcoin's
// ~10-minute block interval.
var defaultWindowSizes = []int{1, 6, 144, 432}

// Parse reads args (normally os.Args[1:]) into a Config.
func Parse(args []string) (Config, error) {
	fs := flag.NewFlagSet("chainstats", flag.ContinueOnError)

	cfg := Config{}
	var windowSizesFlag string

	fs.StringVar(&cfg.DataDir, "datadir", "", "directory containing blk*.dat files (required)")
	fs.StringVar(&cfg.IndexDBDir, "indexdb", "", "node's blocks/index LevelDB directory (required)")
	fs.StringVar(&cfg.HashListPath, "hashlist", "", "flat file of active-chain block hashes, display order (required)")
	fs.StringVar(&cfg.OutputDir, "out", "out", "destination directory for CSV and histogram output")
	fs.StringVar(&windowSizesFlag, "windows", "", "comma-separated block-count window sizes (default 1,6,144,432)")
	fs.Float64Var(&cfg.ChainSizeGB, "chain-size-gb", 300, "approximate total blk*.dat size, for the heartbeat's ETA")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", "", "address for the progress-monitor HTTP endpoint (empty disables it)")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	if cfg.DataDir == "" || cfg.IndexDBDir == "" || cfg.HashListPath == "" {
		return Config{}, fmt.Errorf("config: -datadir, -indexdb and -hashlist are all required")
	}

	if windowSizesFlag == "" {
		cfg.WindowSizes = defaultWindowSizes
	} else {
		sizes, err := parseWindowSizes(windowSizesFlag)
		if err != nil {
			return Config{}, err
		}
		cfg.WindowSizes = sizes
	}

	return cfg, nil
}

func parseWindowSizes(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	sizes := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("config: invalid window size %q: %w", p, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("config: window size must be positive, got %d", n)
		}
		sizes = append(sizes, n)
	}
	return sizes, nil
}
