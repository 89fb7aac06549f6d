// Package driver is the pipeline's chain walk: for every block named in
// the active-chain hash list, it resolves the block's file and offset via
// the block index, validates the blk*.dat framing around it, deserializes
// it, keeps the UTXO set current, and hands the fully resolved block to
// pkg/analytics before flushing whatever window closes at that height.
package driver

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"chainstats/internal/chainerr"
	"chainstats/internal/logging"
	"chainstats/internal/monitor"
	"chainstats/pkg/analytics"
	"chainstats/pkg/blockindex"
	"chainstats/pkg/bytesource"
	"chainstats/pkg/csvout"
	"chainstats/pkg/hashlist"
	"chainstats/pkg/utxo"
	"chainstats/pkg/window"
	"chainstats/pkg/wire"
)

// blockMagic is Bitcoin mainnet's message-start bytes, 0xD9B4BEF9, stored
// little-endian on disk exactly like every other 4-byte field in blk*.dat.
const blockMagic = 0xd9b4bef9

// heartbeatInterval is how often (in blocks) the driver logs a progress
// line, matching the reference pipeline's own cadence.
const heartbeatInterval = 10000

const bytesPerGB = 1024 * 1024 * 1024

// Driver owns the single-writer state a chain walk needs: the UTXO set, the
// window aggregator, the histogram accumulator, and the CSV writer every
// flush lands in.
type Driver struct {
	files    *bytesource.FilePool
	utxoSet  *utxo.Set
	agg      *window.Aggregator
	hist     *csvout.HistogramSet
	writer   *csvout.Writer
	log      *logrus.Logger
	progress *monitor.Progress
}

// New assembles a Driver. progress may be nil if no HTTP monitor is
// running for this invocation.
func New(files *bytesource.FilePool, agg *window.Aggregator, hist *csvout.HistogramSet, writer *csvout.Writer, log *logrus.Logger, progress *monitor.Progress) *Driver {
	return &Driver{
		files:    files,
		utxoSet:  utxo.New(),
		agg:      agg,
		hist:     hist,
		writer:   writer,
		log:      log,
		progress: progress,
	}
}

// Run reads the active-chain hash list and block index, then walks every
// block from genesis to tip in order. chainSizeGB only feeds the
// heartbeat's remaining-time estimate; it has no effect on correctness.
func (d *Driver) Run(hashListPath, indexDBDir string, chainSizeGB float64) error {
	chain, err := hashlist.Read(hashListPath)
	if err != nil {
		return fmt.Errorf("driver: %w", err)
	}
	records, err := blockindex.Build(indexDBDir, chain)
	if err != nil {
		return fmt.Errorf("driver: %w", err)
	}

	tip := len(records) - 1
	if d.progress != nil {
		d.progress.Tip.Store(int64(tip))
	}

	start := time.Now()
	var processedGB float64

	for height, rec := range records {
		blk, err := d.readBlock(rec, height)
		if err != nil {
			return err
		}

		fees, err := d.applyBlock(blk, height)
		if err != nil {
			return err
		}

		anomaly := func(meanHeight float64, subsidy, maxSubsidy int64) {
			d.reportSubsidyAnomaly(meanHeight, subsidy, maxSubsidy)
		}
		analytics.Process(d.agg, d.hist, blk, fees, height, anomaly)
		d.agg.Flush(height)

		processedGB += float64(blk.Size) / bytesPerGB
		d.updateProgress(height, processedGB)

		if height > 0 && height%heartbeatInterval == 0 {
			logging.Log(d.log, logging.Heartbeat{
				Height:         height,
				Tip:            tip,
				Elapsed:        time.Since(start),
				ProcessedGB:    processedGB,
				TotalGB:        chainSizeGB,
				OpenFiles:      d.files.Len(),
				BlockTimestamp: time.Unix(int64(blk.Header.Timestamp), 0),
			})
		}
	}

	return nil
}

// readBlock seeks to the record's data position, rewinding eight bytes to
// cover the magic and size framing the node writes just before each
// block's own bytes, validates both, and deserializes the block.
func (d *Driver) readBlock(rec blockindex.Record, height int) (*wire.Block, error) {
	if !rec.HasData() {
		return nil, chainerr.Wrap(chainerr.IndexBroken, height,
			fmt.Errorf("block %s has no data on disk (status 0x%x)", rec.Hash, rec.Status))
	}

	f, err := d.files.Open(rec.FileNo)
	if err != nil {
		return nil, chainerr.Wrap(chainerr.IndexBroken, height, err)
	}
	if _, err := f.Seek(int64(rec.DataPos)-8, io.SeekStart); err != nil {
		return nil, chainerr.Wrap(chainerr.ShortRead, height, err)
	}

	cr := &countingReader{r: bufio.NewReaderSize(f, d.files.BufferSize())}
	src := bytesource.New(cr)

	magic, err := src.ReadLEU32()
	if err != nil {
		return nil, chainerr.Wrap(chainerr.ShortRead, height, err)
	}
	if magic != blockMagic {
		return nil, chainerr.Wrap(chainerr.BadMagic, height,
			fmt.Errorf("block %s: read magic 0x%08x, want 0x%08x", rec.Hash, magic, uint32(blockMagic)))
	}

	blockSize, err := src.ReadLEU32()
	if err != nil {
		return nil, chainerr.Wrap(chainerr.ShortRead, height, err)
	}
	// Count only the block's own bytes, not the magic and size framing.
	cr.n = 0

	blk, err := wire.DeserializeBlock(src, blockSize)
	if err != nil {
		kind := chainerr.ShortRead
		if errors.Is(err, wire.ErrBadSegWitFlag) {
			kind = chainerr.BadSegWitFlag
		}
		return nil, chainerr.Wrap(kind, height, fmt.Errorf("block %s: %w", rec.Hash, err))
	}
	if cr.n != int(blockSize) {
		return nil, chainerr.Wrap(chainerr.SizeMismatch, height,
			fmt.Errorf("block %s: declared size %d, consumed %d bytes", rec.Hash, blockSize, cr.n))
	}
	return blk, nil
}

// applyBlock folds every transaction's outputs into the UTXO set and
// resolves every input's spent type and fee, one transaction at a time in
// wire order. That ordering matters: a later transaction in the same block
// is free to spend an output a prior transaction in that same block just
// created, so outputs must be added before any later transaction's inputs
// are resolved, not after the whole block has been scanned.
func (d *Driver) applyBlock(blk *wire.Block, height int) ([]int64, error) {
	fees := make([]int64, len(blk.Transactions))

	for i, tx := range blk.Transactions {
		outputs := make([]utxo.NewOutput, len(tx.Outputs))
		for j, out := range tx.Outputs {
			outputs[j] = utxo.NewOutput{
				Vout:         uint32(j),
				ScriptPubKey: out.ScriptPubKey,
				Amount:       out.Amount,
				Type:         out.Type,
			}
		}
		d.utxoSet.Add(tx.TxID, outputs)

		if tx.IsCoinbase() {
			continue
		}
		fee, missing, err := tx.ResolveSpentTypes(d.utxoSet.Lookup())
		if err != nil {
			return nil, chainerr.Wrap(chainerr.UTXOMissing, height, err)
		}
		if len(missing) > 0 {
			return nil, chainerr.Wrap(chainerr.UTXOMissing, height,
				fmt.Errorf("tx %s: %d input(s) reference an output not in the UTXO set", tx.TxID, len(missing)))
		}
		fees[i] = fee
	}
	return fees, nil
}

func (d *Driver) reportSubsidyAnomaly(meanHeight float64, subsidy, maxSubsidy int64) {
	height := int(meanHeight)
	if err := d.writer.WriteAnomaly("lost_subsidy", map[string]string{
		"height":      fmt.Sprintf("%d", height),
		"subsidy":     fmt.Sprintf("%d", subsidy),
		"max_subsidy": fmt.Sprintf("%d", maxSubsidy),
	}); err != nil {
		d.log.WithError(err).Warn("failed to record subsidy anomaly")
	}
	logging.Anomaly(d.log, chainerr.SubsidyAnomaly.String(), height,
		fmt.Sprintf("block reward minus fees was %d, expected %d", subsidy, maxSubsidy))
}

func (d *Driver) updateProgress(height int, processedGB float64) {
	if d.progress == nil {
		return
	}
	d.progress.Height.Store(int64(height))
	d.progress.OpenFiles.Store(int64(d.files.Len()))
	d.progress.UTXOSetSize.Store(int64(d.utxoSet.Len()))
	d.progress.SetProcessedGB(processedGB)
}

// countingReader tracks how many bytes have been read through it, so the
// driver can confirm a block consumed exactly as many bytes as its
// blk*.dat framing declared.
type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}
