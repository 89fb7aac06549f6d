// Package hashlist reads the active-chain hash list: an externally
// produced, ordered record of every block hash from genesis to the chain
// tip this run should process, one entry per height. Nothing in this
// pipeline talks to a running node over RPC; that list is expected to
// already exist on disk before a run starts.
package hashlist

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

// Read loads path as a flat sequence of 32-byte block hashes, one per
// height starting at genesis, stored in the usual display (RPC/explorer)
// byte order rather than Bitcoin Core's internal order. Each entry is
// reversed on load so every hash this package returns matches the
// convention wire.Header.Hash() and blockindex.Record use.
func Read(path string) ([]chainhash.Hash, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("hashlist: opening %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("hashlist: stat %s: %w", path, err)
	}
	if info.Size()%chainhash.HashSize != 0 {
		return nil, fmt.Errorf("hashlist: %s has size %d, not a multiple of %d", path, info.Size(), chainhash.HashSize)
	}

	count := info.Size() / chainhash.HashSize
	hashes := make([]chainhash.Hash, count)

	r := bufio.NewReaderSize(f, 1<<20)
	buf := make([]byte, chainhash.HashSize)
	for i := range hashes {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, fmt.Errorf("hashlist: reading entry %d: %w", i, err)
		}
		for j := 0; j < chainhash.HashSize; j++ {
			hashes[i][j] = buf[chainhash.HashSize-1-j]
		}
	}
	return hashes, nil
}
