// Command indexdump decodes a node's block-index LevelDB records against
// an active-chain hash list and prints them one per line, for debugging a
// hash list or index directory before pointing the full chainstats run at
// it. It grew out of an earlier scratch tool that inspected raw index
// bytes by hand; this one decodes through pkg/blockindex instead of
// guessing at field boundaries.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"os"

	"chainstats/pkg/blockindex"
	"chainstats/pkg/hashlist"
)

func main() {
	hashListPath := flag.String("hashlist", "", "flat file of active-chain block hashes, display order (required)")
	indexDBDir := flag.String("indexdb", "", "node's blocks/index LevelDB directory (required)")
	limit := flag.Int("limit", 20, "number of records to print, starting from genesis (0 for all)")
	flag.Parse()

	if *hashListPath == "" || *indexDBDir == "" {
		fmt.Fprintln(os.Stderr, "usage: indexdump -hashlist <path> -indexdb <dir> [-limit N]")
		os.Exit(2)
	}

	chain, err := hashlist.Read(*hashListPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "indexdump: %v\n", err)
		os.Exit(1)
	}

	records, err := blockindex.Build(*indexDBDir, chain)
	if err != nil {
		fmt.Fprintf(os.Stderr, "indexdump: %v\n", err)
		os.Exit(1)
	}

	n := len(records)
	if *limit > 0 && *limit < n {
		n = *limit
	}
	for _, rec := range records[:n] {
		fmt.Printf("height=%d hash=%s prev=%s merkle=%s ver=%d time=%d bits=%08x nonce=%d ntx=%d fileno=%d datapos=%d status=%#x\n",
			rec.Height, hex.EncodeToString(reverse(rec.Hash[:])), hex.EncodeToString(reverse(rec.PrevBlockHash[:])),
			hex.EncodeToString(reverse(rec.MerkleRoot[:])), rec.BlockVersion, rec.Timestamp, rec.Bits, rec.Nonce,
			rec.NumTx, rec.FileNo, rec.DataPos, rec.Status)
	}
}

// reverse flips a hash's internal byte order back to the display order
// everything outside this tool (block explorers, the hash-list file
// itself) expects.
func reverse(b []byte) []byte {
	out := make([]byte, len(b))
	for i, v := range b {
		out[len(b)-1-i] = v
	}
	return out
}
