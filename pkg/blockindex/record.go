// Package blockindex decodes the node's own block-index LevelDB database
// (blocks/index/) into an ordered, validated slice of records the driver
// uses to find each block's data file and offset without re-deriving the
// chain's topology itself.
package blockindex

import "github.com/btcsuite/btcd/chaincfg/chainhash"

// Status bits, taken from Bitcoin Core's BlockStatus enum in src/chain.h.
// These are genuine bit flags and must always be combined with bitwise
// operators: an OR-of-two-flags check written with Go's logical || (or,
// worse, treating one flag as implicitly covering another) silently drops
// coverage the same way Python's `or` between two nonzero ints does.
const (
	HaveData    uint64 = 1 << 3 // full block available in blk*.dat
	HaveUndo    uint64 = 1 << 4 // undo data available in rev*.dat
	FailedValid uint64 = 1 << 5 // block itself failed validation
	FailedChild uint64 = 1 << 6 // an ancestor of this block failed validation
	OptWitness  uint64 = 1 << 7 // block data was received from a witness-enforcing peer
)

// FailedMask is every status bit that marks a block as unusable.
const FailedMask = FailedValid | FailedChild

// Record is one block's decoded index entry.
type Record struct {
	Hash          chainhash.Hash
	ClientVersion uint64
	Height        int
	Status        uint64
	NumTx         uint64
	FileNo        uint32
	DataPos       uint32
	UndoPos       uint32

	BlockVersion  int32
	PrevBlockHash chainhash.Hash
	MerkleRoot    chainhash.Hash
	Timestamp     uint32
	Bits          uint32
	Nonce         uint32
}

// HasData reports whether the block's raw data is present in a blk*.dat
// file (it always should be, for every block named in the active-chain
// hash list, but the driver checks anyway before trusting FileNo/DataPos).
func (r Record) HasData() bool {
	return r.Status&HaveData != 0
}

// Failed reports whether the node marked this block, or one of its
// ancestors, as invalid.
func (r Record) Failed() bool {
	return r.Status&FailedMask != 0
}
