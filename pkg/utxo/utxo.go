// Package utxo maintains the single in-memory unspent-output set the chain
// driver builds forward while walking every block from genesis: every
// output gets inserted when its transaction is parsed, and removed the
// moment a later input spends it. It is never loaded from or reconciled
// against the node's own chainstate database — the whole set lives in
// memory for exactly as long as an output stays unspent.
package utxo

import (
	"encoding/binary"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"chainstats/pkg/script"
)

// keySize is chainhash.HashSize (32) plus a 4-byte big-endian vout.
const keySize = chainhash.HashSize + 4

// key is the composite lookup key: a transaction's hash followed by the
// spent output's index, matching the (txid, vout) pair every input
// references.
type key [keySize]byte

func makeKey(txid chainhash.Hash, vout uint32) key {
	var k key
	copy(k[:chainhash.HashSize], txid[:])
	binary.BigEndian.PutUint32(k[chainhash.HashSize:], vout)
	return k
}

// Entry is what the set remembers about a still-unspent output: just
// enough to resolve fees and classify the spending input later.
type Entry struct {
	ScriptPubKey script.Script
	Amount       int64
}

// Set is the forward-built UTXO set. It is single-writer: the chain driver
// is its only caller, processing one block at a time, so no locking is
// needed.
type Set struct {
	entries map[key]Entry
}

// New returns an empty set, sized for roughly the unspent-output count
// near the chain tip to avoid rehashing during the bulk of a run.
func New() *Set {
	return &Set{entries: make(map[key]Entry, 1<<22)}
}

// NewOutput describes one transaction output for Add, identified by its
// position in the transaction.
type NewOutput struct {
	Vout         uint32
	ScriptPubKey script.Script
	Amount       int64
	Type         script.Type
}

// Add inserts every output of a newly parsed transaction, except
// OP_RETURN outputs, which can never be spent and would otherwise sit in
// the map forever.
func (s *Set) Add(txid chainhash.Hash, outputs []NewOutput) {
	for _, out := range outputs {
		if out.Type == script.OpReturn {
			continue
		}
		s.entries[makeKey(txid, out.Vout)] = Entry{ScriptPubKey: out.ScriptPubKey, Amount: out.Amount}
	}
}

// Consume removes and returns the output referenced by (txid, vout). ok is
// false if no such output is currently unspent — a broken reference the
// driver reports as chainerr.UTXOMissing, since it means the block-index or
// UTXO-set invariant has been violated upstream.
func (s *Set) Consume(txid chainhash.Hash, vout uint32) (Entry, bool) {
	k := makeKey(txid, vout)
	e, ok := s.entries[k]
	if ok {
		delete(s.entries, k)
	}
	return e, ok
}

// Lookup returns a func matching wire.Transaction.ResolveSpentTypes's
// expected signature, consuming each referenced output as it is looked up.
func (s *Set) Lookup() func(chainhash.Hash, uint32) (script.Script, int64, bool) {
	return func(txid chainhash.Hash, vout uint32) (script.Script, int64, bool) {
		e, ok := s.Consume(txid, vout)
		return e.ScriptPubKey, e.Amount, ok
	}
}

// Len reports the number of currently unspent outputs, for the progress
// monitor.
func (s *Set) Len() int {
	return len(s.entries)
}

// Clear discards every entry. Only meaningful for tests; a real run
// processes the whole chain with one set from genesis to tip.
func (s *Set) Clear() {
	s.entries = make(map[key]Entry, 1<<22)
}
