// Package wire hand-rolls the on-disk transaction and block codec: the
// node's blk*.dat framing is byte-for-byte Bitcoin's p2p wire format, but
// nothing in this pipeline needs a full node's validation or relay logic,
// so we deserialize just enough to drive classification and the UTXO set.
package wire

import (
	"encoding/binary"
	"io"

	"chainstats/pkg/bytesource"
	"chainstats/pkg/script"
)

// Output is a single transaction output: an amount and a locking script.
// Type is resolved at deserialization time from scriptPubKey alone, since a
// fresh output has no spending script_sig/witness yet to refine it against
// (see script.ClassifyOutput).
type Output struct {
	Amount       int64
	ScriptPubKey script.Script
	Type         script.Type
	Size         int
}

func deserializeOutput(r *bytesource.Reader) (Output, error) {
	amount, err := r.ReadLEU64()
	if err != nil {
		return Output{}, err
	}
	scriptLen, err := r.ReadVarInt()
	if err != nil {
		return Output{}, err
	}
	scriptBytes, err := r.Read(int(scriptLen))
	if err != nil {
		return Output{}, err
	}
	pk := script.Script(scriptBytes)
	return Output{
		Amount:       int64(amount),
		ScriptPubKey: pk,
		Type:         script.ClassifyOutput(pk),
		Size:         8 + varIntSize(scriptLen) + len(scriptBytes),
	}, nil
}

// serialize writes the output in wire format, used only to recompute the
// transaction's size/weight/txid after parsing.
func (o Output) serialize(w io.Writer) error {
	var amt [8]byte
	binary.LittleEndian.PutUint64(amt[:], uint64(o.Amount))
	if _, err := w.Write(amt[:]); err != nil {
		return err
	}
	if err := writeVarInt(w, uint64(len(o.ScriptPubKey))); err != nil {
		return err
	}
	_, err := w.Write(o.ScriptPubKey)
	return err
}
