package wire

import (
	"encoding/binary"
	"io"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"chainstats/pkg/bytesource"
	"chainstats/pkg/script"
)

// Input is a transaction input. PrevTxID/PrevVout name the output it
// spends; Witness is filled in after the input list, once the wire format
// reaches the SegWit witness section (nil for a non-SegWit transaction, or
// for a SegWit transaction's input whose witness carries zero items).
//
// SpentType and SpentScript are not part of the wire encoding: they are
// filled in once this input's referenced output is looked up in the UTXO
// set, classifying what kind of output is being spent.
type Input struct {
	PrevTxID   chainhash.Hash
	PrevVout   uint32
	ScriptSig  script.Script
	Sequence   uint32
	Witness    Witness
	Size       int
	SpentType   script.Type
	SpentScript script.Script
}

// IsCoinbase reports whether this input is the null prevout that marks a
// coinbase transaction.
func (in Input) IsCoinbase() bool {
	return in.PrevTxID == (chainhash.Hash{}) && in.PrevVout == 0xffffffff
}

func deserializeInput(r *bytesource.Reader) (Input, error) {
	txidBytes, err := r.Read(chainhash.HashSize)
	if err != nil {
		return Input{}, err
	}
	var txid chainhash.Hash
	copy(txid[:], txidBytes)

	vout, err := r.ReadLEU32()
	if err != nil {
		return Input{}, err
	}
	scriptLen, err := r.ReadVarInt()
	if err != nil {
		return Input{}, err
	}
	scriptBytes, err := r.Read(int(scriptLen))
	if err != nil {
		return Input{}, err
	}
	seq, err := r.ReadLEU32()
	if err != nil {
		return Input{}, err
	}
	return Input{
		PrevTxID:  txid,
		PrevVout:  vout,
		ScriptSig: script.Script(scriptBytes),
		Sequence:  seq,
		Size:      chainhash.HashSize + 4 + varIntSize(scriptLen) + len(scriptBytes) + 4,
	}, nil
}

func (in Input) serialize(w io.Writer) error {
	if _, err := w.Write(in.PrevTxID[:]); err != nil {
		return err
	}
	var vout [4]byte
	binary.LittleEndian.PutUint32(vout[:], in.PrevVout)
	if _, err := w.Write(vout[:]); err != nil {
		return err
	}
	if err := writeVarInt(w, uint64(len(in.ScriptSig))); err != nil {
		return err
	}
	if _, err := w.Write(in.ScriptSig); err != nil {
		return err
	}
	var seq [4]byte
	binary.LittleEndian.PutUint32(seq[:], in.Sequence)
	_, err := w.Write(seq[:])
	return err
}
