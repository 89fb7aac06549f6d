package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/btcsuite/btcd/chaincfg/chainhash"

	"chainstats/pkg/bytesource"
	"chainstats/pkg/script"
)

// Transaction is a fully parsed transaction: enough of it to classify every
// input and output and to compute the block-level size/weight/fee metrics.
type Transaction struct {
	Version  int32
	IsSegWit bool
	Inputs   []Input
	Outputs  []Output
	LockTime uint32

	// Size, StrippedSize and Weight follow BIP 141's definitions.
	// StrippedSize excludes the marker, flag and witness data; Size
	// includes them; Weight = StrippedSize*4 + (Size-StrippedSize).
	Size         int
	StrippedSize int
	Weight       int

	TxID chainhash.Hash
}

// ErrBadSegWitFlag is returned when a transaction's SegWit marker byte
// (0x00) is present but the following flag byte isn't the single
// currently-defined value 0x01.
var ErrBadSegWitFlag = fmt.Errorf("wire: invalid segwit flag")

// DeserializeTransaction parses one transaction from r.
//
// Bitcoin's transaction encoding uses a peek to tell a SegWit transaction
// from a legacy one: immediately after the version field, a legacy
// transaction's input count (a CompactSize varint, never zero for a
// well-formed transaction) begins: the first byte of that varint can't be
// zero unless there are zero inputs, which never happens in practice. A
// SegWit transaction instead writes a literal 0x00 marker there, followed
// by a 0x01 flag byte, before the real input count. Rather than rewind the
// stream when the marker byte turns out to be an ordinary varint's first
// byte, we decode the varint using that byte as its already-consumed first
// byte (decodeVarIntAfter below).
func DeserializeTransaction(r *bytesource.Reader) (*Transaction, error) {
	versionBytes, err := r.Read(4)
	if err != nil {
		return nil, err
	}
	version := int32(binary.LittleEndian.Uint32(versionBytes))

	marker, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	var isSegWit bool
	var numInputs uint64
	if marker == 0x00 {
		flag, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if flag != 0x01 {
			return nil, fmt.Errorf("%w: 0x%02x", ErrBadSegWitFlag, flag)
		}
		isSegWit = true
		numInputs, err = r.ReadVarInt()
		if err != nil {
			return nil, err
		}
	} else {
		numInputs, err = decodeVarIntAfter(marker, r)
		if err != nil {
			return nil, err
		}
	}

	inputs := make([]Input, numInputs)
	for i := range inputs {
		in, err := deserializeInput(r)
		if err != nil {
			return nil, fmt.Errorf("wire: input %d: %w", i, err)
		}
		inputs[i] = in
	}

	numOutputs, err := r.ReadVarInt()
	if err != nil {
		return nil, err
	}
	outputs := make([]Output, numOutputs)
	for i := range outputs {
		out, err := deserializeOutput(r)
		if err != nil {
			return nil, fmt.Errorf("wire: output %d: %w", i, err)
		}
		outputs[i] = out
	}

	if isSegWit {
		for i := range inputs {
			w, err := deserializeWitness(r)
			if err != nil {
				return nil, fmt.Errorf("wire: witness %d: %w", i, err)
			}
			inputs[i].Witness = w
		}
	}

	lockTimeBytes, err := r.Read(4)
	if err != nil {
		return nil, err
	}
	lockTime := binary.LittleEndian.Uint32(lockTimeBytes)

	tx := &Transaction{
		Version:  version,
		IsSegWit: isSegWit,
		Inputs:   inputs,
		Outputs:  outputs,
		LockTime: lockTime,
	}
	tx.finalize()
	return tx, nil
}

// decodeVarIntAfter decodes a CompactSize varint whose first byte has
// already been consumed from the stream.
func decodeVarIntAfter(first byte, r *bytesource.Reader) (uint64, error) {
	switch first {
	case 0xfd:
		v, err := r.ReadLEU16()
		return uint64(v), err
	case 0xfe:
		v, err := r.ReadLEU32()
		return uint64(v), err
	case 0xff:
		return r.ReadLEU64()
	default:
		return uint64(first), nil
	}
}

// finalize computes Size, StrippedSize, Weight and TxID by re-serializing
// the parsed transaction: the legacy (witness-stripped) encoding gives
// StrippedSize and TxID directly; the full encoding gives Size.
func (tx *Transaction) finalize() {
	var legacy bytes.Buffer
	tx.serializeNoWitness(&legacy)
	tx.StrippedSize = legacy.Len()
	tx.TxID = chainhash.DoubleHashH(legacy.Bytes())

	if !tx.IsSegWit {
		tx.Size = tx.StrippedSize
	} else {
		var full bytes.Buffer
		tx.serializeFull(&full)
		tx.Size = full.Len()
	}
	tx.Weight = tx.StrippedSize*4 + (tx.Size - tx.StrippedSize)
}

func (tx *Transaction) serializeNoWitness(w *bytes.Buffer) {
	var version [4]byte
	binary.LittleEndian.PutUint32(version[:], uint32(tx.Version))
	w.Write(version[:])

	writeVarInt(w, uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		in.serialize(w)
	}
	writeVarInt(w, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		out.serialize(w)
	}

	var lockTime [4]byte
	binary.LittleEndian.PutUint32(lockTime[:], tx.LockTime)
	w.Write(lockTime[:])
}

func (tx *Transaction) serializeFull(w *bytes.Buffer) {
	var version [4]byte
	binary.LittleEndian.PutUint32(version[:], uint32(tx.Version))
	w.Write(version[:])
	w.Write([]byte{0x00, 0x01})

	writeVarInt(w, uint64(len(tx.Inputs)))
	for _, in := range tx.Inputs {
		in.serialize(w)
	}
	writeVarInt(w, uint64(len(tx.Outputs)))
	for _, out := range tx.Outputs {
		out.serialize(w)
	}
	for _, in := range tx.Inputs {
		in.Witness.serialize(w)
	}

	var lockTime [4]byte
	binary.LittleEndian.PutUint32(lockTime[:], tx.LockTime)
	w.Write(lockTime[:])
}

// IsCoinbase reports whether this is the block's coinbase transaction.
func (tx *Transaction) IsCoinbase() bool {
	return len(tx.Inputs) == 1 && tx.Inputs[0].IsCoinbase()
}

// ResolveSpentTypes fills in SpentType/SpentScript for every non-coinbase
// input, given a lookup of the output each input references. It also
// returns the transaction fee (sum of input amounts minus sum of output
// amounts); a coinbase transaction has no meaningful fee and is skipped by
// the caller instead of calling this.
func (tx *Transaction) ResolveSpentTypes(lookup func(chainhash.Hash, uint32) (script.Script, int64, bool)) (fee int64, missing []int, err error) {
	var inputsAmount int64
	for i := range tx.Inputs {
		in := &tx.Inputs[i]
		spentScript, amount, ok := lookup(in.PrevTxID, in.PrevVout)
		if !ok {
			missing = append(missing, i)
			continue
		}
		in.SpentScript = spentScript
		in.SpentType = script.ClassifyInput(spentScript, in.ScriptSig, in.Witness)
		inputsAmount += amount
	}
	if len(missing) > 0 {
		return 0, missing, nil
	}
	var outputsAmount int64
	for _, out := range tx.Outputs {
		outputsAmount += out.Amount
	}
	return inputsAmount - outputsAmount, nil, nil
}
