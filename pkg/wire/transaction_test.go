package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"chainstats/pkg/bytesource"
)

// buildLegacyTx assembles a minimal one-input, one-output legacy
// transaction in wire format: version, input count, one input (32-byte
// prevout txid, 4-byte vout, empty script_sig, sequence), output count, one
// output (amount, empty scriptPubKey), locktime.
func buildLegacyTx() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x01, 0x00, 0x00, 0x00}) // version 1
	buf.WriteByte(0x01)                       // 1 input
	buf.Write(make([]byte, 32))               // prevout txid
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00})  // prevout vout
	buf.WriteByte(0x00)                        // empty script_sig
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff})  // sequence
	buf.WriteByte(0x01)                        // 1 output
	buf.Write([]byte{0x00, 0xe4, 0x0b, 0x54, 0x02, 0x00, 0x00, 0x00}) // amount
	buf.WriteByte(0x00)                        // empty scriptPubKey
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00})  // locktime
	return buf.Bytes()
}

func TestDeserializeLegacyTransaction(t *testing.T) {
	raw := buildLegacyTx()
	r := bytesource.New(bytes.NewReader(raw))
	tx, err := DeserializeTransaction(r)
	require.NoError(t, err)
	require.False(t, tx.IsSegWit, "expected non-segwit transaction")
	require.Len(t, tx.Inputs, 1)
	require.Len(t, tx.Outputs, 1)
	require.Equal(t, len(raw), tx.Size)
	require.Equal(t, tx.Size, tx.StrippedSize, "stripped size should equal size for a legacy tx")
	require.Equal(t, tx.Size*4, tx.Weight)
}

// buildSegWitTx assembles a one-input, one-output segwit transaction whose
// one input carries a two-item witness (an empty item and a one-byte item).
func buildSegWitTx() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x01, 0x00, 0x00, 0x00}) // version 1
	buf.Write([]byte{0x00, 0x01})             // segwit marker+flag
	buf.WriteByte(0x01)                       // 1 input
	buf.Write(make([]byte, 32))
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00})
	buf.WriteByte(0x00)
	buf.Write([]byte{0xff, 0xff, 0xff, 0xff})
	buf.WriteByte(0x01) // 1 output
	buf.Write([]byte{0x00, 0xe4, 0x0b, 0x54, 0x02, 0x00, 0x00, 0x00})
	buf.WriteByte(0x00)
	buf.WriteByte(0x02) // 2 witness items
	buf.WriteByte(0x00) // item 0: empty
	buf.WriteByte(0x01) // item 1: 1 byte
	buf.WriteByte(0xaa)
	buf.Write([]byte{0x00, 0x00, 0x00, 0x00}) // locktime
	return buf.Bytes()
}

func TestDeserializeSegWitTransaction(t *testing.T) {
	raw := buildSegWitTx()
	r := bytesource.New(bytes.NewReader(raw))
	tx, err := DeserializeTransaction(r)
	require.NoError(t, err)
	require.True(t, tx.IsSegWit, "expected segwit transaction")
	require.Equal(t, len(raw), tx.Size)
	require.Less(t, tx.StrippedSize, tx.Size, "stripped size should be smaller than full size")

	wantWeight := tx.StrippedSize*4 + (tx.Size - tx.StrippedSize)
	require.Equal(t, wantWeight, tx.Weight)
	require.Len(t, tx.Inputs[0].Witness, 2)
}

func TestBadSegWitFlagRejected(t *testing.T) {
	raw := buildSegWitTx()
	raw[5] = 0x02 // corrupt the flag byte
	r := bytesource.New(bytes.NewReader(raw))
	_, err := DeserializeTransaction(r)
	require.Error(t, err, "expected an error for an invalid segwit flag")
}

func TestIsCoinbase(t *testing.T) {
	raw := buildLegacyTx()
	raw[37] = 0xff // prevout vout -> 0xffffffff makes input[0] a coinbase prevout
	raw[38] = 0xff
	raw[39] = 0xff
	raw[40] = 0xff
	r := bytesource.New(bytes.NewReader(raw))
	tx, err := DeserializeTransaction(r)
	require.NoError(t, err)
	require.True(t, tx.IsCoinbase(), "expected coinbase detection given an all-zero txid and 0xffffffff vout")
}
