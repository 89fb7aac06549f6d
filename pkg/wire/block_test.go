package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"chainstats/pkg/bytesource"
)

func buildHeaderBytes() []byte {
	var buf bytes.Buffer
	buf.Write([]byte{0x01, 0x00, 0x00, 0x00}) // version
	buf.Write(make([]byte, 32))               // prev block hash
	buf.Write(make([]byte, 32))               // merkle root
	buf.Write([]byte{0x2a, 0x00, 0x00, 0x00})  // timestamp
	buf.Write([]byte{0xff, 0xff, 0x00, 0x1d})  // bits
	buf.Write([]byte{0x01, 0x00, 0x00, 0x00})  // nonce
	return buf.Bytes()
}

func TestDeserializeHeader(t *testing.T) {
	raw := buildHeaderBytes()
	r := bytesource.New(bytes.NewReader(raw))
	h, err := DeserializeHeader(r)
	require.NoError(t, err)
	require.Equal(t, int32(1), h.Version)
	require.Equal(t, uint32(0x2a), h.Timestamp)
}

func TestDeserializeBlockSingleCoinbase(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildHeaderBytes())
	buf.WriteByte(0x01) // 1 transaction

	coinbase := buildLegacyTx()
	coinbase[37], coinbase[38], coinbase[39], coinbase[40] = 0xff, 0xff, 0xff, 0xff
	buf.Write(coinbase)

	r := bytesource.New(bytes.NewReader(buf.Bytes()))
	block, err := DeserializeBlock(r, uint32(buf.Len()))
	require.NoError(t, err)
	require.Len(t, block.Transactions, 1)
	require.True(t, block.Transactions[0].IsCoinbase(), "expected the sole transaction to be a coinbase")
}

func TestHeaderHashDeterministic(t *testing.T) {
	raw := buildHeaderBytes()
	r := bytesource.New(bytes.NewReader(raw))
	h, err := DeserializeHeader(r)
	require.NoError(t, err)
	require.Equal(t, h.Hash(), h.Hash(), "header hash must be deterministic")
}
