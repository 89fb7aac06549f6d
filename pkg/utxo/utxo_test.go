package utxo

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainstats/pkg/script"
)

func TestAddAndConsume(t *testing.T) {
	s := New()
	txid := chainhash.Hash{1, 2, 3}

	s.Add(txid, []NewOutput{
		{Vout: 0, ScriptPubKey: script.Script{0x00}, Amount: 1000, Type: script.P2WPKH},
		{Vout: 1, ScriptPubKey: script.Script{0x6a}, Amount: 0, Type: script.OpReturn},
	})

	require.Equal(t, 1, s.Len(), "expected OP_RETURN output to be skipped")

	entry, ok := s.Consume(txid, 0)
	require.True(t, ok, "expected output 0 to be present")
	assert.Equal(t, int64(1000), entry.Amount)
	assert.Equal(t, 0, s.Len(), "expected set to be empty after consuming its only entry")

	_, ok = s.Consume(txid, 0)
	assert.False(t, ok, "consuming the same output twice must fail")
	_, ok = s.Consume(txid, 1)
	assert.False(t, ok, "an OP_RETURN output must never be consumable")
}

func TestLookupConsumes(t *testing.T) {
	s := New()
	txid := chainhash.Hash{9}
	s.Add(txid, []NewOutput{{Vout: 0, ScriptPubKey: script.Script{0x51}, Amount: 5, Type: script.Nonstandard}})

	lookup := s.Lookup()
	_, amount, ok := lookup(txid, 0)
	require.True(t, ok)
	assert.Equal(t, int64(5), amount)

	_, _, ok = lookup(txid, 0)
	assert.False(t, ok, "lookup must consume the entry, a second call should miss")
}
