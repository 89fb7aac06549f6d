package driver

import (
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"

	"chainstats/pkg/script"
	"chainstats/pkg/utxo"
	"chainstats/pkg/wire"
)

func p2pkhScript() script.Script {
	s := make(script.Script, 25)
	s[0] = 0x76 // OP_DUP
	s[1] = 0xa9 // OP_HASH160
	s[2] = 20
	s[23] = 0x88 // OP_EQUALVERIFY
	s[24] = 0xac // OP_CHECKSIG
	return s
}

func newDriverForTest() *Driver {
	return &Driver{utxoSet: utxo.New()}
}

// TestApplyBlockSpendsSameBlockOutput checks that a transaction can spend
// an output created earlier in the very same block: the coinbase's output
// must already be in the UTXO set by the time the spending transaction's
// inputs are resolved, even though both transactions are processed within
// one call to applyBlock.
func TestApplyBlockSpendsSameBlockOutput(t *testing.T) {
	pk := p2pkhScript()

	coinbase := &wire.Transaction{
		Inputs: []wire.Input{{
			PrevTxID: chainhash.Hash{},
			PrevVout: 0xffffffff,
		}},
		Outputs: []wire.Output{{
			Amount:       5_000_000_000,
			ScriptPubKey: pk,
			Type:         script.P2PKH,
		}},
		TxID: chainhash.Hash{0x01},
	}

	spender := &wire.Transaction{
		Inputs: []wire.Input{{
			PrevTxID:  coinbase.TxID,
			PrevVout:  0,
			ScriptSig: script.Script{0x01, 0x02},
		}},
		Outputs: []wire.Output{{
			Amount:       4_999_000_000,
			ScriptPubKey: pk,
			Type:         script.P2PKH,
		}},
		TxID: chainhash.Hash{0x02},
	}

	blk := &wire.Block{Transactions: []*wire.Transaction{coinbase, spender}}

	d := newDriverForTest()
	fees, err := d.applyBlock(blk, 1)
	require.NoError(t, err)
	require.Len(t, fees, 2)
	require.Equal(t, int64(0), fees[0], "coinbase fee should be left at 0")

	wantFee := int64(5_000_000_000 - 4_999_000_000)
	require.Equal(t, wantFee, fees[1])
	require.Equal(t, script.P2PKH, spender.Inputs[0].SpentType, "spender's resolved SpentType")
	require.Equal(t, 1, d.utxoSet.Len(), "expected exactly the spender's own output left unspent")
}

// TestApplyBlockMissingUTXOFails checks that spending an output nothing in
// this run ever created surfaces as an error rather than silently zeroing
// the fee.
func TestApplyBlockMissingUTXOFails(t *testing.T) {
	spender := &wire.Transaction{
		Inputs: []wire.Input{{
			PrevTxID: chainhash.Hash{0xff},
			PrevVout: 0,
		}},
		Outputs: []wire.Output{{Amount: 1000, ScriptPubKey: p2pkhScript(), Type: script.P2PKH}},
		TxID:    chainhash.Hash{0x03},
	}
	blk := &wire.Block{Transactions: []*wire.Transaction{spender}}

	d := newDriverForTest()
	_, err := d.applyBlock(blk, 0)
	require.Error(t, err, "expected an error for a missing UTXO reference")
}
