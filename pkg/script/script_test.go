package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func p2pkhScript() Script {
	return Script(append(append([]byte{opDup, opHash160, 20}, make([]byte, 20)...), opEqualVerify, opCheckSig))
}

func TestIsP2PKH(t *testing.T) {
	assert.True(t, p2pkhScript().IsP2PKH())
	assert.False(t, p2pkhScript()[:24].IsP2PKH(), "truncated script must not match")
}

func TestIsP2SH(t *testing.T) {
	s := Script(append(append([]byte{opHash160, 20}, make([]byte, 20)...), opEqual))
	assert.True(t, s.IsP2SH())
}

func TestIsP2WPKHAndP2WSH(t *testing.T) {
	pkh := Script(append([]byte{opZero, 20}, make([]byte, 20)...))
	assert.True(t, pkh.IsP2WPKH())
	wsh := Script(append([]byte{opZero, 32}, make([]byte, 32)...))
	assert.True(t, wsh.IsP2WSH())
}

func TestIsP2WUnknown(t *testing.T) {
	s := Script{op1, 2, 0xaa, 0xbb}
	assert.True(t, s.IsP2WUnknown(), "expected future witness version to match P2W_UNKNOWN")
	v0 := Script(append([]byte{opZero, 20}, make([]byte, 20)...))
	assert.False(t, v0.IsP2WUnknown(), "version 0 program must not match P2W_UNKNOWN")
}

func TestIsP2UPKAndP2CPK(t *testing.T) {
	upk := Script(append(append([]byte{uncompressedKeyLen}, make([]byte, uncompressedKeyLen)...), opCheckSig))
	assert.True(t, upk.IsP2UPK())
	cpk := Script(append(append([]byte{compressedKeyLen}, make([]byte, compressedKeyLen)...), opCheckSig))
	assert.True(t, cpk.IsP2CPK())
}

func buildMultisig(m, n int) Script {
	s := Script{byte(op1 + m - 1)}
	for i := 0; i < n; i++ {
		key := make([]byte, compressedKeyLen)
		key[0] = 2
		s = append(s, byte(compressedKeyLen))
		s = append(s, key...)
	}
	s = append(s, byte(op1+n-1), opCheckMultiSig)
	return s
}

func TestMultisigParams(t *testing.T) {
	s := buildMultisig(2, 3)
	m, n, ok := s.MultisigParams()
	require.True(t, ok)
	assert.Equal(t, 2, m)
	assert.Equal(t, 3, n)
}

func TestIsOpReturn(t *testing.T) {
	s := Script{opReturn, 4, 'd', 'a', 't', 'a'}
	assert.True(t, s.IsOpReturn())
	notOpReturn := Script{opDup}
	assert.False(t, notOpReturn.IsOpReturn(), "OP_DUP must not match OP_RETURN")
}

func TestRedeemScript(t *testing.T) {
	inner := buildMultisig(1, 2)
	sigScript := Script{}
	sigScript = append(sigScript, 0) // OP_0 dummy for CHECKMULTISIG off-by-one bug
	sigScript = append(sigScript, byte(len(inner)))
	sigScript = append(sigScript, inner...)

	redeem, ok := sigScript.RedeemScript()
	require.True(t, ok, "expected redeem script to be found")
	assert.Equal(t, string(inner), string(redeem))
}

func TestClassifyOutputP2PKH(t *testing.T) {
	assert.Equal(t, P2PKH, ClassifyOutput(p2pkhScript()))
}

func TestClassifyInputP2SHP2WPKH(t *testing.T) {
	redeem := Script(append([]byte{opZero, 20}, make([]byte, 20)...))
	scriptSig := Script(append([]byte{byte(len(redeem))}, redeem...))
	p2sh := Script(append(append([]byte{opHash160, 20}, make([]byte, 20)...), opEqual))

	assert.Equal(t, P2SHP2WPKH, ClassifyInput(p2sh, scriptSig, nil))
}

func TestClassifyInputP2WSHMultisig(t *testing.T) {
	wsh := Script(append([]byte{opZero, 32}, make([]byte, 32)...))
	witnessScript := buildMultisig(2, 2)
	witness := [][]byte{{}, {}, witnessScript}

	assert.Equal(t, P2WSHMultisig, ClassifyInput(wsh, nil, witness))
}
