package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"chainstats/pkg/script"
)

func TestMaxBlockSubsidy(t *testing.T) {
	cases := []struct {
		height int
		want   int64
	}{
		{0, 50 * 100_000_000},
		{209_999, 50 * 100_000_000},
		{210_000, 25 * 100_000_000},
		{420_000, 1_250_000_000},
		{210_000 * 64, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, MaxBlockSubsidy(c.height), "MaxBlockSubsidy(%d)", c.height)
	}
}

func TestDifficultyAtGenesisIsOne(t *testing.T) {
	assert.Equal(t, float64(1), Difficulty(genesisBits))
}

func TestDifficultyRises256xWithOneMoreLeadingZeroByte(t *testing.T) {
	harder := uint32(0x1c00ffff) // one less leading byte of headroom => ~256x harder
	got := Difficulty(harder)
	assert.InDelta(t, 250, got, 50, "expected difficulty roughly 256x genesis")
}

func TestTargetNameAppendsMultisigArity(t *testing.T) {
	// spentUTXOTypes/createdUTXOTypes build their metric names with this
	// helper; here we just check the naming helper directly.
	assert.Equal(t, "MULTISIG-2-of-3", targetName(script.Multisig, 2, 3, true))
	assert.Equal(t, "MULTISIG", targetName(script.Multisig, 0, 0, false))
}
