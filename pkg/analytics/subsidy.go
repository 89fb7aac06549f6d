package analytics

// initialSubsidy is 50 BTC in satoshis, the block reward before any
// halving.
const initialSubsidy = 50 * 100_000_000

// halvingInterval is the number of blocks between each subsidy halving.
const halvingInterval = 210_000

// MaxBlockSubsidy returns the subsidy a block at height is entitled to,
// before fees: 50 BTC, halved every 210,000 blocks. The halving shift
// leaves zero from the 33rd halving on; 64 or more halvings return zero
// without shifting.
func MaxBlockSubsidy(height int) int64 {
	halvings := height / halvingInterval
	if halvings >= 64 {
		return 0
	}
	return initialSubsidy >> uint(halvings)
}
