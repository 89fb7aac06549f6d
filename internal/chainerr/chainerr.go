// Package chainerr gives every fatal condition the driver can hit a fixed
// kind and the block height it happened at, so a failing run always prints
// something actionable instead of a bare wrapped error.
package chainerr

import "fmt"

// Kind enumerates the fatal conditions the pipeline distinguishes. Every
// kind but SubsidyAnomaly aborts the run; SubsidyAnomaly is logged and the
// run continues, since a subsidy mismatch reflects something about the
// chain's history, not a parsing failure.
type Kind int

const (
	// ShortRead means a file or LevelDB value ended before a field we
	// expected to be there.
	ShortRead Kind = iota
	// BadMagic means a blk*.dat record didn't start with the node's
	// magic bytes, so file/offset bookkeeping has drifted.
	BadMagic
	// BadSegWitFlag means a transaction's marker byte was 0x00 but its
	// flag byte wasn't the sole defined value 0x01.
	BadSegWitFlag
	// UTXOMissing means an input referenced an output that is not (or
	// is no longer) in the UTXO set.
	UTXOMissing
	// SizeMismatch means a block's declared size didn't match the number
	// of bytes its fields actually consumed.
	SizeMismatch
	// IndexBroken means the block index or the active-chain hash list
	// failed an integrity check (height mismatch, broken hash linkage,
	// or a block marked failed).
	IndexBroken
	// UnknownOpcode means a script byte sequence couldn't be classified
	// or disassembled.
	UnknownOpcode
	// SubsidyAnomaly means a block's coinbase reward didn't match the
	// expected subsidy plus fees. Non-fatal: logged and the run
	// continues.
	SubsidyAnomaly
)

func (k Kind) String() string {
	switch k {
	case ShortRead:
		return "SHORT_READ"
	case BadMagic:
		return "BAD_MAGIC"
	case BadSegWitFlag:
		return "BAD_SEGWIT_FLAG"
	case UTXOMissing:
		return "UTXO_MISSING"
	case SizeMismatch:
		return "SIZE_MISMATCH"
	case IndexBroken:
		return "INDEX_BROKEN"
	case UnknownOpcode:
		return "UNKNOWN_OPCODE"
	case SubsidyAnomaly:
		return "SUBSIDY_ANOMALY"
	default:
		return "UNKNOWN"
	}
}

// Error wraps an underlying error with the kind and block height it
// happened at.
type Error struct {
	Kind   Kind
	Height int
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at height %d: %v", e.Kind, e.Height, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Wrap builds an *Error. It never returns nil, even if err is nil, since
// every call site already knows it has a failure to report.
func Wrap(kind Kind, height int, err error) *Error {
	return &Error{Kind: kind, Height: height, Err: err}
}

// Fatal reports whether kind should abort the run. SubsidyAnomaly is the
// only non-fatal kind.
func (k Kind) Fatal() bool {
	return k != SubsidyAnomaly
}
