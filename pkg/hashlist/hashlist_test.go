package hashlist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/stretchr/testify/require"
)

func TestReadRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hashes.bin")

	var display [chainhash.HashSize]byte
	for i := range display {
		display[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(path, display[:], 0o644))

	hashes, err := Read(path)
	require.NoError(t, err)
	require.Len(t, hashes, 1)
	for j := 0; j < chainhash.HashSize; j++ {
		require.Equalf(t, display[chainhash.HashSize-1-j], hashes[0][j], "byte %d not reversed", j)
	}
}

func TestReadRejectsMisalignedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.bin")
	require.NoError(t, os.WriteFile(path, make([]byte, 10), 0o644))

	_, err := Read(path)
	require.Error(t, err, "expected an error for a file whose size isn't a multiple of 32")
}
