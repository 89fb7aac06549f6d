package csvout

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"chainstats/pkg/window"
)

func TestWriteStatsCreatesHeaderOnce(t *testing.T) {
	dir := t.TempDir()
	w := New(dir)
	defer w.Close()

	w.WriteStats("amount_transferred_per_block-1", 10, window.Stats{Mean: 5})
	w.WriteStats("amount_transferred_per_block-1", 11, window.Stats{Mean: 6})
	w.Close()

	f, err := os.Open(filepath.Join(dir, "amount_transferred_per_block-1.csv"))
	require.NoError(t, err, "expected output file to exist")
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "expected header + 2 rows")
	require.Equal(t, "mean_height", rows[0][0])
}

func TestWriteHistogramsSortedByValue(t *testing.T) {
	dir := t.TempDir()
	set := NewHistogramSet()
	set.Add("input_P2PKH", 25)
	set.Add("input_P2PKH", 10)
	set.Add("input_P2PKH", 25)

	require.NoError(t, WriteHistograms(dir, set))

	data, err := os.ReadFile(filepath.Join(dir, "histogram_input_P2PKH.csv"))
	require.NoError(t, err, "expected histogram file")
	require.Equal(t, "value,count\n10,1\n25,2\n", string(data))
}

func TestGzipCompressorRemovesOriginal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "histogram_x.dat")
	require.NoError(t, os.WriteFile(path, []byte("value,count\n1,1\n"), 0o644))

	c := GzipCompressor{}
	outPath, err := c.Compress(path)
	require.NoError(t, err)

	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err), "expected uncompressed original to be removed")

	_, err = os.Stat(outPath)
	require.NoError(t, err, "expected compressed output to exist")
}
