package csvout

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
)

// Compressor compresses a finished output file in place. The reference
// pipeline re-encodes its raw dumps to .csv.bz2 after a run; this module
// uses gzip instead, since that's what the standard library and the rest
// of the Go ecosystem reach for, but the shape of the operation — compress
// the finished file, then remove the uncompressed original — is the same.
type Compressor interface {
	Compress(path string) (compressedPath string, err error)
}

// GzipCompressor writes path+".gz" and removes path on success.
type GzipCompressor struct{}

func (GzipCompressor) Compress(path string) (string, error) {
	in, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("csvout: opening %s for compression: %w", path, err)
	}
	defer in.Close()

	outPath := path + ".gz"
	out, err := os.Create(outPath)
	if err != nil {
		return "", fmt.Errorf("csvout: creating %s: %w", outPath, err)
	}
	gw := gzip.NewWriter(out)

	if _, err := io.Copy(gw, in); err != nil {
		gw.Close()
		out.Close()
		return "", fmt.Errorf("csvout: compressing %s: %w", path, err)
	}
	if err := gw.Close(); err != nil {
		out.Close()
		return "", fmt.Errorf("csvout: finishing %s: %w", outPath, err)
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if err := os.Remove(path); err != nil {
		return "", fmt.Errorf("csvout: removing uncompressed %s: %w", path, err)
	}
	return outPath, nil
}

// CompressAll compresses every file directly under dir matching suffix
// (".csv" for both the metric series and the histogram dumps) with c,
// logging via report any file it fails to compress rather than aborting
// the whole pass over one bad file.
func CompressAll(dir, suffix string, c Compressor, report func(path string, err error)) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("csvout: reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if len(name) < len(suffix) || name[len(name)-len(suffix):] != suffix {
			continue
		}
		if _, err := c.Compress(dir + string(os.PathSeparator) + name); err != nil {
			report(name, err)
		}
	}
	return nil
}
