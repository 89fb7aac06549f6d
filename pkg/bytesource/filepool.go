package bytesource

import (
	"fmt"
	"os"
	"path/filepath"

	lru "github.com/hashicorp/golang-lru/v2"
)

// readBufferSize matches the node's own buffering when it opens blk*.dat
// sequentially (a ~10MiB read buffer).
const readBufferSize = 10 * 1024 * 1024

// maxOpenFiles bounds the pool so sequential iteration over many blk*.dat
// files never exhausts descriptors.
const maxOpenFiles = 8

// FilePool keeps at most maxOpenFiles block files open, evicting the least
// recently used one when a new file is requested. It is single-writer: the
// chain driver is its only caller, never concurrently.
type FilePool struct {
	dir   string
	cache *lru.Cache[uint32, *os.File]
}

// NewFilePool opens files named blk%05d.dat under dir on demand.
func NewFilePool(dir string) (*FilePool, error) {
	p := &FilePool{dir: dir}
	cache, err := lru.NewWithEvict(maxOpenFiles, func(_ uint32, f *os.File) {
		f.Close()
	})
	if err != nil {
		return nil, fmt.Errorf("bytesource: creating file pool: %w", err)
	}
	p.cache = cache
	return p, nil
}

// Open returns the handle for the given file number, opening it (and
// evicting the oldest handle, if the pool is full) if necessary.
func (p *FilePool) Open(fileNo uint32) (*os.File, error) {
	if f, ok := p.cache.Get(fileNo); ok {
		return f, nil
	}
	name := filepath.Join(p.dir, fmt.Sprintf("blk%05d.dat", fileNo))
	f, err := os.Open(name)
	if err != nil {
		return nil, fmt.Errorf("bytesource: opening %s: %w", name, err)
	}
	p.cache.Add(fileNo, f)
	return f, nil
}

// BufferSize is the buffer size new readers over pooled files should use.
func (p *FilePool) BufferSize() int {
	return readBufferSize
}

// Close closes every file currently held by the pool. Purge runs the
// eviction callback for each entry, which closes the underlying handle.
func (p *FilePool) Close() {
	p.cache.Purge()
}

// Len reports the number of currently open files, for the progress monitor.
func (p *FilePool) Len() int {
	return p.cache.Len()
}
