// Package monitor exposes the running pipeline's progress over HTTP,
// adapted from the teacher's cmd/web server: same gin + gin-contrib/cors
// wiring, repointed from transaction analysis at progress reporting. The
// driver updates a Progress's fields with atomic stores only; nothing here
// ever shares a lock with the single-writer parsing hot path.
package monitor

import (
	"math"
	"net/http"
	"sync/atomic"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Progress holds the counters the driver updates as it walks the chain.
// Every field is accessed with the atomic package so reads from an HTTP
// handler goroutine never need to coordinate with the driver's hot loop.
type Progress struct {
	Height       atomic.Int64
	Tip          atomic.Int64
	OpenFiles    atomic.Int64
	UTXOSetSize  atomic.Int64
	ProcessedGB  atomic.Uint64 // bits of a float64, via math.Float64bits
}

// SetProcessedGB stores v atomically, going through its raw bit pattern
// since sync/atomic has no native float64 type.
func (p *Progress) SetProcessedGB(v float64) {
	p.ProcessedGB.Store(math.Float64bits(v))
}

// Server wraps a gin engine serving /healthz and /progress.
type Server struct {
	engine   *gin.Engine
	progress *Progress
}

// New builds a Server reporting from progress. addr is not bound until Run
// is called.
func New(progress *Progress) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	s := &Server{engine: r, progress: progress}
	r.GET("/healthz", s.handleHealthz)
	r.GET("/progress", s.handleProgress)
	return s
}

// Run blocks serving on addr until the process exits or the listener
// fails.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (s *Server) handleProgress(c *gin.Context) {
	height := s.progress.Height.Load()
	tip := s.progress.Tip.Load()
	fraction := 0.0
	if tip > 0 {
		fraction = float64(height) / float64(tip)
	}
	c.JSON(http.StatusOK, gin.H{
		"height":        height,
		"tip":           tip,
		"fraction":      fraction,
		"open_files":    s.progress.OpenFiles.Load(),
		"utxo_set_size": s.progress.UTXOSetSize.Load(),
		"processed_gb":  math.Float64frombits(s.progress.ProcessedGB.Load()),
	})
}
