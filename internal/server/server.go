// Package server is the WebSocket play server. Every connection gets its own
// session running on its own sched.Loop, so boards never share a goroutine.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/lox/tilematch/internal/level"
	"github.com/lox/tilematch/internal/randutil"
	"github.com/lox/tilematch/internal/score"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

// Option configures a Server.
type Option func(*Server)

// WithClock sets the clock connection timers run on.
func WithClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithSeed makes board shuffles reproducible. Each connection derives its
// own stream from seed.
func WithSeed(seed int64) Option {
	return func(s *Server) { s.seed = seed }
}

// WithMonitor adds a monitor notified of every game played.
func WithMonitor(m GameMonitor) Option {
	return func(s *Server) { s.monitors = append(s.monitors, m) }
}

// Server represents the WebSocket server
type Server struct {
	catalog  atomic.Pointer[level.Catalog]
	store    score.Store
	clock    quartz.Clock
	seed     int64
	streams  atomic.Int64
	stats    *StatsMonitor
	monitors []GameMonitor
	monitor  GameMonitor

	upgrader    websocket.Upgrader
	router      *chi.Mux
	connections map[*Connection]struct{}
	mu          sync.RWMutex
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	logger      *log.Logger
}

// NewServer creates a new WebSocket server
func NewServer(catalog *level.Catalog, store score.Store, logger *log.Logger, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Server{
		store: store,
		stats: NewStatsMonitor(),
		clock: quartz.NewReal(),
		seed:  time.Now().UnixNano(),
		upgrader: websocket.Upgrader{
			// Any origin may play
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		connections: make(map[*Connection]struct{}),
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger.WithPrefix("server"),
	}
	s.catalog.Store(catalog)
	for _, opt := range opts {
		opt(s)
	}
	s.monitor = NewMultiGameMonitor(append([]GameMonitor{s.stats}, s.monitors...)...)
	s.router = s.routes()
	return s
}

func (s *Server) routes() *chi.Mux {
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.Recoverer)

	r.Get("/ws", s.handleWebSocket)
	r.Get("/health", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Use(chimw.Timeout(10 * time.Second))
		r.Use(jsonContentType)
		r.Get("/levels", s.handleLevels)
		r.Get("/scores", s.handleScores)
		r.Get("/scores/{level}", s.handleScore)
		r.Get("/stats", s.handleStats)
	})
	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Catalog returns the catalog new sessions are created with.
func (s *Server) Catalog() *level.Catalog {
	return s.catalog.Load()
}

// SetCatalog replaces the level catalog. Every live session picks it up on
// its next level load.
func (s *Server) SetCatalog(c *level.Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog.Store(c)
	for conn := range s.connections {
		conn.Post(func() { conn.session.SetCatalog(c) })
	}
	s.logger.Info("Level catalog updated", "levels", c.Len(), "connections", len(s.connections))
}

// Serve listens on addr until ctx is cancelled, then shuts down and waits
// for every connection to finish.
func (s *Server) Serve(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener is Serve on an existing listener.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("Starting WebSocket server", "addr", ln.Addr().String())
		if err := srv.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.Stop()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Watch reloads the catalog from path whenever the file changes.
func (s *Server) Watch(ctx context.Context, path string) error {
	w := level.NewWatcher(path, s.clock, s.logger, s.SetCatalog)
	return w.Run(ctx)
}

// Stop closes every connection and waits for them to finish.
func (s *Server) Stop() {
	s.cancel()

	s.mu.RLock()
	for conn := range s.connections {
		_ = conn.Close() // Ignore close errors during shutdown
	}
	s.mu.RUnlock()

	s.wg.Wait()
}

// handleWebSocket upgrades the request and serves the connection until it
// closes.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("Failed to upgrade connection", "error", err)
		return
	}

	rng := randutil.New(randutil.Derive(s.seed, int(s.streams.Add(1))))
	conn := NewConnection(ws, s.Catalog(), s.store, s.monitor, s.clock, rng, s.logger)

	if !s.register(conn) {
		_ = conn.Close()
		return
	}
	defer s.unregister(conn)

	if err := conn.Run(s.ctx); err != nil {
		s.logger.Warn("Connection ended with error", "error", err)
	}
}

func (s *Server) register(conn *Connection) bool {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return false
	}
	// The catalog may have been swapped since the connection was built. Its
	// loop is not running yet, so the session can be updated directly.
	conn.session.SetCatalog(s.Catalog())
	s.wg.Add(1)
	s.connections[conn] = struct{}{}
	total := len(s.connections)
	s.mu.Unlock()
	s.logger.Info("Client connected", "total", total)
	return true
}

func (s *Server) unregister(conn *Connection) {
	s.mu.Lock()
	delete(s.connections, conn)
	total := len(s.connections)
	s.mu.Unlock()
	s.wg.Done()
	s.logger.Info("Client disconnected", "total", total)
}

// ConnectionCount returns the number of live connections.
func (s *Server) ConnectionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.connections)
}

// handleHealth handles health check requests
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprintf(w, "OK") // Ignore write errors for health check
}

// LevelInfo describes a level for /api/levels.
type LevelInfo struct {
	ID       int    `json:"id"`
	Name     string `json:"name,omitempty"`
	Rows     int    `json:"rows"`
	Cols     int    `json:"cols"`
	Pairs    int    `json:"pairs"`
	Time     int    `json:"time,omitempty"`
	MaxMoves int    `json:"maxMoves,omitempty"`
}

// ScoreInfo is the best score for one level.
type ScoreInfo struct {
	Level   int  `json:"level"`
	Best    int  `json:"best,omitempty"`
	HasBest bool `json:"hasBest"`
}

func (s *Server) handleLevels(w http.ResponseWriter, r *http.Request) {
	levels := s.Catalog().Levels()
	out := make([]LevelInfo, len(levels))
	for i, l := range levels {
		out[i] = LevelInfo{
			ID:       l.ID,
			Name:     l.Name,
			Rows:     l.Shape.Rows(),
			Cols:     l.Shape.Cols(),
			Pairs:    l.Pairs(),
			Time:     l.Time,
			MaxMoves: l.MaxMoves,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	all, err := s.store.All(r.Context())
	if err != nil {
		s.logger.Error("Failed to read scores", "error", err)
		writeError(w, http.StatusInternalServerError, "store_failed", "failed to read scores")
		return
	}

	out := make([]ScoreInfo, 0, s.Catalog().Len())
	for _, l := range s.Catalog().Levels() {
		best, ok := all[l.ID]
		out = append(out, ScoreInfo{Level: l.ID, Best: best, HasBest: ok})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "level"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_level", "level must be an integer")
		return
	}
	if _, err := s.Catalog().Get(id); err != nil {
		writeError(w, http.StatusNotFound, "level_not_found", err.Error())
		return
	}

	best, ok, err := s.store.Best(r.Context(), id)
	if err != nil {
		s.logger.Error("Failed to read score", "level", id, "error", err)
		writeError(w, http.StatusInternalServerError, "store_failed", "failed to read score")
		return
	}
	writeJSON(w, http.StatusOK, ScoreInfo{Level: id, Best: best, HasBest: ok})
}

// Stats returns play statistics per level since the server started.
func (s *Server) Stats() []LevelStats {
	return s.stats.Stats()
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Stats())
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorData{Code: code, Message: message})
}
