// Package server runs the scrimmage: it hosts the simulation loop and
// publishes trace frames to spectators over WebSocket and QUIC.
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

	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/game"
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/observability/log"
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/observability/metrics"
	"github.com/ahump20/Sandlot-Sluggers-sub004/internal/core/trace"
)

// Server drives a Sim at a fixed tick rate and fans its trace out to
// HTTP, WebSocket and QUIC consumers.
type Server struct {
	config Config
	logger log.Log
	seed   int64

	sim      *game.Sim
	recorder *trace.Recorder
	hub      *trace.Hub
	feed     *trace.QUICFeed // nil when the QUIC feed is disabled
	metrics  *metrics.Metrics

	listener   net.Listener
	httpServer *http.Server

	running     int32
	closed      int32
	stopChan    chan struct{}
	workerGroup sync.WaitGroup
}

// NewServer assembles a server from the configuration. The simulation is
// created immediately; nothing runs until Start.
func NewServer(cfg Config, logger log.Log) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Provide()
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	m := metrics.New()
	rec := trace.NewRecorder(cfg.TraceBuffer, logger)

	sim, err := game.NewSim(game.Options{
		Seed:        seed,
		Logger:      logger,
		Sink:        trace.MultiSink(rec, m),
		Parallelism: cfg.Parallelism,
		TraceNodes:  cfg.TraceNodes,
	})
	if err != nil {
		return nil, fmt.Errorf("create sim: %w", err)
	}

	s := &Server{
		config:   cfg,
		logger:   logger,
		seed:     seed,
		sim:      sim,
		recorder: rec,
		hub:      trace.NewHub(logger),
		metrics:  m,
		stopChan: make(chan struct{}),
	}
	if cfg.QUICAddr != "" {
		s.feed = trace.NewQUICFeed(logger)
	}

	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s, nil
}

// Handler returns the HTTP routing for the server's endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", s.hub)
	mux.Handle("/metrics", s.metrics.Handler())
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/events", s.handleEvents)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/healthz", s.handleHealth)
	return mux
}

// Start binds the listeners and launches the simulation and broadcast
// loops. A stopped server cannot be started again.
func (s *Server) Start(ctx context.Context) error {
	if atomic.LoadInt32(&s.closed) == 1 {
		return ErrServerClosed
	}
	if !atomic.CompareAndSwapInt32(&s.running, 0, 1) {
		return ErrServerAlreadyRunning
	}

	ln, err := net.Listen("tcp", s.config.HTTPAddr)
	if err != nil {
		atomic.StoreInt32(&s.running, 0)
		return fmt.Errorf("listen http: %w", err)
	}
	s.listener = ln

	if s.feed != nil {
		if err := s.feed.Listen(ctx, s.config.QUICAddr); err != nil {
			ln.Close()
			atomic.StoreInt32(&s.running, 0)
			return fmt.Errorf("listen quic: %w", err)
		}
	}

	s.workerGroup.Add(2)
	go s.simLoop(ctx)
	go s.broadcastLoop()

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server failed", log.Error(err))
		}
	}()

	fields := []log.Field{
		log.String("http_addr", ln.Addr().String()),
		log.Int("tick_rate", s.config.TickRate),
		log.Int64("seed", s.seed),
	}
	if s.feed != nil {
		fields = append(fields, log.String("quic_addr", s.feed.Addr().String()))
	}
	s.logger.Info("server started", fields...)
	return nil
}

// Stop halts the loops, drops spectators and shuts the listeners down.
func (s *Server) Stop() error {
	if !atomic.CompareAndSwapInt32(&s.running, 1, 0) {
		return ErrServerNotRunning
	}
	atomic.StoreInt32(&s.closed, 1)

	close(s.stopChan)
	s.workerGroup.Wait()

	// WebSocket connections are hijacked, so Shutdown will not wait for
	// them. Drop the clients first.
	s.hub.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var firstErr error
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		firstErr = err
	}
	if s.feed != nil {
		if err := s.feed.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	s.logger.Info("server stopped",
		log.Uint64("trace_events", s.recorder.Seq()),
		log.Uint64("trace_drops", s.recorder.Drops()))
	return firstErr
}

// HTTPAddr returns the bound HTTP address. Before Start it returns the
// configured address.
func (s *Server) HTTPAddr() string {
	if s.listener == nil {
		return s.config.HTTPAddr
	}
	return s.listener.Addr().String()
}

// Sim exposes the simulation, mainly for tests and embedding callers.
func (s *Server) Sim() *game.Sim {
	return s.sim
}

func (s *Server) simLoop(ctx context.Context) {
	defer s.workerGroup.Done()

	dt := time.Second / time.Duration(s.config.TickRate)
	ticker := time.NewTicker(dt)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			start := time.Now()
			s.sim.Step(ctx, dt)
			s.metrics.ObserveTick(time.Since(start))
		}
	}
}

func (s *Server) broadcastLoop() {
	defer s.workerGroup.Done()

	ticker := time.NewTicker(time.Second / time.Duration(s.config.BroadcastRate))
	defer ticker.Stop()

	var frameSeq, sinceSeq uint64
	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			frameSeq++
			sinceSeq = s.publishFrame(frameSeq, sinceSeq)
		}
	}
}

// publishFrame snapshots the sim, bundles the trace events recorded since
// the previous frame and broadcasts the result. It returns the sequence
// watermark for the next frame.
func (s *Server) publishFrame(seq, since uint64) uint64 {
	snap := s.sim.TakeSnapshot()
	state, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("failed to marshal state", log.Error(err))
		return since
	}

	events := s.recorder.Since(since)
	if n := len(events); n > 0 {
		since = events[n-1].Seq
	}

	frame := &trace.Frame{Seq: seq, Wall: time.Now(), Events: events, State: state}
	if err := s.hub.Broadcast(frame); err != nil {
		s.logger.Error("websocket broadcast failed", log.Error(err))
	}
	quicSpectators := 0
	if s.feed != nil {
		if err := s.feed.Broadcast(frame); err != nil {
			s.logger.Error("quic broadcast failed", log.Error(err))
		}
		quicSpectators = s.feed.SubscriberCount()
	}

	s.metrics.SetScore(snap.Runs, snap.Hits)
	s.metrics.SetAgents(len(snap.Agents))
	s.metrics.SetPanics(s.sim.Registry().Stats().Panics)
	s.metrics.SetSpectators(s.hub.ClientCount(), quicSpectators)
	return since
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	state, err := s.sim.StateJSON()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(state)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var events []trace.Event
	if q := r.URL.Query().Get("since"); q != "" {
		seq, err := strconv.ParseUint(q, 10, 64)
		if err != nil {
			http.Error(w, "invalid since parameter", http.StatusBadRequest)
			return
		}
		events = s.recorder.Since(seq)
	} else {
		limit := 100
		if q := r.URL.Query().Get("limit"); q != "" {
			n, err := strconv.Atoi(q)
			if err != nil || n <= 0 {
				http.Error(w, "invalid limit parameter", http.StatusBadRequest)
				return
			}
			limit = n
		}
		events = s.recorder.Recent(limit)
	}
	if events == nil {
		events = []trace.Event{}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(events); err != nil {
		s.logger.Error("failed to encode events", log.Error(err))
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	st := s.sim.Registry().Stats()
	resp := map[string]any{
		"agents":        st.Agents,
		"enabled":       st.Enabled,
		"ticks":         st.Ticks,
		"updates":       st.Updates,
		"panics":        st.Panics,
		"last_update":   st.LastUpdate.String(),
		"clock":         s.sim.Clock().Seconds(),
		"trace_seq":     s.recorder.Seq(),
		"trace_drops":   s.recorder.Drops(),
		"spectators_ws": s.hub.ClientCount(),
	}
	if s.feed != nil {
		resp["spectators_quic"] = s.feed.SubscriberCount()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Error("failed to encode stats", log.Error(err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
