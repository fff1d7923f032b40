/*
File: server.go
Description: Web dashboard for live campaign monitoring. Serves an embedded
single-page dashboard, a JSON stats API, and a websocket feed that pushes each
refresh to connected browsers. Refreshes run on a background loop bound to the
server's lifetime.
*/

package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/aflmon/aflmon/pkg/monitor"
	"github.com/aflmon/aflmon/pkg/output"
	"github.com/aflmon/aflmon/pkg/stats"
)

// shutdownGrace bounds how long a graceful shutdown may take.
const shutdownGrace = 5 * time.Second

// Config controls the dashboard server.
type Config struct {
	Addr            string        // Listen address, e.g. ":8090"
	FindingsDir     string        // Shown in the page header and API metadata
	RefreshInterval time.Duration // Background collection interval
}

// Server hosts the dashboard, the stats API, and the websocket feed.
type Server struct {
	config  Config
	log     *logrus.Logger
	monitor *monitor.Monitor
	hub     *Hub

	mu     sync.RWMutex
	latest *monitor.Snapshot

	upgrader websocket.Upgrader
}

// New creates a dashboard server around an existing monitor.
func New(config Config, m *monitor.Monitor, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = 5 * time.Second
	}
	return &Server{
		config:  config,
		log:     log,
		monitor: m,
		hub:     NewHub(log),
		upgrader: websocket.Upgrader{
			// The dashboard is a local monitoring tool; same-origin checks
			// would only break reverse-proxy setups.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// Handler builds the full route table with CORS applied to the API.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()
	router.GET("/", s.handleIndex)
	router.GET("/api/stats", s.handleStats)
	router.GET("/api/plot/:fuzzer", s.handlePlot)
	router.GET("/api/health", s.handleHealth)
	router.GET("/ws", s.handleWS)
	return cors.AllowAll().Handler(router)
}

// Run serves until ctx is cancelled. The refresh loop shares the context, so
// cancelling stops both collection and the listener.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    s.config.Addr,
		Handler: s.Handler(),
	}

	go s.refreshLoop(ctx)

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	s.log.WithField("addr", s.config.Addr).Info("Dashboard listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		s.hub.closeAll()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("dashboard server failed: %w", err)
	}
}

// refreshLoop collects a snapshot on the configured interval and pushes it to
// websocket clients.
func (s *Server) refreshLoop(ctx context.Context) {
	s.Refresh(ctx)

	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh collects one snapshot, stores it for the API, and broadcasts it.
func (s *Server) Refresh(ctx context.Context) {
	snap, err := s.monitor.Collect(ctx)
	if err != nil {
		s.log.WithError(err).Error("Dashboard refresh failed")
		return
	}

	s.mu.Lock()
	s.latest = snap
	s.mu.Unlock()

	report := output.BuildJSONReport(snap, s.config.FindingsDir)
	data, err := json.Marshal(report)
	if err != nil {
		s.log.WithError(err).Error("Failed to encode snapshot")
		return
	}
	s.hub.Broadcast(data)
}

// snapshot returns the most recent snapshot, which may be nil before the
// first refresh completes.
func (s *Server) snapshot() *monitor.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprint(w, dashboardPage)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	snap := s.snapshot()
	if snap == nil {
		// Nothing collected yet; do it inline so the first page load works.
		s.Refresh(r.Context())
		snap = s.snapshot()
	}
	if snap == nil {
		http.Error(w, `{"error":"no data"}`, http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := output.WriteCompactJSON(w, output.BuildJSONReport(snap, s.config.FindingsDir)); err != nil {
		s.log.WithError(err).Error("Failed to write stats response")
	}
}

// handlePlot serves one instance's plot_data history for charting.
func (s *Server) handlePlot(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	points, err := s.monitor.PlotData(ps.ByName("fuzzer"))
	if err != nil {
		http.Error(w, `{"error":"unknown fuzzer"}`, http.StatusNotFound)
		return
	}
	if points == nil {
		points = []stats.PlotPoint{}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := output.WriteCompactJSON(w, points); err != nil {
		s.log.WithError(err).Error("Failed to write plot response")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"version": monitor.Version,
		"clients": s.hub.ClientCount(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Debug("Websocket upgrade failed")
		return
	}

	c := s.hub.add(conn)
	s.log.WithField("remote", r.RemoteAddr).Debug("Websocket client connected")

	// Reader loop exists only to observe the close; the dashboard never
	// sends application messages upstream.
	go func() {
		defer s.hub.remove(c)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
