package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gabrielmellace1/portfolioManager-sub000/internal/domain"
	"github.com/gabrielmellace1/portfolioManager-sub000/internal/infra"
	"github.com/gabrielmellace1/portfolioManager-sub000/internal/scheduler"
	"github.com/gabrielmellace1/portfolioManager-sub000/internal/ws"

	"github.com/gorilla/websocket"
)

// SchedulerControl is the control surface the HTTP layer drives
type SchedulerControl interface {
	Start()
	Stop()
	ForceUpdate()
	SetUpdateInterval(ms int64) error
	Status() scheduler.Status
}

// Server exposes the scheduler control surface and the websocket endpoint
type Server struct {
	sched      SchedulerControl
	hub        *ws.Hub
	httpServer *http.Server
	upgrader   websocket.Upgrader
}

// NewServer wires the routes
func NewServer(sched SchedulerControl, hub *ws.Hub, addr string) *Server {
	s := &Server{
		sched: sched,
		hub:   hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}

	mux := http.NewServeMux()

	// Scheduler control
	mux.HandleFunc("GET /v1/scheduler/status", s.handleStatus)
	mux.HandleFunc("POST /v1/scheduler/start", s.handleStart)
	mux.HandleFunc("POST /v1/scheduler/stop", s.handleStop)
	mux.HandleFunc("POST /v1/scheduler/refresh", s.handleRefresh)
	mux.HandleFunc("PUT /v1/scheduler/interval", s.handleInterval)

	// Broadcast + observability
	mux.HandleFunc("POST /v1/broadcast", s.handleBroadcast)
	mux.HandleFunc("GET /v1/metrics", s.handleMetrics)
	mux.HandleFunc("GET /health", s.handleHealth)

	// Real-time channel
	mux.HandleFunc("GET /ws", s.handleWS)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
		// No global read/write timeouts: /ws holds connections open.
		ReadHeaderTimeout: 10 * time.Second,
	}

	return s
}

// Start begins serving in the background
func (s *Server) Start() {
	go func() {
		slog.Info("HTTP server started", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", slog.Any("error", err))
		}
	}()
}

// Shutdown stops accepting connections and drains in-flight requests
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the mux for tests
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.sched.Status())
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	s.sched.Start()
	writeJSON(w, http.StatusOK, s.sched.Status())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.sched.Stop()
	writeJSON(w, http.StatusOK, s.sched.Status())
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	// The cycle can take a while against slow feeds; don't hold the request
	go s.sched.ForceUpdate()
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "refresh triggered"})
}

func (s *Server) handleInterval(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IntervalMS int64 `json:"intervalMs"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if err := s.sched.SetUpdateInterval(req.IntervalMS); err != nil {
		if errors.Is(err, domain.ErrIntervalTooShort) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.sched.Status())
}

func (s *Server) handleBroadcast(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message  string `json:"message"`
		Severity string `json:"severity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	severity := domain.Severity(req.Severity)
	switch severity {
	case domain.SeverityInfo, domain.SeverityWarning, domain.SeverityError:
	case "":
		severity = domain.SeverityInfo
	default:
		writeError(w, http.StatusBadRequest, "severity must be info, warning or error")
		return
	}

	s.hub.BroadcastSystemMessage(req.Message, severity)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infra.GlobalMetrics.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":      "ok",
		"connections": s.hub.ConnectedCount(),
		"subscribers": s.hub.SubscriberCount(),
	})
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", slog.Any("error", err))
		return
	}
	ws.NewClient(s.hub, conn).Start()
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
