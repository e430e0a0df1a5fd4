package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iburimskiy/impact-visualization/internal/logging"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Observers are local dashboards served from any origin.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// Server exposes the observer feed:
//
//	/ws       websocket stream of Frame messages
//	/report   last impact report as JSON, 404 before the first impact
//	/metrics  prometheus exposition
type Server struct {
	hub      *Hub
	gatherer prometheus.Gatherer
	logger   log.Logger
}

func NewServer(hub *Hub, gatherer prometheus.Gatherer, logger log.Logger) *Server {
	return &Server{hub: hub, gatherer: gatherer, logger: logging.Subsystem(logger, "telemetry")}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/report", s.handleReport)
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	return mux
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		level.Warn(s.logger).Log("msg", "websocket upgrade", "err", err)
		return
	}
	s.hub.Serve(conn)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	report, ok := s.hub.LastReport()
	if !ok {
		http.Error(w, "no impact yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		level.Warn(s.logger).Log("msg", "write report", "err", err)
	}
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		level.Info(s.logger).Log("msg", "observer feed listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.hub.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
