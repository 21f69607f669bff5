// Package stream exposes the simulator to out-of-process consumers: a
// renderer animating arm poses and a plotting surface drawing the joint
// series. The core owns no wire protocol; this package maps requests and
// trajectories to JSON at the boundary.
package stream

import (
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"armsim/pkg/errors"
	"armsim/pkg/log"
	"armsim/pkg/metrics"
	"armsim/pkg/sim"
)

// Server serves simulation requests over HTTP and streams trajectory
// playback over WebSocket.
type Server struct {
	simulator *sim.Simulator
	registry  *metrics.Registry
	logger    *log.Logger

	httpServer *http.Server
	addr       string

	// WebSocket management
	wsUpgrader websocket.Upgrader
	wsClients  map[int64]*wsClient
	wsClientMu sync.Mutex
	nextWSID   int64

	running   atomic.Bool
	startTime time.Time
}

// Config holds server configuration.
type Config struct {
	// Addr is the HTTP address to listen on (e.g., ":8080")
	Addr string

	// Simulator runs the simulation requests
	Simulator *sim.Simulator

	// Registry backs the /metrics endpoint (optional)
	Registry *metrics.Registry

	// Logger receives server logs (optional)
	Logger *log.Logger
}

// New creates a stream server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = log.New("stream")
	}
	s := &Server{
		simulator: cfg.Simulator,
		registry:  cfg.Registry,
		logger:    logger,
		addr:      cfg.Addr,
		wsClients: make(map[int64]*wsClient),
		startTime: time.Now(),
	}
	s.wsUpgrader = websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			return true // Local tooling clients only
		},
	}
	return s
}

// Handler returns the HTTP handler serving all endpoints.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/simulate", s.handleSimulate)
	mux.HandleFunc("/websocket", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/metrics", s.handleMetrics)
	return mux
}

// Start starts the server and blocks until it stops.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:    s.addr,
		Handler: s.Handler(),
	}
	s.running.Store(true)
	s.logger.Info("stream server starting on %s", s.addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop stops the server and disconnects all WebSocket clients.
func (s *Server) Stop() error {
	s.running.Store(false)

	s.wsClientMu.Lock()
	for _, client := range s.wsClients {
		client.close()
	}
	s.wsClients = make(map[int64]*wsClient)
	s.wsClientMu.Unlock()

	if s.httpServer != nil {
		return s.httpServer.Close()
	}
	return nil
}

// simulateResponse is the wire shape of a successful run.
type simulateResponse struct {
	SampleCount int              `json:"sample_count"`
	Duration    float64          `json:"duration"`
	MinReach    float64          `json:"min_reach"`
	MaxReach    float64          `json:"max_reach"`
	Series      trajectorySeries `json:"series"`
}

type trajectorySeries struct {
	T      []float64 `json:"t"`
	Theta1 []float64 `json:"theta1"`
	Theta2 []float64 `json:"theta2"`
	Omega1 []float64 `json:"omega1"`
	Omega2 []float64 `json:"omega2"`
	Alpha1 []float64 `json:"alpha1"`
	Alpha2 []float64 `json:"alpha2"`
}

// errorBody is the wire shape of a failure.
type errorBody struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Point    *pointXY `json:"point,omitempty"`
	MinReach float64  `json:"min_reach,omitempty"`
	MaxReach float64  `json:"max_reach,omitempty"`
}

type pointXY struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// handleSimulate runs one simulation request and returns the full
// trajectory as parallel series.
func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req sim.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error": errorBody{Code: "BAD_REQUEST", Message: "malformed request body"},
		})
		return
	}

	result, err := s.simulator.Run(req)
	if err != nil {
		s.writeSimError(w, err)
		return
	}

	series := result.Trajectory.Extract()
	writeJSON(w, http.StatusOK, map[string]any{
		"result": simulateResponse{
			SampleCount: len(result.Trajectory),
			Duration:    result.Trajectory.Duration(),
			MinReach:    result.Arm.MinReach(),
			MaxReach:    result.Arm.MaxReach(),
			Series: trajectorySeries{
				T:      series.T,
				Theta1: series.Theta1,
				Theta2: series.Theta2,
				Omega1: series.Omega1,
				Omega2: series.Omega2,
				Alpha1: series.Alpha1,
				Alpha2: series.Alpha2,
			},
		},
	})
}

// writeSimError maps core error codes to HTTP statuses: parameter errors
// are the client's request shape (400), reachability and degeneracy are
// valid requests the arm cannot satisfy (422).
func (s *Server) writeSimError(w http.ResponseWriter, err error) {
	body := errorBody{Code: "INTERNAL", Message: err.Error()}
	status := http.StatusInternalServerError

	if simErr := errors.AsSimError(err); simErr != nil {
		body.Code = string(simErr.Code)
		body.Message = simErr.Message
		if simErr.HasPoint {
			body.Point = &pointXY{X: simErr.PointX, Y: simErr.PointY}
		}
		body.MinReach = simErr.MinReach
		body.MaxReach = simErr.MaxReach

		switch simErr.Code {
		case errors.ErrInvalidParameter:
			status = http.StatusBadRequest
		case errors.ErrOutOfReach, errors.ErrDegenerateConfig:
			status = http.StatusUnprocessableEntity
		}
	}
	writeJSON(w, status, map[string]any{"error": body})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.startTime).Seconds(),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if s.registry == nil {
		http.Error(w, "metrics not configured", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_, _ = w.Write([]byte(s.registry.Export()))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
