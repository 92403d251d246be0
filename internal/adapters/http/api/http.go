// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"pubcompass/internal/domain/geo"
	"pubcompass/internal/domain/model"
)

// Tracker bundles the operations HTTP handlers need from the service layer.
// Using an interface bundle keeps the handler layer loosely coupled to
// implementations in other packages.
type Tracker interface {
	// Sensor and user inputs. Each returns false on backpressure.
	SubmitFix(ctx context.Context, c geo.Coordinate) bool
	SubmitHeading(ctx context.Context, heading float64) bool
	Select(ctx context.Context, id string) bool

	// Read side.
	LastFrame() (model.Frame, bool)
	GetStats() map[string]any
}

// Server wires HTTP routes for the compass API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	displayHandler *DisplayHandler
	pubsHandler    *PubsHandler
	sensorsHandler *SensorsHandler
	selectHandler  *SelectHandler
	wsHandler      http.HandlerFunc
}

// NewServer creates a new API server with all handlers. wsHandler may be nil
// when no WebSocket hub is attached.
func NewServer(tracker Tracker, wsHandler http.HandlerFunc) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(tracker),
		displayHandler: NewDisplayHandler(tracker),
		pubsHandler:    NewPubsHandler(tracker),
		sensorsHandler: NewSensorsHandler(tracker),
		selectHandler:  NewSelectHandler(tracker),
		wsHandler:      wsHandler,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/display", MetricsMiddleware(s.displayHandler.HandleGetDisplay, "display"))
	mux.HandleFunc("/pubs", MetricsMiddleware(s.pubsHandler.HandleGetPubs, "pubs"))
	mux.HandleFunc("/location", MetricsMiddleware(s.sensorsHandler.HandlePostLocation, "location"))
	mux.HandleFunc("/orientation", MetricsMiddleware(s.sensorsHandler.HandlePostOrientation, "orientation"))
	mux.HandleFunc("/select", MetricsMiddleware(s.selectHandler.HandlePostSelect, "select"))
	if s.wsHandler != nil {
		mux.HandleFunc("/ws", s.wsHandler)
	}
}

// locationRequest mirrors the OpenAPI schema for POST /location.
// Pointer fields distinguish missing values from zero coordinates.
type locationRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

func (l locationRequest) validate() error {
	switch {
	case l.Lat == nil:
		return errors.New("missing lat")
	case l.Lon == nil:
		return errors.New("missing lon")
	case *l.Lat < -90 || *l.Lat > 90:
		return errors.New("lat out of range")
	case *l.Lon < -180 || *l.Lon > 180:
		return errors.New("lon out of range")
	}
	return nil
}

// orientationRequest mirrors the deviceorientation event shape.
type orientationRequest struct {
	Alpha *float64 `json:"alpha"`
}

func (o orientationRequest) validate() error {
	if o.Alpha == nil {
		return errors.New("missing alpha")
	}
	return nil
}

// selectRequest carries a candidate id. An empty id clears the selection.
type selectRequest struct {
	ID string `json:"id"`
}

type ackResponse struct {
	Status string `json:"status"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
