package server

import (
	"context"
	"net/http"
	"time"

	"personafeed/internal/common"
	"personafeed/internal/logger"
	"personafeed/internal/telemetry"

	"github.com/gorilla/mux"
)

// Routes is implemented by every handler group mounted under /api/v1.
type Routes interface {
	Register(r *mux.Router)
}

// Checker reports whether a backing store is reachable.
type Checker func(ctx context.Context) error

type HTTPServer struct {
	router *mux.Router
	checks map[string]Checker
}

// NewHTTPServer assembles the public router: /health and /metrics are open,
// everything under /api/v1 needs a bearer token.
func NewHTTPServer(log logger.Logger, metrics *telemetry.Metrics, jwtm *common.JWTManager, checks map[string]Checker, groups ...Routes) *HTTPServer {
	s := &HTTPServer{router: mux.NewRouter(), checks: checks}

	s.router.Use(common.RequestIDMiddleware, common.LoggingMiddleware(log, metrics), common.CORSMiddleware)
	s.router.HandleFunc("/health", s.health).Methods(http.MethodGet)
	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.Use(common.AuthMiddleware(jwtm))
	for _, g := range groups {
		g.Register(api)
	}
	return s
}

func (s *HTTPServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func (s *HTTPServer) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := healthResponse{Status: "ok"}
	status := http.StatusOK
	if len(s.checks) > 0 {
		resp.Checks = make(map[string]string, len(s.checks))
	}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			resp.Checks[name] = err.Error()
			resp.Status = "degraded"
			status = http.StatusServiceUnavailable
			continue
		}
		resp.Checks[name] = "ok"
	}
	common.WriteJSON(w, status, resp)
}
