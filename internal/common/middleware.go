package common

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"personafeed/internal/logger"
	"personafeed/internal/telemetry"
)

const RequestIDHeader = "X-Request-ID"

// RequestIDMiddleware reuses an inbound X-Request-ID or mints one.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(logger.ContextWithRequestID(r.Context(), id)))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware logs each request and feeds the HTTP metrics. The route
// label is the mux path template so ids do not explode cardinality.
func LoggingMiddleware(log logger.Logger, m *telemetry.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			route := r.URL.Path
			if cur := mux.CurrentRoute(r); cur != nil {
				if tpl, err := cur.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			elapsed := time.Since(start)
			m.ObserveHTTP(r.Method, route, rec.status, elapsed)
			log.Info(r.Context(), "http request",
				logger.F("method", r.Method),
				logger.F("path", r.URL.Path),
				logger.F("status", rec.status),
				logger.F("duration", elapsed.String()),
			)
		})
	}
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware requires "Authorization: Bearer <token>" and injects the
// user id into the request context.
func AuthMiddleware(jwtm *JWTManager) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			parts := strings.Fields(r.Header.Get("Authorization"))
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				WriteJSON(w, http.StatusUnauthorized, MessageResponse{Message: "authorization required"})
				return
			}

			claims, err := jwtm.ValidToken(parts[1])
			if err != nil {
				WriteJSON(w, http.StatusUnauthorized, MessageResponse{Message: "invalid or expired token"})
				return
			}

			ctx := logger.ContextWithUserID(r.Context(), claims.UserID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
