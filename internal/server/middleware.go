package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	stderrors "franchisehub-api/internal/common/errors"
	"franchisehub-api/internal/common/metrics"
	"franchisehub-api/internal/services/auth"

	"github.com/google/uuid"
)

type contextKey string

const (
	requestIDKey contextKey = "requestId"
	claimsKey    contextKey = "claims"
)

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument tags each request with an id and records request metrics under
// the given route label.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.New().String()
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-Id", requestID)

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(recorder, r.WithContext(ctx))

		duration := time.Since(start)
		metrics.HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(recorder.status)).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(duration.Seconds())
		if s.obs != nil {
			s.obs.RecordRequest(ctx, route, recorder.status)
			s.obs.RecordRequestDuration(ctx, route, duration)
		}

		s.logger.Info("request handled", map[string]interface{}{
			"requestId":  requestID,
			"route":      route,
			"method":     r.Method,
			"status":     recorder.status,
			"durationMs": duration.Milliseconds(),
		})
	}
}

// requireAuth validates the bearer token and rejects revoked tokens. Claims
// land in the request context for the handler.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.authenticate(r)
		if err != nil {
			writeError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

// requireAdmin is requireAuth plus the admin claim. The review and search
// endpoints sit behind it.
func (s *Server) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, err := s.authenticate(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if !claims.IsAdmin {
			writeError(w, stderrors.NewForbiddenError("admin access required"))
			return
		}
		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) authenticate(r *http.Request) (*auth.Claims, error) {
	token, err := auth.ExtractToken(r.Header.Get("Authorization"))
	if err != nil {
		return nil, stderrors.NewAuthenticationError("missing or malformed authorization header")
	}
	claims, err := s.auth.Tokens().ValidateToken(token)
	if err != nil {
		return nil, stderrors.NewAuthenticationError("invalid or expired token")
	}
	if s.auth.IsRevoked(r.Context(), claims.ID) {
		return nil, stderrors.NewAuthenticationError("token has been revoked")
	}
	return claims, nil
}

func claimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}
