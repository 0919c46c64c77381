package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cohorttools/cohort-api/internal/common"
	"github.com/cohorttools/cohort-api/internal/server/models"
)

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// clientKey extracts the client network address used as the rate-limit key.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// currentUser returns the authenticated user stored by the authenticate
// middleware.
func currentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(currentUserKey).(*models.User)
	return user
}

// authenticate parses the Authorization header, verifies the bearer token and
// re-fetches the subject, rejecting the request before any business logic
// runs. The verified user is stored on the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Authorization header missing"})
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid authorization format"})
			return
		}

		user, err := s.auth.Verify(r.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, common.ErrorNotFound):
				errorMessage(w, http.StatusNotFound, "User not found")
			case errors.Is(err, common.ErrorInternal):
				errorMessage(w, http.StatusInternalServerError, "Internal server error")
			default:
				writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Invalid or expired token"})
			}
			return
		}

		ctx := context.WithValue(r.Context(), currentUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(status int) {
	rec.status = status
	rec.ResponseWriter.WriteHeader(status)
}

// requestLogger logs one line per request: method, path, status, duration.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start).String(),
		)
	})
}
