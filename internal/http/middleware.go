package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/ahmedharby13/Evouqe-Project/internal/auth"
	"github.com/ahmedharby13/Evouqe-Project/internal/domain"
	"github.com/ahmedharby13/Evouqe-Project/pkg/logger"
	"github.com/go-chi/chi/v5/middleware"
)

type ctxKey int

const (
	accountIDKey ctxKey = iota
	roleKey
)

const csrfHeader = "X-CSRF-Token"

// TokenVerifier is the part of the token manager the middleware needs.
type TokenVerifier interface {
	ParseAccess(token string) (*auth.Claims, error)
	VerifyCSRF(token, accountID string) error
}

func withAccount(ctx context.Context, accountID string, role domain.Role) context.Context {
	ctx = context.WithValue(ctx, accountIDKey, accountID)
	return context.WithValue(ctx, roleKey, role)
}

func accountIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(accountIDKey).(string)
	return id
}

func roleFromContext(ctx context.Context) domain.Role {
	role, _ := ctx.Value(roleKey).(domain.Role)
	return role
}

// RequestIDMiddleware copies chi's request id into the logging context and
// echoes it back to the client.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := middleware.GetReqID(r.Context())
		if requestID != "" {
			w.Header().Set(middleware.RequestIDHeader, requestID)
			r = r.WithContext(logger.WithRequestID(r.Context(), requestID))
		}
		next.ServeHTTP(w, r)
	})
}

// RequestLogger writes one structured line per request.
func RequestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)

			level := slog.LevelInfo
			if ww.Status() >= http.StatusInternalServerError {
				level = slog.LevelError
			}
			log.Log(r.Context(), level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
			)
		})
	}
}

// Authenticate requires a valid bearer access token and stores the account
// id and role in the request context.
func Authenticate(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "missing bearer token")
				return
			}

			claims, err := tokens.ParseAccess(strings.TrimSpace(token))
			if err != nil {
				respondError(w, http.StatusUnauthorized, "unauthenticated", "invalid or expired token")
				return
			}

			ctx := withAccount(r.Context(), claims.AccountID(), domain.Role(claims.Role))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin must run after Authenticate.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if roleFromContext(r.Context()) != domain.RoleAdmin {
			respondError(w, http.StatusForbidden, "permission_denied", "admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireCSRF checks the anti-forgery token on state-changing requests. It
// must run after Authenticate since the token is bound to the account.
func RequireCSRF(tokens TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}

			token := r.Header.Get(csrfHeader)
			if token == "" {
				respondError(w, http.StatusForbidden, "csrf_required", "missing csrf token")
				return
			}
			if err := tokens.VerifyCSRF(token, accountIDFromContext(r.Context())); err != nil {
				respondError(w, http.StatusForbidden, "csrf_invalid", "invalid csrf token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
