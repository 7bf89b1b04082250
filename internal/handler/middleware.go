package handler

import (
	"context"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Raymond9734/storefront-backend/internal/auth"
	"github.com/Raymond9734/storefront-backend/internal/models"
	"github.com/Raymond9734/storefront-backend/internal/observability/logger"
	"github.com/Raymond9734/storefront-backend/internal/service"
)

type claimsContextKey struct{}

// RecoveryMiddleware turns panics into 500 responses
func RecoveryMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.From(r.Context(), log).Error("panic recovered",
						zap.Any("panic", rec),
						zap.ByteString("stack", debug.Stack()),
					)
					respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware logs one line per request and stores a request-scoped
// logger carrying the request id in the context.
func LoggingMiddleware(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With(zap.String("request_id", middleware.GetReqID(r.Context())))
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r.WithContext(logger.ToContext(r.Context(), reqLog)))

			reqLog.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}

// CORSMiddleware allows browser clients from any origin
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAuth rejects requests without a valid user token
func RequireAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString, err := auth.ExtractToken(r.Header.Get("Authorization"))
			if err != nil {
				respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing or malformed authorization header")
				return
			}

			claims, err := tokens.ValidateToken(tokenString)
			if err != nil || claims.Kind != auth.KindUser {
				respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid token")
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches claims when a valid user token is present and lets
// anonymous requests through.
func OptionalAuth(tokens *auth.TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenString, err := auth.ExtractToken(r.Header.Get("Authorization")); err == nil {
				if claims, err := tokens.ValidateToken(tokenString); err == nil && claims.Kind == auth.KindUser {
					r = r.WithContext(context.WithValue(r.Context(), claimsContextKey{}, claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin must run after RequireAuth
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := ClaimsFromContext(r.Context())
		if claims == nil {
			respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
			return
		}
		if claims.Role != string(models.UserRoleAdmin) {
			respondError(w, http.StatusForbidden, "FORBIDDEN", "admin role required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClaimsFromContext returns the authenticated caller, or nil
func ClaimsFromContext(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsContextKey{}).(*auth.Claims)
	return claims
}

func actorFromContext(ctx context.Context) *service.Actor {
	claims := ClaimsFromContext(ctx)
	if claims == nil {
		return nil
	}
	return &service.Actor{UserID: claims.Subject, Admin: claims.Role == string(models.UserRoleAdmin)}
}
