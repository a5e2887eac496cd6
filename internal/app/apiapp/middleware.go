package apiapp

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Geraxi/tenant-mvp-sub001/internal/domain/model"
	pgrepo "github.com/Geraxi/tenant-mvp-sub001/internal/repo/postgres"
	authsvc "github.com/Geraxi/tenant-mvp-sub001/internal/services/auth"
	httperrors "github.com/Geraxi/tenant-mvp-sub001/internal/transport/http/errors"
)

type TokenParser interface {
	ParseAccessToken(raw string) (authsvc.AccessClaims, error)
}

type UserEnsurer interface {
	EnsureUser(ctx context.Context, externalID string) (model.User, error)
}

func ApplyMiddlewares(r chiRouter, log *zap.Logger) {
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(requestLogger(log))
}

// AuthMiddleware verifies the bearer token and binds the caller to a local
// user row, creating it on the first authenticated request.
func AuthMiddleware(tokens TokenParser, users UserEnsurer, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokens == nil || users == nil {
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "AUTH_SERVICE_UNAVAILABLE",
					Message: "auth service is unavailable",
				})
				return
			}

			accessToken, ok := extractBearerToken(r.Header.Get("Authorization"))
			if !ok {
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "UNAUTHORIZED",
					Message: "missing bearer token",
				})
				return
			}

			claims, err := tokens.ParseAccessToken(accessToken)
			if err != nil {
				if log != nil {
					log.Debug("auth middleware validation failed", zap.Error(err))
				}
				httperrors.Write(w, http.StatusUnauthorized, httperrors.APIError{
					Code:    "UNAUTHORIZED",
					Message: "invalid access token",
				})
				return
			}

			user, err := users.EnsureUser(r.Context(), claims.Subject)
			if err != nil {
				if errors.Is(err, pgrepo.ErrStoreUnavailable) {
					httperrors.Write(w, http.StatusServiceUnavailable, httperrors.APIError{
						Code:    "STORE_UNAVAILABLE",
						Message: "storage is unavailable",
					})
					return
				}
				if log != nil {
					log.Error("auth middleware ensure user failed", zap.Error(err))
				}
				httperrors.Write(w, http.StatusInternalServerError, httperrors.APIError{
					Code:    "INTERNAL_ERROR",
					Message: "failed to resolve user",
				})
				return
			}

			ctx := authsvc.WithIdentity(r.Context(), authsvc.Identity{
				UserID:     user.ID,
				ExternalID: user.ExternalID,
				Role:       user.Role,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractBearerToken(value string) (string, bool) {
	parts := strings.SplitN(strings.TrimSpace(value), " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return parts[1], true
}

func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			if log != nil {
				log.Info("http_request",
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Int("status", ww.Status()),
					zap.String("request_id", chimiddleware.GetReqID(r.Context())),
					zap.Duration("duration", time.Since(start)),
				)
			}
		})
	}
}

type chiRouter interface {
	Use(middlewares ...func(http.Handler) http.Handler)
}
