package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/storeratings/storeratings-backend/api/responses"
	pkgAuth "github.com/storeratings/storeratings-backend/pkg/auth"
	"github.com/storeratings/storeratings-backend/pkg/auth/session"
	"github.com/storeratings/storeratings-backend/pkg/config"
	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
	"github.com/storeratings/storeratings-backend/pkg/logger"
)

// Auth validates the bearer token, checks the session is still live when a
// verifier is configured, and seeds the request context with the caller.
func Auth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}
			actor, err := authenticate(r, cfg, verifier, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(withActor(r, logg, actor)))
		})
	}
}

// OptionalAuth attaches the caller when a valid token is present and
// otherwise lets the request through anonymously.
func OptionalAuth(cfg config.JWTConfig, verifier session.AccessSessionChecker, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}
			actor, err := authenticate(r, cfg, verifier, token)
			if err != nil {
				if logg != nil {
					logg.Debug(logg.WithField(r.Context(), "reason", err.Error()), "optional_auth.ignored")
				}
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(withActor(r, logg, actor)))
		})
	}
}

func bearerToken(r *http.Request) string {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	if len(raw) >= 7 && strings.EqualFold(raw[:7], "bearer ") {
		raw = raw[7:]
	}
	return strings.TrimSpace(raw)
}

func authenticate(r *http.Request, cfg config.JWTConfig, verifier session.AccessSessionChecker, token string) (Actor, error) {
	claims, err := pkgAuth.ParseAccessToken(cfg, token)
	if err != nil {
		return Actor{}, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token")
	}
	if claims.ID == "" {
		return Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing session id")
	}

	if verifier != nil {
		ok, err := verifier.HasSession(r.Context(), claims.ID)
		if err != nil {
			return Actor{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "validate session")
		}
		if !ok {
			return Actor{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "session unavailable")
		}
	}

	return Actor{
		UserID:   claims.UserID,
		Email:    claims.Email,
		Role:     claims.Role,
		AccessID: claims.ID,
	}, nil
}

func withActor(r *http.Request, logg *logger.Logger, actor Actor) context.Context {
	ctx := WithActor(r.Context(), actor)
	if logg != nil {
		ctx = logg.WithUserID(ctx, actor.UserID.String())
		ctx = logg.WithActorRole(ctx, actor.Role.String())
	}
	return ctx
}
