package controllers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/multierr"

	"github.com/storeratings/storeratings-backend/api/responses"
	"github.com/storeratings/storeratings-backend/pkg/config"
	pkgerrors "github.com/storeratings/storeratings-backend/pkg/errors"
	"github.com/storeratings/storeratings-backend/pkg/logger"
)

const (
	envHeader    = "X-StoreRatings-Env"
	readyTimeout = 2 * time.Second
)

// Pinger is any dependency whose reachability gates readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the database and, when configured, redis. Nil pingers are skipped.
func HealthReady(cfg *config.Config, logg *logger.Logger, dbP Pinger, redisP Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)

		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		checks := map[string]string{}
		var errs error
		for name, p := range map[string]Pinger{"database": dbP, "redis": redisP} {
			if p == nil {
				continue
			}
			if err := p.Ping(ctx); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
				checks[name] = "down"
				continue
			}
			checks[name] = "up"
		}

		if errs != nil {
			if logg != nil {
				logg.Error(r.Context(), "health.ready_failed", errs)
			}
			responses.WriteError(r.Context(), nil, w, pkgerrors.New(pkgerrors.CodeDependency, "dependency unavailable").WithDetails(checks))
			return
		}
		responses.WriteSuccess(w, map[string]any{"status": "ready", "checks": checks})
	}
}
