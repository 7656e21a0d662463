package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/storeratings/storeratings-backend/api"
	"github.com/storeratings/storeratings-backend/api/middleware"
	"github.com/storeratings/storeratings-backend/api/responses"
	"github.com/storeratings/storeratings-backend/api/routes"
	"github.com/storeratings/storeratings-backend/internal/analytics"
	"github.com/storeratings/storeratings-backend/internal/auth"
	"github.com/storeratings/storeratings-backend/internal/ratings"
	"github.com/storeratings/storeratings-backend/internal/stores"
	"github.com/storeratings/storeratings-backend/internal/users"
	"github.com/storeratings/storeratings-backend/pkg/auth/session"
	"github.com/storeratings/storeratings-backend/pkg/config"
	"github.com/storeratings/storeratings-backend/pkg/db"
	"github.com/storeratings/storeratings-backend/pkg/enums"
	"github.com/storeratings/storeratings-backend/pkg/logger"
	"github.com/storeratings/storeratings-backend/pkg/metrics"
	"github.com/storeratings/storeratings-backend/pkg/migrate"
	"github.com/storeratings/storeratings-backend/pkg/redis"
	"github.com/storeratings/storeratings-backend/pkg/security"
)

const (
	shutdownTimeout = 15 * time.Second
	sweepInterval   = 5 * time.Minute
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	responses.ExposeInternalDetails(!cfg.App.IsProd())

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbClient, err := db.New(runCtx, cfg.DB, logg)
	if err != nil {
		logg.Error(runCtx, "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(runCtx, cfg, logg, dbClient); err != nil {
		logg.Error(runCtx, "failed to run dev migrations", err)
		os.Exit(1)
	}

	platform := routes.Platform{DB: dbClient}
	var sessionManager *session.Manager
	if cfg.Redis.Enabled() {
		redisClient, err := redis.New(runCtx, cfg.Redis, logg)
		if err != nil {
			logg.Error(runCtx, "failed to bootstrap redis", err)
			os.Exit(1)
		}
		defer func() {
			if err := redisClient.Close(); err != nil {
				logg.Error(context.Background(), "error closing redis", err)
			}
		}()

		sessionManager, err = session.NewManager(redisClient, cfg.JWT)
		if err != nil {
			logg.Error(runCtx, "failed to create session manager", err)
			os.Exit(1)
		}
		platform.Redis = redisClient
		platform.Sessions = sessionManager
		platform.Limiter = middleware.NewCounterLimiter(redisClient)
		platform.Idempotency = redisClient
	} else {
		logg.Warn(runCtx, "redis not configured: refresh tokens disabled, rate limits are per instance")
		local := middleware.NewLocalLimiter()
		local.StartSweeper(runCtx, sweepInterval)
		platform.Limiter = local
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	platform.HTTPMetrics = metrics.NewHTTPMetrics(registry)
	platform.MetricsHandler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	conn := dbClient.DB()
	usersRepo := users.NewRepository(conn)
	storesRepo := stores.NewRepository(conn)
	hasher := security.NewHasher(cfg.Password)

	userService, err := users.NewService(users.ServiceParams{Repo: usersRepo, Hasher: hasher, Stores: storesRepo})
	if err != nil {
		logg.Error(runCtx, "failed to create user service", err)
		os.Exit(1)
	}

	authParams := auth.ServiceParams{
		UserRepo:  usersRepo,
		Hasher:    hasher,
		JWTConfig: cfg.JWT,
	}
	if sessionManager != nil {
		authParams.SessionManager = sessionManager
	}
	authService, err := auth.NewService(authParams)
	if err != nil {
		logg.Error(runCtx, "failed to create auth service", err)
		os.Exit(1)
	}

	storeService, err := stores.NewService(storesRepo, usersRepo)
	if err != nil {
		logg.Error(runCtx, "failed to create store service", err)
		os.Exit(1)
	}

	ratingService, err := ratings.NewService(ratings.ServiceParams{
		Repo:    ratings.NewRepository(conn),
		Metrics: metrics.NewRatingMetrics(registry),
	})
	if err != nil {
		logg.Error(runCtx, "failed to create rating service", err)
		os.Exit(1)
	}

	analyticsService, err := analytics.NewService(analytics.ServiceParams{
		Repo:   analytics.NewRepository(conn),
		Users:  usersRepo,
		Config: cfg.Analytics,
	})
	if err != nil {
		logg.Error(runCtx, "failed to create analytics service", err)
		os.Exit(1)
	}

	if cfg.Bootstrap.Enabled() {
		ensureAdmin(runCtx, logg, userService, cfg.Bootstrap)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(runCtx, map[string]any{
		"env":   cfg.App.Env,
		"addr":  addr,
		"redis": cfg.Redis.Enabled(),
	})
	logg.Info(ctx, "starting api server")

	router := routes.NewRouter(cfg, logg, platform, authService, userService, storeService, ratingService, analyticsService)
	if err := api.Serve(runCtx, logg, addr, router, shutdownTimeout); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "api server stopped")
}

func ensureAdmin(ctx context.Context, logg *logger.Logger, svc users.Service, cfg config.BootstrapConfig) {
	admin, created, err := svc.EnsureAdmin(ctx, users.CreateUserRequest{
		Name:     cfg.AdminName,
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Address:  cfg.AdminAddress,
		Role:     enums.RoleSystemAdmin,
	})
	if err != nil {
		logg.Error(ctx, "failed to ensure bootstrap admin", err)
		os.Exit(1)
	}
	if created {
		logg.Info(logg.WithField(ctx, "admin_id", admin.ID.String()), "bootstrap admin created")
	}
}
