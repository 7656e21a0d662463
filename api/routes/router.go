package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/storeratings/storeratings-backend/api/controllers"
	"github.com/storeratings/storeratings-backend/api/middleware"
	"github.com/storeratings/storeratings-backend/internal/analytics"
	"github.com/storeratings/storeratings-backend/internal/auth"
	"github.com/storeratings/storeratings-backend/internal/ratings"
	"github.com/storeratings/storeratings-backend/internal/stores"
	"github.com/storeratings/storeratings-backend/internal/users"
	"github.com/storeratings/storeratings-backend/pkg/auth/session"
	"github.com/storeratings/storeratings-backend/pkg/config"
	"github.com/storeratings/storeratings-backend/pkg/enums"
	"github.com/storeratings/storeratings-backend/pkg/logger"
	"github.com/storeratings/storeratings-backend/pkg/metrics"
	pkgredis "github.com/storeratings/storeratings-backend/pkg/redis"
)

// Platform carries the infrastructure the router needs beyond the domain services.
// Nil pingers, session checker, limiter and idempotency store disable the
// corresponding checks.
type Platform struct {
	DB             controllers.Pinger
	Redis          controllers.Pinger
	Sessions       session.AccessSessionChecker
	Limiter        middleware.Limiter
	Idempotency    pkgredis.IdempotencyStore
	HTTPMetrics    *metrics.HTTPMetrics
	MetricsHandler http.Handler
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	platform Platform,
	authService auth.Service,
	userService users.Service,
	storeService stores.Service,
	ratingService ratings.Service,
	analyticsService analytics.Service,
) http.Handler {
	r := chi.NewRouter()
	if cfg.RateLimit.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(
		middleware.RequestID(logg),
		middleware.Recoverer(logg),
		middleware.Logging(logg),
		middleware.Metrics(platform.HTTPMetrics),
		middleware.CORS(cfg.CORS),
		middleware.RateLimit(platform.Limiter, cfg.RateLimit.Limit, cfg.RateLimit.Window, logg),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, platform.Sessions, logg)
	idempotent := middleware.Idempotency(platform.Idempotency, middleware.DefaultIdempotencyTTL, logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, platform.DB, platform.Redis))
	})
	if platform.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", platform.MetricsHandler)
	}

	r.Route("/api/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, platform.Limiter, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, platform.Limiter, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.Post("/refresh", controllers.AuthRefresh(authService, logg))

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/logout", controllers.AuthLogout(authService, logg))
			r.Get("/profile", controllers.ProfileGet(userService, logg))
			r.Put("/profile", controllers.ProfileUpdate(userService, logg))
			r.Put("/password", controllers.PasswordChange(userService, logg))
		})
	})

	r.Route("/api/stores", func(r chi.Router) {
		r.Use(middleware.OptionalAuth(cfg.JWT, platform.Sessions, logg))
		r.Get("/", controllers.StoreList(storeService, logg))
		r.Get("/{storeId}", controllers.StoreDetail(storeService, logg))
		r.Get("/{storeId}/ratings", controllers.StoreRatings(storeService, logg))
	})

	r.Route("/api/ratings", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireRoles(logg, enums.RoleNormalUser))
		r.Get("/me", controllers.RatingListMine(ratingService, logg))
		r.With(idempotent).Post("/{storeId}", controllers.RatingSubmit(ratingService, logg))
		r.Delete("/{storeId}", controllers.RatingDelete(ratingService, logg))
	})

	r.Route("/api/owner", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireRoles(logg, enums.RoleStoreOwner))
		r.Get("/dashboard", controllers.OwnerDashboard(analyticsService, logg))
		r.Get("/ratings", controllers.OwnerRatings(analyticsService, logg))
	})

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(requireAuth)
		r.Use(middleware.RequireRoles(logg, enums.RoleSystemAdmin))
		r.Get("/dashboard", controllers.AdminDashboard(analyticsService, logg))

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.AdminUserList(userService, logg))
			r.With(idempotent).Post("/", controllers.AdminUserCreate(userService, logg))
			r.Get("/{userId}", controllers.AdminUserDetail(userService, logg))
			r.Put("/{userId}", controllers.AdminUserUpdate(userService, logg))
			r.Delete("/{userId}", controllers.AdminUserDelete(userService, logg))
		})
		r.Route("/stores", func(r chi.Router) {
			r.Get("/", controllers.StoreList(storeService, logg))
			r.With(idempotent).Post("/", controllers.AdminStoreCreate(storeService, logg))
			r.Get("/{storeId}", controllers.StoreDetail(storeService, logg))
			r.Put("/{storeId}", controllers.AdminStoreUpdate(storeService, logg))
			r.Delete("/{storeId}", controllers.AdminStoreDelete(storeService, logg))
		})
		r.Route("/ratings", func(r chi.Router) {
			r.Get("/", controllers.AdminRatingList(ratingService, logg))
			r.Delete("/{ratingId}", controllers.AdminRatingDelete(ratingService, logg))
		})
	})

	return r
}
