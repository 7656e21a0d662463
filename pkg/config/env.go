package config

const (
	EnvPrefix = "STORERATINGS"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv   = "STORERATINGS_APP_ENV"
	EnvPort     = "STORERATINGS_APP_PORT"
	EnvLogLevel = "STORERATINGS_LOG_LEVEL"

	EnvDBDSN  = "STORERATINGS_DB_DSN"
	EnvDBHost = "STORERATINGS_DB_HOST"
	EnvDBPort = "STORERATINGS_DB_PORT"
	EnvDBUser = "STORERATINGS_DB_USER"
	EnvDBPass = "STORERATINGS_DB_PASSWORD"
	EnvDBName = "STORERATINGS_DB_NAME"

	EnvRedisURL = "STORERATINGS_REDIS_URL"

	EnvJWTSecret              = "STORERATINGS_JWT_SECRET"
	EnvJWTIssuer              = "STORERATINGS_JWT_ISSUER"
	EnvJWTExpMins             = "STORERATINGS_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "STORERATINGS_REFRESH_TOKEN_TTL_MINUTES"

	EnvCORSAllowedOrigins = "STORERATINGS_CORS_ALLOWED_ORIGINS"
	EnvRateLimitMax       = "STORERATINGS_RATE_LIMIT_MAX"
	EnvTrendWindowDays    = "STORERATINGS_ANALYTICS_TREND_WINDOW_DAYS"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
