package config

const EnvPrefix = "FORKFUL"

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvAppEnv             = "FORKFUL_APP_ENV"
	EnvPort               = "FORKFUL_APP_PORT"
	EnvDBDSN              = "FORKFUL_DB_DSN"
	EnvDBHost             = "FORKFUL_DB_HOST"
	EnvDBUser             = "FORKFUL_DB_USER"
	EnvDBName             = "FORKFUL_DB_NAME"
	EnvRedisURL           = "FORKFUL_REDIS_URL"
	EnvJWTSecret          = "FORKFUL_JWT_SECRET"
	EnvJWTIssuer          = "FORKFUL_JWT_ISSUER"
	EnvGCPProjectID       = "FORKFUL_GCP_PROJECT_ID"
	EnvPubSubVendorSub    = "FORKFUL_PUBSUB_VENDOR_SUBSCRIPTION"
	EnvPubSubAnalyticsSub = "FORKFUL_PUBSUB_ANALYTICS_SUBSCRIPTION"
	EnvDispatchTimezone   = "FORKFUL_DISPATCH_TIMEZONE"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
