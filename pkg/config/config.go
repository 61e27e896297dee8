package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	Auth         AuthConfig
	FeatureFlags FeatureFlagsConfig
	Dispatch     DispatchConfig
	Catalog      CatalogConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	BigQuery     BigQueryConfig
	Outbox       OutboxConfig
	Retention    RetentionConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"FORKFUL_APP_ENV" required:"true"`
	Port         string `envconfig:"FORKFUL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"FORKFUL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"FORKFUL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"FORKFUL_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"FORKFUL_DB_DSN"`
	Driver string `envconfig:"FORKFUL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"FORKFUL_DB_HOST"`
	LegacyPort     int    `envconfig:"FORKFUL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"FORKFUL_DB_USER"`
	LegacyPassword string `envconfig:"FORKFUL_DB_PASSWORD"`
	LegacyName     string `envconfig:"FORKFUL_DB_NAME"`
	LegacySSLMode  string `envconfig:"FORKFUL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"FORKFUL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"FORKFUL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"FORKFUL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"FORKFUL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FORKFUL_REDIS_URL" required:"true"`
	Address      string        `envconfig:"FORKFUL_REDIS_ADDR"`
	Password     string        `envconfig:"FORKFUL_REDIS_PASSWORD"`
	DB           int           `envconfig:"FORKFUL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FORKFUL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"FORKFUL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"FORKFUL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FORKFUL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"FORKFUL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type AuthConfig struct {
	JWTSecret            string `envconfig:"FORKFUL_JWT_SECRET" required:"true"`
	JWTIssuer            string `envconfig:"FORKFUL_JWT_ISSUER" required:"true"`
	JWTExpirationMinutes int    `envconfig:"FORKFUL_JWT_EXPIRATION_MINUTES" default:"60"`

	// Bcrypt hash of the operator key accepted on the manual dispatch
	// rerun endpoint. Empty disables the endpoint.
	OperatorKeyHash string `envconfig:"FORKFUL_OPERATOR_KEY_HASH"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"FORKFUL_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"FORKFUL_AUTO_MIGRATE" default:"false"`
}

type DispatchConfig struct {
	// Timezone the dispatch window is computed in. The run hour itself is
	// owned by deployment scheduling, not by this config.
	Timezone          string        `envconfig:"FORKFUL_DISPATCH_TIMEZONE" default:"UTC"`
	NotifyConcurrency int           `envconfig:"FORKFUL_DISPATCH_NOTIFY_CONCURRENCY" default:"8"`
	NotifyTimeout     time.Duration `envconfig:"FORKFUL_DISPATCH_NOTIFY_TIMEOUT" default:"10s"`
	Interval          time.Duration `envconfig:"FORKFUL_DISPATCH_INTERVAL" default:"24h"`
}

// Location resolves the configured dispatch timezone.
func (d DispatchConfig) Location() (*time.Location, error) {
	if strings.TrimSpace(d.Timezone) == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(d.Timezone)
}

type CatalogConfig struct {
	CacheTTL time.Duration `envconfig:"FORKFUL_CATALOG_CACHE_TTL" default:"15m"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"FORKFUL_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"FORKFUL_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"FORKFUL_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	VendorTopic           string `envconfig:"FORKFUL_PUBSUB_VENDOR_TOPIC" default:"fk-vendor-events"`
	VendorSubscription    string `envconfig:"FORKFUL_PUBSUB_VENDOR_SUBSCRIPTION" required:"true"`
	AnalyticsTopic        string `envconfig:"FORKFUL_PUBSUB_ANALYTICS_TOPIC" default:"fk-analytics-events"`
	AnalyticsSubscription string `envconfig:"FORKFUL_PUBSUB_ANALYTICS_SUBSCRIPTION" required:"true"`
}

type BigQueryConfig struct {
	Dataset             string `envconfig:"FORKFUL_BIGQUERY_DATASET" default:"forkful"`
	DispatchEventsTable string `envconfig:"FORKFUL_BIGQUERY_DISPATCH_TABLE" default:"dispatch_events"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"FORKFUL_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"FORKFUL_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"FORKFUL_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type RetentionConfig struct {
	NotificationDays int `envconfig:"FORKFUL_NOTIFICATION_RETENTION_DAYS" default:"30"`
	OutboxDays       int `envconfig:"FORKFUL_OUTBOX_RETENTION_DAYS" default:"30"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
