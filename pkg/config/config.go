package config

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

type Config struct {
	App    AppConfig
	DB     DBConfig
	Redis  RedisConfig
	JWT    JWTConfig
	Strava StravaConfig
	OpenAI OpenAIConfig
	Sync   SyncConfig
	AI     AIConfig
	Cron   CronConfig
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
	Env          string `envconfig:"COUCHPROOF_APP_ENV" required:"true"`
	Port         string `envconfig:"COUCHPROOF_APP_PORT" default:"8080"`
	BaseURL      string `envconfig:"COUCHPROOF_APP_BASE_URL" default:"http://localhost:8080"`
	FrontendURL  string `envconfig:"COUCHPROOF_FRONTEND_URL" default:"http://localhost:3000"`
	LogLevel     string `envconfig:"COUCHPROOF_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"COUCHPROOF_LOG_WARN_STACK" default:"false"`
	AutoMigrate  bool   `envconfig:"COUCHPROOF_AUTO_MIGRATE" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"COUCHPROOF_DB_DSN"`
	Driver string `envconfig:"COUCHPROOF_DB_DRIVER" default:"postgres"`

	Host     string `envconfig:"COUCHPROOF_DB_HOST"`
	Port     int    `envconfig:"COUCHPROOF_DB_PORT" default:"5432"`
	User     string `envconfig:"COUCHPROOF_DB_USER"`
	Password string `envconfig:"COUCHPROOF_DB_PASSWORD"`
	Name     string `envconfig:"COUCHPROOF_DB_NAME"`
	SSLMode  string `envconfig:"COUCHPROOF_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"COUCHPROOF_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"COUCHPROOF_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"COUCHPROOF_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"COUCHPROOF_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"COUCHPROOF_REDIS_URL"`
	Address      string        `envconfig:"COUCHPROOF_REDIS_ADDR"`
	Password     string        `envconfig:"COUCHPROOF_REDIS_PASSWORD"`
	DB           int           `envconfig:"COUCHPROOF_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"COUCHPROOF_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"COUCHPROOF_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"COUCHPROOF_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"COUCHPROOF_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"COUCHPROOF_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"COUCHPROOF_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"COUCHPROOF_JWT_ISSUER" default:"couchproof"`
	ExpirationMinutes int    `envconfig:"COUCHPROOF_JWT_EXPIRATION_MINUTES" default:"60"`
}

// AccessTokenTTL returns the access token lifetime configured in minutes.
func (j JWTConfig) AccessTokenTTL() time.Duration {
	if j.ExpirationMinutes <= 0 {
		return time.Hour
	}
	return time.Duration(j.ExpirationMinutes) * time.Minute
}

type StravaConfig struct {
	ClientID      string        `envconfig:"COUCHPROOF_STRAVA_CLIENT_ID" required:"true"`
	ClientSecret  string        `envconfig:"COUCHPROOF_STRAVA_CLIENT_SECRET" required:"true"`
	RedirectURL   string        `envconfig:"COUCHPROOF_STRAVA_REDIRECT_URL"`
	VerifyToken   string        `envconfig:"COUCHPROOF_STRAVA_VERIFY_TOKEN" required:"true"`
	BaseURL       string        `envconfig:"COUCHPROOF_STRAVA_BASE_URL" default:"https://www.strava.com/api/v3"`
	TokenURL      string        `envconfig:"COUCHPROOF_STRAVA_TOKEN_URL" default:"https://www.strava.com/oauth/token"`
	AuthorizeURL  string        `envconfig:"COUCHPROOF_STRAVA_AUTHORIZE_URL" default:"https://www.strava.com/oauth/authorize"`
	RequestDelay  time.Duration `envconfig:"COUCHPROOF_STRAVA_REQUEST_DELAY" default:"250ms"`
	RefreshBuffer time.Duration `envconfig:"COUCHPROOF_STRAVA_REFRESH_BUFFER" default:"5m"`
}

type OpenAIConfig struct {
	APIKey  string        `envconfig:"COUCHPROOF_OPENAI_API_KEY"`
	Model   string        `envconfig:"COUCHPROOF_OPENAI_MODEL" default:"gpt-4o-mini"`
	BaseURL string        `envconfig:"COUCHPROOF_OPENAI_BASE_URL" default:"https://api.openai.com/v1"`
	Timeout time.Duration `envconfig:"COUCHPROOF_OPENAI_TIMEOUT" default:"30s"`
}

type SyncConfig struct {
	PageSize          int           `envconfig:"COUCHPROOF_SYNC_PAGE_SIZE" default:"50"`
	IncrementalWindow time.Duration `envconfig:"COUCHPROOF_SYNC_INCREMENTAL_WINDOW" default:"720h"`
	FullLookback      time.Duration `envconfig:"COUCHPROOF_SYNC_FULL_LOOKBACK" default:"8760h"`
	FullBatchCap      int           `envconfig:"COUCHPROOF_SYNC_FULL_BATCH_CAP" default:"25"`
	ResumeTTL         time.Duration `envconfig:"COUCHPROOF_SYNC_RESUME_TTL" default:"24h"`
	MaxActivities     int           `envconfig:"COUCHPROOF_SYNC_MAX_ACTIVITIES" default:"1000"`
}

type AIConfig struct {
	SimilarityThreshold float64       `envconfig:"COUCHPROOF_AI_SIMILARITY_THRESHOLD" default:"0.75"`
	AvoidanceWindow     int           `envconfig:"COUCHPROOF_AI_AVOIDANCE_WINDOW" default:"10"`
	MaxRegenerations    int           `envconfig:"COUCHPROOF_AI_MAX_REGENERATIONS" default:"2"`
	RetentionDays       int           `envconfig:"COUCHPROOF_AI_RETENTION_DAYS" default:"90"`
	GenerateTimeout     time.Duration `envconfig:"COUCHPROOF_AI_GENERATE_TIMEOUT" default:"45s"`
}

type CronConfig struct {
	Interval       time.Duration `envconfig:"COUCHPROOF_CRON_INTERVAL" default:"1h"`
	LockTTL        time.Duration `envconfig:"COUCHPROOF_CRON_LOCK_TTL" default:"55m"`
	StaleSyncAge   time.Duration `envconfig:"COUCHPROOF_CRON_STALE_SYNC_AGE" default:"24h"`
	StaleSyncBatch int           `envconfig:"COUCHPROOF_CRON_STALE_SYNC_BATCH" default:"20"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	for envName, value := range map[string]string{
		"COUCHPROOF_DB_HOST": db.Host,
		"COUCHPROOF_DB_USER": db.User,
		"COUCHPROOF_DB_NAME": db.Name,
	} {
		if value == "" {
			missing = append(missing, envName)
		}
	}

	sort.Strings(missing)
	if len(missing) > 0 {
		return fmt.Errorf("either COUCHPROOF_DB_DSN or %s are required", strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
