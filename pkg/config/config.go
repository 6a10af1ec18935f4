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
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	ScanQueue    ScanQueueConfig
	Import       ImportConfig
	FeatureFlags FeatureFlagsConfig
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
	Env          string `envconfig:"STOCKAUDIT_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKAUDIT_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOCKAUDIT_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKAUDIT_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKAUDIT_DB_DSN"`
	Driver string `envconfig:"STOCKAUDIT_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOCKAUDIT_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKAUDIT_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKAUDIT_DB_USER"`
	LegacyPassword string `envconfig:"STOCKAUDIT_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKAUDIT_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKAUDIT_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKAUDIT_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKAUDIT_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKAUDIT_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKAUDIT_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKAUDIT_REDIS_URL" required:"true"`
	Address      string        `envconfig:"STOCKAUDIT_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKAUDIT_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKAUDIT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKAUDIT_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKAUDIT_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKAUDIT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKAUDIT_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKAUDIT_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"STOCKAUDIT_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"STOCKAUDIT_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"STOCKAUDIT_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"STOCKAUDIT_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"STOCKAUDIT_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"STOCKAUDIT_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"STOCKAUDIT_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"STOCKAUDIT_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"STOCKAUDIT_ARGON_KEY_LEN" default:"32"`
}

type ScanQueueConfig struct {
	FlushInterval  time.Duration `envconfig:"STOCKAUDIT_SCANQUEUE_FLUSH_INTERVAL" default:"5s"`
	BatchThreshold int           `envconfig:"STOCKAUDIT_SCANQUEUE_BATCH_THRESHOLD" default:"10"`
	DedupTTL       time.Duration `envconfig:"STOCKAUDIT_SCAN_DEDUP_TTL" default:"168h"`
}

type ImportConfig struct {
	MaxUploadMB      int `envconfig:"STOCKAUDIT_IMPORT_MAX_UPLOAD_MB" default:"10"`
	MaxErrorMessages int `envconfig:"STOCKAUDIT_IMPORT_MAX_ERROR_MESSAGES" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"STOCKAUDIT_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"STOCKAUDIT_AUTO_MIGRATE" default:"false"`
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
