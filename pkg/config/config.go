package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const (
	EnvPrefix = "abdulshop"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "ABDULSHOP_DB_DSN"
	EnvDBHost = "ABDULSHOP_DB_HOST"
	EnvDBUser = "ABDULSHOP_DB_USER"
	EnvDBName = "ABDULSHOP_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Orders       OrdersConfig
	Settlement   SettlementConfig
	Inventory    InventoryConfig
	Mail         MailConfig
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
	if _, err := cfg.Settlement.Rate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ABDULSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"ABDULSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"ABDULSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ABDULSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"ABDULSHOP_DB_DSN"`
	Driver string `envconfig:"ABDULSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"ABDULSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"ABDULSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"ABDULSHOP_DB_USER"`
	LegacyPassword string `envconfig:"ABDULSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"ABDULSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"ABDULSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"ABDULSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"ABDULSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"ABDULSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"ABDULSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"ABDULSHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"ABDULSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"ABDULSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"ABDULSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ABDULSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ABDULSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ABDULSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ABDULSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ABDULSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"ABDULSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"ABDULSHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"ABDULSHOP_JWT_EXPIRATION_MINUTES" default:"60"`
}

type OrdersConfig struct {
	TrackingPrefix string `envconfig:"ABDULSHOP_ORDERS_TRACKING_PREFIX" default:"AS"`
}

// SettlementConfig carries the platform commission retained before vendors
// are credited. The default matches the platform-wide 5% rate.
type SettlementConfig struct {
	CommissionRate string `envconfig:"ABDULSHOP_SETTLEMENT_COMMISSION_RATE" default:"0.05"`
}

// Rate parses the configured commission rate and rejects values outside [0, 1).
func (s SettlementConfig) Rate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(s.CommissionRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid commission rate %q: %w", s.CommissionRate, err)
	}
	if rate.IsNegative() || rate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("commission rate %s out of range", rate)
	}
	return rate, nil
}

type InventoryConfig struct {
	LowStockThreshold int `envconfig:"ABDULSHOP_INVENTORY_LOW_STOCK_THRESHOLD" default:"5"`
}

type MailConfig struct {
	DefaultFrom string `envconfig:"ABDULSHOP_MAIL_FROM_EMAIL" default:"orders@abdulshop.example"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"ABDULSHOP_AUTO_MIGRATE" default:"false"`
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
