package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	APIRateLimit  APIRateLimitConfig
	Checkout      CheckoutConfig
	CORS          CORSConfig
	FeatureFlags  FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Checkout.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DAIRYSHOP_APP_ENV" required:"true"`
	Port         string `envconfig:"DAIRYSHOP_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"DAIRYSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DAIRYSHOP_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DAIRYSHOP_DB_DSN"`
	Driver string `envconfig:"DAIRYSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DAIRYSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"DAIRYSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DAIRYSHOP_DB_USER"`
	LegacyPassword string `envconfig:"DAIRYSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"DAIRYSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"DAIRYSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DAIRYSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DAIRYSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DAIRYSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DAIRYSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DAIRYSHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DAIRYSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"DAIRYSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"DAIRYSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DAIRYSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DAIRYSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DAIRYSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DAIRYSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DAIRYSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"DAIRYSHOP_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"DAIRYSHOP_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"DAIRYSHOP_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"DAIRYSHOP_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DAIRYSHOP_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DAIRYSHOP_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DAIRYSHOP_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DAIRYSHOP_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DAIRYSHOP_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DAIRYSHOP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DAIRYSHOP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DAIRYSHOP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DAIRYSHOP_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DAIRYSHOP_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DAIRYSHOP_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

// APIRateLimitConfig covers the blanket per-IP limiter on /api routes.
type APIRateLimitConfig struct {
	Window  time.Duration `envconfig:"DAIRYSHOP_API_RATE_LIMIT_WINDOW" default:"15m"`
	IPLimit int           `envconfig:"DAIRYSHOP_API_RATE_LIMIT_IP_LIMIT" default:"100"`
}

// CheckoutConfig holds the flat tax/shipping knobs used when placing orders.
type CheckoutConfig struct {
	TaxRate             string `envconfig:"DAIRYSHOP_CHECKOUT_TAX_RATE" default:"0.08"`
	ShippingFee         string `envconfig:"DAIRYSHOP_CHECKOUT_SHIPPING_FEE" default:"5.99"`
	FreeShippingMinimum string `envconfig:"DAIRYSHOP_CHECKOUT_FREE_SHIPPING_MIN" default:"50"`
	taxRate             decimal.Decimal
	shippingFee         decimal.Decimal
	freeShippingMinimum decimal.Decimal
}

func (c *CheckoutConfig) validate() error {
	var err error
	if c.taxRate, err = decimal.NewFromString(c.TaxRate); err != nil {
		return fmt.Errorf("invalid checkout tax rate %q: %w", c.TaxRate, err)
	}
	if c.shippingFee, err = decimal.NewFromString(c.ShippingFee); err != nil {
		return fmt.Errorf("invalid checkout shipping fee %q: %w", c.ShippingFee, err)
	}
	if c.freeShippingMinimum, err = decimal.NewFromString(c.FreeShippingMinimum); err != nil {
		return fmt.Errorf("invalid free shipping minimum %q: %w", c.FreeShippingMinimum, err)
	}
	if c.taxRate.IsNegative() || c.shippingFee.IsNegative() || c.freeShippingMinimum.IsNegative() {
		return fmt.Errorf("checkout amounts must be non-negative")
	}
	return nil
}

// NewCheckoutConfig builds a checkout config from literal amounts.
func NewCheckoutConfig(taxRate, shippingFee, freeShippingMinimum string) (CheckoutConfig, error) {
	cfg := CheckoutConfig{
		TaxRate:             taxRate,
		ShippingFee:         shippingFee,
		FreeShippingMinimum: freeShippingMinimum,
	}
	if err := cfg.validate(); err != nil {
		return CheckoutConfig{}, err
	}
	return cfg, nil
}

// TaxRateDecimal returns the parsed flat tax rate.
func (c CheckoutConfig) TaxRateDecimal() decimal.Decimal { return c.taxRate }

// ShippingFeeDecimal returns the parsed flat shipping fee.
func (c CheckoutConfig) ShippingFeeDecimal() decimal.Decimal { return c.shippingFee }

// FreeShippingMinimumDecimal returns the subtotal at which shipping is waived.
func (c CheckoutConfig) FreeShippingMinimumDecimal() decimal.Decimal { return c.freeShippingMinimum }

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"DAIRYSHOP_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DAIRYSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DAIRYSHOP_AUTO_MIGRATE" default:"false"`
	SeedOnBoot  bool `envconfig:"DAIRYSHOP_SEED_ON_BOOT" default:"false"`
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
