package config

import (
	"cmp"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/STTM-NSU/investboard/internal/logger"
	"github.com/STTM-NSU/investboard/internal/postgres"
	"gopkg.in/yaml.v3"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// insecureSecret signs tokens when JWT_SECRET is unset outside production.
const insecureSecret = "investboard-insecure-dev-secret"

type HTTPConfig struct {
	Port              string        `yaml:"port"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
	AllowedOrigin     string        `yaml:"allowed_origin"`
}

const (
	_portDefault              = "3000"
	_readHeaderTimeoutDefault = 10 * time.Second
	_shutdownTimeoutDefault   = 15 * time.Second
)

func (c *HTTPConfig) Setup() {
	c.Port = cmp.Or(c.Port, _portDefault)
	if _, err := strconv.Atoi(c.Port); err != nil {
		c.Port = _portDefault
	}
	if c.ReadHeaderTimeout <= 0 {
		c.ReadHeaderTimeout = _readHeaderTimeoutDefault
	}
	if c.ShutdownTimeout <= 0 {
		c.ShutdownTimeout = _shutdownTimeoutDefault
	}
}

type AuthConfig struct {
	JWTSecret          string        `yaml:"-"`
	TokenTTL           time.Duration `yaml:"token_ttl"`
	BcryptCost         int           `yaml:"bcrypt_cost"`
	LoginRatePerMinute int           `yaml:"login_rate_per_minute"` // 0 disables throttling

	// InsecureSecret reports that JWTSecret is the built-in development value.
	InsecureSecret bool `yaml:"-"`
}

const (
	_tokenTTLDefault   = 24 * time.Hour
	_bcryptCostDefault = 12
)

func (c *AuthConfig) Setup(env string) error {
	if c.TokenTTL <= 0 {
		c.TokenTTL = _tokenTTLDefault
	}
	if c.BcryptCost <= 0 {
		c.BcryptCost = _bcryptCostDefault
	}
	if c.LoginRatePerMinute < 0 {
		c.LoginRatePerMinute = 0
	}

	if c.JWTSecret == "" {
		if env == EnvProduction {
			return errors.New("JWT_SECRET is required in production")
		}
		c.JWTSecret = insecureSecret
		c.InsecureSecret = true
	}
	return nil
}

type Config struct {
	Env      string          `yaml:"env"`
	LogLevel string          `yaml:"log_level"`
	HTTP     HTTPConfig      `yaml:"http"`
	Auth     AuthConfig      `yaml:"auth"`
	Postgres postgres.Config `yaml:"postgres"`
}

func (c *Config) ValidateAndSetup() error {
	c.Env = cmp.Or(c.Env, EnvDevelopment)
	c.LogLevel = cmp.Or(c.LogLevel, logger.Info.String())
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: can't setup log level", err)
	}

	c.HTTP.Setup()
	if err := c.Auth.Setup(c.Env); err != nil {
		return fmt.Errorf("%w: can't setup auth", err)
	}
	c.Postgres.Setup()

	return nil
}

func (c *Config) fillFromEnv() {
	for env, field := range map[string]*string{
		"APP_ENV":    &c.Env,
		"LOG_LEVEL":  &c.LogLevel,
		"HTTP_PORT":  &c.HTTP.Port,
		"JWT_SECRET": &c.Auth.JWTSecret,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
	c.Postgres.FillFromEnv()
}

// Load reads filename, overlays the environment and applies defaults. A
// missing file is not an error.
func Load(filename string) (Config, error) {
	var cfg Config

	input, err := os.ReadFile(filename)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("%w: can't read file", err)
	default:
		if err := yaml.Unmarshal(input, &cfg); err != nil {
			return cfg, fmt.Errorf("%w: can't unmarshal config", err)
		}
	}

	cfg.fillFromEnv()

	if err := cfg.ValidateAndSetup(); err != nil {
		return cfg, fmt.Errorf("%w: can't setup cfg", err)
	}

	return cfg, nil
}
