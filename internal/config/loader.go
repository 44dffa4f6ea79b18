package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"

	"github.com/example/room-booking/internal/logging"
)

// DefaultDatabaseURL stores data in booking.db next to the binary.
const DefaultDatabaseURL = "file:booking.db?_pragma=foreign_keys(1)&_txlock=immediate"

// Config captures the settings of the booking service. Every field can come
// from a YAML file or from the environment; the environment wins.
type Config struct {
	Env          string             `yaml:"env" env:"BOOKING_ENV" env-default:"production"`
	HTTP         HTTPConfig         `yaml:"http"`
	Database     DatabaseConfig     `yaml:"database"`
	Auth         AuthConfig         `yaml:"auth"`
	Log          LogConfig          `yaml:"log"`
	Maintenance  MaintenanceConfig  `yaml:"maintenance"`
	Registration RegistrationConfig `yaml:"registration"`
	SMTP         SMTPConfig         `yaml:"smtp"`
}

// HTTPConfig holds listener and browser facing settings.
type HTTPConfig struct {
	Port            int           `yaml:"port" env:"BOOKING_HTTP_PORT,PORT" env-default:"4000"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"BOOKING_SHUTDOWN_TIMEOUT" env-default:"10s"`
	CORSOrigins     []string      `yaml:"cors_origins" env:"BOOKING_CORS_ORIGINS" env-separator:","`
	SecureCookies   bool          `yaml:"secure_cookies" env:"BOOKING_COOKIE_SECURE" env-default:"false"`
}

// DatabaseConfig selects the store. postgres:// URLs use the gorm store.
type DatabaseConfig struct {
	URL string `yaml:"url" env:"BOOKING_DATABASE_URL" env-default:"file:booking.db?_pragma=foreign_keys(1)&_txlock=immediate"`
}

// AuthConfig signs session tokens.
type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret" env:"BOOKING_JWT_SECRET"`
	TokenTTL  time.Duration `yaml:"token_ttl" env:"BOOKING_JWT_TTL" env-default:"720h"`
}

type LogConfig struct {
	Level string `yaml:"level" env:"BOOKING_LOG_LEVEL" env-default:"info"`
}

type MaintenanceConfig struct {
	CleanupSchedule string `yaml:"cleanup_schedule" env:"BOOKING_CLEANUP_SCHEDULE" env-default:"@every 15m"`
}

// RegistrationConfig restricts sign up to a comma separated domain list.
type RegistrationConfig struct {
	AllowedDomain string `yaml:"allowed_domain" env:"ALLOWED_DOMAIN"`
}

// SMTPConfig is the relay used for verification codes. Mail is enabled only
// when host, user and password are all set.
type SMTPConfig struct {
	Host     string `yaml:"host" env:"SMTP_HOST"`
	Port     int    `yaml:"port" env:"SMTP_PORT" env-default:"465"`
	User     string `yaml:"user" env:"SMTP_USER"`
	Password string `yaml:"password" env:"SMTP_PASSWORD"`
	From     string `yaml:"from" env:"SMTP_FROM" env-default:"Booking Service <noreply@example.com>"`
}

// Load reads an optional .env file, then the YAML file named by -config or
// CONFIG_PATH when present, then the environment.
//
// Defaults are applied for optional fields. Missing or malformed values are
// collected and reported together.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env file: %w", err)
	}

	path, err := configPath(args)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to read environment: %w", err)
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// configPath honours a -config flag first and CONFIG_PATH second.
func configPath(args []string) (string, error) {
	flags := flag.NewFlagSet("booking", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	path := flags.String("config", "", "path to a YAML config file")
	if err := flags.Parse(args); err != nil {
		return "", fmt.Errorf("invalid command line: %w", err)
	}
	if *path != "" {
		return *path, nil
	}
	return strings.TrimSpace(os.Getenv("CONFIG_PATH")), nil
}

func (c *Config) normalize() {
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
	c.Database.URL = strings.TrimSpace(c.Database.URL)
	c.Auth.JWTSecret = strings.TrimSpace(c.Auth.JWTSecret)
	c.Maintenance.CleanupSchedule = strings.TrimSpace(c.Maintenance.CleanupSchedule)

	origins := make([]string, 0, len(c.HTTP.CORSOrigins))
	for _, origin := range c.HTTP.CORSOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	c.HTTP.CORSOrigins = origins
}

func (c Config) validate() error {
	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if c.Auth.JWTSecret == "" {
		missing = append(missing, "BOOKING_JWT_SECRET")
	}
	if c.Database.URL == "" {
		missing = append(missing, "BOOKING_DATABASE_URL")
	}

	switch c.Env {
	case logging.EnvLocal, logging.EnvDev, logging.EnvProduction:
	default:
		invalid = append(invalid, "BOOKING_ENV")
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		invalid = append(invalid, "BOOKING_HTTP_PORT")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		invalid = append(invalid, "BOOKING_SHUTDOWN_TIMEOUT")
	}
	if c.Auth.TokenTTL <= 0 {
		invalid = append(invalid, "BOOKING_JWT_TTL")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		invalid = append(invalid, "BOOKING_LOG_LEVEL")
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		invalid = append(invalid, "SMTP_PORT")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}
	return nil
}
