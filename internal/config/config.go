package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
	"golang.org/x/text/language"
)

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

type Config struct {
	App     AppConfig
	DB      DBConfig
	Alerts  AlertsConfig
	AMQP    AMQPConfig
	Storage string `envconfig:"GASTOS_STORAGE" default:"memory"`
}

type AppConfig struct {
	Env         string `envconfig:"GASTOS_APP_ENV" default:"dev"`
	GRPCAddr    string `envconfig:"GASTOS_GRPC_ADDR" default:":8080"`
	MetricsAddr string `envconfig:"GASTOS_METRICS_ADDR" default:":9090"`
	APIToken    string `envconfig:"GASTOS_API_TOKEN" default:"dev-token"`
	LogLevel    string `envconfig:"GASTOS_LOG_LEVEL" default:"info"`
	LogFormat   string `envconfig:"GASTOS_LOG_FORMAT" default:"json"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN      string `envconfig:"GASTOS_DB_DSN"`
	Host     string `envconfig:"GASTOS_DB_HOST" default:"localhost"`
	Port     int    `envconfig:"GASTOS_DB_PORT" default:"5432"`
	User     string `envconfig:"GASTOS_DB_USER" default:"postgres"`
	Password string `envconfig:"GASTOS_DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"GASTOS_DB_NAME" default:"gastos"`
	SSLMode  string `envconfig:"GASTOS_DB_SSLMODE" default:"disable"`
}

type AlertsConfig struct {
	// WeekLocale is a BCP-47 tag deciding how weekly alerts number weeks
	WeekLocale   string `envconfig:"GASTOS_WEEK_LOCALE" default:"es-ES"`
	HistoryLimit int    `envconfig:"GASTOS_ALERT_HISTORY_LIMIT" default:"0"`
}

type AMQPConfig struct {
	URL        string `envconfig:"GASTOS_AMQP_URL"`
	Exchange   string `envconfig:"GASTOS_AMQP_EXCHANGE" default:"gastos"`
	RoutingKey string `envconfig:"GASTOS_AMQP_ROUTING_KEY" default:"alerts.notification"`
}

// Enabled reports whether notifications should be published to a broker
func (a AMQPConfig) Enabled() bool {
	return strings.TrimSpace(a.URL) != ""
}

// Load reads an optional .env file, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	return FromEnv()
}

// FromEnv parses the process environment only
func FromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.DB.ensureDSN()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports every configuration problem at once
func (c *Config) Validate() error {
	var errs error
	if strings.TrimSpace(c.App.GRPCAddr) == "" {
		errs = multierr.Append(errs, errors.New("GASTOS_GRPC_ADDR cannot be empty"))
	}
	if strings.TrimSpace(c.App.APIToken) == "" {
		errs = multierr.Append(errs, errors.New("GASTOS_API_TOKEN cannot be empty"))
	}
	switch c.Storage {
	case StorageMemory:
	case StoragePostgres:
		if c.DB.DSN == "" {
			errs = multierr.Append(errs, errors.New("GASTOS_DB_DSN or GASTOS_DB_HOST is required for postgres storage"))
		}
	default:
		errs = multierr.Append(errs, fmt.Errorf("GASTOS_STORAGE must be %q or %q, got %q", StorageMemory, StoragePostgres, c.Storage))
	}
	if _, err := language.Parse(c.Alerts.WeekLocale); err != nil {
		errs = multierr.Append(errs, fmt.Errorf("GASTOS_WEEK_LOCALE %q: %w", c.Alerts.WeekLocale, err))
	}
	if c.Alerts.HistoryLimit < 0 {
		errs = multierr.Append(errs, errors.New("GASTOS_ALERT_HISTORY_LIMIT cannot be negative"))
	}
	if c.AMQP.Enabled() && strings.TrimSpace(c.AMQP.Exchange) == "" {
		errs = multierr.Append(errs, errors.New("GASTOS_AMQP_EXCHANGE cannot be empty when GASTOS_AMQP_URL is set"))
	}
	return errs
}

// ensureDSN builds a postgres URL from the individual DB settings when no DSN is given
func (db *DBConfig) ensureDSN() {
	if db.DSN != "" || db.Host == "" {
		return
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
}
