package cmd

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// EnvPrefix prefixes every environment variable, e.g. KITCHEN_HTTP_PORT.
const EnvPrefix = "KITCHEN"

const (
	NotifierMemory = "memory"
	NotifierRedis  = "redis"
	NotifierAMQP   = "amqp"
)

type Config struct {
	HTTPPort  string `envconfig:"HTTP_PORT"  default:"8080"`
	LogLevel  string `envconfig:"LOG_LEVEL"  default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`

	DBDriver          string        `envconfig:"DB_DRIVER"            default:"postgres"`
	DBDSN             string        `envconfig:"DB_DSN"               required:"true"`
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS"    default:"20"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS"    default:"5"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"30m"`
	DBAutoMigrate     bool          `envconfig:"DB_AUTO_MIGRATE"      default:"true"`

	HeartbeatInterval time.Duration `envconfig:"HEARTBEAT_INTERVAL" default:"30s"`
	LivenessWindow    time.Duration `envconfig:"LIVENESS_WINDOW"    default:"90s"`
	ReaperSchedule    string        `envconfig:"REAPER_SCHEDULE"    default:"@every 30s"`
	ReconcileSchedule string        `envconfig:"RECONCILE_SCHEDULE" default:"@every 1m"`

	NotifierTransport string `envconfig:"NOTIFIER"      default:"memory"`
	RedisURL          string `envconfig:"REDIS_URL"`
	RedisPrefix       string `envconfig:"REDIS_PREFIX"  default:"kitchen:changes"`
	AMQPURL           string `envconfig:"AMQP_URL"`
	AMQPExchange      string `envconfig:"AMQP_EXCHANGE" default:"kitchen.changes"`

	JWTSecret string `envconfig:"JWT_SECRET" required:"true"`
}

// LoadConfig reads the KITCHEN_* environment.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that depend on each other.
func (c Config) Validate() error {
	var err error
	if c.DBDSN == "" {
		err = errors.Join(err, errors.New("KITCHEN_DB_DSN is required"))
	}
	if c.JWTSecret == "" {
		err = errors.Join(err, errors.New("KITCHEN_JWT_SECRET is required"))
	}
	if c.HeartbeatInterval <= 0 {
		err = errors.Join(err, errors.New("heartbeat interval must be positive"))
	}
	if c.LivenessWindow <= c.HeartbeatInterval {
		err = errors.Join(err, fmt.Errorf(
			"liveness window %s must exceed heartbeat interval %s", c.LivenessWindow, c.HeartbeatInterval))
	}

	switch strings.ToLower(c.NotifierTransport) {
	case NotifierMemory:
	case NotifierRedis:
		if c.RedisURL == "" {
			err = errors.Join(err, errors.New("redis notifier requires KITCHEN_REDIS_URL"))
		}
	case NotifierAMQP:
		if c.AMQPURL == "" {
			err = errors.Join(err, errors.New("amqp notifier requires KITCHEN_AMQP_URL"))
		}
	default:
		err = errors.Join(err, fmt.Errorf("unknown notifier %q", c.NotifierTransport))
	}
	return err
}
