package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa del bot de predicciones.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Market  MarketConfig  `yaml:"market"`
	Lock    LockConfig    `yaml:"lock"`
	Events  EventsConfig  `yaml:"events"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// StorageConfig elige el ledger.
type StorageConfig struct {
	Driver string `yaml:"driver"` // sqlite | postgres | memory
	DSN    string `yaml:"dsn"`    // ruta SQLite (o ":memory:") o DSN de Postgres
}

// MarketConfig controla las reglas configurables del servicio de mercados.
type MarketConfig struct {
	DefaultDeadlineHours int `yaml:"default_deadline_hours"`
	LeaderboardSize      int `yaml:"leaderboard_size"`
	BetsPerMinute        int `yaml:"bets_per_minute"` // 0 = sin límite
	WatchIntervalSeconds int `yaml:"watch_interval_seconds"`
}

// LockConfig controla la serialización por mercado.
type LockConfig struct {
	Mode      string `yaml:"mode"` // none | local | redis
	RedisAddr string `yaml:"redis_addr"`
	TTLMillis int    `yaml:"ttl_ms"`
}

// EventsConfig controla la publicación de eventos. Sin brokers se loguean.
type EventsConfig struct {
	KafkaBrokers []string `yaml:"kafka_brokers"`
	Topic        string   `yaml:"topic"`
}

// MetricsConfig controla el servidor de métricas. Vacío = deshabilitado.
type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return &cfg, nil
}

// DefaultDeadline devuelve el plazo por defecto de un mercado nuevo.
func (c *Config) DefaultDeadline() time.Duration {
	return time.Duration(c.Market.DefaultDeadlineHours) * time.Hour
}

// WatchInterval devuelve cada cuánto se buscan mercados vencidos.
func (c *Config) WatchInterval() time.Duration {
	return time.Duration(c.Market.WatchIntervalSeconds) * time.Second
}

// LockTTL devuelve el TTL del lock distribuido.
func (c *Config) LockTTL() time.Duration {
	return time.Duration(c.Lock.TTLMillis) * time.Millisecond
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("STORAGE_DSN"); v != "" {
		cfg.Storage.DSN = v
	}
	// POSTGRES_DSN implica driver postgres
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.Driver = "postgres"
		cfg.Storage.DSN = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Lock.RedisAddr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Events.KafkaBrokers = splitList(v)
	}
	if v := os.Getenv("METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("BETS_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Market.BetsPerMinute = n
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = "sqlite"
	}
	if cfg.Storage.DSN == "" && cfg.Storage.Driver == "sqlite" {
		cfg.Storage.DSN = "predictbot.db"
	}
	if cfg.Market.DefaultDeadlineHours <= 0 {
		cfg.Market.DefaultDeadlineHours = 24
	}
	if cfg.Market.WatchIntervalSeconds <= 0 {
		cfg.Market.WatchIntervalSeconds = 60
	}
	if cfg.Market.LeaderboardSize <= 0 {
		cfg.Market.LeaderboardSize = 10
	}
	if cfg.Lock.Mode == "" {
		cfg.Lock.Mode = "none"
	}
	if cfg.Lock.Mode == "redis" && cfg.Lock.RedisAddr == "" {
		cfg.Lock.RedisAddr = "localhost:6379"
	}
	if cfg.Lock.TTLMillis <= 0 {
		cfg.Lock.TTLMillis = 5000
	}
	if cfg.Events.Topic == "" {
		cfg.Events.Topic = "predictbot.events"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case "sqlite", "memory":
	case "postgres":
		if c.Storage.DSN == "" {
			return fmt.Errorf("storage.dsn required for postgres")
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	switch c.Lock.Mode {
	case "none", "local", "redis":
	default:
		return fmt.Errorf("unknown lock.mode %q", c.Lock.Mode)
	}
	if c.Market.BetsPerMinute < 0 {
		return fmt.Errorf("market.bets_per_minute must be >= 0")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
