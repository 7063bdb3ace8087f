package config

import (
	"flag"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Redis struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

type Config struct {
	Env         string        `env:"ENV" envDefault:"development"`
	Host        string        `env:"SERVER_HOST" envDefault:"localhost"`
	Port        int           `env:"SERVER_PORT"`
	Debug       bool          `env:"DEBUG" envDefault:"false"`
	DBDsn       string        `env:"DB_DSN"`
	MigratePath string        `env:"MIGRATE_PATH" envDefault:"migrations"`
	JWTSecret   string        `env:"JWT_SECRET" envDefault:"VerySecurKey2000Cat"`
	HashCost    int           `env:"BCRYPT_COST" envDefault:"12"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	Redis       Redis

	// Addr is host:port, filled in after flags are parsed.
	Addr string `env:"-"`
}

func (c Config) Production() bool {
	return c.Env == "production"
}

// ReadConfig loads .env, then the environment, then args, each layer
// overriding the previous one. defaultPort is used when nothing sets a port.
func ReadConfig(args []string, defaultPort int) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}

	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.StringVar(&cfg.Host, "addr", cfg.Host, "flag to set the server startup host")
	fs.IntVar(&cfg.Port, "port", cfg.Port, "flag to set the server startup port")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "flag to set Debug logger level")
	fs.StringVar(&cfg.DBDsn, "db", cfg.DBDsn, "database connection addres, memory storage when empty")
	fs.StringVar(&cfg.MigratePath, "m", cfg.MigratePath, "path to migrations")
	fs.StringVar(&cfg.Redis.Addr, "redis", cfg.Redis.Addr, "redis address for sessions, memory sessions when empty")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if cfg.HashCost < 4 || cfg.HashCost > 31 {
		return nil, fmt.Errorf("bcrypt cost %d out of range 4..31", cfg.HashCost)
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, fmt.Errorf("invalid port %d", cfg.Port)
	}
	cfg.Addr = fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	return cfg, nil
}
