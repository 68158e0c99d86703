package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvLocal = "local"
	EnvDev   = "dev"
	EnvProd  = "prod"
)

const (
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Env         string
	StoreDriver string
	CatalogPath string

	Server     ServerConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	SeatMapTTL time.Duration
	IdemTTL    time.Duration
}

type ServerConfig struct {
	Host string
	Port int
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}

// New reads the configuration from the environment, loading .env first
// when it exists.
func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	cfg, err := fromEnv()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return cfg, nil
}

func fromEnv() (*Config, error) {
	env := getenv("APP_ENV", EnvLocal)
	switch env {
	case EnvLocal, EnvDev, EnvProd:
	default:
		return nil, fmt.Errorf("invalid APP_ENV %q", env)
	}

	driver := getenv("STORE_DRIVER", StoreRedis)
	switch driver {
	case StoreRedis, StorePostgres, StoreMemory:
	default:
		return nil, fmt.Errorf("invalid STORE_DRIVER %q", driver)
	}

	serverPort, err := getenvInt("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}

	serverCfg := ServerConfig{
		Host: getenv("SERVER_HOST", "localhost"),
		Port: serverPort,
	}

	redisDB, err := getenvInt("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	redisCfg := RedisConfig{
		Addr:     getenv("REDIS_ADDR", "localhost:6379"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	postgresPort, err := getenvInt("POSTGRES_PORT", 5432)
	if err != nil {
		return nil, err
	}

	postgresCfg := PostgresConfig{
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Name:     os.Getenv("POSTGRES_DB"),
		Host:     getenv("POSTGRES_HOST", "localhost"),
		Port:     postgresPort,
		SSLMode:  getenv("POSTGRES_SSLMODE", "disable"),
	}

	if driver == StorePostgres {
		for name, v := range map[string]string{
			"POSTGRES_USER":     postgresCfg.User,
			"POSTGRES_PASSWORD": postgresCfg.Password,
			"POSTGRES_DB":       postgresCfg.Name,
		} {
			if v == "" {
				return nil, fmt.Errorf("missing %s", name)
			}
		}
	}

	seatMapTTL, err := getenvDuration("SEATMAP_CACHE_TTL", 15*time.Second)
	if err != nil {
		return nil, err
	}

	idemTTL, err := getenvDuration("IDEMPOTENCY_TTL", 2*time.Hour)
	if err != nil {
		return nil, err
	}

	return &Config{
		Env:         env,
		StoreDriver: driver,
		CatalogPath: os.Getenv("CATALOG_PATH"),
		Server:      serverCfg,
		Postgres:    postgresCfg,
		Redis:       redisCfg,
		SeatMapTTL:  seatMapTTL,
		IdemTTL:     idemTTL,
	}, nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}

	v, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	if v <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}
	return v, nil
}
