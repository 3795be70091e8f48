package config

import (
	"fmt"

	env "github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL string `env:"DATABASE_URL,required"`
	RedisURL    string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	JWTSecret   string `env:"JWT_SECRET,required"`
	JWTExpiryH  int    `env:"JWT_EXPIRY_H" envDefault:"24"`
	Port        int    `env:"PORT" envDefault:"8080"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string `env:"APP_ENV" envDefault:"production"`

	// The guard TTL backstops a crashed transfer that never released its
	// marker; it must exceed the worst-case transaction duration.
	TransferGuardTTLS int `env:"TRANSFER_GUARD_TTL_S" envDefault:"60"`
	LoginMaxAttempts  int `env:"LOGIN_MAX_ATTEMPTS" envDefault:"5"`
	LoginLockoutTTLS  int `env:"LOGIN_LOCKOUT_TTL_S" envDefault:"900"`
	BalanceCacheTTLS  int `env:"BALANCE_CACHE_TTL_S" envDefault:"60"`

	DBMaxOpenConns     int `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns     int `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetimeS int `env:"DB_CONN_MAX_LIFETIME_S" envDefault:"300"`
	DBConnMaxIdleTimeS int `env:"DB_CONN_MAX_IDLE_TIME_S" envDefault:"60"`
}

func Load() (*Config, error) {
	// a .env file is optional; real environments set variables directly
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
