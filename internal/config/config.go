package config

import (
	"fmt"
	"time"

	env "github.com/caarlos0/env/v11"
)

type Config struct {
	DatabaseURL string        `env:"DATABASE_URL,required"`
	RedisURL    string        `env:"REDIS_URL"`
	JWTSecret   string        `env:"JWT_SECRET,required"`
	JWTExpiry   time.Duration `env:"JWT_EXPIRY" envDefault:"24h"`
	Port        int           `env:"PORT" envDefault:"8080"`
	LogLevel    string        `env:"LOG_LEVEL" envDefault:"info"`
	AppEnv      string        `env:"APP_ENV" envDefault:"production"`
	BcryptCost  int           `env:"BCRYPT_COST" envDefault:"12"`

	// Transfers at or above this amount park at pending_approval until an
	// admin decides. Minor units: 10_000.00 by default.
	ApprovalThreshold int64 `env:"APPROVAL_THRESHOLD" envDefault:"1000000"`

	// Fee schedule, minor units. International fees are percentage-based
	// and clamped to [FeeIntlMin, FeeIntlMax]; card fees are percentage
	// capped at FeeCardMax; domestic and mobile are flat.
	FeeIntlPct  float64 `env:"FEE_INTL_PCT" envDefault:"0.01"`
	FeeIntlMin  int64   `env:"FEE_INTL_MIN" envDefault:"2500"`
	FeeIntlMax  int64   `env:"FEE_INTL_MAX" envDefault:"5000"`
	FeeDomestic int64   `env:"FEE_DOMESTIC" envDefault:"500"`
	FeeCardPct  float64 `env:"FEE_CARD_PCT" envDefault:"0.015"`
	FeeCardMax  int64   `env:"FEE_CARD_MAX" envDefault:"2000"`
	FeeMobile   int64   `env:"FEE_MOBILE" envDefault:"200"`
	FXSpreadPct float64 `env:"FX_SPREAD_PCT" envDefault:"0.005"`

	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS" envDefault:"25"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS" envDefault:"10"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" envDefault:"5m"`
	DBConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME" envDefault:"1m"`
}

func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return &cfg, nil
}
