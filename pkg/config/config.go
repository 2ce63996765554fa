// Package config defines the application's environment-driven configuration.
// All policy constants (fee rate, lockout threshold, lock duration, signing
// secret) live here; nothing is hardcoded at the point of use.
package config

import (
	"time"
)

type DB struct {
	Url string `envconfig:"URL"`
}

type Jwt struct {
	Secret string        `envconfig:"SECRET" required:"true"`
	Expiry time.Duration `envconfig:"EXPIRY" default:"1h"`
}

// Bank carries the business policy constants. The defaults are the
// reconciled policy: 2% transfer fee, lockout after 3 failed attempts,
// 30-minute lock.
type Bank struct {
	TransferFeeRate  float64       `envconfig:"TRANSFER_FEE_RATE" default:"0.02"`
	LockoutThreshold int           `envconfig:"LOCKOUT_THRESHOLD" default:"3"`
	LockDuration     time.Duration `envconfig:"LOCK_DURATION" default:"30m"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[pinbank]"`
}

type Server struct {
	Host string `envconfig:"HOST" default:"localhost"`
	Port int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Jwt       *Jwt       `envconfig:"JWT"`
	Bank      *Bank      `envconfig:"BANK"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
}
