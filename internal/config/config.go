package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	MailProviderLog    = "log"
	MailProviderResend = "resend"
	MailProviderSMTP   = "smtp"
)

// Config is the runtime configuration, read from the environment after
// bootstrap.Loadenv has merged any .env file.
type Config struct {
	AppEnv         string `env:"APP_ENV" envDefault:"production"`
	HTTPAddr       string `env:"HTTP_ADDR" envDefault:":8080"`
	FrontendOrigin string `env:"FRONTEND_ORIGIN" envDefault:"http://localhost:5173"`

	MongoURI      string `env:"MONGO_URI,required,notEmpty"`
	MongoDatabase string `env:"MONGO_DATABASE" envDefault:"fittrack"`
	RedisURL      string `env:"REDIS_URL"`

	JWTSecret      string        `env:"JWT_SECRET,required,notEmpty"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	CookieDomain   string        `env:"COOKIE_DOMAIN"`
	OTPTTL         time.Duration `env:"OTP_TTL" envDefault:"10m"`
	ResetTicketTTL time.Duration `env:"RESET_TICKET_TTL" envDefault:"10m"`
	BcryptCost     int           `env:"BCRYPT_COST" envDefault:"10"`

	SweepInterval  time.Duration `env:"SWEEP_INTERVAL" envDefault:"5m"`
	RBACPolicyFile string        `env:"RBAC_POLICY_FILE"`
	AuthRateLimit  float64       `env:"AUTH_RATE_LIMIT" envDefault:"5"`
	AuthRateBurst  int           `env:"AUTH_RATE_BURST" envDefault:"10"`

	Mail   MailConfig   `envPrefix:"MAIL_"`
	Resend ResendConfig `envPrefix:"RESEND_"`
	SMTP   SMTPConfig   `envPrefix:"SMTP_"`
}

type MailConfig struct {
	Provider string `env:"PROVIDER" envDefault:"log"`
	From     string `env:"FROM" envDefault:"FitTrack <no-reply@fittrack.local>"`
}

type ResendConfig struct {
	APIKey string `env:"API_KEY"`
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT" envDefault:"587"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
}

// Load parses the environment into a Config and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.SessionTTL <= 0 || c.OTPTTL <= 0 || c.ResetTicketTTL <= 0 {
		return errors.New("session, otp and reset ticket ttl must be positive")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET must not be empty")
	}
	switch c.Mail.Provider {
	case MailProviderLog:
		if !c.IsDevelopment() {
			return errors.New("the log mail provider only runs with APP_ENV=development")
		}
	case MailProviderResend:
		if c.Resend.APIKey == "" {
			return errors.New("RESEND_API_KEY is required for the resend mail provider")
		}
	case MailProviderSMTP:
		if c.SMTP.Host == "" {
			return errors.New("SMTP_HOST is required for the smtp mail provider")
		}
	default:
		return fmt.Errorf("unknown mail provider %q", c.Mail.Provider)
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
