package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Debug      bool   `env:"DEBUG" envDefault:"false"`
	Port       string `env:"PORT" envDefault:"3000"`
	MetricPort string `env:"METRIC_PORT" envDefault:"9090"`
	JWTSecret  string `env:"JWT_SECRET,required,notEmpty"`

	Platform PlatformConfig
	Postgres PostgresConfig
	Rooms    RoomsConfig
	Spam     SpamConfig
}

type PlatformConfig struct {
	Token      string `env:"PLATFORM_TOKEN,required,notEmpty"`
	APIURL     string `env:"PLATFORM_API_URL" envDefault:"https://platform.local/api/v10"`
	GatewayURL string `env:"PLATFORM_GATEWAY_URL" envDefault:"wss://platform.local/gateway"`
}

type PostgresConfig struct {
	URL string `env:"POSTGRES_URL"`

	Host     string `env:"POSTGRES_HOST" envDefault:"localhost"`
	Port     int    `env:"POSTGRES_PORT" envDefault:"5432"`
	User     string `env:"POSTGRES_USER" envDefault:"postgres"`
	Password string `env:"POSTGRES_PASSWORD" envDefault:"postgres"`
	Name     string `env:"POSTGRES_NAME" envDefault:"roomwarden"`
	SSL      string `env:"POSTGRES_SSL" envDefault:"disable"`
}

func (p *PostgresConfig) DSN() string {
	if p.URL != "" {
		return p.URL
	}

	return fmt.Sprintf("postgresql://%s:%s@%s:%d/%s?sslmode=%s",
		p.User,
		p.Password,
		p.Host,
		p.Port,
		p.Name,
		p.SSL,
	)
}

type RoomsConfig struct {
	NamingDeadlineSeconds int `env:"ROOM_NAMING_DEADLINE_SECONDS" envDefault:"60"`
	CreationDelaySeconds  int `env:"ROOM_CREATION_DELAY_SECONDS" envDefault:"1"`
	UnmuteGraceSeconds    int `env:"UNMUTE_GRACE_SECONDS" envDefault:"3"`
	WatchdogTickSeconds   int `env:"DEADLINE_WATCHDOG_TICK_SECONDS" envDefault:"10"`
}

func (r *RoomsConfig) NamingDeadline() time.Duration {
	return time.Duration(r.NamingDeadlineSeconds) * time.Second
}

func (r *RoomsConfig) CreationDelay() time.Duration {
	return time.Duration(r.CreationDelaySeconds) * time.Second
}

func (r *RoomsConfig) UnmuteGrace() time.Duration {
	return time.Duration(r.UnmuteGraceSeconds) * time.Second
}

func (r *RoomsConfig) WatchdogTick() time.Duration {
	return time.Duration(r.WatchdogTickSeconds) * time.Second
}

type SpamConfig struct {
	PromptThreshold       int `env:"SPAM_PROMPT_THRESHOLD" envDefault:"5"`
	TimeoutThreshold      int `env:"SPAM_TIMEOUT_THRESHOLD" envDefault:"10"`
	WindowSeconds         int `env:"SPAM_WINDOW_SECONDS" envDefault:"60"`
	PromptCooldownSeconds int `env:"SPAM_PROMPT_COOLDOWN_SECONDS" envDefault:"300"`
	ResetDays             int `env:"SPAM_RESET_DAYS" envDefault:"30"`
}

func (s *SpamConfig) Window() time.Duration {
	return time.Duration(s.WindowSeconds) * time.Second
}

func (s *SpamConfig) PromptCooldown() time.Duration {
	return time.Duration(s.PromptCooldownSeconds) * time.Second
}

func New() (*Config, error) {
	c, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return &c, nil
}
