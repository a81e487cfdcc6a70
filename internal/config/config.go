package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"30"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	API struct {
		// Empty URL switches the client to mock mode.
		URL     string `env:"URL"`
		Timeout int    `env:"TIMEOUT" envDefault:"0"` // seconds, 0 = no client timeout
	} `envPrefix:"API_"`
	Session struct {
		Secret     string `env:"SECRET,required,notEmpty"`
		CookieName string `env:"COOKIE_NAME" envDefault:"__devlog_session"`
		Expiration int    `env:"EXPIRATION" envDefault:"720"` // hours, 30 days
	} `envPrefix:"SESSION_"`
	Redis struct {
		Host           string `env:"HOST" envDefault:"localhost"`
		Port           int    `env:"PORT" envDefault:"6379"`
		Password       string `env:"PASSWORD"`
		DB             int    `env:"DB" envDefault:"0"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	RabbitMQ struct {
		// Empty DSN disables notifications.
		DSN            string `env:"DSN"`
		Queue          string `env:"QUEUE" envDefault:"email_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Email struct {
		AppURL string `env:"APP_URL" envDefault:"http://localhost:3000"`
		SMTP   struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	App struct {
		HoursGoal     float64 `env:"HOURS_GOAL" envDefault:"20"`
		MaxUploadSize int64   `env:"MAX_UPLOAD_MB" envDefault:"10"`
	} `envPrefix:"APP_"`
	Log struct {
		Level  string `env:"LEVEL" envDefault:"info"`
		Pretty bool   `env:"PRETTY" envDefault:"false"`
	} `envPrefix:"LOG_"`
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) MockMode() bool {
	return c.API.URL == ""
}

func (c *Config) NotificationsEnabled() bool {
	return c.RabbitMQ.DSN != ""
}

func LoadConfig() (*Config, error) {
	// .env is optional; real environment variables win
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// only the first error keeps the log readable
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	return cfg, nil
}
