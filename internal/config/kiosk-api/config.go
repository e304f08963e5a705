package kiosk_api_config

import (
	"time"

	"github.com/foyerhq/foyer/internal/obs"
	pg "github.com/foyerhq/foyer/internal/repository/postgres"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

func (a *App) Production() bool { return a.Env == "prod" || a.Env == "production" }

type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() obs.OTELConfig {
	return obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

type KafkaCfg struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type OutboxCfg struct {
	Workers       int           `mapstructure:"workers"`
	BatchSize     int           `mapstructure:"batch_size"`
	WaitTime      time.Duration `mapstructure:"wait_time"`
	InProgressTTL time.Duration `mapstructure:"in_progress_ttl"`
}

// SignOut configures token issuance. Secret has no default on purpose: a
// service signing tokens with a guessable key is worse than one that refuses
// to start.
type SignOut struct {
	Secret        string        `mapstructure:"secret"`
	TTL           time.Duration `mapstructure:"ttl"`
	DefaultRegion string        `mapstructure:"default_region"`
}

type Security struct {
	PublicURL string `mapstructure:"public_url"`
}

type Config struct {
	App      App       `mapstructure:"app"`
	Server   Server    `mapstructure:"server"`
	DB       pg.Config `mapstructure:"db"`
	OTEL     OTEL      `mapstructure:"otel"`
	Log      Log       `mapstructure:"log"`
	Kafka    KafkaCfg  `mapstructure:"kafka"`
	Outbox   OutboxCfg `mapstructure:"outbox"`
	SignOut  SignOut   `mapstructure:"signout"`
	Security Security  `mapstructure:"security"`
}

func (c *Config) AsLoggerConfig() obs.LogConfig {
	return obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    "foyer/kiosk-api",
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}
