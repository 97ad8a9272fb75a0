package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	// Instance scopes the persisted batch document so several routers can
	// share one database.
	Instance       string `env:"INSTANCE_ID" envDefault:"default"`
	DefaultBackend string `env:"DEFAULT_BACKEND" envDefault:"grocy"`

	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DATABASE_"`
	Catalog  CatalogConfig  `envPrefix:"CATALOG_"`
	Grocy    GrocyConfig    `envPrefix:"GROCY_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
}

type ServerConfig struct {
	Addr string `env:"ADDR" envDefault:"0.0.0.0:8080"`
}

type DatabaseConfig struct {
	URI      string `env:"URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"DATABASE" envDefault:"barcode_router"`
}

type CatalogConfig struct {
	BaseURL string        `env:"BASE_URL" envDefault:"https://api.upcitemdb.com/prod/trial/lookup"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type GrocyConfig struct {
	URL     string        `env:"URL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type KafkaConfig struct {
	Enabled bool     `env:"ENABLED" envDefault:"false"`
	Brokers []string `env:"BROKERS" envDefault:"localhost:9092"`
	Topic   string   `env:"TOPIC" envDefault:"barcode.scans"`
	GroupID string   `env:"GROUP_ID" envDefault:"barcode-router"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}
