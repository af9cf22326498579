package config

import (
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`

	// IngestSecret is the shared secret producers present on X-Ingest-Token.
	IngestSecret string `envconfig:"INGEST_SECRET" required:"true"`

	// MatchWindow bounds how far back the alert matcher looks after a batch.
	MatchWindow time.Duration `envconfig:"MATCH_WINDOW" default:"15m"`

	// TrustInterval is the sweep interval of the source trust worker.
	TrustInterval time.Duration `envconfig:"TRUST_INTERVAL" default:"10m"`

	BreakerThreshold int           `envconfig:"BREAKER_THRESHOLD" default:"3"`
	BreakerCoolDown  time.Duration `envconfig:"BREAKER_COOLDOWN" default:"30s"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"farewatch-payloads"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("FAREWATCH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}
