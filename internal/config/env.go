package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type BaseEnv struct {
	Env      string `envconfig:"ENV" default:"local"`
	HTTPHost string `envconfig:"HTTP_HOST" default:""`
	HTTPPort string `envconfig:"HTTP_PORT" default:"3100"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"debug"`
	APIKey   string `envconfig:"API_KEY" required:"true"`
}

type StorageEnv struct {
	// Type is one of local, s3 or postgres.
	Type    string `envconfig:"STORAGE_TYPE" default:"local"`
	BaseDir string `envconfig:"STORAGE_BASE_DIR" default:".labelguild/data"`
	// S3 settings (used when Type == "s3")
	S3Bucket string `envconfig:"S3_BUCKET"`
	S3Prefix string `envconfig:"S3_PREFIX" default:"labelguild/"`
	S3Region string `envconfig:"S3_REGION" default:"ap-northeast-1"`
	// DatabaseURL is used when Type == "postgres" for tasks.
	DatabaseURL string `envconfig:"DATABASE_URL"`
}

type CacheEnv struct {
	RedisAddr string        `envconfig:"REDIS_ADDR"`
	TTL       time.Duration `envconfig:"CACHE_TTL" default:"30s"`
}

type KafkaEnv struct {
	Brokers string `envconfig:"KAFKA_BROKERS"`
	Topic   string `envconfig:"KAFKA_TOPIC" default:"labelguild.task-events"`
}

type VAPIDEnv struct {
	VAPIDPublicKey  string `envconfig:"VAPID_PUBLIC_KEY"`
	VAPIDPrivateKey string `envconfig:"VAPID_PRIVATE_KEY"`
	VAPIDContact    string `envconfig:"VAPID_CONTACT" default:"mailto:admin@example.com"`
}

type CatalogEnv struct {
	Path  string `envconfig:"PROJECT_CATALOG"`
	Watch bool   `envconfig:"PROJECT_CATALOG_WATCH" default:"true"`
}

type Env struct {
	BaseEnv
	StorageEnv
	CacheEnv
	KafkaEnv
	VAPIDEnv
	CatalogEnv
}

const namespace = "LABELGUILD"

func LoadEnv() (*Env, error) {
	var env Env
	if err := envconfig.Process(namespace, &env); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}
	if err := env.validate(); err != nil {
		return nil, err
	}
	return &env, nil
}

func (e *Env) validate() error {
	switch e.StorageEnv.Type {
	case "local":
	case "s3":
		if e.S3Bucket == "" {
			return fmt.Errorf("LABELGUILD_S3_BUCKET is required when storage type is s3")
		}
	case "postgres":
		if e.DatabaseURL == "" {
			return fmt.Errorf("LABELGUILD_DATABASE_URL is required when storage type is postgres")
		}
	default:
		return fmt.Errorf("unknown storage type %q", e.StorageEnv.Type)
	}
	return nil
}

func (e *BaseEnv) SlogLevel() slog.Level {
	if e == nil {
		return slog.LevelDebug
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(e.LogLevel)); err != nil {
		return slog.LevelDebug
	}
	return level
}

// BrokerList splits the comma-separated broker setting.
func (e *KafkaEnv) BrokerList() []string {
	var brokers []string
	for _, b := range strings.Split(e.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

func VAPIDEnvFromEnv(env *Env) *VAPIDEnv {
	return &env.VAPIDEnv
}
