package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

const (
	StorageBackendFS = "fs"
	StorageBackendS3 = "s3"
)

// Config is built once at startup and passed to every component that needs
// it; nothing else reads process environment directly.
type Config struct {
	Port            int
	ClientOrigin    string
	JWTSecret       string
	DataDir         string
	MaxUploadSizeMB int
	StepInterval    time.Duration
	LogLevel        string
	LogPretty       bool

	StorageBackend string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3Bucket       string
	S3UseSSL       bool
}

func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("PORT", 4000)
	v.SetDefault("CLIENT_ORIGIN", "http://localhost:5173")
	v.SetDefault("DATA_DIR", "./data")
	v.SetDefault("MAX_UPLOAD_SIZE_MB", 200)
	v.SetDefault("STEP_INTERVAL_MS", 800)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
	v.SetDefault("STORAGE_BACKEND", StorageBackendFS)
	v.SetDefault("S3_BUCKET", "pulse-videos")
	v.SetDefault("S3_USE_SSL", false)

	secret := v.GetString("JWT_SECRET")
	if secret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	cfg := &Config{
		Port:            v.GetInt("PORT"),
		ClientOrigin:    v.GetString("CLIENT_ORIGIN"),
		JWTSecret:       secret,
		DataDir:         v.GetString("DATA_DIR"),
		MaxUploadSizeMB: v.GetInt("MAX_UPLOAD_SIZE_MB"),
		StepInterval:    time.Duration(v.GetInt("STEP_INTERVAL_MS")) * time.Millisecond,
		LogLevel:        v.GetString("LOG_LEVEL"),
		LogPretty:       v.GetBool("LOG_PRETTY"),
		StorageBackend:  v.GetString("STORAGE_BACKEND"),
		S3Endpoint:      v.GetString("S3_ENDPOINT"),
		S3AccessKey:     v.GetString("S3_ACCESS_KEY"),
		S3SecretKey:     v.GetString("S3_SECRET_KEY"),
		S3Bucket:        v.GetString("S3_BUCKET"),
		S3UseSSL:        v.GetBool("S3_USE_SSL"),
	}

	switch cfg.StorageBackend {
	case StorageBackendFS:
	case StorageBackendS3:
		if cfg.S3Endpoint == "" {
			return nil, fmt.Errorf("S3_ENDPOINT is required when STORAGE_BACKEND=s3")
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q", cfg.StorageBackend)
	}

	if cfg.MaxUploadSizeMB <= 0 {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE_MB %d", cfg.MaxUploadSizeMB)
	}

	return cfg, nil
}

// MaxUploadBytes is the upload size ceiling in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadSizeMB) * 1024 * 1024
}
