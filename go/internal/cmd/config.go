package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/draftmirror/go/internal/dbconfig"
	"github.com/mcdev12/draftmirror/go/internal/draftpick/stores"
	"github.com/mcdev12/draftmirror/go/internal/jsconn"
)

// Config is the optional YAML file named by CONFIG_PATH. Environment
// variables override anything set here.
type Config struct {
	LogLevel string `yaml:"log_level"`
	Server   struct {
		Port            string        `yaml:"port"`
		AllowedOrigins  []string      `yaml:"allowed_origins"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Mirrors struct {
		Backend        string `yaml:"backend"`
		NATSURL        string `yaml:"nats_url"`
		KeyValueBucket string `yaml:"kv_bucket"`
		ObjectBucket   string `yaml:"object_bucket"`
	} `yaml:"mirrors"`
}

func defaultConfig() *Config {
	cfg := &Config{LogLevel: "info"}
	cfg.Server.Port = "8080"
	cfg.Server.AllowedOrigins = []string{"*"}
	cfg.Server.ShutdownTimeout = 5 * time.Second
	cfg.Mirrors.Backend = stores.MirrorJetStream
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()
	if path == "" {
		return config, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// applyEnv lets environment variables win over the config file.
func (c *Config) applyEnv() {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	if origins := os.Getenv("CORS_ALLOWED_ORIGINS"); origins != "" {
		c.Server.AllowedOrigins = strings.Split(origins, ",")
	}
	c.Mirrors.Backend = getEnv("MIRROR_BACKEND", c.Mirrors.Backend)
	c.Mirrors.NATSURL = getEnv("NATS_URL", c.Mirrors.NATSURL)
	c.Mirrors.KeyValueBucket = getEnv("KV_BUCKET", c.Mirrors.KeyValueBucket)
	c.Mirrors.ObjectBucket = getEnv("OBJECT_BUCKET", c.Mirrors.ObjectBucket)
}

func (c *Config) storesConfig() stores.Config {
	nats := jsconn.ConfigFromEnv()
	if c.Mirrors.NATSURL != "" {
		nats.URL = c.Mirrors.NATSURL
	}
	if c.Mirrors.KeyValueBucket != "" {
		nats.KeyValueBucket = c.Mirrors.KeyValueBucket
	}
	if c.Mirrors.ObjectBucket != "" {
		nats.ObjectBucket = c.Mirrors.ObjectBucket
	}

	return stores.Config{
		DB:            dbconfig.NewConfigFromEnv(),
		MirrorBackend: c.Mirrors.Backend,
		NATS:          nats,
	}
}
