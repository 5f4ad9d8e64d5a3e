// Package jsconn connects to NATS JetStream and provisions the buckets that
// back the draft pick mirrors.
package jsconn

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"
)

type Config struct {
	URL            string
	KeyValueBucket string
	ObjectBucket   string
	MaxReconnects  int
	ReconnectWait  time.Duration
	Replicas       int // Number of replicas for each bucket
}

func DefaultConfig() Config {
	return Config{
		URL:            nats.DefaultURL,
		KeyValueBucket: "draft_picks",
		ObjectBucket:   "draft-documents",
		MaxReconnects:  -1, // Infinite
		ReconnectWait:  2 * time.Second,
		Replicas:       1,
	}
}

// ConfigFromEnv starts from DefaultConfig and applies NATS_URL, KV_BUCKET,
// OBJECT_BUCKET and NATS_REPLICAS.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("NATS_URL"); v != "" {
		cfg.URL = v
	}
	if v := os.Getenv("KV_BUCKET"); v != "" {
		cfg.KeyValueBucket = v
	}
	if v := os.Getenv("OBJECT_BUCKET"); v != "" {
		cfg.ObjectBucket = v
	}
	if v := os.Getenv("NATS_REPLICAS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Replicas = n
		}
	}
	return cfg
}

// Conn is a NATS connection with a JetStream context.
type Conn struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config Config
}

// Connect dials NATS and creates the JetStream context.
func Connect(cfg Config) (*Conn, error) {
	opts := []nats.Option{
		nats.Name("draftmirror"),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	return &Conn{nc: nc, js: js, config: cfg}, nil
}

// EnsureKeyValue opens the configured KV bucket, creating it on first use.
func (c *Conn) EnsureKeyValue(ctx context.Context) (jetstream.KeyValue, error) {
	kv, err := c.js.KeyValue(ctx, c.config.KeyValueBucket)
	if err == nil {
		return kv, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, fmt.Errorf("open kv bucket %s: %w", c.config.KeyValueBucket, err)
	}

	kv, err = c.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      c.config.KeyValueBucket,
		Description: "Draft pick key-value mirror",
		Storage:     jetstream.FileStorage,
		Replicas:    c.config.Replicas,
	})
	if err != nil {
		return nil, fmt.Errorf("create kv bucket %s: %w", c.config.KeyValueBucket, err)
	}
	log.Info().Str("bucket", c.config.KeyValueBucket).Msg("created JetStream KV bucket")
	return kv, nil
}

// EnsureObjectStore opens the configured object bucket, creating it on first use.
func (c *Conn) EnsureObjectStore(ctx context.Context) (jetstream.ObjectStore, error) {
	store, err := c.js.ObjectStore(ctx, c.config.ObjectBucket)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, jetstream.ErrBucketNotFound) {
		return nil, fmt.Errorf("open object bucket %s: %w", c.config.ObjectBucket, err)
	}

	store, err = c.js.CreateObjectStore(ctx, jetstream.ObjectStoreConfig{
		Bucket:      c.config.ObjectBucket,
		Description: "Draft pick document mirror",
		Storage:     jetstream.FileStorage,
		Replicas:    c.config.Replicas,
	})
	if err != nil {
		return nil, fmt.Errorf("create object bucket %s: %w", c.config.ObjectBucket, err)
	}
	log.Info().Str("bucket", c.config.ObjectBucket).Msg("created JetStream object bucket")
	return store, nil
}

// IsConnected reports the state of the underlying NATS connection.
func (c *Conn) IsConnected() bool {
	return c != nil && c.nc != nil && c.nc.IsConnected()
}

func (c *Conn) Close() error {
	if c.nc != nil {
		c.nc.Close()
	}
	return nil
}
