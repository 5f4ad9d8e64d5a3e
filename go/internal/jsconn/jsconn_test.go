package jsconn

import (
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, nats.DefaultURL, cfg.URL)
	assert.Equal(t, "draft_picks", cfg.KeyValueBucket)
	assert.Equal(t, "draft-documents", cfg.ObjectBucket)
	assert.Equal(t, -1, cfg.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.ReconnectWait)
	assert.Equal(t, 1, cfg.Replicas)
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("NATS_URL", "nats://nats.internal:4222")
	t.Setenv("KV_BUCKET", "picks_kv")
	t.Setenv("OBJECT_BUCKET", "picks-docs")
	t.Setenv("NATS_REPLICAS", "3")

	cfg := ConfigFromEnv()
	assert.Equal(t, "nats://nats.internal:4222", cfg.URL)
	assert.Equal(t, "picks_kv", cfg.KeyValueBucket)
	assert.Equal(t, "picks-docs", cfg.ObjectBucket)
	assert.Equal(t, 3, cfg.Replicas)
}

func TestConfigFromEnvIgnoresBadReplicas(t *testing.T) {
	t.Setenv("NATS_REPLICAS", "zero")
	assert.Equal(t, 1, ConfigFromEnv().Replicas)
}

func TestNilConnIsNotConnected(t *testing.T) {
	var c *Conn
	assert.False(t, c.IsConnected())
}

func TestConnectFailsWithoutServer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URL = "nats://127.0.0.1:1"
	cfg.MaxReconnects = 0

	_, err := Connect(cfg)
	assert.Error(t, err)
}
