package stores

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftmirror/go/internal/dbconfig"
	"github.com/mcdev12/draftmirror/go/internal/draftpick"
	"github.com/mcdev12/draftmirror/go/internal/models"
)

func memoryConfig() Config {
	return Config{
		DB:            dbconfig.Config{Driver: "sqlite", Path: ":memory:"},
		MirrorBackend: MirrorMemory,
	}
}

func TestOpenMemoryBackend(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, memoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	assert.Nil(t, s.NATS)
	require.NoError(t, s.Ping(ctx))

	app := draftpick.NewApp(s.Authority, s.KeyValue, s.Objects)
	result, err := app.CreateDraftPick(ctx, draftpick.CreateDraftPickRequest{Fields: models.DraftPickFields{
		PickNumber: "(1)",
		ProTeam:    "Orlando Magic",
		PlayerName: "First Pick",
	}})
	require.NoError(t, err)

	got := app.GetDraftPick(ctx, result.ID)
	assert.True(t, got.Authority.Found())
	assert.True(t, got.KeyValue.Found())
	assert.True(t, got.Object.Found())
}

func TestOpenRejectsUnknownBackends(t *testing.T) {
	cfg := memoryConfig()
	cfg.MirrorBackend = "dynamo"
	_, err := Open(context.Background(), cfg)
	assert.ErrorContains(t, err, "unknown mirror backend")

	cfg = memoryConfig()
	cfg.DB.Driver = "mysql"
	_, err = Open(context.Background(), cfg)
	assert.Error(t, err)
}
