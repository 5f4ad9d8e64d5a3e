package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftmirror/go/clients/draft_api_client"
	"github.com/mcdev12/draftmirror/go/internal/dbconfig"
	"github.com/mcdev12/draftmirror/go/internal/draftpick"
	"github.com/mcdev12/draftmirror/go/internal/draftpick/stores"
)

func TestLoadPicks(t *testing.T) {
	picks, err := loadPicks(filepath.Join("..", "..", "assets", "draft_picks.yaml"))
	require.NoError(t, err)
	require.NotEmpty(t, picks)
	for _, p := range picks {
		assert.NotEmpty(t, p.PlayerName)
		assert.NotEmpty(t, p.ProTeam)
	}

	_, err = loadPicks(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "read YAML")

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("pick_number: [1"), 0o600))
	_, err = loadPicks(bad)
	assert.ErrorContains(t, err, "unmarshal YAML")
}

func TestSeedSkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	st, err := stores.Open(ctx, stores.Config{
		DB:            dbconfig.Config{Driver: "sqlite", Path: ":memory:"},
		MirrorBackend: stores.MirrorMemory,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	app := draftpick.NewApp(st.Authority, st.KeyValue, st.Objects)
	picks := []Pick{
		{PickNumber: "(1)", ProTeam: "Orlando Magic", PlayerName: "A"},
		{PickNumber: "(2)", ProTeam: "Utah Jazz", PlayerName: "B", AmateurTeam: "BYU"},
		{PickNumber: "(3)", ProTeam: "Utah Jazz", PlayerName: "A"},
		{PickNumber: "", ProTeam: "Utah Jazz", PlayerName: "C"},
	}

	s := seed(ctx, app, picks)
	assert.Equal(t, summary{total: 4, inserted: 2, skipped: 1, errs: 1}, s)

	list := app.ListDraftPicks(ctx)
	assert.Len(t, list.Authority, 2)
	assert.Len(t, list.KeyValue, 2)
	assert.Len(t, list.Objects, 2)
}

func TestSeedThroughAPI(t *testing.T) {
	ctx := context.Background()
	st, err := stores.Open(ctx, stores.Config{
		DB:            dbconfig.Config{Driver: "sqlite", Path: ":memory:"},
		MirrorBackend: stores.MirrorMemory,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	api := http.NewServeMux()
	draftpick.NewService(draftpick.NewApp(st.Authority, st.KeyValue, st.Objects)).RegisterRoutes(api)
	mux := http.NewServeMux()
	mux.Handle("/api/v1/", http.StripPrefix("/api/v1", api))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := draft_api_client.NewDraftApiClient(srv.URL)
	client.SetHTTPClient(srv.Client())

	picks := []Pick{
		{PickNumber: "(1)", ProTeam: "Orlando Magic", PlayerName: "A"},
		{PickNumber: "(2)", ProTeam: "Utah Jazz", PlayerName: "A"},
	}
	s := seed(ctx, apiCreator{client: client}, picks)
	assert.Equal(t, summary{total: 2, inserted: 1, skipped: 1}, s)
}
