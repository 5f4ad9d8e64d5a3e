package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/mcdev12/draftmirror/go/clients"
	"github.com/mcdev12/draftmirror/go/clients/draft_api_client"
	"github.com/mcdev12/draftmirror/go/internal/dbconfig"
	"github.com/mcdev12/draftmirror/go/internal/draftpick"
	"github.com/mcdev12/draftmirror/go/internal/draftpick/stores"
	"github.com/mcdev12/draftmirror/go/internal/jsconn"
	"github.com/mcdev12/draftmirror/go/internal/models"
)

const defaultSeedFile = "go/internal/assets/draft_picks.yaml"

// Pick mirrors the YAML seed structure
type Pick struct {
	PickNumber  string `yaml:"pick_number"`
	ProTeam     string `yaml:"pro_team"`
	PlayerName  string `yaml:"player_name"`
	AmateurTeam string `yaml:"amateur_team"`
}

type creator interface {
	CreateDraftPick(ctx context.Context, req draftpick.CreateDraftPickRequest) (*draftpick.CreateResult, error)
}

type summary struct {
	total, inserted, skipped, errs int
}

func main() {
	path := defaultSeedFile
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// 1) Load the YAML snapshot
	picks, err := loadPicks(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// 2) Against a running API when SEED_API_URL is set
	if url := os.Getenv("SEED_API_URL"); url != "" {
		s := seed(ctx, apiCreator{client: draft_api_client.NewDraftApiClient(url)}, picks)
		printSummary(s)
		return
	}

	// 3) Otherwise open every store through the same bootstrap as the API
	st, err := stores.Open(ctx, stores.Config{
		DB:            dbconfig.NewConfigFromEnv(),
		MirrorBackend: os.Getenv("MIRROR_BACKEND"),
		NATS:          jsconn.ConfigFromEnv(),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open stores: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	// Create through the orchestrator so the mirrors are filled too
	printSummary(seed(ctx, draftpick.NewApp(st.Authority, st.KeyValue, st.Objects), picks))
}

func printSummary(s summary) {
	fmt.Printf(
		"Draft picks seed complete: %d total, %d inserted, %d skipped, %d errors\n",
		s.total, s.inserted, s.skipped, s.errs,
	)
}

func loadPicks(path string) ([]Pick, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read YAML: %w", err)
	}
	var picks []Pick
	if err := yaml.Unmarshal(data, &picks); err != nil {
		return nil, fmt.Errorf("unmarshal YAML: %w", err)
	}
	return picks, nil
}

// seed creates every pick. Players that are already drafted are skipped.
func seed(ctx context.Context, app creator, picks []Pick) summary {
	s := summary{total: len(picks)}
	for _, p := range picks {
		_, err := app.CreateDraftPick(ctx, draftpick.CreateDraftPickRequest{Fields: models.DraftPickFields{
			PickNumber:  p.PickNumber,
			ProTeam:     p.ProTeam,
			PlayerName:  p.PlayerName,
			AmateurTeam: p.AmateurTeam,
		}})
		switch {
		case err == nil:
			s.inserted++
		case errors.Is(err, draftpick.ErrConflict):
			s.skipped++
		default:
			fmt.Fprintf(os.Stderr, "error inserting pick %s: %v\n", p.PlayerName, err)
			s.errs++
		}
	}
	return s
}

// apiCreator seeds through the HTTP API instead of opening the stores.
type apiCreator struct {
	client *draft_api_client.DraftApiClient
}

func (a apiCreator) CreateDraftPick(ctx context.Context, req draftpick.CreateDraftPickRequest) (*draftpick.CreateResult, error) {
	id, err := a.client.CreateDraftPick(ctx, req.Fields)
	if err != nil {
		var apiErr *clients.APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict {
			return nil, fmt.Errorf("%w: %w", draftpick.ErrConflict, err)
		}
		return nil, err
	}
	return &draftpick.CreateResult{ID: id}, nil
}
