package main

import (
	"github.com/mcdev12/draftmirror/go/internal/draftpick"
	"github.com/mcdev12/draftmirror/go/internal/draftpick/stores"
)

type Services struct {
	DraftPicks *draftpick.Service
	Metrics    *draftpick.StageMetrics
	Health     *HealthChecker
}

func setupServices(st *stores.Stores) *Services {
	// Wire up dependency injection chain
	// Stores → App layer → Service layer
	metrics := draftpick.NewStageMetrics()
	app := draftpick.NewApp(st.Authority, st.KeyValue, st.Objects, draftpick.WithMetrics(metrics))

	health := NewHealthChecker(st)
	if st.NATS != nil {
		health.WithNATS(st.NATS)
	}

	return &Services{
		DraftPicks: draftpick.NewService(app),
		Metrics:    metrics,
		Health:     health,
	}
}
