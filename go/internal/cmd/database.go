package main

import (
	"context"
	"fmt"
	"time"

	"github.com/mcdev12/draftmirror/go/internal/draftpick/stores"
)

func setupStores(cfg *Config) (*stores.Stores, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	st, err := stores.Open(ctx, cfg.storesConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to open stores: %w", err)
	}
	return st, nil
}
