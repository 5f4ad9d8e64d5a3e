// Package kvmirror is the key-value mirror of draft picks, backed by a NATS
// JetStream KeyValue bucket keyed by the decimal pick id.
package kvmirror

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/mcdev12/draftmirror/go/internal/draftpick/mirror"
	"github.com/mcdev12/draftmirror/go/internal/models"
)

// Bucket is the subset of jetstream.KeyValue the mirror uses.
type Bucket interface {
	Get(ctx context.Context, key string) (jetstream.KeyValueEntry, error)
	Put(ctx context.Context, key string, value []byte) (uint64, error)
	Delete(ctx context.Context, key string, opts ...jetstream.KVDeleteOpt) error
	ListKeys(ctx context.Context, opts ...jetstream.WatchOpt) (jetstream.KeyLister, error)
}

// Store implements the key-value mirror.
type Store struct {
	bucket Bucket
}

// NewStore wraps a JetStream KeyValue bucket.
func NewStore(bucket Bucket) *Store {
	return &Store{bucket: bucket}
}

// PutDraftPick writes the full record under its id, replacing any previous value.
func (s *Store) PutDraftPick(ctx context.Context, pick models.DraftPick) error {
	value, err := mirror.EncodeAttributes(pick)
	if err != nil {
		return err
	}
	if _, err := s.bucket.Put(ctx, mirror.KeyValueKey(pick.ID), value); err != nil {
		return fmt.Errorf("kv put %d: %w", pick.ID, err)
	}
	return nil
}

// GetDraftPick reads the record stored under id.
func (s *Store) GetDraftPick(ctx context.Context, id int64) (*models.DraftPick, error) {
	entry, err := s.bucket.Get(ctx, mirror.KeyValueKey(id))
	if err != nil {
		if isMissing(err) {
			return nil, fmt.Errorf("kv get %d: %w", id, mirror.ErrNotFound)
		}
		return nil, fmt.Errorf("kv get %d: %w", id, err)
	}
	return mirror.DecodeAttributes(entry.Value())
}

// DeleteDraftPick removes the record stored under id. JetStream deletes are
// markers that succeed on absent keys, so absence is checked first.
func (s *Store) DeleteDraftPick(ctx context.Context, id int64) error {
	key := mirror.KeyValueKey(id)
	if _, err := s.bucket.Get(ctx, key); err != nil {
		if isMissing(err) {
			return fmt.Errorf("kv delete %d: %w", id, mirror.ErrNotFound)
		}
		return fmt.Errorf("kv delete %d: %w", id, err)
	}
	if err := s.bucket.Delete(ctx, key); err != nil {
		return fmt.Errorf("kv delete %d: %w", id, err)
	}
	return nil
}

// ScanDraftPicks returns every record in the bucket ordered by id.
func (s *Store) ScanDraftPicks(ctx context.Context) ([]models.DraftPick, error) {
	lister, err := s.bucket.ListKeys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []models.DraftPick{}, nil
		}
		return nil, fmt.Errorf("kv list keys: %w", err)
	}
	defer lister.Stop()

	var keys []string
	for key := range lister.Keys() {
		keys = append(keys, key)
	}

	picks := make([]models.DraftPick, 0, len(keys))
	for _, key := range keys {
		entry, err := s.bucket.Get(ctx, key)
		if err != nil {
			// deleted between listing and reading
			if isMissing(err) {
				continue
			}
			return nil, fmt.Errorf("kv scan %s: %w", key, err)
		}
		pick, err := mirror.DecodeAttributes(entry.Value())
		if err != nil {
			return nil, fmt.Errorf("kv scan %s: %w", key, err)
		}
		picks = append(picks, *pick)
	}

	sort.Slice(picks, func(i, j int) bool { return picks[i].ID < picks[j].ID })
	return picks, nil
}

func isMissing(err error) bool {
	return errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrKeyDeleted)
}
