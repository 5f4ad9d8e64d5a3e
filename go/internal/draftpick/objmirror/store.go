// Package objmirror is the object mirror of draft picks: one flat JSON
// document per pick in a NATS JetStream object store, named draft_{id}.json.
package objmirror

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/mcdev12/draftmirror/go/internal/draftpick/mirror"
	"github.com/mcdev12/draftmirror/go/internal/models"
)

// Bucket is the subset of jetstream.ObjectStore the mirror uses.
type Bucket interface {
	PutBytes(ctx context.Context, name string, data []byte) (*jetstream.ObjectInfo, error)
	GetBytes(ctx context.Context, name string, opts ...jetstream.GetObjectOpt) ([]byte, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, opts ...jetstream.ListObjectsOpt) ([]*jetstream.ObjectInfo, error)
}

// Store implements the object mirror.
type Store struct {
	bucket Bucket
}

// NewStore wraps a JetStream object store.
func NewStore(bucket Bucket) *Store {
	return &Store{bucket: bucket}
}

// PutDocument overwrites the document stored under key.
func (s *Store) PutDocument(ctx context.Context, key string, pick models.DraftPick) error {
	data, err := mirror.EncodeDocument(pick)
	if err != nil {
		return err
	}
	if _, err := s.bucket.PutBytes(ctx, key, data); err != nil {
		return fmt.Errorf("object put %s: %w", key, err)
	}
	return nil
}

// GetDocument reads and decodes the document stored under key.
func (s *Store) GetDocument(ctx context.Context, key string) (*models.DraftPick, error) {
	data, err := s.bucket.GetBytes(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			return nil, fmt.Errorf("object get %s: %w", key, mirror.ErrNotFound)
		}
		return nil, fmt.Errorf("object get %s: %w", key, err)
	}
	return mirror.DecodeDocument(data)
}

// DeleteDocument removes the document stored under key.
func (s *Store) DeleteDocument(ctx context.Context, key string) error {
	if err := s.bucket.Delete(ctx, key); err != nil {
		if errors.Is(err, jetstream.ErrObjectNotFound) {
			return fmt.Errorf("object delete %s: %w", key, mirror.ErrNotFound)
		}
		return fmt.Errorf("object delete %s: %w", key, err)
	}
	return nil
}

// ListKeys returns the names of all live documents, sorted.
func (s *Store) ListKeys(ctx context.Context) ([]string, error) {
	infos, err := s.bucket.List(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoObjectsFound) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("object list: %w", err)
	}

	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		if info == nil || info.Deleted {
			continue
		}
		keys = append(keys, info.Name)
	}
	sort.Strings(keys)
	return keys, nil
}
