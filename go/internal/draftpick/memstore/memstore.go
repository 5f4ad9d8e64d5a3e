// Package memstore provides in-memory key-value and object mirrors. They back
// MIRROR_BACKEND=memory for local runs and let tests inject store failures.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/mcdev12/draftmirror/go/internal/draftpick/mirror"
	"github.com/mcdev12/draftmirror/go/internal/models"
)

// Op names a mirror operation that can be made to fail.
type Op string

const (
	OpPut    Op = "put"
	OpGet    Op = "get"
	OpDelete Op = "delete"
	OpList   Op = "list"
)

type faults struct {
	mu   sync.Mutex
	errs map[Op]error
}

// Fail makes every subsequent call of op return err until Heal is called.
func (f *faults) Fail(op Op, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errs == nil {
		f.errs = map[Op]error{}
	}
	f.errs[op] = err
}

// Heal clears an injected failure.
func (f *faults) Heal(op Op) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.errs, op)
}

func (f *faults) check(op Op) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.errs[op]
}

// KeyValue is an in-memory key-value mirror.
type KeyValue struct {
	faults
	mu      sync.RWMutex
	records map[int64]models.DraftPick
}

// NewKeyValue creates an empty key-value mirror.
func NewKeyValue() *KeyValue {
	return &KeyValue{records: map[int64]models.DraftPick{}}
}

func (s *KeyValue) PutDraftPick(_ context.Context, pick models.DraftPick) error {
	if err := s.check(OpPut); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[pick.ID] = pick
	return nil
}

func (s *KeyValue) GetDraftPick(_ context.Context, id int64) (*models.DraftPick, error) {
	if err := s.check(OpGet); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	pick, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("kv get %d: %w", id, mirror.ErrNotFound)
	}
	return &pick, nil
}

func (s *KeyValue) DeleteDraftPick(_ context.Context, id int64) error {
	if err := s.check(OpDelete); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("kv delete %d: %w", id, mirror.ErrNotFound)
	}
	delete(s.records, id)
	return nil
}

func (s *KeyValue) ScanDraftPicks(_ context.Context) ([]models.DraftPick, error) {
	if err := s.check(OpList); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	picks := make([]models.DraftPick, 0, len(s.records))
	for _, pick := range s.records {
		picks = append(picks, pick)
	}
	sort.Slice(picks, func(i, j int) bool { return picks[i].ID < picks[j].ID })
	return picks, nil
}

// Objects is an in-memory object mirror storing encoded documents by key.
type Objects struct {
	faults
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewObjects creates an empty object mirror.
func NewObjects() *Objects {
	return &Objects{docs: map[string][]byte{}}
}

func (s *Objects) PutDocument(_ context.Context, key string, pick models.DraftPick) error {
	if err := s.check(OpPut); err != nil {
		return err
	}
	data, err := mirror.EncodeDocument(pick)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[key] = data
	return nil
}

func (s *Objects) GetDocument(_ context.Context, key string) (*models.DraftPick, error) {
	if err := s.check(OpGet); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.docs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("object get %s: %w", key, mirror.ErrNotFound)
	}
	return mirror.DecodeDocument(data)
}

func (s *Objects) DeleteDocument(_ context.Context, key string) error {
	if err := s.check(OpDelete); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[key]; !ok {
		return fmt.Errorf("object delete %s: %w", key, mirror.ErrNotFound)
	}
	delete(s.docs, key)
	return nil
}

func (s *Objects) ListKeys(_ context.Context) ([]string, error) {
	if err := s.check(OpList); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.docs))
	for key := range s.docs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}
