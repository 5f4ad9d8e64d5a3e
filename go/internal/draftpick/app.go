// Package draftpick keeps one logical draft pick consistent, or detectably
// inconsistent, across three stores: the relational identity authority, a
// key-value mirror and an object mirror.
//
// The authority allocates ids and decides existence. Creates favor handing
// back the authoritative id, so mirror writes are best-effort. Updates and
// deletes are gated on both mirrors holding the record, then applied
// authority first; a mirror failure after that point is reported as a
// partial failure and the authority change stands.
package draftpick

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftmirror/go/internal/draftpick/authority"
	"github.com/mcdev12/draftmirror/go/internal/draftpick/mirror"
	"github.com/mcdev12/draftmirror/go/internal/models"
)

// Stage names, in the order the operations run them.
const (
	StageValidate        = "request.validate"
	StageCheckDuplicate  = "authority.check_duplicate"
	StageAuthorityInsert = "authority.insert"
	StageAuthorityExists = "authority.exists"
	StageObjectExists    = "object.exists"
	StageKeyValueExists  = "kv.exists"
	StageAuthorityUpdate = "authority.update"
	StageAuthorityDelete = "authority.delete"
	StageObjectPut       = "object.put"
	StageKeyValuePut     = "kv.put"
	StageObjectDelete    = "object.delete"
	StageKeyValueDelete  = "kv.delete"
)

// Authority defines what the app layer needs from the identity authority
type Authority interface {
	CreateDraftPick(ctx context.Context, fields models.DraftPickFields) (int64, error)
	GetDraftPick(ctx context.Context, id int64) (*models.DraftPick, error)
	FindByPlayerName(ctx context.Context, name string) (*models.DraftPick, error)
	UpdateDraftPick(ctx context.Context, id int64, fields models.DraftPickFields) error
	DeleteDraftPick(ctx context.Context, id int64) error
	ListDraftPicks(ctx context.Context) ([]models.DraftPick, error)
}

// KeyValueMirror defines what the app layer needs from the key-value mirror
type KeyValueMirror interface {
	PutDraftPick(ctx context.Context, pick models.DraftPick) error
	GetDraftPick(ctx context.Context, id int64) (*models.DraftPick, error)
	DeleteDraftPick(ctx context.Context, id int64) error
	ScanDraftPicks(ctx context.Context) ([]models.DraftPick, error)
}

// ObjectMirror defines what the app layer needs from the object mirror
type ObjectMirror interface {
	PutDocument(ctx context.Context, key string, pick models.DraftPick) error
	GetDocument(ctx context.Context, key string) (*models.DraftPick, error)
	DeleteDocument(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)
}

// Option configures an App.
type Option func(*App)

// WithClock replaces the real clock, mostly for tests.
func WithClock(clock clockwork.Clock) Option {
	return func(a *App) { a.clock = clock }
}

// WithMetrics records every pipeline stage into m.
func WithMetrics(m MetricsCollector) Option {
	return func(a *App) { a.metrics = m }
}

// App is the fan-out orchestrator.
type App struct {
	authority Authority
	kv        KeyValueMirror
	objects   ObjectMirror
	clock     clockwork.Clock
	metrics   MetricsCollector
}

// NewApp creates a new draft pick App
func NewApp(authority Authority, kv KeyValueMirror, objects ObjectMirror, opts ...Option) *App {
	a := &App{
		authority: authority,
		kv:        kv,
		objects:   objects,
		clock:     clockwork.NewRealClock(),
		metrics:   &NoOpMetricsCollector{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *App) pipeline(op string, stages ...Stage) *Pipeline {
	return NewPipeline(op, a.clock, a.metrics, stages...)
}

// CreateDraftPick inserts the pick into the authority and then copies it to
// both mirrors. Mirror failures are logged and never fail the request.
func (a *App) CreateDraftPick(ctx context.Context, req CreateDraftPickRequest) (*CreateResult, error) {
	var id int64

	trace, err := a.pipeline("create",
		Stage{Name: StageValidate, Store: StoreRequest, Run: func(context.Context) error {
			return validateFields(req.Fields)
		}},
		Stage{Name: StageCheckDuplicate, Store: StoreAuthority, Run: func(ctx context.Context) error {
			existing, err := a.authority.FindByPlayerName(ctx, req.Fields.PlayerName)
			if err != nil {
				return storeErr(StoreAuthority, err)
			}
			if existing != nil {
				return fmt.Errorf("%w: %q is pick %d", ErrConflict, req.Fields.PlayerName, existing.ID)
			}
			return nil
		}},
		Stage{Name: StageAuthorityInsert, Store: StoreAuthority, Run: func(ctx context.Context) error {
			newID, err := a.authority.CreateDraftPick(ctx, req.Fields)
			if err != nil {
				return storeErr(StoreAuthority, err)
			}
			id = newID
			return nil
		}},
		Stage{Name: StageKeyValuePut, Store: StoreKeyValue, Policy: BestEffort, Run: func(ctx context.Context) error {
			return a.kv.PutDraftPick(ctx, req.Fields.WithID(id))
		}},
		Stage{Name: StageObjectPut, Store: StoreObject, Policy: BestEffort, Run: func(ctx context.Context) error {
			return a.objects.PutDocument(ctx, mirror.ObjectKey(id), req.Fields.WithID(id))
		}},
	).Run(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create draft pick: %w", err)
	}

	log.Info().
		Int64("draft_pick_id", id).
		Str("player_name", req.Fields.PlayerName).
		Int("mirror_failures", len(trace.Failed())).
		Msg("draft pick created")

	return &CreateResult{ID: id, Trace: trace}, nil
}

// ListDraftPicks queries every store independently. A store that fails
// contributes an empty list; the request itself never fails.
func (a *App) ListDraftPicks(ctx context.Context) *ListResult {
	result := &ListResult{
		Authority: []models.DraftPick{},
		KeyValue:  []models.DraftPick{},
		Objects:   []models.DraftPick{},
	}

	if picks, err := a.authority.ListDraftPicks(ctx); err != nil {
		log.Warn().Err(err).Str("store", string(StoreAuthority)).Msg("list failed, returning empty")
	} else {
		result.Authority = picks
	}

	if picks, err := a.kv.ScanDraftPicks(ctx); err != nil {
		log.Warn().Err(err).Str("store", string(StoreKeyValue)).Msg("list failed, returning empty")
	} else {
		result.KeyValue = picks
	}

	if picks, err := a.loadObjects(ctx); err != nil {
		log.Warn().Err(err).Str("store", string(StoreObject)).Msg("list failed, returning empty")
	} else {
		result.Objects = picks
	}

	return result
}

// GetDraftPick reads one pick from every store with no cross-validation.
func (a *App) GetDraftPick(ctx context.Context, id int64) *GetResult {
	authorityPick, authorityErr := a.authority.GetDraftPick(ctx, id)
	kvPick, kvErr := a.kv.GetDraftPick(ctx, id)
	objectPick, objectErr := a.objects.GetDocument(ctx, mirror.ObjectKey(id))

	return &GetResult{
		Authority: newLookup(authorityPick, authorityErr),
		KeyValue:  newLookup(kvPick, kvErr),
		Object:    newLookup(objectPick, objectErr),
	}
}

// UpdateDraftPick overwrites a pick in all three stores. The pick must exist
// in the authority and in both mirrors before anything is written.
func (a *App) UpdateDraftPick(ctx context.Context, id int64, req *UpdateDraftPickRequest) (Trace, error) {
	key := mirror.ObjectKey(id)

	trace, err := a.pipeline("update",
		a.authorityExists(id),
		Stage{Name: StageValidate, Store: StoreRequest, Run: func(context.Context) error {
			if req == nil {
				return validationError("no JSON data provided")
			}
			if req.BodyErr != nil {
				return validationError("%s", req.BodyErr)
			}
			return validateFields(req.Fields)
		}},
		a.objectExists(key),
		a.keyValueExists(id),
		Stage{Name: StageAuthorityUpdate, Store: StoreAuthority, Run: func(ctx context.Context) error {
			if err := a.authority.UpdateDraftPick(ctx, id, req.Fields); err != nil {
				return storeErr(StoreAuthority, err)
			}
			return nil
		}},
		Stage{Name: StageObjectPut, Store: StoreObject, Run: func(ctx context.Context) error {
			if err := a.objects.PutDocument(ctx, key, req.Fields.WithID(id)); err != nil {
				return a.partial(id, StageObjectPut, StoreObject, err)
			}
			return nil
		}},
		Stage{Name: StageKeyValuePut, Store: StoreKeyValue, Run: func(ctx context.Context) error {
			if err := a.kv.PutDraftPick(ctx, req.Fields.WithID(id)); err != nil {
				return a.partial(id, StageKeyValuePut, StoreKeyValue, err)
			}
			return nil
		}},
	).Run(ctx)
	if err != nil {
		return trace, fmt.Errorf("failed to update draft pick %d: %w", id, err)
	}

	log.Info().Int64("draft_pick_id", id).Msg("draft pick updated")
	return trace, nil
}

// DeleteDraftPick removes a pick from all three stores, authority first.
// Both mirrors are checked before anything is deleted.
func (a *App) DeleteDraftPick(ctx context.Context, id int64) (Trace, error) {
	key := mirror.ObjectKey(id)

	trace, err := a.pipeline("delete",
		a.authorityExists(id),
		a.objectExists(key),
		a.keyValueExists(id),
		Stage{Name: StageAuthorityDelete, Store: StoreAuthority, Run: func(ctx context.Context) error {
			if err := a.authority.DeleteDraftPick(ctx, id); err != nil {
				return storeErr(StoreAuthority, err)
			}
			return nil
		}},
		Stage{Name: StageObjectDelete, Store: StoreObject, Run: func(ctx context.Context) error {
			if err := a.objects.DeleteDocument(ctx, key); err != nil {
				return a.partial(id, StageObjectDelete, StoreObject, err)
			}
			return nil
		}},
		Stage{Name: StageKeyValueDelete, Store: StoreKeyValue, Run: func(ctx context.Context) error {
			if err := a.kv.DeleteDraftPick(ctx, id); err != nil {
				return a.partial(id, StageKeyValueDelete, StoreKeyValue, err)
			}
			return nil
		}},
	).Run(ctx)
	if err != nil {
		return trace, fmt.Errorf("failed to delete draft pick %d: %w", id, err)
	}

	log.Info().Int64("draft_pick_id", id).Msg("draft pick deleted")
	return trace, nil
}

func (a *App) authorityExists(id int64) Stage {
	return Stage{Name: StageAuthorityExists, Store: StoreAuthority, Run: func(ctx context.Context) error {
		if _, err := a.authority.GetDraftPick(ctx, id); err != nil {
			return storeErr(StoreAuthority, err)
		}
		return nil
	}}
}

func (a *App) objectExists(key string) Stage {
	return Stage{Name: StageObjectExists, Store: StoreObject, Run: func(ctx context.Context) error {
		if _, err := a.objects.GetDocument(ctx, key); err != nil {
			return storeErr(StoreObject, err)
		}
		return nil
	}}
}

func (a *App) keyValueExists(id int64) Stage {
	return Stage{Name: StageKeyValueExists, Store: StoreKeyValue, Run: func(ctx context.Context) error {
		if _, err := a.kv.GetDraftPick(ctx, id); err != nil {
			return storeErr(StoreKeyValue, err)
		}
		return nil
	}}
}

// loadObjects lists the object mirror and decodes every draft document.
// Keys that do not follow the draft_{id}.json rule are ignored.
func (a *App) loadObjects(ctx context.Context) ([]models.DraftPick, error) {
	keys, err := a.objects.ListKeys(ctx)
	if err != nil {
		return nil, err
	}

	picks := make([]models.DraftPick, 0, len(keys))
	for _, key := range keys {
		if _, ok := mirror.ParseObjectKey(key); !ok {
			continue
		}
		pick, err := a.objects.GetDocument(ctx, key)
		if err != nil {
			if errors.Is(err, mirror.ErrNotFound) {
				continue
			}
			return nil, err
		}
		picks = append(picks, *pick)
	}
	return picks, nil
}

func (a *App) partial(id int64, stage string, store Store, err error) error {
	log.Error().
		Err(err).
		Int64("draft_pick_id", id).
		Str("stage", stage).
		Msg("mirror failed after authority commit, stores diverged")
	return &PartialFailureError{ID: id, Stage: stage, Store: store, Err: err}
}

// storeErr maps a store error onto the package taxonomy.
func storeErr(store Store, err error) error {
	switch {
	case isMissing(err):
		return fmt.Errorf("%s: %w: %w", store, ErrNotFound, err)
	case errors.Is(err, authority.ErrConflict):
		return fmt.Errorf("%s: %w: %w", store, ErrConflict, err)
	default:
		return fmt.Errorf("%s: %w: %w", store, ErrStoreUnavailable, err)
	}
}
