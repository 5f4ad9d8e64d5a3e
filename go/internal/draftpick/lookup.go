package draftpick

import (
	"encoding/json"
	"errors"

	"github.com/mcdev12/draftmirror/go/internal/draftpick/authority"
	"github.com/mcdev12/draftmirror/go/internal/draftpick/mirror"
	"github.com/mcdev12/draftmirror/go/internal/models"
)

// LookupStatus tags the outcome of reading one pick from one store.
type LookupStatus int

const (
	LookupFound LookupStatus = iota
	LookupNotFound
	LookupStoreError
)

func (s LookupStatus) String() string {
	switch s {
	case LookupFound:
		return "found"
	case LookupNotFound:
		return "not_found"
	default:
		return "store_error"
	}
}

// recordNotFound is the per-store marker callers see for a missing record.
const recordNotFound = "Record not found"

// Lookup is one store's answer for a single pick.
type Lookup struct {
	Status LookupStatus
	Record *models.DraftPick
	Detail string // store error text, only for LookupStoreError
}

// Found reports whether the store returned the record.
func (l Lookup) Found() bool {
	return l.Status == LookupFound
}

// MarshalJSON renders the record itself, or an error marker.
func (l Lookup) MarshalJSON() ([]byte, error) {
	switch l.Status {
	case LookupFound:
		return json.Marshal(l.Record)
	case LookupNotFound:
		return json.Marshal(map[string]string{"error": recordNotFound})
	default:
		return json.Marshal(map[string]string{"error": recordNotFound, "detail": l.Detail})
	}
}

func newLookup(pick *models.DraftPick, err error) Lookup {
	switch {
	case err == nil && pick != nil:
		return Lookup{Status: LookupFound, Record: pick}
	case err == nil, isMissing(err):
		return Lookup{Status: LookupNotFound}
	default:
		return Lookup{Status: LookupStoreError, Detail: err.Error()}
	}
}

// isMissing normalizes the not-found sentinels of every store.
func isMissing(err error) bool {
	return errors.Is(err, authority.ErrNotFound) ||
		errors.Is(err, mirror.ErrNotFound) ||
		errors.Is(err, ErrNotFound)
}
