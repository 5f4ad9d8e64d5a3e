package draftpick

import (
	"strings"
	"time"

	"github.com/mcdev12/draftmirror/go/internal/models"
)

// CreateDraftPickRequest represents a request to create a new draft pick
type CreateDraftPickRequest struct {
	Fields models.DraftPickFields
}

// UpdateDraftPickRequest represents a request to overwrite a draft pick.
// A nil request means the caller sent no body.
type UpdateDraftPickRequest struct {
	Fields  models.DraftPickFields
	BodyErr error // set when the body could not be decoded
}

// CreateResult carries the authoritative id and the stages that ran.
type CreateResult struct {
	ID    int64
	Trace Trace
}

// ListResult is a per-store view of every pick. Stores are never merged;
// a store that failed to answer shows up as an empty list.
type ListResult struct {
	Authority []models.DraftPick `json:"sqlite"`
	KeyValue  []models.DraftPick `json:"dynamo"`
	Objects   []models.DraftPick `json:"s3"`
}

// GetResult holds each store's answer for a single pick, side by side.
type GetResult struct {
	Authority Lookup `json:"sqlite"`
	KeyValue  Lookup `json:"dynamodb"`
	Object    Lookup `json:"s3"`
}

// DriftReport lists where the mirrors disagree with the authority.
type DriftReport struct {
	CheckedAt        time.Time `json:"checked_at"`
	AuthorityCount   int       `json:"authority_count"`
	MissingKeyValue  []int64   `json:"missing_from_kv"`
	MissingObject    []int64   `json:"missing_from_object"`
	OrphanedKeyValue []int64   `json:"orphaned_in_kv"`
	OrphanedObject   []int64   `json:"orphaned_in_object"`
	Mismatched       []int64   `json:"mismatched"`
	Unavailable      []Store   `json:"unavailable_stores"`
}

// InSync reports whether the report found no divergence at all.
func (r *DriftReport) InSync() bool {
	return len(r.MissingKeyValue) == 0 &&
		len(r.MissingObject) == 0 &&
		len(r.OrphanedKeyValue) == 0 &&
		len(r.OrphanedObject) == 0 &&
		len(r.Mismatched) == 0 &&
		len(r.Unavailable) == 0
}

func validateFields(f models.DraftPickFields) error {
	var missing []string
	if strings.TrimSpace(f.PickNumber) == "" {
		missing = append(missing, "pick_number")
	}
	if strings.TrimSpace(f.ProTeam) == "" {
		missing = append(missing, "pro_team")
	}
	if strings.TrimSpace(f.PlayerName) == "" {
		missing = append(missing, "player_name")
	}
	if len(missing) > 0 {
		return validationError("missing required field: %s", strings.Join(missing, ", "))
	}
	return nil
}
