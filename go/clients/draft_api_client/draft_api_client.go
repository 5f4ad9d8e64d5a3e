// Package draft_api_client is a typed HTTP client for the draft pick API.
package draft_api_client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mcdev12/draftmirror/go/clients"
	"github.com/mcdev12/draftmirror/go/internal/models"
)

type DraftApiClient struct {
	*clients.BaseClient
}

func NewDraftApiClient(baseURL string) *DraftApiClient {
	client := &DraftApiClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}

	client.SetHeader("Content-Type", "application/json")
	client.SetHeader("Accept", "application/json")

	return client
}

// Slot is one store's answer in a read-one response: either the record or
// the "Record not found" marker.
type Slot struct {
	Record *models.DraftPick
	Error  string
	Detail string
}

func (s *Slot) UnmarshalJSON(data []byte) error {
	var marker struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &marker); err != nil {
		return err
	}
	if marker.Error != "" {
		s.Error, s.Detail = marker.Error, marker.Detail
		return nil
	}

	var pick models.DraftPick
	if err := json.Unmarshal(data, &pick); err != nil {
		return err
	}
	s.Record = &pick
	return nil
}

type ListResponse struct {
	SQLite []models.DraftPick `json:"sqlite"`
	Dynamo []models.DraftPick `json:"dynamo"`
	S3     []models.DraftPick `json:"s3"`
}

type GetResponse struct {
	SQLite   Slot `json:"sqlite"`
	DynamoDB Slot `json:"dynamodb"`
	S3       Slot `json:"s3"`
}

type DriftResponse struct {
	CheckedAt         time.Time `json:"checked_at"`
	AuthorityCount    int       `json:"authority_count"`
	MissingFromKV     []int64   `json:"missing_from_kv"`
	MissingFromObject []int64   `json:"missing_from_object"`
	OrphanedInKV      []int64   `json:"orphaned_in_kv"`
	OrphanedInObject  []int64   `json:"orphaned_in_object"`
	Mismatched        []int64   `json:"mismatched"`
	Unavailable       []string  `json:"unavailable_stores"`
}

func (c *DraftApiClient) CreateDraftPick(ctx context.Context, fields models.DraftPickFields) (int64, error) {
	body, err := json.Marshal(fields)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal draft pick: %w", err)
	}

	resp, err := c.Post(ctx, DraftsEndpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create draft pick: %w", err)
	}

	var created struct {
		ID int64 `json:"id"`
	}
	if err := json.Unmarshal(resp, &created); err != nil {
		return 0, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(resp))
	}
	return created.ID, nil
}

func (c *DraftApiClient) ListDraftPicks(ctx context.Context) (*ListResponse, error) {
	var out ListResponse
	if err := c.getJSON(ctx, DraftsEndpoint, &out); err != nil {
		return nil, fmt.Errorf("failed to list draft picks: %w", err)
	}
	return &out, nil
}

func (c *DraftApiClient) GetDraftPick(ctx context.Context, id int64) (*GetResponse, error) {
	var out GetResponse
	if err := c.getJSON(ctx, draftPath(id), &out); err != nil {
		return nil, fmt.Errorf("failed to get draft pick %d: %w", id, err)
	}
	return &out, nil
}

func (c *DraftApiClient) UpdateDraftPick(ctx context.Context, id int64, fields models.DraftPickFields) error {
	body, err := json.Marshal(fields)
	if err != nil {
		return fmt.Errorf("failed to marshal draft pick: %w", err)
	}
	if _, err := c.Put(ctx, draftPath(id), bytes.NewReader(body)); err != nil {
		return fmt.Errorf("failed to update draft pick %d: %w", id, err)
	}
	return nil
}

func (c *DraftApiClient) DeleteDraftPick(ctx context.Context, id int64) error {
	if _, err := c.Delete(ctx, draftPath(id)); err != nil {
		return fmt.Errorf("failed to delete draft pick %d: %w", id, err)
	}
	return nil
}

func (c *DraftApiClient) Drift(ctx context.Context) (*DriftResponse, error) {
	var out DriftResponse
	if err := c.getJSON(ctx, DriftEndpoint, &out); err != nil {
		return nil, fmt.Errorf("failed to get drift report: %w", err)
	}
	return &out, nil
}

func (c *DraftApiClient) getJSON(ctx context.Context, endpoint string, v any) error {
	body, err := c.Get(ctx, endpoint)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}
	return nil
}

func draftPath(id int64) string {
	return DraftsEndpoint + "/" + strconv.FormatInt(id, 10)
}
