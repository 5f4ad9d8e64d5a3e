// Package mirror holds what the key-value and object mirrors share: the
// not-found sentinel, the object key rule, and the wire shapes of a mirrored
// draft pick.
package mirror

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mcdev12/draftmirror/go/internal/models"
)

// ErrNotFound is returned by mirror adapters when a key holds no record.
var ErrNotFound = errors.New("mirror record not found")

const (
	objectKeyPrefix = "draft_"
	objectKeySuffix = ".json"
)

// ObjectKey derives the object mirror key for a draft pick id.
func ObjectKey(id int64) string {
	return fmt.Sprintf("%s%d%s", objectKeyPrefix, id, objectKeySuffix)
}

// ParseObjectKey extracts the id from an object key, reporting false for
// keys that were not produced by ObjectKey.
func ParseObjectKey(key string) (int64, bool) {
	if !strings.HasPrefix(key, objectKeyPrefix) || !strings.HasSuffix(key, objectKeySuffix) {
		return 0, false
	}
	raw := strings.TrimSuffix(strings.TrimPrefix(key, objectKeyPrefix), objectKeySuffix)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ObjectKey(id) != key {
		return 0, false
	}
	return id, true
}

// KeyValueKey is the key-value mirror key for a draft pick id.
func KeyValueKey(id int64) string {
	return strconv.FormatInt(id, 10)
}

// Document is the flat JSON document stored in the object mirror.
type Document struct {
	ID          int64  `json:"id"`
	PickNumber  string `json:"pick_number"`
	ProTeam     string `json:"pro_team"`
	PlayerName  string `json:"player_name"`
	AmateurTeam string `json:"amateur_team"`
}

// EncodeDocument serializes a pick for the object mirror.
func EncodeDocument(pick models.DraftPick) ([]byte, error) {
	return json.Marshal(Document(pick))
}

// DecodeDocument parses an object mirror document.
func DecodeDocument(data []byte) (*models.DraftPick, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode draft document: %w", err)
	}
	pick := models.DraftPick(doc)
	return &pick, nil
}

// EncodeAttributes serializes a pick as the string attribute map stored in
// the key-value mirror.
func EncodeAttributes(pick models.DraftPick) ([]byte, error) {
	return json.Marshal(map[string]string{
		"id":           strconv.FormatInt(pick.ID, 10),
		"pick_number":  pick.PickNumber,
		"pro_team":     pick.ProTeam,
		"player_name":  pick.PlayerName,
		"amateur_team": pick.AmateurTeam,
	})
}

// DecodeAttributes parses a key-value mirror entry.
func DecodeAttributes(data []byte) (*models.DraftPick, error) {
	var attrs map[string]string
	if err := json.Unmarshal(data, &attrs); err != nil {
		return nil, fmt.Errorf("decode draft attributes: %w", err)
	}
	id, err := strconv.ParseInt(attrs["id"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode draft attributes: bad id %q: %w", attrs["id"], err)
	}
	return &models.DraftPick{
		ID:          id,
		PickNumber:  attrs["pick_number"],
		ProTeam:     attrs["pro_team"],
		PlayerName:  attrs["player_name"],
		AmateurTeam: attrs["amateur_team"],
	}, nil
}
