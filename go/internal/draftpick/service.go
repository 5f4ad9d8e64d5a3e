package draftpick

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftmirror/go/internal/models"
)

const maxBodyBytes = 1 << 20

// DraftPickApp defines what the service layer needs from the draft pick application
type DraftPickApp interface {
	CreateDraftPick(ctx context.Context, req CreateDraftPickRequest) (*CreateResult, error)
	ListDraftPicks(ctx context.Context) *ListResult
	GetDraftPick(ctx context.Context, id int64) *GetResult
	UpdateDraftPick(ctx context.Context, id int64, req *UpdateDraftPickRequest) (Trace, error)
	DeleteDraftPick(ctx context.Context, id int64) (Trace, error)
	Drift(ctx context.Context) (*DriftReport, error)
}

// Service exposes the draft pick API over HTTP
type Service struct {
	app DraftPickApp
}

// NewService creates a new draft pick HTTP service
func NewService(app DraftPickApp) *Service {
	return &Service{app: app}
}

// RegisterRoutes registers the draft pick routes on mux.
func (s *Service) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /drafts", s.HandleListDraftPicks)
	mux.HandleFunc("POST /drafts", s.HandleCreateDraftPick)
	mux.HandleFunc("GET /drafts/drift", s.HandleDrift)
	mux.HandleFunc("GET /drafts/{id}", s.HandleGetDraftPick)
	mux.HandleFunc("PUT /drafts/{id}", s.HandleUpdateDraftPick)
	mux.HandleFunc("DELETE /drafts/{id}", s.HandleDeleteDraftPick)
}

// HandleListDraftPicks handles GET /drafts
func (s *Service) HandleListDraftPicks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.app.ListDraftPicks(r.Context()))
}

// HandleGetDraftPick handles GET /drafts/{id}
func (s *Service) HandleGetDraftPick(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.app.GetDraftPick(r.Context(), id))
}

// HandleCreateDraftPick handles POST /drafts
func (s *Service) HandleCreateDraftPick(w http.ResponseWriter, r *http.Request) {
	payload, present, err := readPayload(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if !present {
		writeError(w, http.StatusBadRequest, "No JSON data provided")
		return
	}

	result, err := s.app.CreateDraftPick(r.Context(), CreateDraftPickRequest{Fields: payload.fields()})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": result.ID})
}

// HandleUpdateDraftPick handles PUT /drafts/{id}
func (s *Service) HandleUpdateDraftPick(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	// A missing or malformed body is judged by the app, after the existence check.
	var req *UpdateDraftPickRequest
	payload, present, err := readPayload(w, r)
	switch {
	case err != nil:
		req = &UpdateDraftPickRequest{BodyErr: err}
	case present:
		req = &UpdateDraftPickRequest{Fields: payload.fields()}
	}

	if _, err := s.app.UpdateDraftPick(r.Context(), id, req); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Draft record updated successfully"})
}

// HandleDeleteDraftPick handles DELETE /drafts/{id}
func (s *Service) HandleDeleteDraftPick(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if _, err := s.app.DeleteDraftPick(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successful Delete!"})
}

// HandleDrift handles GET /drafts/drift
func (s *Service) HandleDrift(w http.ResponseWriter, r *http.Request) {
	report, err := s.app.Drift(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Service) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Str("method", r.Method).Str("path", r.URL.Path).Msg("draft pick request failed")
	}
	writeError(w, status, errorMessage(status, err))
}

// StatusFor maps an orchestrator error onto an HTTP status.
func StatusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, ErrPartialFailure):
		return http.StatusInternalServerError
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorMessage(status int, err error) string {
	switch status {
	case http.StatusNotFound:
		return "record not found"
	case http.StatusConflict:
		return "player already drafted"
	case http.StatusBadRequest:
		return err.Error()
	default:
		var partial *PartialFailureError
		if errors.As(err, &partial) {
			return "Failed to update mirror store " + string(partial.Store)
		}
		return "internal error"
	}
}

// draftPickPayload accepts snake_case, camelCase and the legacy
// "amature_team" spelling.
type draftPickPayload struct {
	PickNumber        string `json:"pick_number"`
	ProTeam           string `json:"pro_team"`
	PlayerName        string `json:"player_name"`
	AmateurTeam       string `json:"amateur_team"`
	LegacyAmateurTeam string `json:"amature_team"`

	CamelPickNumber  string `json:"pickNumber"`
	CamelProTeam     string `json:"proTeam"`
	CamelPlayerName  string `json:"playerName"`
	CamelAmateurTeam string `json:"amateurTeam"`
}

func (p draftPickPayload) fields() models.DraftPickFields {
	return models.DraftPickFields{
		PickNumber:  firstNonEmpty(p.PickNumber, p.CamelPickNumber),
		ProTeam:     firstNonEmpty(p.ProTeam, p.CamelProTeam),
		PlayerName:  firstNonEmpty(p.PlayerName, p.CamelPlayerName),
		AmateurTeam: firstNonEmpty(p.AmateurTeam, p.LegacyAmateurTeam, p.CamelAmateurTeam),
	}
}

// readPayload decodes the request body. present is false for an empty body,
// JSON null, or an empty object.
func readPayload(w http.ResponseWriter, r *http.Request) (payload draftPickPayload, present bool, err error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return payload, false, errors.New("could not read request body")
	}
	body = bytes.TrimSpace(body)
	if len(body) == 0 || bytes.Equal(body, []byte("null")) {
		return payload, false, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return payload, false, errors.New("request body must be a JSON object")
	}
	if len(raw) == 0 {
		return payload, false, nil
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return payload, false, errors.New("draft pick fields must be strings")
	}
	return payload, true, nil
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid draft id")
		return 0, false
	}
	return id, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
