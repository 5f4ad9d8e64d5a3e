package draftpick

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftmirror/go/internal/draftpick/memstore"
	"github.com/mcdev12/draftmirror/go/internal/models"
)

func newTestServer(t *testing.T) (*fixture, *httptest.Server) {
	t.Helper()
	f := newFixture(t)
	mux := http.NewServeMux()
	NewService(f.app).RegisterRoutes(mux)
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return f, srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string) (int, map[string]json.RawMessage) {
	t.Helper()
	req, err := http.NewRequest(method, srv.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	var out map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func TestServiceScenario(t *testing.T) {
	_, srv := newTestServer(t)

	status, body := do(t, srv, http.MethodPost, "/drafts",
		`{"pick_number":"(77)","pro_team":"Boston Celtics","player_name":"John Doe","amateur_team":"Duke"}`)
	require.Equal(t, http.StatusCreated, status)
	var id int64
	require.NoError(t, json.Unmarshal(body["id"], &id))
	assert.Positive(t, id)
	path := "/drafts/" + string(body["id"])

	status, body = do(t, srv, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, status)
	var pick models.DraftPick
	require.NoError(t, json.Unmarshal(body["sqlite"], &pick))
	assert.Equal(t, sampleFields().WithID(id), pick)
	assert.JSONEq(t, string(body["sqlite"]), string(body["dynamodb"]))
	assert.JSONEq(t, string(body["sqlite"]), string(body["s3"]))

	status, body = do(t, srv, http.MethodPut, path,
		`{"pick_number":"(77)","pro_team":"Boston Celtics","player_name":"John Calgary","amateur_team":"Duke"}`)
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `"Draft record updated successfully"`, string(body["message"]))

	status, body = do(t, srv, http.MethodGet, "/drafts", "")
	require.Equal(t, http.StatusOK, status)
	for _, slot := range []string{"sqlite", "dynamo", "s3"} {
		assert.Contains(t, string(body[slot]), `"player_name":"John Calgary"`, slot)
	}

	status, body = do(t, srv, http.MethodDelete, path, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `"Successful Delete!"`, string(body["message"]))

	status, body = do(t, srv, http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"error":"Record not found"}`, string(body["sqlite"]))
	assert.JSONEq(t, `{"error":"Record not found"}`, string(body["dynamodb"]))
	assert.JSONEq(t, `{"error":"Record not found"}`, string(body["s3"]))
}

func TestServiceCreateErrors(t *testing.T) {
	_, srv := newTestServer(t)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{name: "no body", body: "", status: http.StatusBadRequest},
		{name: "empty object", body: "{}", status: http.StatusBadRequest},
		{name: "not an object", body: `["x"]`, status: http.StatusBadRequest},
		{name: "missing player", body: `{"pick_number":"1","pro_team":"Celtics"}`, status: http.StatusBadRequest},
		{name: "created", body: `{"pick_number":"1","pro_team":"Celtics","player_name":"A"}`, status: http.StatusCreated},
		{name: "duplicate", body: `{"pick_number":"2","pro_team":"Bulls","player_name":"A"}`, status: http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, srv, http.MethodPost, "/drafts", tt.body)
			assert.Equal(t, tt.status, status)
			if status >= http.StatusBadRequest {
				assert.Contains(t, body, "error")
			}
		})
	}
}

func TestServiceAcceptsLegacyFieldNames(t *testing.T) {
	f, srv := newTestServer(t)

	status, body := do(t, srv, http.MethodPost, "/drafts",
		`{"pickNumber":"(3)","proTeam":"Utah Jazz","playerName":"Legacy Player","amature_team":"Gonzaga"}`)
	require.Equal(t, http.StatusCreated, status)

	var id int64
	require.NoError(t, json.Unmarshal(body["id"], &id))
	got := f.app.GetDraftPick(context.Background(), id)
	require.True(t, got.Authority.Found())
	assert.Equal(t, "Gonzaga", got.Authority.Record.AmateurTeam)
	assert.Equal(t, "(3)", got.Authority.Record.PickNumber)
}

func TestServiceUpdateAndDeleteErrors(t *testing.T) {
	f, srv := newTestServer(t)
	id := f.create(t, sampleFields())
	path := "/drafts/" + jsonInt(id)

	status, _ := do(t, srv, http.MethodPut, "/drafts/9999", "")
	assert.Equal(t, http.StatusNotFound, status, "existence is checked before the body")

	status, _ = do(t, srv, http.MethodPut, path, "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, srv, http.MethodPut, "/drafts/abc", `{"player_name":"x"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, srv, http.MethodDelete, "/drafts/9999", "")
	assert.Equal(t, http.StatusNotFound, status)

	f.objects.Fail(memstore.OpDelete, errUnavailable)
	status, body := do(t, srv, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusInternalServerError, status)
	assert.JSONEq(t, `"Failed to update mirror store object"`, string(body["error"]))
}

func TestServiceNonPositiveIDs(t *testing.T) {
	f, srv := newTestServer(t)
	f.create(t, sampleFields())

	for _, path := range []string{"/drafts/0", "/drafts/-1"} {
		status, body := do(t, srv, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, status, path)
		for _, slot := range []string{"sqlite", "dynamodb", "s3"} {
			assert.JSONEq(t, `{"error":"Record not found"}`, string(body[slot]), path+" "+slot)
		}

		status, _ = do(t, srv, http.MethodPut, path, `{"pick_number":"1","pro_team":"Celtics","player_name":"B"}`)
		assert.Equal(t, http.StatusNotFound, status, path)

		status, _ = do(t, srv, http.MethodDelete, path, "")
		assert.Equal(t, http.StatusNotFound, status, path)
	}
}

func TestServiceUpdateMalformedBody(t *testing.T) {
	f, srv := newTestServer(t)
	id := f.create(t, sampleFields())

	status, _ := do(t, srv, http.MethodPut, "/drafts/99", "not json")
	assert.Equal(t, http.StatusNotFound, status)

	status, body := do(t, srv, http.MethodPut, "/drafts/"+jsonInt(id), "not json")
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, string(body["error"]), "request body must be a JSON object")

	status, _ = do(t, srv, http.MethodPut, "/drafts/"+jsonInt(id), `{"player_name":7}`)
	assert.Equal(t, http.StatusBadRequest, status)

	got := f.app.GetDraftPick(context.Background(), id)
	assert.Equal(t, "John Doe", got.Authority.Record.PlayerName)
}

func TestServiceDrift(t *testing.T) {
	f, srv := newTestServer(t)
	f.create(t, sampleFields())

	status, body := do(t, srv, http.MethodGet, "/drafts/drift", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `1`, string(body["authority_count"]))
	assert.JSONEq(t, `[]`, string(body["mismatched"]))
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusOK, StatusFor(nil))
	assert.Equal(t, http.StatusBadRequest, StatusFor(validationError("bad")))
	assert.Equal(t, http.StatusNotFound, StatusFor(storeErr(StoreKeyValue, ErrNotFound)))
	assert.Equal(t, http.StatusConflict, StatusFor(ErrConflict))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(storeErr(StoreAuthority, errUnavailable)))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(&PartialFailureError{Stage: StageKeyValuePut, Store: StoreKeyValue, Err: ErrNotFound}))
}

func jsonInt(id int64) string {
	data, _ := json.Marshal(id)
	return string(data)
}
