package tracker_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker/internal/auth"
	"jobtracker/internal/tracker"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	svc, _ := newService(t)
	mux := http.NewServeMux()
	tracker.NewHandler(svc).RegisterRoutes(mux)
	return auth.Middleware(auth.HeaderResolver{})(mux)
}

func do(t *testing.T, h http.Handler, method, path, user, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if user != "" {
		req.Header.Set(auth.HeaderUserID, user)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return rec.Code, out
}

// ── Auth ───────────────────────────────────────────────────────────────────

func TestHandler_Unauthenticated(t *testing.T) {
	h := newTestServer(t)
	for _, route := range [][2]string{
		{http.MethodGet, "/user"},
		{http.MethodPost, "/save-job"},
		{http.MethodGet, "/saved-jobs"},
		{http.MethodDelete, "/remove-job/j1"},
	} {
		code, body := do(t, h, route[0], route[1], "", "")
		assert.Equal(t, http.StatusUnauthorized, code, route[1])
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Not authorized, login required", body["message"])
	}
}

// ── Save / duplicates ──────────────────────────────────────────────────────

func TestHandler_SaveCreatesUserAndDetectsDuplicate(t *testing.T) {
	h := newTestServer(t)
	payload := `{"job":{"_id":"j1","title":"Go Intern","companyId":{"name":"Acme","image":""},"status":"Bogus"}}`

	code, body := do(t, h, http.MethodPost, "/save-job", "u1", payload)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Job saved successfully", body["message"])
	job := body["job"].(map[string]any)
	assert.Equal(t, "Interested", job["status"])
	assert.Equal(t, "Acme", job["companyId"].(map[string]any)["name"])

	code, body = do(t, h, http.MethodPost, "/save-job", "u1", payload)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Job already saved", body["message"])

	_, body = do(t, h, http.MethodGet, "/saved-jobs", "u1", "")
	assert.Len(t, body["jobs"], 1)
}

func TestHandler_SaveAcceptsLooseStatusAndID(t *testing.T) {
	h := newTestServer(t)

	cases := []struct {
		name    string
		payload string
		wantID  string
	}{
		{"null status", `{"job":{"_id":"a","status":null}}`, "a"},
		{"numeric status", `{"job":{"_id":"b","status":7}}`, "b"},
		{"object status", `{"job":{"_id":"c","status":{"v":"Applied"}}}`, "c"},
		{"null id", `{"job":{"_id":null,"title":"Generated"}}`, ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			code, body := do(t, h, http.MethodPost, "/save-job", "u1", c.payload)
			require.Equal(t, http.StatusOK, code, body["message"])
			assert.Equal(t, true, body["success"])

			job := body["job"].(map[string]any)
			assert.Equal(t, "Interested", job["status"])
			if c.wantID != "" {
				assert.Equal(t, c.wantID, job["_id"])
			} else {
				assert.Len(t, job["_id"], 36)
			}
		})
	}

	code, body := do(t, h, http.MethodPost, "/manual-job", "u1", `{"job":{"_id":null,"status":3}}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Interested", body["job"].(map[string]any)["status"])
}

func TestHandler_SaveRejectsMalformedJob(t *testing.T) {
	h := newTestServer(t)

	cases := map[string]string{
		"not json":       `{"job":`,
		"missing job":    `{"title":"x"}`,
		"numeric title":  `{"job":{"title":42}}`,
		"company string": `{"job":{"companyId":"Acme"}}`,
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			code, body := do(t, h, http.MethodPost, "/save-job", "u1", payload)
			assert.Equal(t, http.StatusBadRequest, code)
			assert.Equal(t, false, body["success"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

// ── Status ─────────────────────────────────────────────────────────────────

func TestHandler_UpdateStatus(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodPost, "/save-job", "u1", `{"job":{"_id":"j1"}}`)

	code, body := do(t, h, http.MethodPatch, "/job-status/j1", "u1", `{"status":"Interview Round 1"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Job updated successfully", body["message"])
	assert.Equal(t, "Interview Round 1", body["job"].(map[string]any)["status"])

	code, body = do(t, h, http.MethodPatch, "/job-status/j1", "u1", `{"status":"Hired"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid status value", body["message"])

	code, body = do(t, h, http.MethodPatch, "/job-status/missing", "u1", `{"status":"Applied"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Job not found", body["message"])

	code, body = do(t, h, http.MethodPatch, "/job-status/j1", "stranger", `{"status":"Applied"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "User not found", body["message"])
}

// ── Notes ──────────────────────────────────────────────────────────────────

func TestHandler_UpdateNotes(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodPost, "/save-job", "u1", `{"job":{"_id":"j1"}}`)

	code, body := do(t, h, http.MethodPatch, "/job-notes/j1", "u1", `{"notes":"ask about stipend"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ask about stipend", body["job"].(map[string]any)["notes"])

	code, _ = do(t, h, http.MethodPatch, "/job-notes/j1", "u1", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

// ── Remove ─────────────────────────────────────────────────────────────────

func TestHandler_Remove(t *testing.T) {
	h := newTestServer(t)
	do(t, h, http.MethodPost, "/save-job", "u1", `{"job":{"_id":"j1"}}`)

	code, body := do(t, h, http.MethodDelete, "/remove-job/j1", "u1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Job removed successfully", body["message"])

	code, body = do(t, h, http.MethodDelete, "/remove-job/j1", "u1", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Job not found in saved jobs", body["message"])
}

// ── User / stats ───────────────────────────────────────────────────────────

func TestHandler_GetUserAndStats(t *testing.T) {
	h := newTestServer(t)

	code, body := do(t, h, http.MethodGet, "/user", "u1", "")
	require.Equal(t, http.StatusOK, code)
	user := body["user"].(map[string]any)
	assert.Equal(t, "u1", user["id"])
	assert.Equal(t, "No Name", user["name"])
	assert.Equal(t, []any{}, user["savedJobs"])

	do(t, h, http.MethodPost, "/save-job", "u1", `{"job":{"_id":"a","status":"Rejected"}}`)
	do(t, h, http.MethodPost, "/save-job", "u1", `{"job":{"_id":"b","status":"Offer Received"}}`)

	code, body = do(t, h, http.MethodGet, "/stats", "u1", "")
	require.Equal(t, http.StatusOK, code)
	st := body["stats"].(map[string]any)
	assert.EqualValues(t, 2, st["total"])
	assert.EqualValues(t, 1, st["offers"])
	assert.EqualValues(t, 50, st["rejectionRate"])
}
