package httpx_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker/internal/httpx"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.OK(rec, httpx.H{"jobs": []string{}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Contains(t, body, "jobs")
}

func TestFail_IsStatus200(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.Fail(rec, "Job already saved")

	assert.Equal(t, http.StatusOK, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Job already saved", body["message"])
}

func TestError(t *testing.T) {
	rec := httptest.NewRecorder()
	httpx.Error(rec, "Job not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	body := decode(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Job not found", body["message"])
}

func TestDecodeJSON_RejectsTrailingData(t *testing.T) {
	var v map[string]any
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}{"b":2}`))
	assert.Error(t, httpx.DecodeJSON(r, &v))

	r = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}`))
	assert.NoError(t, httpx.DecodeJSON(r, &v))
}
