package catalog_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker/internal/catalog"
)

func newCatalogServer(t *testing.T) (http.Handler, *catalog.MemoryStore) {
	t.Helper()
	store := newCatalogStore(t)
	_, err := catalog.Seed(context.Background(), store)
	require.NoError(t, err)

	mux := http.NewServeMux()
	catalog.NewHandler(store).RegisterRoutes(mux)
	return mux, store
}

func getJSON(t *testing.T, h http.Handler, path string) (int, map[string]any) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return rec.Code, out
}

func TestCatalogHandler_Search(t *testing.T) {
	h, _ := newCatalogServer(t)

	code, body := getJSON(t, h, "/jobs")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["jobs"], 4)

	_, body = getJSON(t, h, "/jobs?q=DATA")
	jobs := body["jobs"].([]any)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Data Scientist", jobs[0].(map[string]any)["title"])

	_, body = getJSON(t, h, "/jobs?location=remote")
	assert.Len(t, body["jobs"], 1)

	_, body = getJSON(t, h, "/jobs?limit=2")
	assert.Len(t, body["jobs"], 2)

	code, _ = getJSON(t, h, "/jobs?limit=zero")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestCatalogHandler_Get(t *testing.T) {
	h, store := newCatalogServer(t)
	all, err := store.Search(context.Background(), catalog.Query{})
	require.NoError(t, err)
	require.NotEmpty(t, all)

	code, body := getJSON(t, h, "/jobs/"+all[0].ID)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, all[0].Title, body["job"].(map[string]any)["title"])

	code, body = getJSON(t, h, "/jobs/does-not-exist")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, false, body["success"])
}
