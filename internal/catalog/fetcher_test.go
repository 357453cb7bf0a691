package catalog_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker/internal/catalog"
)

func adzunaPage(n int, prefix string) map[string]any {
	results := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		results = append(results, map[string]any{
			"id":           fmt.Sprintf("%s-%d", prefix, i),
			"title":        "Go Developer",
			"description":  "Build services",
			"company":      map[string]any{"display_name": "Acme"},
			"location":     map[string]any{"display_name": "Bengaluru"},
			"category":     map[string]any{"label": "IT Jobs"},
			"redirect_url": fmt.Sprintf("https://adzuna.example/%s-%d", prefix, i),
			"created":      "2025-01-02T03:04:05Z",
			"salary_min":   30000,
			"salary_max":   45000,
		})
	}
	return map[string]any{"results": results, "count": n}
}

func TestAdzunaFetcher_PaginatesUntilShortPage(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		assert.Equal(t, "id", r.URL.Query().Get("app_id"))
		assert.Equal(t, "key", r.URL.Query().Get("app_key"))
		assert.Equal(t, "golang", r.URL.Query().Get("what"))
		assert.Equal(t, "india", r.URL.Query().Get("where"))

		var body map[string]any
		switch r.URL.Path {
		case "/in/search/1":
			body = adzunaPage(50, "p1")
		case "/in/search/2":
			body = adzunaPage(3, "p2")
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			body = adzunaPage(0, "")
		}
		_ = json.NewEncoder(w).Encode(body)
	}))
	defer srv.Close()

	f := catalog.NewAdzunaFetcher("id", "key", "in")
	f.BaseURL = srv.URL

	got, err := f.Fetch(context.Background(), "golang", "india")
	require.NoError(t, err)
	assert.Len(t, got, 53)
	assert.EqualValues(t, 2, calls.Load())

	first := got[0]
	assert.Equal(t, "p1-0", first.ExternalID)
	assert.Equal(t, "adzuna", first.Source)
	assert.Equal(t, "Acme", first.Company.Name)
	assert.Equal(t, "30000-45000", first.Stipend)
	assert.Equal(t, "Bengaluru", first.Location)
	assert.Equal(t, "IT Jobs", first.Category)
	assert.Equal(t, "https://adzuna.example/p1-0", first.SourceURL)
}

func TestAdzunaFetcher_Disabled(t *testing.T) {
	f := catalog.NewAdzunaFetcher("", "", "in")
	assert.False(t, f.Enabled())

	got, err := f.Fetch(context.Background(), "golang", "india")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestAdzunaFetcher_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := catalog.NewAdzunaFetcher("id", "key", "in")
	f.BaseURL = srv.URL

	_, err := f.Fetch(context.Background(), "golang", "india")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 429")
}
