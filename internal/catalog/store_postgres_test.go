package catalog_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobtracker/internal/catalog"
	"jobtracker/internal/db"
)

func postgresCatalog(t *testing.T) (*catalog.PostgresStore, *pgxpool.Pool) {
	t.Helper()
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := db.NewPostgresPool(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, db.RunMigrations(ctx, pool, catalog.Migrations()...))
	return catalog.NewPostgresStore(pool), pool
}

func TestPostgres_SeedIsIdempotent(t *testing.T) {
	store, _ := postgresCatalog(t)
	ctx := context.Background()

	_, err := catalog.Seed(ctx, store)
	require.NoError(t, err)
	n, err := catalog.Seed(ctx, store)
	require.NoError(t, err)
	assert.Zero(t, n)

	found, err := store.Search(ctx, catalog.Query{Text: "Contoso Analytics"})
	require.NoError(t, err)
	require.NotEmpty(t, found)
	assert.Equal(t, "Data Scientist", found[0].Title)
	assert.Equal(t, "Contoso Analytics", found[0].Company.Name)

	got, err := store.Get(ctx, found[0].ID)
	require.NoError(t, err)
	assert.Equal(t, found[0].SourceURL, got.SourceURL)
}

func TestPostgres_InsertDedupsBySourceURL(t *testing.T) {
	store, pool := postgresCatalog(t)
	ctx := context.Background()
	url := "https://test.example/" + uuid.NewString()
	t.Cleanup(func() {
		_, _ = pool.Exec(context.Background(), `DELETE FROM job_listings WHERE source_url = $1`, url)
	})

	l := catalog.Listing{ID: uuid.NewString(), Source: "test", Title: "Go Dev", SourceURL: url, CreatedAt: time.Now().UTC()}
	ok, err := store.InsertIfAbsent(ctx, l)
	require.NoError(t, err)
	assert.True(t, ok)

	l.ID = uuid.NewString()
	ok, err = store.InsertIfAbsent(ctx, l)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = store.Get(ctx, "missing-"+uuid.NewString())
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}
