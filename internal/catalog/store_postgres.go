package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobtracker/internal/db"
)

// PostgresStore keeps listings in job_listings; raw_data holds the full
// normalised listing as JSONB.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrations returns the job_listings schema.
func Migrations() []db.Migration {
	return []db.Migration{
		{
			Name: "create_job_listings",
			SQL: `CREATE TABLE IF NOT EXISTS job_listings (
				id           TEXT PRIMARY KEY,
				source       TEXT NOT NULL,
				title        TEXT NOT NULL DEFAULT '',
				company      TEXT NOT NULL DEFAULT '',
				location     TEXT NOT NULL DEFAULT '',
				description  TEXT NOT NULL DEFAULT '',
				source_url   TEXT NOT NULL UNIQUE,
				raw_data     JSONB NOT NULL,
				created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS job_listings_created_idx ON job_listings (created_at DESC)`,
		},
	}
}

// InsertIfAbsent implements Store.
func (s *PostgresStore) InsertIfAbsent(ctx context.Context, l Listing) (bool, error) {
	raw, err := json.Marshal(l)
	if err != nil {
		return false, fmt.Errorf("marshal listing: %w", err)
	}

	tag, err := s.pool.Exec(ctx,
		`INSERT INTO job_listings (id, source, title, company, location, description, source_url, raw_data, created_at)
		 SELECT $1, $2, $3, $4, $5, $6, $7, $8::jsonb, $9
		 WHERE NOT EXISTS (
		   SELECT 1 FROM job_listings WHERE source_url = $7
		 )
		 ON CONFLICT (source_url) DO NOTHING`,
		l.ID, l.Source, l.Title, l.Company.Name, l.Location, l.Description, l.SourceURL, string(raw), l.CreatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("insert listing: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// Search implements Store.
func (s *PostgresStore) Search(ctx context.Context, q Query) ([]Listing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT raw_data FROM job_listings
		 WHERE ($1 = '' OR strpos(lower(title), lower($1)) > 0
		                OR strpos(lower(company), lower($1)) > 0
		                OR strpos(lower(description), lower($1)) > 0)
		   AND ($2 = '' OR strpos(lower(location), lower($2)) > 0)
		 ORDER BY created_at DESC, id
		 LIMIT $3`,
		q.Text, q.Location, q.limit(),
	)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	defer rows.Close()

	out := make([]Listing, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		var l Listing
		if err := json.Unmarshal(raw, &l); err != nil {
			return nil, fmt.Errorf("decode listing: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// Get implements Store.
func (s *PostgresStore) Get(ctx context.Context, id string) (*Listing, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, `SELECT raw_data FROM job_listings WHERE id = $1`, id).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	var l Listing
	if err := json.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("decode listing: %w", err)
	}
	return &l, nil
}
