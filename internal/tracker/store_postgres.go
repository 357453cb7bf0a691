package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobtracker/internal/db"
)

// PostgresStore keeps users in one row each and saved jobs in a child table
// ordered by a serial. Mutations lock the owning users row and bump version.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore returns a Store backed by pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrations returns the schema for users and saved_jobs. The status CHECK
// constraint is generated from Statuses() so the enum has one definition.
func Migrations() []db.Migration {
	quoted := make([]string, 0, len(allStatuses))
	for _, s := range allStatuses {
		quoted = append(quoted, "'"+strings.ReplaceAll(string(s), "'", "''")+"'")
	}

	return []db.Migration{
		{
			Name: "create_users",
			SQL: `CREATE TABLE IF NOT EXISTS users (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				email       TEXT NOT NULL,
				resume_url  TEXT NOT NULL DEFAULT '',
				skills      TEXT[] NOT NULL DEFAULT '{}',
				version     BIGINT NOT NULL DEFAULT 0,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
		},
		{
			Name: "create_saved_jobs",
			SQL: `CREATE TABLE IF NOT EXISTS saved_jobs (
				seq            BIGSERIAL PRIMARY KEY,
				user_id        TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				job_id         TEXT NOT NULL,
				title          TEXT NOT NULL DEFAULT '',
				company_name   TEXT NOT NULL DEFAULT '',
				company_image  TEXT NOT NULL DEFAULT '',
				location       TEXT NOT NULL DEFAULT '',
				level          TEXT NOT NULL DEFAULT '',
				description    TEXT NOT NULL DEFAULT '',
				stipend        TEXT NOT NULL DEFAULT '',
				apply_date     TEXT NOT NULL DEFAULT '',
				status         TEXT NOT NULL DEFAULT 'Interested',
				notes          TEXT NOT NULL DEFAULT '',
				date_saved     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				last_updated   TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS saved_jobs_user_job_idx ON saved_jobs (user_id, job_id)`,
		},
		{
			Name: "saved_jobs_status_check",
			SQL: `ALTER TABLE saved_jobs DROP CONSTRAINT IF EXISTS saved_jobs_status_check;
			ALTER TABLE saved_jobs ADD CONSTRAINT saved_jobs_status_check
				CHECK (status IN (` + strings.Join(quoted, ", ") + `))`,
		},
	}
}

const jobColumns = `job_id, title, company_name, company_image, location, level,
	description, stipend, apply_date, status, notes, date_saved, last_updated`

func scanJob(row pgx.Row) (SavedJob, error) {
	var j SavedJob
	err := row.Scan(
		&j.ID, &j.Title, &j.Company.Name, &j.Company.Image, &j.Location, &j.Level,
		&j.Description, &j.Stipend, &j.ApplyDate, &j.Status, &j.Notes, &j.DateSaved, &j.LastUpdated,
	)
	return j, err
}

// ─── Store implementation ─────────────────────────────────────────────────────

// GetUser implements Store.
func (s *PostgresStore) GetUser(ctx context.Context, userID string) (*User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, name, email, resume_url, skills, version, created_at, updated_at
		 FROM users WHERE id = $1`,
		userID,
	).Scan(&u.ID, &u.Name, &u.Email, &u.ResumeURL, &u.Skills, &u.Version, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getUser: %w", err)
	}

	u.SavedJobs, err = s.queryJobs(ctx, s.pool, userID)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUserIfAbsent implements Store. Concurrent first requests for one
// identity converge on a single row.
func (s *PostgresStore) CreateUserIfAbsent(ctx context.Context, u User) (*User, error) {
	skills := u.Skills
	if skills == nil {
		skills = []string{}
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, resume_url, skills, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (id) DO NOTHING`,
		u.ID, u.Name, u.Email, u.ResumeURL, skills, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("createUser: %w", err)
	}
	return s.GetUser(ctx, u.ID)
}

// AppendJob implements Store.
func (s *PostgresStore) AppendJob(ctx context.Context, userID string, job SavedJob, ifAbsent bool) (bool, error) {
	appended := false
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}
		if ifAbsent {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS (SELECT 1 FROM saved_jobs WHERE user_id = $1 AND job_id = $2)`,
				userID, job.ID,
			).Scan(&exists); err != nil {
				return fmt.Errorf("appendJob exists: %w", err)
			}
			if exists {
				return nil
			}
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO saved_jobs (user_id, `+jobColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			userID, job.ID, job.Title, job.Company.Name, job.Company.Image, job.Location, job.Level,
			job.Description, job.Stipend, job.ApplyDate, string(job.Status), job.Notes, job.DateSaved, job.LastUpdated,
		); err != nil {
			return fmt.Errorf("appendJob insert: %w", err)
		}
		appended = true
		return bumpVersion(ctx, tx, userID)
	})
	if err != nil {
		return false, err
	}
	return appended, nil
}

// ListJobs implements Store.
func (s *PostgresStore) ListJobs(ctx context.Context, userID string) ([]SavedJob, error) {
	var exists bool
	if err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`, userID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("listJobs: %w", err)
	}
	if !exists {
		return nil, ErrUserNotFound
	}
	return s.queryJobs(ctx, s.pool, userID)
}

// UpdateJob implements Store.
func (s *PostgresStore) UpdateJob(ctx context.Context, userID, jobID string, mutate func(*SavedJob) error) (*SavedJob, error) {
	var out SavedJob
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}

		var seq int64
		row := tx.QueryRow(ctx,
			`SELECT seq, `+jobColumns+`
			 FROM saved_jobs WHERE user_id = $1 AND job_id = $2
			 ORDER BY seq LIMIT 1`,
			userID, jobID,
		)
		var j SavedJob
		err := row.Scan(
			&seq, &j.ID, &j.Title, &j.Company.Name, &j.Company.Image, &j.Location, &j.Level,
			&j.Description, &j.Stipend, &j.ApplyDate, &j.Status, &j.Notes, &j.DateSaved, &j.LastUpdated,
		)
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrJobNotFound
		}
		if err != nil {
			return fmt.Errorf("updateJob select: %w", err)
		}

		if err := mutate(&j); err != nil {
			return err
		}

		if _, err := tx.Exec(ctx,
			`UPDATE saved_jobs
			 SET title = $1, company_name = $2, company_image = $3, location = $4, level = $5,
			     description = $6, stipend = $7, apply_date = $8, status = $9, notes = $10,
			     last_updated = $11
			 WHERE seq = $12`,
			j.Title, j.Company.Name, j.Company.Image, j.Location, j.Level,
			j.Description, j.Stipend, j.ApplyDate, string(j.Status), j.Notes, j.LastUpdated, seq,
		); err != nil {
			return fmt.Errorf("updateJob update: %w", err)
		}
		out = j
		return bumpVersion(ctx, tx, userID)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveJob implements Store.
func (s *PostgresStore) RemoveJob(ctx context.Context, userID, jobID string) (int, error) {
	removed := 0
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if err := lockUser(ctx, tx, userID); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			`DELETE FROM saved_jobs WHERE user_id = $1 AND job_id = $2`, userID, jobID)
		if err != nil {
			return fmt.Errorf("removeJob: %w", err)
		}
		removed = int(tag.RowsAffected())
		if removed == 0 {
			return nil
		}
		return bumpVersion(ctx, tx, userID)
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

// SetResume implements Store.
func (s *PostgresStore) SetResume(ctx context.Context, userID, resumeURL string, skills []string) (*User, error) {
	if skills == nil {
		skills = []string{}
	}
	tag, err := s.pool.Exec(ctx,
		`UPDATE users
		 SET resume_url = $1, skills = $2, version = version + 1, updated_at = NOW()
		 WHERE id = $3`,
		resumeURL, skills, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("setResume: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrUserNotFound
	}
	return s.GetUser(ctx, userID)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (s *PostgresStore) queryJobs(ctx context.Context, q querier, userID string) ([]SavedJob, error) {
	rows, err := q.Query(ctx,
		`SELECT `+jobColumns+` FROM saved_jobs WHERE user_id = $1 ORDER BY seq`, userID)
	if err != nil {
		return nil, fmt.Errorf("queryJobs: %w", err)
	}
	defer rows.Close()

	jobs := make([]SavedJob, 0)
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("queryJobs scan: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// lockUser takes the per-user row lock that serialises saved-job mutations.
func lockUser(ctx context.Context, tx pgx.Tx, userID string) error {
	var id string
	err := tx.QueryRow(ctx, `SELECT id FROM users WHERE id = $1 FOR UPDATE`, userID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrUserNotFound
	}
	if err != nil {
		return fmt.Errorf("lock user: %w", err)
	}
	return nil
}

func bumpVersion(ctx context.Context, tx pgx.Tx, userID string) error {
	if _, err := tx.Exec(ctx,
		`UPDATE users SET version = version + 1, updated_at = NOW() WHERE id = $1`, userID,
	); err != nil {
		return fmt.Errorf("bump version: %w", err)
	}
	return nil
}
