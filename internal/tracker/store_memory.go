package tracker

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/hashicorp/go-memdb"
)

const (
	tableUsers     = "users"
	tableSavedJobs = "saved_jobs"
)

// memJob is a saved_jobs row; Seq preserves insertion order.
type memJob struct {
	Seq    uint64
	UserID string
	JobID  string
	Job    SavedJob
}

// MemoryStore is an in-process Store on go-memdb. memdb allows one write
// transaction at a time, which gives every mutation the same per-user
// atomicity as the Postgres row lock. Stored objects are never mutated in
// place; updates insert a copy.
type MemoryStore struct {
	db  *memdb.MemDB
	seq uint64 // guarded by the memdb writer lock
	now func() time.Time
}

func memorySchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableUsers: {
				Name: tableUsers,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}},
				},
			},
			tableSavedJobs: {
				Name: tableSavedJobs,
				Indexes: map[string]*memdb.IndexSchema{
					"id":   {Name: "id", Unique: true, Indexer: &memdb.UintFieldIndex{Field: "Seq"}},
					"user": {Name: "user", Indexer: &memdb.StringFieldIndex{Field: "UserID"}},
					"user_job": {
						Name: "user_job",
						Indexer: &memdb.CompoundIndex{Indexes: []memdb.Indexer{
							&memdb.StringFieldIndex{Field: "UserID"},
							&memdb.StringFieldIndex{Field: "JobID"},
						}},
					},
				},
			},
		},
	}
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() (*MemoryStore, error) {
	db, err := memdb.NewMemDB(memorySchema())
	if err != nil {
		return nil, fmt.Errorf("memdb.NewMemDB: %w", err)
	}
	return &MemoryStore{db: db, now: time.Now}, nil
}

// GetUser implements Store.
func (m *MemoryStore) GetUser(_ context.Context, userID string) (*User, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	u, err := m.lookupUser(txn, userID)
	if err != nil {
		return nil, err
	}
	jobs, err := m.jobsOf(txn, userID)
	if err != nil {
		return nil, err
	}
	u.SavedJobs = jobs
	return u, nil
}

// CreateUserIfAbsent implements Store.
func (m *MemoryStore) CreateUserIfAbsent(ctx context.Context, u User) (*User, error) {
	txn := m.db.Txn(true)
	existing, err := txn.First(tableUsers, "id", u.ID)
	if err != nil {
		txn.Abort()
		return nil, fmt.Errorf("memdb lookup user: %w", err)
	}
	if existing == nil {
		rec := u
		rec.SavedJobs = nil
		rec.Skills = cloneStrings(u.Skills)
		if err := txn.Insert(tableUsers, &rec); err != nil {
			txn.Abort()
			return nil, fmt.Errorf("memdb insert user: %w", err)
		}
		for _, j := range u.SavedJobs {
			if err := m.insertJob(txn, u.ID, j); err != nil {
				txn.Abort()
				return nil, err
			}
		}
	}
	txn.Commit()
	return m.GetUser(ctx, u.ID)
}

// AppendJob implements Store.
func (m *MemoryStore) AppendJob(_ context.Context, userID string, job SavedJob, ifAbsent bool) (bool, error) {
	txn := m.db.Txn(true)
	defer txn.Abort()

	if _, err := m.lookupUser(txn, userID); err != nil {
		return false, err
	}
	if ifAbsent {
		dup, err := txn.First(tableSavedJobs, "user_job", userID, job.ID)
		if err != nil {
			return false, fmt.Errorf("memdb lookup job: %w", err)
		}
		if dup != nil {
			return false, nil
		}
	}
	if err := m.insertJob(txn, userID, job); err != nil {
		return false, err
	}
	if err := m.touchUser(txn, userID, nil); err != nil {
		return false, err
	}
	txn.Commit()
	return true, nil
}

// ListJobs implements Store.
func (m *MemoryStore) ListJobs(_ context.Context, userID string) ([]SavedJob, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	if _, err := m.lookupUser(txn, userID); err != nil {
		return nil, err
	}
	return m.jobsOf(txn, userID)
}

// UpdateJob implements Store.
func (m *MemoryStore) UpdateJob(_ context.Context, userID, jobID string, mutate func(*SavedJob) error) (*SavedJob, error) {
	txn := m.db.Txn(true)
	defer txn.Abort()

	if _, err := m.lookupUser(txn, userID); err != nil {
		return nil, err
	}
	rows, err := m.rowsFor(txn, "user_job", userID, jobID)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrJobNotFound
	}

	updated := *rows[0]
	if err := mutate(&updated.Job); err != nil {
		return nil, err
	}
	updated.Job.ID = jobID
	if err := txn.Insert(tableSavedJobs, &updated); err != nil {
		return nil, fmt.Errorf("memdb update job: %w", err)
	}
	if err := m.touchUser(txn, userID, nil); err != nil {
		return nil, err
	}
	txn.Commit()

	out := updated.Job
	return &out, nil
}

// RemoveJob implements Store.
func (m *MemoryStore) RemoveJob(_ context.Context, userID, jobID string) (int, error) {
	txn := m.db.Txn(true)
	defer txn.Abort()

	if _, err := m.lookupUser(txn, userID); err != nil {
		return 0, err
	}
	n, err := txn.DeleteAll(tableSavedJobs, "user_job", userID, jobID)
	if err != nil {
		return 0, fmt.Errorf("memdb delete jobs: %w", err)
	}
	if n == 0 {
		return 0, nil
	}
	if err := m.touchUser(txn, userID, nil); err != nil {
		return 0, err
	}
	txn.Commit()
	return n, nil
}

// SetResume implements Store.
func (m *MemoryStore) SetResume(ctx context.Context, userID, resumeURL string, skills []string) (*User, error) {
	txn := m.db.Txn(true)
	err := m.touchUser(txn, userID, func(u *User) {
		u.ResumeURL = resumeURL
		u.Skills = cloneStrings(skills)
	})
	if err != nil {
		txn.Abort()
		return nil, err
	}
	txn.Commit()
	return m.GetUser(ctx, userID)
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func (m *MemoryStore) lookupUser(txn *memdb.Txn, userID string) (*User, error) {
	raw, err := txn.First(tableUsers, "id", userID)
	if err != nil {
		return nil, fmt.Errorf("memdb lookup user: %w", err)
	}
	if raw == nil {
		return nil, ErrUserNotFound
	}
	u := *raw.(*User)
	u.Skills = cloneStrings(u.Skills)
	return &u, nil
}

// touchUser bumps Version/UpdatedAt and applies an optional edit.
func (m *MemoryStore) touchUser(txn *memdb.Txn, userID string, edit func(*User)) error {
	u, err := m.lookupUser(txn, userID)
	if err != nil {
		return err
	}
	if edit != nil {
		edit(u)
	}
	u.Version++
	u.UpdatedAt = m.now().UTC()
	if err := txn.Insert(tableUsers, u); err != nil {
		return fmt.Errorf("memdb update user: %w", err)
	}
	return nil
}

func (m *MemoryStore) insertJob(txn *memdb.Txn, userID string, job SavedJob) error {
	m.seq++
	row := &memJob{Seq: m.seq, UserID: userID, JobID: job.ID, Job: job}
	if err := txn.Insert(tableSavedJobs, row); err != nil {
		return fmt.Errorf("memdb insert job: %w", err)
	}
	return nil
}

// rowsFor returns matching rows ordered by Seq.
func (m *MemoryStore) rowsFor(txn *memdb.Txn, index string, args ...any) ([]*memJob, error) {
	it, err := txn.Get(tableSavedJobs, index, args...)
	if err != nil {
		return nil, fmt.Errorf("memdb list jobs: %w", err)
	}
	var rows []*memJob
	for raw := it.Next(); raw != nil; raw = it.Next() {
		rows = append(rows, raw.(*memJob))
	}
	sort.Slice(rows, func(i, k int) bool { return rows[i].Seq < rows[k].Seq })
	return rows, nil
}

func (m *MemoryStore) jobsOf(txn *memdb.Txn, userID string) ([]SavedJob, error) {
	rows, err := m.rowsFor(txn, "user", userID)
	if err != nil {
		return nil, err
	}
	jobs := make([]SavedJob, 0, len(rows))
	for _, r := range rows {
		jobs = append(jobs, r.Job)
	}
	return jobs, nil
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}
