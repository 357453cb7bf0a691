package tracker

import "context"

// Store persists users and their saved jobs. Each method is atomic for the
// named user: implementations serialise concurrent mutations of one user's
// collection (row lock in Postgres, the single writer transaction in memdb).
type Store interface {
	// GetUser returns the user with its saved jobs, or ErrUserNotFound.
	GetUser(ctx context.Context, userID string) (*User, error)

	// CreateUserIfAbsent inserts u unless a user with u.ID exists, then
	// returns the stored record.
	CreateUserIfAbsent(ctx context.Context, u User) (*User, error)

	// AppendJob adds job to the end of the user's collection. With ifAbsent
	// set, nothing is written when a job with the same ID is already present
	// and appended is false.
	AppendJob(ctx context.Context, userID string, job SavedJob, ifAbsent bool) (appended bool, err error)

	// ListJobs returns the collection in insertion order.
	ListJobs(ctx context.Context, userID string) ([]SavedJob, error)

	// UpdateJob applies mutate to the first job with jobID and persists the
	// result. If mutate returns an error nothing is written. Fails with
	// ErrUserNotFound or ErrJobNotFound before mutate is called.
	UpdateJob(ctx context.Context, userID, jobID string, mutate func(*SavedJob) error) (*SavedJob, error)

	// RemoveJob deletes every job with jobID and returns how many were removed.
	RemoveJob(ctx context.Context, userID, jobID string) (int, error)

	// SetResume replaces the résumé URL and extracted skills.
	SetResume(ctx context.Context, userID, resumeURL string, skills []string) (*User, error)
}
