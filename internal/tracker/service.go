package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"jobtracker/internal/auth"
	"jobtracker/internal/events"
)

// ─── Service ─────────────────────────────────────────────────────────────────

// Service encapsulates the saved-job lifecycle rules.
// It has no dependency on net/http and can be used by any transport layer.
type Service struct {
	store Store
	pub   events.Publisher
	now   func() time.Time
	newID func() string
}

// Option customises a Service.
type Option func(*Service)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithIDGenerator overrides the generator used for jobs saved without an _id.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) { s.newID = gen }
}

// NewService returns a configured Service. A nil publisher disables events.
func NewService(store Store, pub events.Publisher, opts ...Option) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	s := &Service{
		store: store,
		pub:   pub,
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ─── Business logic ───────────────────────────────────────────────────────────

// GetOrCreate returns the user for id, creating it with the resolver's
// name/email (or placeholders) on first access.
func (s *Service) GetOrCreate(ctx context.Context, id auth.Identity) (*User, error) {
	u, err := s.store.GetUser(ctx, id.UserID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, fmt.Errorf("getOrCreate lookup: %w", err)
	}

	now := s.now().UTC()
	name := id.Name
	if name == "" {
		name = "No Name"
	}
	email := id.Email
	if email == "" {
		email = fmt.Sprintf("noemail_%d@example.com", now.UnixMilli())
	}

	u, err = s.store.CreateUserIfAbsent(ctx, User{
		ID:        id.UserID,
		Name:      name,
		Email:     email,
		SavedJobs: []SavedJob{},
		Skills:    []string{},
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("getOrCreate insert: %w", err)
	}
	log.Printf("[tracker] created user %s", u.ID)
	return u, nil
}

// Save appends job unless the user already tracks a job with the same _id.
// The duplicate check and the append are one atomic store operation.
func (s *Service) Save(ctx context.Context, userID string, job SavedJob) (SaveResult, error) {
	job = s.normalize(job)

	appended, err := s.store.AppendJob(ctx, userID, job, true)
	if err != nil {
		return SaveResult{}, fmt.Errorf("save: %w", err)
	}
	if !appended {
		return SaveResult{Outcome: SaveAlreadySaved, Job: job}, nil
	}

	s.publish(ctx, events.JobSaved, map[string]string{
		"userId": userID,
		"jobId":  job.ID,
		"status": string(job.Status),
		"manual": "false",
	})
	return SaveResult{Outcome: SaveAccepted, Job: job}, nil
}

// AddManual appends a user-entered job. Manual entries skip the duplicate check.
func (s *Service) AddManual(ctx context.Context, userID string, job SavedJob) (*SavedJob, error) {
	job = s.normalize(job)

	if _, err := s.store.AppendJob(ctx, userID, job, false); err != nil {
		return nil, fmt.Errorf("addManual: %w", err)
	}

	s.publish(ctx, events.JobSaved, map[string]string{
		"userId": userID,
		"jobId":  job.ID,
		"status": string(job.Status),
		"manual": "true",
	})
	return &job, nil
}

// UpdateStatus moves a saved job to newStatus.
// Returns ErrUserNotFound / ErrJobNotFound before validating the status, and
// a *ValidationError when newStatus is outside the status set.
func (s *Service) UpdateStatus(ctx context.Context, userID, jobID, newStatus string) (*SavedJob, error) {
	var from Status
	job, err := s.store.UpdateJob(ctx, userID, jobID, func(j *SavedJob) error {
		st, err := ParseStatus(newStatus)
		if err != nil {
			return &ValidationError{Msg: "Invalid status value"}
		}
		from = j.Status
		j.Status = st
		j.LastUpdated = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.JobStatusChanged, map[string]string{
		"userId": userID,
		"jobId":  jobID,
		"from":   string(from),
		"to":     string(job.Status),
	})
	return job, nil
}

// UpdateNotes replaces the free-text notes on a saved job.
func (s *Service) UpdateNotes(ctx context.Context, userID, jobID, notes string) (*SavedJob, error) {
	return s.store.UpdateJob(ctx, userID, jobID, func(j *SavedJob) error {
		j.Notes = notes
		j.LastUpdated = s.now().UTC()
		return nil
	})
}

// List returns the user's saved jobs in stored order.
func (s *Service) List(ctx context.Context, userID string) ([]SavedJob, error) {
	return s.store.ListJobs(ctx, userID)
}

// Remove deletes the saved job from the caller's collection only.
func (s *Service) Remove(ctx context.Context, userID, jobID string) error {
	n, err := s.store.RemoveJob(ctx, userID, jobID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrJobNotFound
	}

	s.publish(ctx, events.JobRemoved, map[string]string{
		"userId": userID,
		"jobId":  jobID,
	})
	return nil
}

// Stats summarises the user's saved jobs per status.
func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	jobs, err := s.store.ListJobs(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ComputeStats(jobs), nil
}

// ComputeStats builds the dashboard summary. Ties for MostCommon go to the
// earlier status in workflow order.
func ComputeStats(jobs []SavedJob) *Stats {
	counts := make(map[Status]int, len(allStatuses))
	for _, j := range jobs {
		counts[j.Status]++
	}

	st := &Stats{Total: len(jobs), ByStatus: make([]StatusCount, 0, len(allStatuses))}
	best := 0
	for _, status := range allStatuses {
		c := counts[status]
		st.ByStatus = append(st.ByStatus, StatusCount{Status: status, Count: c})
		if IsOffer(status) {
			st.Offers += c
		}
		if c > best {
			best = c
			st.MostCommon = status
		}
	}
	if st.Total > 0 {
		rate := float64(counts[StatusRejected]) / float64(st.Total) * 100
		st.RejectionRate = math.Round(rate*10) / 10
	}
	return st
}

// normalize assigns an _id, coerces the status and stamps timestamps.
func (s *Service) normalize(job SavedJob) SavedJob {
	if job.ID == "" {
		job.ID = s.newID()
	}
	job.Status = CoerceStatus(string(job.Status))
	now := s.now().UTC()
	job.DateSaved = now
	job.LastUpdated = now
	return job
}

func (s *Service) publish(ctx context.Context, channel string, fields map[string]string) {
	if err := s.pub.Publish(ctx, channel, fields); err != nil {
		slog.Warn("publish failed", "channel", channel, "err", err)
	}
}

// ─── Sentinel errors ─────────────────────────────────────────────────────────

// ErrUserNotFound is returned when no record exists for the identity.
var ErrUserNotFound = errors.New("User not found")

// ErrJobNotFound is returned when the user has no saved job with the given _id.
var ErrJobNotFound = errors.New("Job not found")

// IsNotFound reports whether err is one of the not-found sentinels.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrUserNotFound) || errors.Is(err, ErrJobNotFound)
}

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }
