package tracker

import "time"

// Company is the employer reference shown on a job card.
type Company struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// SavedJob is one tracked application owned by exactly one User.
type SavedJob struct {
	ID          string    `json:"_id"`
	Title       string    `json:"title"`
	Company     Company   `json:"companyId"`
	Location    string    `json:"location"`
	Level       string    `json:"level"`
	Description string    `json:"description"`
	Stipend     string    `json:"stipend"`
	ApplyDate   string    `json:"applyDate"`
	Status      Status    `json:"status"`
	Notes       string    `json:"notes"`
	DateSaved   time.Time `json:"dateSaved"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// User is the unit of consistency: every SavedJob mutation is atomic with
// respect to its owning User and bumps Version.
type User struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	SavedJobs []SavedJob `json:"savedJobs"`
	ResumeURL string     `json:"resumeUrl"`
	Skills    []string   `json:"skills"`
	Version   int64      `json:"version"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

// SaveOutcome distinguishes a stored job from an idempotent no-op.
type SaveOutcome int

const (
	SaveAccepted SaveOutcome = iota
	SaveAlreadySaved
)

// SaveResult is returned by Service.Save. A duplicate is an outcome, not an error.
type SaveResult struct {
	Outcome SaveOutcome
	Job     SavedJob
}

// Accepted reports whether the job was appended.
func (r SaveResult) Accepted() bool { return r.Outcome == SaveAccepted }

// StatusCount is one bar of the dashboard histogram.
type StatusCount struct {
	Status Status `json:"status"`
	Count  int    `json:"count"`
}

// Stats summarises a user's pipeline.
type Stats struct {
	Total         int           `json:"total"`
	ByStatus      []StatusCount `json:"byStatus"`
	Offers        int           `json:"offers"`
	RejectionRate float64       `json:"rejectionRate"` // percent, one decimal
	MostCommon    Status        `json:"mostCommon,omitempty"`
}
