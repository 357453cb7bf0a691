// Package catalog is the public job feed users browse before saving: listings
// pulled from external boards on a schedule, filtered for red flags and
// deduplicated by source URL.
package catalog

import (
	"errors"
	"fmt"
	"time"
)

// Company is the employer shown on a listing card.
type Company struct {
	Name  string `json:"name"`
	Image string `json:"image"`
}

// Listing is a normalised offer from an external job board or the seed set.
// The card fields (_id, title, companyId, location, level, description,
// stipend, applyDate) share their JSON names with a saved job, so a client
// can post a listing to /save-job unchanged.
type Listing struct {
	ID           string    `json:"_id"`
	ExternalID   string    `json:"externalId,omitempty"`
	Source       string    `json:"source"`
	Title        string    `json:"title"`
	Company      Company   `json:"companyId"`
	Location     string    `json:"location"`
	Category     string    `json:"category,omitempty"`
	Level        string    `json:"level"`
	Description  string    `json:"description"`
	Stipend      string    `json:"stipend"`
	ApplyDate    string    `json:"applyDate"`
	SalaryMin    float64   `json:"salaryMin,omitempty"`
	SalaryMax    float64   `json:"salaryMax,omitempty"`
	ContractType string    `json:"contractType,omitempty"`
	SourceURL    string    `json:"sourceUrl"`
	PublishedAt  string    `json:"publishedAt,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Query filters a catalog search. Empty fields match everything.
type Query struct {
	Text     string // title, company or description substring
	Location string
	Limit    int
}

// Search limits.
const (
	DefaultLimit = 50
	MaxLimit     = 200
)

// FormatStipend renders a salary range as the card's stipend text: "lo-hi",
// a single figure when only one bound is known, or "" when neither is.
func FormatStipend(lo, hi float64) string {
	switch {
	case lo > 0 && hi > lo:
		return fmt.Sprintf("%.0f-%.0f", lo, hi)
	case lo > 0:
		return fmt.Sprintf("%.0f", lo)
	case hi > 0:
		return fmt.Sprintf("%.0f", hi)
	default:
		return ""
	}
}

// ErrNotFound is returned when no listing has the requested id.
var ErrNotFound = errors.New("Job not found")
