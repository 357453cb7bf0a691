// Package tracker implements the saved-job lifecycle: users save listings or
// add their own, move them through the application statuses, annotate them
// and remove them. Service holds the rules; Store implementations persist a
// user's record and make every saved-job mutation atomic for that user.
//
// Status set (no transition graph; any status may follow any other):
//
//	Interested, Applied, Assessment Scheduled, Assessment Completed,
//	Interview Round 1..3, Offer Received, Offer Accepted, Rejected, Withdrawn
package tracker

import "fmt"

// Status is an application status. The string values are part of the wire
// contract and of the saved_jobs CHECK constraint.
type Status string

const (
	StatusInterested          Status = "Interested"
	StatusApplied             Status = "Applied"
	StatusAssessmentScheduled Status = "Assessment Scheduled"
	StatusAssessmentCompleted Status = "Assessment Completed"
	StatusInterviewRound1     Status = "Interview Round 1"
	StatusInterviewRound2     Status = "Interview Round 2"
	StatusInterviewRound3     Status = "Interview Round 3"
	StatusOfferReceived       Status = "Offer Received"
	StatusOfferAccepted       Status = "Offer Accepted"
	StatusRejected            Status = "Rejected"
	StatusWithdrawn           Status = "Withdrawn"
)

// InitialStatus is assigned to new jobs whose status is absent or invalid.
const InitialStatus = StatusInterested

var allStatuses = []Status{
	StatusInterested,
	StatusApplied,
	StatusAssessmentScheduled,
	StatusAssessmentCompleted,
	StatusInterviewRound1,
	StatusInterviewRound2,
	StatusInterviewRound3,
	StatusOfferReceived,
	StatusOfferAccepted,
	StatusRejected,
	StatusWithdrawn,
}

// Statuses returns every valid status in workflow order.
func Statuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// Valid reports whether s is in the status set.
func (s Status) Valid() bool {
	for _, v := range allStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values. Matching is exact: no trimming, no case folding.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", fmt.Errorf("unknown application status %q", s)
	}
	return st, nil
}

// CoerceStatus returns s when valid and InitialStatus otherwise.
func CoerceStatus(s string) Status {
	if st, err := ParseStatus(s); err == nil {
		return st
	}
	return InitialStatus
}

// IsOffer returns true for both offer statuses.
func IsOffer(s Status) bool { return s == StatusOfferReceived || s == StatusOfferAccepted }
