package tracker_test

import (
	"testing"

	"jobtracker/internal/tracker"
)

// ── ParseStatus ────────────────────────────────────────────────────────────

func TestParseStatus_ValidValues(t *testing.T) {
	valid := []string{
		"Interested", "Applied", "Assessment Scheduled", "Assessment Completed",
		"Interview Round 1", "Interview Round 2", "Interview Round 3",
		"Offer Received", "Offer Accepted", "Rejected", "Withdrawn",
	}
	for _, s := range valid {
		got, err := tracker.ParseStatus(s)
		if err != nil {
			t.Errorf("ParseStatus(%q) returned unexpected error: %v", s, err)
		}
		if string(got) != s {
			t.Errorf("ParseStatus(%q) = %q, want %q", s, got, s)
		}
	}
	if n := len(tracker.Statuses()); n != len(valid) {
		t.Errorf("Statuses() has %d entries, want %d", n, len(valid))
	}
}

func TestParseStatus_Invalid(t *testing.T) {
	for _, s := range []string{"", "Bogus", "NotAStatus", "Interview Round 4"} {
		if _, err := tracker.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) expected error, got nil", s)
		}
	}
}

// Statuses are compared byte-for-byte, so casing and padding must not pass.
func TestParseStatus_CaseSensitive(t *testing.T) {
	for _, s := range []string{"applied", "APPLIED", "offer received", " Applied", "Applied "} {
		if _, err := tracker.ParseStatus(s); err == nil {
			t.Errorf("ParseStatus(%q) should reject, got nil error", s)
		}
	}
}

// ── CoerceStatus ───────────────────────────────────────────────────────────

func TestCoerceStatus(t *testing.T) {
	cases := []struct {
		in   string
		want tracker.Status
	}{
		{"", tracker.StatusInterested},
		{"Bogus", tracker.StatusInterested},
		{"Applied", tracker.StatusApplied},
		{"Withdrawn", tracker.StatusWithdrawn},
	}
	for _, c := range cases {
		if got := tracker.CoerceStatus(c.in); got != c.want {
			t.Errorf("CoerceStatus(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

// ── Statuses ───────────────────────────────────────────────────────────────

func TestStatuses_ReturnsCopy(t *testing.T) {
	s := tracker.Statuses()
	s[0] = "Mutated"
	if tracker.Statuses()[0] != tracker.StatusInterested {
		t.Error("Statuses() must not expose the package slice")
	}
}

func TestIsOffer(t *testing.T) {
	for _, s := range tracker.Statuses() {
		want := s == tracker.StatusOfferReceived || s == tracker.StatusOfferAccepted
		if tracker.IsOffer(s) != want {
			t.Errorf("IsOffer(%s) = %v, want %v", s, !want, want)
		}
	}
}
