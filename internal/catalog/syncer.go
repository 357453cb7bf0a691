package catalog

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// SyncReport counts what one sync cycle did.
type SyncReport struct {
	Inserted  int
	Filtered  int
	Duplicate int
	Failed    int
}

func (r *SyncReport) add(o SyncReport) {
	r.Inserted += o.Inserted
	r.Filtered += o.Filtered
	r.Duplicate += o.Duplicate
	r.Failed += o.Failed
}

// Syncer runs the fetch → red-flag filter → dedup insert cycle for every
// configured (title × location) pair.
type Syncer struct {
	store     Store
	fetcher   Fetcher
	titles    []string
	locations []string
	redFlags  []string
	now       func() time.Time
}

// NewSyncer constructs a Syncer.
func NewSyncer(store Store, fetcher Fetcher, titles, locations, redFlags []string) *Syncer {
	return &Syncer{
		store:     store,
		fetcher:   fetcher,
		titles:    titles,
		locations: locations,
		redFlags:  redFlags,
		now:       time.Now,
	}
}

// Run executes one cycle. A failing pair is logged and skipped; Run itself
// only fails when the context is cancelled.
func (s *Syncer) Run(ctx context.Context) (SyncReport, error) {
	log.Printf("[catalog] sync started: titles=%v locations=%v", s.titles, s.locations)

	var total SyncReport
	for _, title := range s.titles {
		for _, location := range s.locations {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			rep, err := s.syncPair(ctx, title, location)
			total.add(rep)
			if err != nil {
				log.Printf("[catalog] error syncing (%q, %q): %v, continuing", title, location, err)
			}
		}
	}

	log.Printf("[catalog] sync done: inserted=%d filtered=%d duplicates=%d failed=%d",
		total.Inserted, total.Filtered, total.Duplicate, total.Failed)
	return total, nil
}

func (s *Syncer) syncPair(ctx context.Context, title, location string) (SyncReport, error) {
	var rep SyncReport
	results, err := s.fetcher.Fetch(ctx, title, location)
	if err != nil {
		return rep, fmt.Errorf("fetch: %w", err)
	}

	for _, l := range results {
		if ContainsRedFlag(l, s.redFlags) {
			rep.Filtered++
			continue
		}
		ok, err := s.store.InsertIfAbsent(ctx, s.prepare(l))
		switch {
		case err != nil:
			log.Printf("[catalog] insert error: %v", err)
			rep.Failed++
		case ok:
			rep.Inserted++
		default:
			rep.Duplicate++
		}
	}
	return rep, nil
}

// prepare assigns an id and timestamp and backfills SourceURL, the dedup
// key, and the stipend text.
func (s *Syncer) prepare(l Listing) Listing {
	l.ID = uuid.NewString()
	l.CreatedAt = s.now().UTC()
	if l.SourceURL == "" {
		l.SourceURL = fmt.Sprintf("%s:%s", l.Source, l.ExternalID)
	}
	if l.Stipend == "" {
		l.Stipend = FormatStipend(l.SalaryMin, l.SalaryMax)
	}
	return l
}

// DefaultListings is the starter feed used when no external board is
// configured.
func DefaultListings() []Listing {
	return []Listing{
		{
			Title:       "Software Engineer",
			Company:     Company{Name: "Northwind Labs"},
			Description: "Join our team to build amazing software.",
			Location:    "Remote",
			Category:    "Engineering",
			Level:       "Mid",
			SalaryMin:   80000,
		},
		{
			Title:       "Data Scientist",
			Company:     Company{Name: "Contoso Analytics"},
			Description: "Analyze and interpret complex data to help drive business decisions.",
			Location:    "New York, NY",
			Category:    "Data Science",
			Level:       "Senior",
			SalaryMin:   120000,
		},
		{
			Title:       "Product Manager",
			Company:     Company{Name: "Fabrikam"},
			Description: "Lead product development from ideation to launch.",
			Location:    "San Francisco, CA",
			Category:    "Product",
			Level:       "Senior",
			SalaryMin:   150000,
		},
		{
			Title:       "UX Designer",
			Company:     Company{Name: "Tailspin Studio"},
			Description: "Create beautiful and user-friendly designs for our platform.",
			Location:    "Austin, TX",
			Category:    "Design",
			Level:       "Mid",
			SalaryMin:   90000,
		},
	}
}

// Seed inserts DefaultListings, skipping ones already present.
func Seed(ctx context.Context, store Store) (int, error) {
	s := &Syncer{now: time.Now}
	n := 0
	for i, l := range DefaultListings() {
		l.Source = "seed"
		l.ExternalID = fmt.Sprintf("default-%d", i+1)
		ok, err := store.InsertIfAbsent(ctx, s.prepare(l))
		if err != nil {
			return n, fmt.Errorf("seed listing %q: %w", l.Title, err)
		}
		if ok {
			n++
		}
	}
	return n, nil
}
