package catalog

import (
	"context"
	"sort"
	"strings"
)

// Store persists listings.
type Store interface {
	// InsertIfAbsent stores l unless a listing with the same SourceURL exists.
	InsertIfAbsent(ctx context.Context, l Listing) (inserted bool, err error)
	// Search returns matching listings, newest first.
	Search(ctx context.Context, q Query) ([]Listing, error)
	// Get returns one listing or ErrNotFound.
	Get(ctx context.Context, id string) (*Listing, error)
}

// matches applies q's filters with case-insensitive substring tests.
func (q Query) matches(l Listing) bool {
	if q.Text != "" {
		text := strings.ToLower(q.Text)
		if !strings.Contains(strings.ToLower(l.Title), text) &&
			!strings.Contains(strings.ToLower(l.Company.Name), text) &&
			!strings.Contains(strings.ToLower(l.Description), text) {
			return false
		}
	}
	if q.Location != "" && !strings.Contains(strings.ToLower(l.Location), strings.ToLower(q.Location)) {
		return false
	}
	return true
}

// limit clamps q.Limit to [1, MaxLimit], defaulting to DefaultLimit.
func (q Query) limit() int {
	switch {
	case q.Limit <= 0:
		return DefaultLimit
	case q.Limit > MaxLimit:
		return MaxLimit
	default:
		return q.Limit
	}
}

func sortNewestFirst(ls []Listing) {
	sort.SliceStable(ls, func(i, k int) bool {
		if !ls[i].CreatedAt.Equal(ls[k].CreatedAt) {
			return ls[i].CreatedAt.After(ls[k].CreatedAt)
		}
		return ls[i].ID < ls[k].ID
	})
}
