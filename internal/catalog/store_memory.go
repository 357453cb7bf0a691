package catalog

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-memdb"
)

const tableListings = "listings"

// MemoryStore keeps listings in go-memdb with unique id and source_url
// indexes.
type MemoryStore struct {
	db *memdb.MemDB
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() (*MemoryStore, error) {
	schema := &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableListings: {
				Name: tableListings,
				Indexes: map[string]*memdb.IndexSchema{
					"id":         {Name: "id", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "ID"}},
					"source_url": {Name: "source_url", Unique: true, Indexer: &memdb.StringFieldIndex{Field: "SourceURL"}},
				},
			},
		},
	}
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, fmt.Errorf("memdb.NewMemDB: %w", err)
	}
	return &MemoryStore{db: db}, nil
}

// InsertIfAbsent implements Store.
func (m *MemoryStore) InsertIfAbsent(_ context.Context, l Listing) (bool, error) {
	txn := m.db.Txn(true)
	defer txn.Abort()

	dup, err := txn.First(tableListings, "source_url", l.SourceURL)
	if err != nil {
		return false, fmt.Errorf("memdb lookup listing: %w", err)
	}
	if dup != nil {
		return false, nil
	}
	rec := l
	if err := txn.Insert(tableListings, &rec); err != nil {
		return false, fmt.Errorf("memdb insert listing: %w", err)
	}
	txn.Commit()
	return true, nil
}

// Search implements Store.
func (m *MemoryStore) Search(_ context.Context, q Query) ([]Listing, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableListings, "id")
	if err != nil {
		return nil, fmt.Errorf("memdb list listings: %w", err)
	}
	out := make([]Listing, 0)
	for raw := it.Next(); raw != nil; raw = it.Next() {
		l := *raw.(*Listing)
		if q.matches(l) {
			out = append(out, l)
		}
	}
	sortNewestFirst(out)
	if n := q.limit(); len(out) > n {
		out = out[:n]
	}
	return out, nil
}

// Get implements Store.
func (m *MemoryStore) Get(_ context.Context, id string) (*Listing, error) {
	txn := m.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableListings, "id", id)
	if err != nil {
		return nil, fmt.Errorf("memdb get listing: %w", err)
	}
	if raw == nil {
		return nil, ErrNotFound
	}
	l := *raw.(*Listing)
	return &l, nil
}
