// Package resume stores an uploaded résumé with the blob host, extracts its
// text and records the matched skill keywords on the owner's user record.
package resume

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"jobtracker/internal/events"
	"jobtracker/internal/tracker"
)

var (
	// ErrNoFile is returned when the request carries no file payload.
	ErrNoFile = errors.New("No file uploaded")
	// ErrUnsupportedType is returned for extensions other than AllowedExtensions.
	ErrUnsupportedType = errors.New("unsupported file type")
)

// AllowedExtensions lists the accepted résumé formats.
var AllowedExtensions = []string{".pdf", ".docx", ".doc", ".txt"}

// RecordWriter persists the résumé outcome on the user record.
type RecordWriter interface {
	SetResume(ctx context.Context, userID, resumeURL string, skills []string) (*tracker.User, error)
}

// Result is what Ingest returns to the caller.
type Result struct {
	URL    string   `json:"resumeUrl"`
	Skills []string `json:"skills"`
}

// Ingester runs the upload → extract → match → persist pipeline.
type Ingester struct {
	blobs      BlobStore
	extractor  TextExtractor
	records    RecordWriter
	pub        events.Publisher
	uploadsDir string
}

// NewIngester returns a configured Ingester. A nil publisher disables events.
func NewIngester(blobs BlobStore, extractor TextExtractor, records RecordWriter, pub events.Publisher, uploadsDir string) *Ingester {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Ingester{
		blobs:      blobs,
		extractor:  extractor,
		records:    records,
		pub:        pub,
		uploadsDir: uploadsDir,
	}
}

// Ingest stores the résumé and replaces the user's URL and skills. The
// transient local copy is removed on every path. There is no rollback: if
// the record write fails after the upload succeeded, the upload stays.
func (in *Ingester) Ingest(ctx context.Context, userID, filename string, r io.Reader) (*Result, error) {
	if r == nil || filename == "" {
		return nil, ErrNoFile
	}
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowed(ext) {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}

	path, err := in.spool(r, ext)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("remove transient upload", "path", path, "err", err)
		}
	}()

	url, err := in.blobs.Put(ctx, "resumes/"+userID, "resume"+ext, path)
	if err != nil {
		return nil, fmt.Errorf("ingest upload: %w", err)
	}

	text, err := in.extractor.Extract(path)
	if err != nil {
		return nil, fmt.Errorf("ingest extract: %w", err)
	}
	skills := MatchSkills(text)

	if _, err := in.records.SetResume(ctx, userID, url, skills); err != nil {
		return nil, fmt.Errorf("ingest record: %w", err)
	}
	log.Printf("[resume] user %s: stored %s, %d skills matched", userID, url, len(skills))

	if err := in.pub.Publish(ctx, events.ResumeProcessed, map[string]string{
		"userId":    userID,
		"resumeUrl": url,
		"skills":    strconv.Itoa(len(skills)),
	}); err != nil {
		slog.Warn("publish failed", "channel", events.ResumeProcessed, "err", err)
	}
	return &Result{URL: url, Skills: skills}, nil
}

// spool copies r into a uniquely named file under the uploads directory.
func (in *Ingester) spool(r io.Reader, ext string) (string, error) {
	if err := os.MkdirAll(in.uploadsDir, 0o755); err != nil {
		return "", fmt.Errorf("create uploads dir: %w", err)
	}
	f, err := os.CreateTemp(in.uploadsDir, "resume-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create transient file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n == 0 {
		err = ErrNoFile
	}
	if err != nil {
		_ = os.Remove(f.Name())
		if errors.Is(err, ErrNoFile) {
			return "", err
		}
		return "", fmt.Errorf("save transient file: %w", err)
	}
	return f.Name(), nil
}

func allowed(ext string) bool {
	for _, e := range AllowedExtensions {
		if e == ext {
			return true
		}
	}
	return false
}
