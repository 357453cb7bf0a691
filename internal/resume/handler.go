package resume

import (
	"context"
	"errors"
	"log"
	"net/http"

	"jobtracker/internal/auth"
	"jobtracker/internal/httpx"
	"jobtracker/internal/tracker"
)

// FormField is the multipart field carrying the file.
const FormField = "resume"

// UserProvisioner creates the caller's record on first access.
type UserProvisioner interface {
	GetOrCreate(ctx context.Context, id auth.Identity) (*tracker.User, error)
}

// Handler exposes POST /upload-resume.
type Handler struct {
	users    UserProvisioner
	ingester *Ingester
	maxBytes int64
}

// NewHandler returns a configured Handler; maxBytes caps the request body.
func NewHandler(users UserProvisioner, ingester *Ingester, maxBytes int64) *Handler {
	return &Handler{users: users, ingester: ingester, maxBytes: maxBytes}
}

// RegisterRoutes mounts the upload route on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /upload-resume", h.upload)
}

func (h *Handler) upload(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, "Not authorized, login required", http.StatusUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	if err := r.ParseMultipartForm(h.maxBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			httpx.Error(w, "File too large", http.StatusRequestEntityTooLarge)
			return
		}
		httpx.Error(w, ErrNoFile.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile(FormField)
	if err != nil {
		httpx.Error(w, ErrNoFile.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	if _, err := h.users.GetOrCreate(r.Context(), id); err != nil {
		log.Printf("[resume] upload error: %v", err)
		httpx.Error(w, "Server error", http.StatusInternalServerError)
		return
	}

	res, err := h.ingester.Ingest(r.Context(), id.UserID, header.Filename, file)
	switch {
	case errors.Is(err, ErrNoFile), errors.Is(err, ErrUnsupportedType):
		httpx.Error(w, err.Error(), http.StatusBadRequest)
	case err != nil:
		log.Printf("[resume] upload error: %v", err)
		httpx.Error(w, "Server error", http.StatusInternalServerError)
	default:
		httpx.OK(w, httpx.H{"resumeUrl": res.URL, "skills": res.Skills})
	}
}
