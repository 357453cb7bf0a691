// HTTP handlers for the saved-job tracker.
//
// All routes expect an Identity placed on the request context by
// auth.Middleware; the caller mounts them under its API prefix.
//
// Routes:
//
//	GET    /user                 → get-or-create the caller's record
//	POST   /save-job             → save a listing (idempotent by _id)
//	POST   /manual-job           → add a user-entered job
//	PATCH  /job-status/{jobId}   → set status
//	PATCH  /job-notes/{jobId}    → replace notes
//	GET    /saved-jobs           → list saved jobs
//	GET    /stats                → per-status summary
//	DELETE /remove-job/{jobId}   → remove a saved job
package tracker

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"jobtracker/internal/auth"
	"jobtracker/internal/httpx"
)

const maxJobBodyBytes = 1 << 20

// Handler exposes Service over HTTP.
type Handler struct {
	svc *Service
}

// NewHandler returns a configured Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes mounts all tracker routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /user", h.getUser)
	mux.HandleFunc("POST /save-job", h.saveJob)
	mux.HandleFunc("POST /manual-job", h.addManualJob)
	mux.HandleFunc("PATCH /job-status/{jobId}", h.updateStatus)
	mux.HandleFunc("PATCH /job-notes/{jobId}", h.updateNotes)
	mux.HandleFunc("GET /saved-jobs", h.listJobs)
	mux.HandleFunc("GET /stats", h.stats)
	mux.HandleFunc("DELETE /remove-job/{jobId}", h.removeJob)
}

// ─── Individual handlers ──────────────────────────────────────────────────────

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	user, err := h.svc.GetOrCreate(r.Context(), id)
	if err != nil {
		writeError(w, "getUser", err)
		return
	}
	httpx.OK(w, httpx.H{"user": user})
}

func (h *Handler) saveJob(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	job, ok := decodeJob(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.GetOrCreate(r.Context(), id); err != nil {
		writeError(w, "saveJob", err)
		return
	}

	res, err := h.svc.Save(r.Context(), id.UserID, job)
	if err != nil {
		writeError(w, "saveJob", err)
		return
	}
	switch res.Outcome {
	case SaveAlreadySaved:
		httpx.Fail(w, "Job already saved")
	case SaveAccepted:
		httpx.OK(w, httpx.H{"message": "Job saved successfully", "job": res.Job})
	}
}

func (h *Handler) addManualJob(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	job, ok := decodeJob(w, r)
	if !ok {
		return
	}
	if _, err := h.svc.GetOrCreate(r.Context(), id); err != nil {
		writeError(w, "addManualJob", err)
		return
	}

	saved, err := h.svc.AddManual(r.Context(), id.UserID, job)
	if err != nil {
		writeError(w, "addManualJob", err)
		return
	}
	httpx.OK(w, httpx.H{"message": "Manual job added", "job": saved})
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Error(w, "invalid JSON body", http.StatusBadRequest)
		return
	}

	job, err := h.svc.UpdateStatus(r.Context(), id.UserID, r.PathValue("jobId"), body.Status)
	if err != nil {
		writeError(w, "updateStatus", err)
		return
	}
	httpx.OK(w, httpx.H{"message": "Job updated successfully", "job": job})
}

func (h *Handler) updateNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	var body struct {
		Notes *string `json:"notes"`
	}
	if err := httpx.DecodeJSON(r, &body); err != nil || body.Notes == nil {
		httpx.Error(w, "body must contain notes", http.StatusBadRequest)
		return
	}

	job, err := h.svc.UpdateNotes(r.Context(), id.UserID, r.PathValue("jobId"), *body.Notes)
	if err != nil {
		writeError(w, "updateNotes", err)
		return
	}
	httpx.OK(w, httpx.H{"message": "Notes updated", "job": job})
}

func (h *Handler) listJobs(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	jobs, err := h.svc.List(r.Context(), id.UserID)
	if err != nil {
		writeError(w, "listJobs", err)
		return
	}
	httpx.OK(w, httpx.H{"jobs": jobs})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	st, err := h.svc.Stats(r.Context(), id.UserID)
	if err != nil {
		writeError(w, "stats", err)
		return
	}
	httpx.OK(w, httpx.H{"stats": st})
}

func (h *Handler) removeJob(w http.ResponseWriter, r *http.Request) {
	id, ok := identity(w, r)
	if !ok {
		return
	}
	err := h.svc.Remove(r.Context(), id.UserID, r.PathValue("jobId"))
	if errors.Is(err, ErrJobNotFound) {
		httpx.Error(w, "Job not found in saved jobs", http.StatusNotFound)
		return
	}
	if err != nil {
		writeError(w, "removeJob", err)
		return
	}
	httpx.OK(w, httpx.H{"message": "Job removed successfully"})
}

// ─── Helpers ─────────────────────────────────────────────────────────────────

func identity(w http.ResponseWriter, r *http.Request) (auth.Identity, bool) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		httpx.Error(w, "Not authorized, login required", http.StatusUnauthorized)
	}
	return id, ok
}

// decodeJob reads a {"job": {...}} body, validating it against the job schema.
func decodeJob(w http.ResponseWriter, r *http.Request) (SavedJob, bool) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJobBodyBytes))
	if err != nil {
		httpx.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
		return SavedJob{}, false
	}
	if err := ValidateJobPayload(raw); err != nil {
		httpx.Error(w, err.Error(), http.StatusBadRequest)
		return SavedJob{}, false
	}

	var body struct {
		Job jobPayload `json:"job"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		httpx.Error(w, "invalid JSON body", http.StatusBadRequest)
		return SavedJob{}, false
	}
	return body.Job.savedJob(), true
}

// jobPayload shadows the fields clients send loosely: _id may be null and
// status may be any JSON value. Anything but a string status is treated as
// absent and coerced on save.
type jobPayload struct {
	SavedJob
	ID     *string         `json:"_id"`
	Status json.RawMessage `json:"status"`
}

func (p jobPayload) savedJob() SavedJob {
	job := p.SavedJob
	job.ID = ""
	if p.ID != nil {
		job.ID = *p.ID
	}
	job.Status = ""
	var s string
	if len(p.Status) > 0 && json.Unmarshal(p.Status, &s) == nil {
		job.Status = Status(s)
	}
	return job
}

// writeError maps domain errors to status codes. Anything unrecognised is a
// 500 with a generic message; details go to the log.
func writeError(w http.ResponseWriter, op string, err error) {
	var ve *ValidationError
	switch {
	case errors.Is(err, ErrUserNotFound):
		httpx.Error(w, "User not found", http.StatusNotFound)
	case errors.Is(err, ErrJobNotFound):
		httpx.Error(w, "Job not found", http.StatusNotFound)
	case errors.As(err, &ve):
		httpx.Error(w, ve.Msg, http.StatusBadRequest)
	default:
		log.Printf("[tracker] %s error: %v", op, err)
		httpx.Error(w, "Server error", http.StatusInternalServerError)
	}
}
