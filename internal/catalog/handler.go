package catalog

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"jobtracker/internal/httpx"
)

// Handler serves the public catalog.
//
//	GET /jobs?q=&location=&limit=  → search, newest first
//	GET /jobs/{id}                 → one listing
type Handler struct {
	store Store
}

// NewHandler returns a configured Handler.
func NewHandler(store Store) *Handler {
	return &Handler{store: store}
}

// RegisterRoutes mounts the catalog routes on mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /jobs", h.search)
	mux.HandleFunc("GET /jobs/{id}", h.get)
}

func (h *Handler) search(w http.ResponseWriter, r *http.Request) {
	q := Query{
		Text:     r.URL.Query().Get("q"),
		Location: r.URL.Query().Get("location"),
	}
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			httpx.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		q.Limit = n
	}

	jobs, err := h.store.Search(r.Context(), q)
	if err != nil {
		log.Printf("[catalog] search error: %v", err)
		httpx.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	httpx.OK(w, httpx.H{"jobs": jobs})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	job, err := h.store.Get(r.Context(), r.PathValue("id"))
	if errors.Is(err, ErrNotFound) {
		httpx.Error(w, ErrNotFound.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[catalog] get error: %v", err)
		httpx.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	httpx.OK(w, httpx.H{"job": job})
}
