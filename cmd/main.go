// jobtracker: saved-job tracker backend
//
// Lets a signed-in user save job listings, add their own, move each one
// through the application statuses, annotate and remove them, and upload a
// résumé whose skill keywords are recorded on their profile.
//
// Also serves the public job catalog, kept fresh by a cron-driven Adzuna sync.
// Lifecycle changes are published to Redis when REDIS_URL is set.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/cors"

	"jobtracker/internal/auth"
	"jobtracker/internal/catalog"
	"jobtracker/internal/config"
	"jobtracker/internal/db"
	"jobtracker/internal/events"
	"jobtracker/internal/resume"
	"jobtracker/internal/tracker"
)

const version = "1.0.0"

func main() {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[tracker-service] Config error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── Stores ───────────────────────────────────────────────────────────────
	var (
		users    tracker.Store
		listings catalog.Store
	)
	switch cfg.StoreBackend {
	case config.StorePostgres:
		log.Println("[tracker-service] Connecting to PostgreSQL…")
		pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("[tracker-service] PostgreSQL: %v", err)
		}
		defer pool.Close()
		log.Println("[tracker-service] PostgreSQL connected ✓")

		migrations := append(tracker.Migrations(), catalog.Migrations()...)
		if err := db.RunMigrations(ctx, pool, migrations...); err != nil {
			log.Fatalf("[tracker-service] Migrations: %v", err)
		}
		users = tracker.NewPostgresStore(pool)
		listings = catalog.NewPostgresStore(pool)

	case config.StoreMemory:
		log.Println("[tracker-service] Using in-memory store; data is lost on restart")
		mu, err := tracker.NewMemoryStore()
		if err != nil {
			log.Fatalf("[tracker-service] Memory store: %v", err)
		}
		ml, err := catalog.NewMemoryStore()
		if err != nil {
			log.Fatalf("[tracker-service] Memory store: %v", err)
		}
		users, listings = mu, ml
	}

	n, err := catalog.Seed(ctx, listings)
	if err != nil {
		log.Fatalf("[tracker-service] Seed catalog: %v", err)
	}
	log.Printf("[tracker-service] Seeded %d catalog listings", n)

	// ── Redis ────────────────────────────────────────────────────────────────
	var pub events.Publisher = events.Nop{}
	if cfg.RedisURL != "" {
		log.Println("[tracker-service] Connecting to Redis…")
		rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatalf("[tracker-service] Redis: %v", err)
		}
		defer rdb.Close()
		pub = events.NewRedisPublisher(rdb)
		log.Println("[tracker-service] Redis connected ✓")
	} else {
		log.Println("[tracker-service] REDIS_URL not set, events disabled")
	}

	// ── Résumé pipeline ──────────────────────────────────────────────────────
	blobs, err := resume.NewCloudinaryStore(cfg.CloudinaryURL)
	if err != nil {
		log.Fatalf("[tracker-service] Cloudinary: %v", err)
	}

	// ── Identity ─────────────────────────────────────────────────────────────
	var resolver auth.Resolver = auth.HeaderResolver{}
	if cfg.AuthMode == config.AuthJWT {
		resolver = auth.NewJWTResolver(cfg.JWTSecret)
	}
	log.Printf("[tracker-service] Auth mode: %s", cfg.AuthMode)

	svc := tracker.NewService(users, pub)
	ingester := resume.NewIngester(blobs, resume.DocconvExtractor{}, users, pub, cfg.UploadsDir)

	// ── Catalog sync ─────────────────────────────────────────────────────────
	fetcher := catalog.NewAdzunaFetcher(cfg.Catalog.AdzunaAppID, cfg.Catalog.AdzunaAppKey, cfg.Catalog.AdzunaCountry)
	var sched *catalog.Scheduler
	if fetcher.Enabled() && len(cfg.Catalog.Titles) > 0 && len(cfg.Catalog.Locations) > 0 {
		syncer := catalog.NewSyncer(listings, fetcher, cfg.Catalog.Titles, cfg.Catalog.Locations, cfg.Catalog.RedFlags)
		sched = catalog.NewScheduler(syncer, cfg.Catalog.ScrapeIntervalHours)
		if err := sched.Start(ctx); err != nil {
			log.Fatalf("[tracker-service] Scheduler: %v", err)
		}
	} else {
		log.Println("[tracker-service] Catalog sync disabled (Adzuna credentials or search terms missing)")
	}

	// ── HTTP server ──────────────────────────────────────────────────────────
	handler := newRouter(routerDeps{
		prefix:   cfg.APIPrefix,
		resolver: resolver,
		svc:      svc,
		ingester: ingester,
		listings: listings,
		maxBytes: cfg.MaxUploadBytes(),
	})
	handler = cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "token", auth.HeaderUserID, auth.HeaderUserName, auth.HeaderUserEmail},
		AllowCredentials: true,
	}).Handler(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      handler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
	}

	go func() {
		log.Printf("[tracker-service] v%s listening on :%s (api prefix %s)", version, cfg.Port, cfg.APIPrefix)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[tracker-service] HTTP server error: %v", err)
		}
	}()

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[tracker-service] Shutting down…")
	cancel()
	if sched != nil {
		sched.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[tracker-service] Shutdown error: %v", err)
	}
	log.Println("[tracker-service] Stopped.")
}

type routerDeps struct {
	prefix   string
	resolver auth.Resolver
	svc      *tracker.Service
	ingester *resume.Ingester
	listings catalog.Store
	maxBytes int64
}

// newRouter mounts /health, the public catalog under /api and the
// authenticated user API under the configured prefix.
func newRouter(d routerDeps) http.Handler {
	root := http.NewServeMux()
	root.HandleFunc("GET /health", healthHandler)

	public := http.NewServeMux()
	catalog.NewHandler(d.listings).RegisterRoutes(public)
	root.Handle("/api/jobs", http.StripPrefix("/api", public))
	root.Handle("/api/jobs/", http.StripPrefix("/api", public))

	user := http.NewServeMux()
	tracker.NewHandler(d.svc).RegisterRoutes(user)
	resume.NewHandler(d.svc, d.ingester, d.maxBytes).RegisterRoutes(user)

	prefix := strings.TrimSuffix(d.prefix, "/")
	root.Handle(prefix+"/", http.StripPrefix(prefix, auth.Middleware(d.resolver)(user)))
	return root
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "tracker-service",
		"version": version,
	})
}
