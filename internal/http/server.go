// Package http exposes the JSON API the UI talks to.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"nadgodziny/internal/core"
	"nadgodziny/internal/geocode"
	"nadgodziny/internal/log"
	"nadgodziny/internal/profile"
	"nadgodziny/internal/store"
)

// ReportQueue hands a report request to the delivery side.
type ReportQueue interface {
	PublishReportRequest(ctx context.Context, year, month int) error
}

// Geocoder resolves coordinates to a locality name.
type Geocoder interface {
	Resolve(ctx context.Context, coords core.Coordinates) (string, error)
}

var _ Geocoder = (*geocode.Client)(nil)

type Server struct {
	records  *store.RecordStore
	profiles *profile.Coordinator
	reports  ReportQueue
	geocoder Geocoder
	logger   *log.Logger
}

func NewServer(records *store.RecordStore, profiles *profile.Coordinator, reports ReportQueue, geocoder Geocoder, logger *log.Logger) *Server {
	return &Server{
		records:  records,
		profiles: profiles,
		reports:  reports,
		geocoder: geocoder,
		logger:   logger.WithComponent(log.ComponentHTTP),
	}
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/profile", s.handleGetProfile)
		r.Put("/profile", s.handlePutProfile)

		r.Get("/entries", s.handleListEntries)
		r.Post("/entries", s.handleAddEntry)
		r.Delete("/entries", s.handleDeleteEntries)

		r.Get("/stats", s.handleStats)

		r.Get("/report", s.handleReportPreview)
		r.Post("/report/send", s.handleReportSend)

		r.Get("/geocode", s.handleGeocode)
	})

	return r
}

// HTTPServer wraps the router in an http.Server with the usual
// timeouts set.
func (s *Server) HTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:           addr,
		Handler:        s.Router(),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16, // 64KB
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
