// Package web is the HTTP surface: the agency selection and summary views,
// the CSV export, the download trigger, and the findings JSON API.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/opengrants/distiller/distill"
	"github.com/opengrants/distiller/facsearch"
	"github.com/opengrants/distiller/findings"
	"github.com/opengrants/distiller/runlog"
)

//go:embed templates
var templateFS embed.FS

// DownloadRunner runs one search-and-download session. Satisfied by
// *facsearch.Runner; tests substitute a fake.
type DownloadRunner interface {
	Run(ctx context.Context, c facsearch.SearchCriteria) (*facsearch.Result, error)
}

// Config configures the server.
type Config struct {
	// GenFile is the path of the gen dataset read per request.
	GenFile string

	// MaxBodyBytes bounds request bodies. Default 1 MiB.
	MaxBodyBytes int64
}

// Server holds the handlers' dependencies.
type Server struct {
	cfg      Config
	log      *slog.Logger
	findings *findings.Service
	runs     *runlog.Log
	runner   DownloadRunner
	tmpl     *template.Template
}

// New creates a Server and parses its templates.
func New(cfg Config, log *slog.Logger, svc *findings.Service, runs *runlog.Log, runner DownloadRunner) (*Server, error) {
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	if log == nil {
		log = slog.Default()
	}
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("web: parse templates: %w", err)
	}
	return &Server{cfg: cfg, log: log, findings: svc, runs: runs, runner: runner, tmpl: tmpl}, nil
}

// Router builds the chi router with the standard middleware stack.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(s.cfg.MaxBodyBytes))
	r.Use(s.logRequests)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/", s.handleIndex)
	r.Post("/summary", s.handleSummary)
	r.Get("/agencies/{prefix}/csv", s.handleAgencyCSV)
	r.Post("/download", s.handleDownload)
	r.Get("/runs", s.handleRecentRuns)

	r.Route("/api", func(r chi.Router) {
		r.Route("/grantees", func(r chi.Router) {
			r.Get("/", s.handleListGrantees)
			r.Post("/", s.handleCreateGrantee)
			r.Get("/{id}", s.handleGetGrantee)
			r.Put("/{id}", s.handleUpdateGrantee)
			r.Delete("/{id}", s.handleDeleteGrantee)
			r.Get("/{id}/findings", s.handleGranteeFindings)
		})
		r.Route("/agencies", func(r chi.Router) {
			r.Get("/", s.handleListAgencies)
			r.Post("/", s.handleCreateAgency)
			r.Get("/{id}", s.handleGetAgency)
			r.Put("/{id}", s.handleUpdateAgency)
			r.Delete("/{id}", s.handleDeleteAgency)
		})
		r.Route("/grants", func(r chi.Router) {
			r.Get("/", s.handleListGrants)
			r.Post("/", s.handleCreateGrant)
			r.Get("/{id}", s.handleGetGrant)
			r.Put("/{id}", s.handleUpdateGrant)
			r.Delete("/{id}", s.handleDeleteGrant)
		})
		r.Route("/findings", func(r chi.Router) {
			r.Get("/", s.handleListFindings)
			r.Post("/", s.handleCreateFinding)
			r.Get("/{id}", s.handleGetFinding)
			r.Put("/{id}", s.handleUpdateFinding)
			r.Delete("/{id}", s.handleDeleteFinding)
			r.Get("/{id}/comments", s.handleListComments)
			r.Post("/{id}/comments", s.handleCreateComment)
		})
		r.Route("/comments", func(r chi.Router) {
			r.Put("/{id}", s.handleUpdateComment)
			r.Delete("/{id}", s.handleDeleteComment)
		})
	})

	return r
}

// logRequests records one slog line per request.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("http request",
			"method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "bytes", ww.BytesWritten(),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("web: encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// agencyOption is one row of the selection form.
type agencyOption struct {
	Prefix string
	Name   string
}

// agencyOptions lists every known agency sorted by prefix.
func agencyOptions() []agencyOption {
	prefixes := distill.AgencyPrefixes()
	sort.Strings(prefixes)
	out := make([]agencyOption, 0, len(prefixes))
	for _, p := range prefixes {
		name, err := distill.AgencyName(p)
		if err != nil {
			continue
		}
		out = append(out, agencyOption{Prefix: p, Name: name})
	}
	return out
}
