package web

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/opengrants/distiller/distill"
	"github.com/opengrants/distiller/facsearch"
)

// handleIndex serves the agency selection form.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", map[string]any{
		"Agencies": agencyOptions(),
	})
}

// handleSummary renders the agency-level highlights for the selected agency.
func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	prefix := r.FormValue("agency")
	if err := distill.ValidAgencyPrefix(prefix); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	table, err := distill.LoadFile(s.cfg.GenFile)
	if err != nil {
		s.log.Error("load gen table", "path", s.cfg.GenFile, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("gen dataset unavailable"))
		return
	}
	h, err := distill.DeriveHighlights(table, prefix, s.cfg.GenFile)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	s.render(w, "summary.html", h)
}

// handleAgencyCSV streams the agency-filtered gen table as a CSV attachment.
func (s *Server) handleAgencyCSV(w http.ResponseWriter, r *http.Request) {
	prefix := chi.URLParam(r, "prefix")
	if err := distill.ValidAgencyPrefix(prefix); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	table, err := distill.LoadFile(s.cfg.GenFile)
	if err != nil {
		s.log.Error("load gen table", "path", s.cfg.GenFile, "error", err)
		writeError(w, http.StatusInternalServerError, errors.New("gen dataset unavailable"))
		return
	}
	filtered, err := table.FilterByAgency(prefix)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", "agency_"+prefix+".csv"))
	if err := filtered.WriteCSV(w); err != nil {
		s.log.Error("write csv", "error", err)
	}
}

// handleDownload runs one audit download session for the submitted agency.
// The request blocks until every triggered download has completed.
func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	c := facsearch.NewSearchCriteria(r.FormValue("agency"), r.FormValue("extension"))
	if v := r.FormValue("date_from"); v != "" {
		d, err := parseFACDate("date_from", v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		c.DateFrom = d
	}
	if v := r.FormValue("date_to"); v != "" {
		d, err := parseFACDate("date_to", v)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		c.DateTo = d
	}
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	runID := s.runs.Start(r.Context(), c.AgencyPrefix, c.SubagencyExtension,
		facsearch.FormatFACDate(c.DateFrom), facsearch.FormatFACDate(c.DateTo))
	res, err := s.runner.Run(r.Context(), c)
	if err != nil {
		s.runs.Fail(r.Context(), runID, err)
		s.log.Error("download session failed", "run_id", runID, "error", err)
		writeError(w, downloadStatus(err), err)
		return
	}
	s.runs.Complete(r.Context(), runID,
		res.Pages,
		res.Triggered[facsearch.CategoryForm],
		res.Triggered[facsearch.CategoryAudit],
		len(res.Files))

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprintf(w, "Downloads complete: %d pages, %d forms, %d audits, %d files.\n",
		res.Pages,
		res.Triggered[facsearch.CategoryForm],
		res.Triggered[facsearch.CategoryAudit],
		len(res.Files))
}

func parseFACDate(field, v string) (time.Time, error) {
	d, err := time.Parse("01/02/2006", v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s %q is not MM/DD/YYYY", field, v)
	}
	return d, nil
}

// downloadStatus maps session errors onto HTTP statuses.
func downloadStatus(err error) int {
	switch {
	case errors.Is(err, facsearch.ErrInvalidCriteria):
		return http.StatusUnprocessableEntity
	case errors.Is(err, facsearch.ErrDriverMissing):
		return http.StatusServiceUnavailable
	case errors.Is(err, facsearch.ErrDownloadTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// handleRecentRuns returns the latest download runs.
func (s *Server) handleRecentRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := s.runs.Recent(r.Context(), 20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("render template", "template", name, "error", err)
	}
}
