package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/opengrants/distiller/findings"
)

// apiStatus maps service errors onto HTTP statuses.
func apiStatus(err error) int {
	switch {
	case errors.Is(err, findings.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, findings.ErrInvalidInput):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("malformed request body"))
		return false
	}
	return true
}

// Grantees.

func (s *Server) handleListGrantees(w http.ResponseWriter, r *http.Request) {
	out, err := s.findings.ListGrantees(r.Context())
	if err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGrantee(w http.ResponseWriter, r *http.Request) {
	var g findings.Grantee
	if !decodeBody(w, r, &g) {
		return
	}
	if err := s.findings.CreateGrantee(r.Context(), &g); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, &g)
}

func (s *Server) handleGetGrantee(w http.ResponseWriter, r *http.Request) {
	g, err := s.findings.GetGrantee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGrantee(w http.ResponseWriter, r *http.Request) {
	var g findings.Grantee
	if !decodeBody(w, r, &g) {
		return
	}
	g.ID = chi.URLParam(r, "id")
	if err := s.findings.UpdateGrantee(r.Context(), &g); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, &g)
}

func (s *Server) handleDeleteGrantee(w http.ResponseWriter, r *http.Request) {
	if err := s.findings.DeleteGrantee(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGranteeFindings(w http.ResponseWriter, r *http.Request) {
	out, err := s.findings.ListFindingsByGrantee(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// Agencies.

func (s *Server) handleListAgencies(w http.ResponseWriter, r *http.Request) {
	out, err := s.findings.ListAgencies(r.Context())
	if err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateAgency(w http.ResponseWriter, r *http.Request) {
	var a findings.Agency
	if !decodeBody(w, r, &a) {
		return
	}
	if err := s.findings.CreateAgency(r.Context(), &a); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, &a)
}

func (s *Server) handleGetAgency(w http.ResponseWriter, r *http.Request) {
	a, err := s.findings.GetAgency(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

func (s *Server) handleUpdateAgency(w http.ResponseWriter, r *http.Request) {
	var a findings.Agency
	if !decodeBody(w, r, &a) {
		return
	}
	a.ID = chi.URLParam(r, "id")
	if err := s.findings.UpdateAgency(r.Context(), &a); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, &a)
}

func (s *Server) handleDeleteAgency(w http.ResponseWriter, r *http.Request) {
	if err := s.findings.DeleteAgency(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Grants.

func (s *Server) handleListGrants(w http.ResponseWriter, r *http.Request) {
	out, err := s.findings.ListGrants(r.Context())
	if err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateGrant(w http.ResponseWriter, r *http.Request) {
	var g findings.Grant
	if !decodeBody(w, r, &g) {
		return
	}
	if err := s.findings.CreateGrant(r.Context(), &g); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, &g)
}

func (s *Server) handleGetGrant(w http.ResponseWriter, r *http.Request) {
	g, err := s.findings.GetGrant(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, g)
}

func (s *Server) handleUpdateGrant(w http.ResponseWriter, r *http.Request) {
	var g findings.Grant
	if !decodeBody(w, r, &g) {
		return
	}
	g.ID = chi.URLParam(r, "id")
	if err := s.findings.UpdateGrant(r.Context(), &g); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, &g)
}

func (s *Server) handleDeleteGrant(w http.ResponseWriter, r *http.Request) {
	if err := s.findings.DeleteGrant(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Findings.

func (s *Server) handleListFindings(w http.ResponseWriter, r *http.Request) {
	var (
		out []*findings.Finding
		err error
	)
	if r.URL.Query().Get("status") == string(findings.StatusNew) {
		out, err = s.findings.ListNewFindings(r.Context())
	} else {
		out, err = s.findings.ListFindings(r.Context())
	}
	if err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateFinding(w http.ResponseWriter, r *http.Request) {
	var f findings.Finding
	if !decodeBody(w, r, &f) {
		return
	}
	if err := s.findings.CreateFinding(r.Context(), &f); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, &f)
}

func (s *Server) handleGetFinding(w http.ResponseWriter, r *http.Request) {
	f, err := s.findings.GetFinding(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, f)
}

func (s *Server) handleUpdateFinding(w http.ResponseWriter, r *http.Request) {
	var f findings.Finding
	if !decodeBody(w, r, &f) {
		return
	}
	f.ID = chi.URLParam(r, "id")
	if err := s.findings.UpdateFinding(r.Context(), &f); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, &f)
}

func (s *Server) handleDeleteFinding(w http.ResponseWriter, r *http.Request) {
	if err := s.findings.DeleteFinding(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Comments.

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	publishedOnly := r.URL.Query().Get("published") == "true"
	out, err := s.findings.ListComments(r.Context(), chi.URLParam(r, "id"), publishedOnly)
	if err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

// commentRequest distinguishes an omitted is_published field from an
// explicit false; omitted defaults to published.
type commentRequest struct {
	Author    string `json:"author"`
	Body      string `json:"body"`
	Published *bool  `json:"is_published"`
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var req commentRequest
	if !decodeBody(w, r, &req) {
		return
	}
	c := findings.Comment{
		FindingID: chi.URLParam(r, "id"),
		Author:    req.Author,
		Body:      req.Body,
		Published: req.Published == nil || *req.Published,
	}
	if err := s.findings.CreateComment(r.Context(), &c); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusCreated, &c)
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
	var c findings.Comment
	if !decodeBody(w, r, &c) {
		return
	}
	c.ID = chi.URLParam(r, "id")
	if err := s.findings.UpdateComment(r.Context(), &c); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, &c)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.findings.DeleteComment(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, apiStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
