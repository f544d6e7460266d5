package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/kk-code-lab/rscan/internal/engine"
)

type nameSearchRequest struct {
	Query string `json:"query"`
	Root  string `json:"root"`
	Limit int    `json:"limit"`
}

type contentSearchRequest struct {
	Query         string `json:"query"`
	Root          string `json:"root"`
	CaseSensitive bool   `json:"caseSensitive"`
	RegexMode     bool   `json:"regexMode"`
	MaxResults    *int   `json:"maxResults"`
}

type enumerateRequest struct {
	Root string `json:"root"`
}

type operationResponse struct {
	OperationID uint64 `json:"operationId"`
}

func (s *Server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":     "ok",
		"operations": s.engine.Registry().Active(),
	})
}

func (s *Server) startNameSearch(w http.ResponseWriter, r *http.Request) {
	var req nameSearchRequest
	if !s.decode(w, r, &req) {
		return
	}
	id, err := s.engine.StartNameSearch(req.Query, req.Root, req.Limit)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, operationResponse{OperationID: id})
}

func (s *Server) nameSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit := s.engine.Config().Name.MaxLimit
	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "limit must be an integer")
			return
		}
		limit = v
	}

	resp, err := s.engine.NameSearchContext(r.Context(), q.Get("query"), q.Get("root"), limit)
	if err != nil && r.Context().Err() == nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) startContentSearch(w http.ResponseWriter, r *http.Request) {
	var req contentSearchRequest
	if !s.decode(w, r, &req) {
		return
	}
	maxResults := s.engine.Config().Content.MaxResults
	if req.MaxResults != nil {
		maxResults = *req.MaxResults
	}

	id, err := s.engine.StartContentSearch(engine.ContentSearchRequest{
		Query:         req.Query,
		Root:          req.Root,
		CaseSensitive: req.CaseSensitive,
		RegexMode:     req.RegexMode,
		MaxResults:    maxResults,
	})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, operationResponse{OperationID: id})
}

func (s *Server) enumerate(w http.ResponseWriter, r *http.Request) {
	var req enumerateRequest
	if !s.decode(w, r, &req) {
		return
	}
	resp, err := s.engine.StartEnumeration(req.Root)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// cancel always answers 204: unknown and finished ids are not errors.
func (s *Server) cancel(w http.ResponseWriter, r *http.Request) {
	if id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64); err == nil {
		s.engine.Cancel(id)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) writeEngineError(w http.ResponseWriter, err error) {
	var patternErr *engine.InvalidPatternError
	switch {
	case errors.Is(err, engine.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, engine.ErrNotADirectory), errors.Is(err, engine.ErrEmptyQuery):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &patternErr):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
