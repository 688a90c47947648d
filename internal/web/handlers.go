package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"coverwall/internal/cover"
	"coverwall/internal/ranking"
	"coverwall/internal/search"
)

type SearchRequest struct {
	Query string `json:"query" validate:"required"`
}

type SelectRequest struct {
	TrackID string `json:"track_id" validate:"required"`
}

type CreateSessionResponse struct {
	ID string `json:"id"`
}

type SearchResponse struct {
	Decision    ranking.Decision `json:"decision"`
	Suggestions []string         `json:"suggestions,omitempty"`
	Cover       *cover.Cover     `json:"cover,omitempty"`
	State       search.State     `json:"state"`
}

type ErrorResponse struct {
	Error       string   `json:"error"`
	Suggestions []string `json:"suggestions,omitempty"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id := s.sessions.Create()
	s.logger.Debug("Created session %s", id)
	writeJSON(w, http.StatusCreated, CreateSessionResponse{ID: id})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req SearchRequest
	if !s.decode(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	res, err := sess.Search(r.Context(), req.Query)
	status, body := searchOutcome(res, err)
	if status == http.StatusOK {
		snap := sess.Snapshot()
		body = SearchResponse{Decision: res.Decision, Cover: snap.Cover, State: snap.State}
	}
	if !errors.Is(err, search.ErrSuperseded) {
		s.sessions.Notify(id)
	}
	if status == http.StatusInternalServerError {
		s.logger.Warn("Search %q in session %s failed: %v", req.Query, id, err)
	}
	writeJSON(w, status, body)
}

// searchOutcome maps a session search result to a status code and, for
// failures, an error body.
func searchOutcome(res *search.Result, err error) (int, any) {
	switch {
	case err == nil:
		return http.StatusOK, nil
	case search.IsInputError(err):
		return http.StatusBadRequest, ErrorResponse{Error: err.Error()}
	case errors.Is(err, search.ErrNoMatch):
		body := ErrorResponse{Error: err.Error()}
		if res != nil {
			body.Suggestions = res.Suggestions
		}
		return http.StatusNotFound, body
	case errors.Is(err, search.ErrSuperseded):
		return http.StatusConflict, ErrorResponse{Error: err.Error()}
	default:
		return http.StatusInternalServerError, ErrorResponse{Error: "search failed"}
	}
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	var req SelectRequest
	if !s.decode(w, r, &req) {
		return
	}

	c, err := sess.SelectCandidate(req.TrackID)
	switch {
	case errors.Is(err, search.ErrNoPendingChoices):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	case errors.Is(err, search.ErrUnknownCandidate):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	s.sessions.Notify(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, c)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	sess.CancelSelection()
	s.sessions.Notify(chi.URLParam(r, "id"))
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *Server) session(w http.ResponseWriter, r *http.Request) (*search.Session, bool) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return nil, false
	}
	return sess, true
}

// decode reads and validates a JSON body, answering 400 on failure.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dest any) bool {
	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return false
	}
	if err := s.validate.Struct(dest); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: validationMessage(err)})
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return verrs[0].Field() + " is " + verrs[0].Tag()
	}
	return "invalid request"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
