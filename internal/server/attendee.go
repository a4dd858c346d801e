package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/roach88/cts/internal/attendee"
)

// Response bodies of the attendee API.
type listResponse struct {
	Count int                 `json:"count"`
	Items []attendee.Attendee `json:"items"`
}

type getResponse struct {
	Success bool               `json:"success"`
	Item    *attendee.Attendee `json:"item,omitempty"`
	Code    string             `json:"code,omitempty"`
	Error   string             `json:"error,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type putRequest struct {
	Firstname string `json:"firstname"`
	Lastname  string `json:"lastname"`
	Attending string `json:"attending"`
}

// CodeNotFound is the code of a failed attendee lookup.
const CodeNotFound = "NOTFOUND"

const msgNotFound = "There is no record with the given content."

var errNoStore = errors.New("no connection to database server")

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("failed to write response", "err", err)
	}
}

func (s *Server) listAttendees(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errNoStore.Error()})
		return
	}
	items, err := s.store.List(r.Context())
	if err != nil {
		s.logger.Error("list attendees", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, listResponse{Count: len(items), Items: items})
}

func (s *Server) getAttendee(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errNoStore.Error()})
		return
	}
	vars := mux.Vars(r)
	a, err := s.store.Get(r.Context(), vars["firstname"], vars["lastname"])
	if err != nil {
		s.logger.Error("get attendee", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if a == nil {
		s.writeJSON(w, http.StatusOK, getResponse{Success: false, Code: CodeNotFound, Error: msgNotFound})
		return
	}
	s.writeJSON(w, http.StatusOK, getResponse{Success: true, Item: a})
}

func (s *Server) putAttendee(w http.ResponseWriter, r *http.Request) {
	if s.store == nil {
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: errNoStore.Error()})
		return
	}

	var req putRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10))
	if err := dec.Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}

	saved, err := s.store.Save(r.Context(), attendee.Attendee{
		Firstname: req.Firstname,
		Lastname:  req.Lastname,
		Attending: req.Attending,
	}, attendee.ConflictOverwrite)
	switch {
	case attendee.IsValidationError(err):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	case err != nil:
		s.logger.Error("save attendee", "err", err)
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	s.logger.Debug("saved attendee", "id", saved.ID, "attending", saved.Attending)
	s.writeJSON(w, http.StatusOK, saved)
}
