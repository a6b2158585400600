package httpapi

import (
	"net/http"
	"strings"
)

func (s *Server) handleGeneralComment(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	var body struct {
		Comment string `json:"comment"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	result, err := s.comments.SubmitGeneral(r.Context(), caller, userID, body.Comment)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

func (s *Server) handleConcertComment(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	var body struct {
		ConcertName string `json:"concertName"`
		Comment     string `json:"comment"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if strings.TrimSpace(body.ConcertName) == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "concert name is required"})
		return
	}

	result, err := s.comments.SubmitConcert(r.Context(), caller, userID, body.ConcertName, body.Comment)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}
