package httpapi

import (
	"net/http"
	"strings"

	"concertbuddy/internal/app/users"
)

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Location string `json:"location"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if strings.TrimSpace(body.Email) == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "email and password are required"})
		return
	}

	account, err := s.users.Register(r.Context(), users.RegisterRequest{
		Email:    body.Email,
		Password: body.Password,
		Name:     body.Name,
		Location: body.Location,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, account)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	session, err := s.users.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// Sessions are stateless bearer tokens, so logout is a client-side discard.
// The endpoint exists so clients have a uniform flow.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	account, err := s.users.GetUser(r.Context(), caller, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}

func (s *Server) handleAccountStatus(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	status, err := s.users.AccountStatus(r.Context(), caller, userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	var body struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if body.NewPassword == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "new password is required"})
		return
	}

	if err := s.users.ChangePassword(r.Context(), caller, userID, body.CurrentPassword, body.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "password updated"})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	caller, userID, ok := s.withIdentity(w, r)
	if !ok {
		return
	}

	var body struct {
		Email    *string `json:"email"`
		Name     *string `json:"name"`
		Location *string `json:"location"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	account, err := s.users.UpdateProfile(r.Context(), caller, userID, users.ProfileUpdate{
		Email:    body.Email,
		Name:     body.Name,
		Location: body.Location,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, account)
}
