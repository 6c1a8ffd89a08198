package server

import (
	"encoding/json"
	"net/http"

	stderrors "franchisehub-api/internal/common/errors"
	"franchisehub-api/internal/services/auth"
)

func (s *Server) handleRegisterUser(w http.ResponseWriter, r *http.Request) {
	var input auth.RegisterInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, stderrors.NewValidationError("malformed request body"))
		return
	}

	user, err := s.auth.Register(r.Context(), &input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, user)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input auth.LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, stderrors.NewValidationError("malformed request body"))
		return
	}

	output, err := s.auth.Login(r.Context(), &input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil {
		writeError(w, stderrors.NewAuthenticationError("not authenticated"))
		return
	}
	if err := s.auth.Logout(r.Context(), claims); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// handleForgotPassword always answers 200 so the endpoint cannot be used to
// probe for registered addresses.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, stderrors.NewValidationError("malformed request body"))
		return
	}

	if err := s.auth.ForgotPassword(r.Context(), input.Email); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset code sent if the account exists"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var input auth.ResetInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, stderrors.NewValidationError("malformed request body"))
		return
	}

	if err := s.auth.ResetPassword(r.Context(), &input); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "password updated"})
}
