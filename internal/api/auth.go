package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/skillswap/skillswap-core/internal/auth"
)

// minPasswordLength is the minimum accepted password length on registration
// and password change.
const minPasswordLength = 6

// registerRequest is the request body for POST /auth/register.
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// refreshRequest is the request body for POST /auth/refresh and /auth/logout.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// refreshResponse is the response body for POST /auth/refresh.
type refreshResponse struct {
	AccessToken string `json:"accessToken"`
}

// handleRegister creates a new user account and opens a session.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	if msg, ok := validateRegistration(req); !ok {
		writeBadRequest(w, msg)
		return
	}

	session, err := s.auth.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailExists) {
			writeConflict(w, "email already registered")
			return
		}
		s.logger.Error("registration failed", "error", err)
		writeInternalError(w, "registration failed")
		return
	}

	s.logger.Info("user registered", "email", req.Email)
	writeJSON(w, http.StatusCreated, session)
}

// validateRegistration checks the register payload. Returns a message and
// false when the payload is rejected.
func validateRegistration(req registerRequest) (string, bool) {
	switch {
	case req.Name == "":
		return "name is required", false
	case req.Email == "" || !strings.Contains(req.Email, "@"):
		return "a valid email is required", false
	case len(req.Password) < minPasswordLength:
		return "password must be at least 6 characters", false
	}
	return "", true
}

// handleLogin authenticates a user and opens a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeBadRequest(w, "email and password are required")
		return
	}

	session, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			writeUnauthorized(w, "invalid email or password")
			return
		}
		s.logger.Error("login failed", "error", err)
		writeInternalError(w, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// handleRefresh exchanges a valid refresh token for a new access token.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if req.RefreshToken == "" {
		writeBadRequest(w, "refreshToken is required")
		return
	}

	access, err := s.auth.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, auth.ErrTokenInvalid) || errors.Is(err, auth.ErrTokenExpired) {
			writeUnauthorized(w, "invalid or expired refresh token")
			return
		}
		s.logger.Error("token refresh failed", "error", err)
		writeInternalError(w, "token refresh failed")
		return
	}

	writeJSON(w, http.StatusOK, refreshResponse{AccessToken: access})
}

// handleLogout revokes the session bound to the presented refresh token.
// The operation is idempotent: invalid, expired, or already-revoked tokens
// still produce a successful response.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if err := s.auth.Logout(r.Context(), req.RefreshToken); err != nil {
		s.logger.Error("logout failed", "error", err)
		writeInternalError(w, "logout failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}
