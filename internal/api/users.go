package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/skillswap/skillswap-core/internal/auth"
)

// profileResponse is the response body for GET /users/me and the per-user
// entry in GET /users.
type profileResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

// changePasswordRequest is the request body for PUT /users/me/password.
type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// handleMe returns the authenticated user's profile.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims := principalFrom(r.Context())
	if claims == nil {
		writeUnauthorized(w, "authentication required")
		return
	}

	user, err := s.users.FindByID(r.Context(), claims.Subject)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			// Token refers to a user that no longer exists.
			writeUnauthorized(w, "account no longer exists")
			return
		}
		s.logger.Error("profile lookup failed", "error", err)
		writeInternalError(w, "profile lookup failed")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	})
}

// handleChangePassword updates the authenticated user's password after
// verifying the current one.
func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := principalFrom(r.Context())
	if claims == nil {
		writeUnauthorized(w, "authentication required")
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if len(req.NewPassword) < minPasswordLength {
		writeBadRequest(w, "new password must be at least 6 characters")
		return
	}

	err := s.auth.ChangePassword(r.Context(), claims.Subject, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			writeUnauthorized(w, "current password is incorrect")
		case errors.Is(err, auth.ErrUserNotFound):
			writeUnauthorized(w, "account no longer exists")
		default:
			s.logger.Error("password change failed", "error", err)
			writeInternalError(w, "password change failed")
		}
		return
	}

	s.logger.Info("password changed", "user_id", claims.Subject)
	w.WriteHeader(http.StatusNoContent)
}

// handleListUsers returns all user accounts. Admin only.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.List(r.Context())
	if err != nil {
		s.logger.Error("user listing failed", "error", err)
		writeInternalError(w, "user listing failed")
		return
	}

	summaries := make([]profileResponse, 0, len(users))
	for _, u := range users {
		summaries = append(summaries, profileResponse{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"users": summaries,
		"count": len(summaries),
	})
}
