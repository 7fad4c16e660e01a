package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
)

// Session is the result of a successful register or login: the public user
// view plus a fresh token pair.
type Session struct {
	User         PublicUser `json:"user"`
	AccessToken  string     `json:"accessToken"`
	RefreshToken string     `json:"refreshToken"`
}

// Service orchestrates the user-facing auth operations against the user
// store and the token issuer. All state lives in the store or in the tokens
// themselves; the service holds no per-session memory.
type Service struct {
	store  UserStore
	issuer *Issuer
}

// NewService creates the auth orchestrator with its collaborators.
func NewService(store UserStore, issuer *Issuer) *Service {
	return &Service{store: store, issuer: issuer}
}

// Register creates a new credential record and opens a session for it.
// Returns ErrEmailExists when the email is already registered.
func (s *Service) Register(ctx context.Context, name, email, password string) (*Session, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         RoleUser,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	return s.openSession(ctx, user)
}

// Login verifies credentials and opens a fresh session. The stored refresh
// token is overwritten, invalidating whichever session was active before.
// Unknown email and wrong password fail identically with
// ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.openSession(ctx, user)
}

// Refresh exchanges a valid refresh token for a new access token. The token
// must verify against the refresh secret and must still be the user's active
// session; a token superseded by a later login fails even though it still
// decodes. The refresh token itself is not rotated.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	user, err := s.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return "", ErrTokenInvalid
		}
		return "", err
	}

	if !s.isActiveToken(user, refreshToken) {
		return "", fmt.Errorf("%w: session superseded or revoked", ErrTokenInvalid)
	}

	return s.issuer.IssueAccessToken(user)
}

// Logout revokes the session bound to the refresh token by clearing the
// stored hash. Verification failures are swallowed: logging out with an
// expired or garbage token is never an error and mutates nothing.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.issuer.VerifyRefresh(refreshToken)
	if err != nil {
		return nil
	}

	user, err := s.store.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil
		}
		return err
	}

	// Only the currently active session may revoke itself; a token already
	// superseded by a later login leaves the newer session untouched.
	if !s.isActiveToken(user, refreshToken) {
		return nil
	}

	return s.store.UpdateRefreshTokenHash(ctx, user.ID, "")
}

// ChangePassword verifies the current password and stores a new hash.
// Returns ErrInvalidCredentials when the current password does not match.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	user, err := s.store.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if !VerifyPassword(oldPassword, user.PasswordHash) {
		return ErrInvalidCredentials
	}

	hash, err := HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.store.UpdatePasswordHash(ctx, user.ID, hash)
}

// openSession issues a token pair for the user and persists the refresh-token
// hash, enforcing the single-active-session invariant.
func (s *Service) openSession(ctx context.Context, user *User) (*Session, error) {
	access, refresh, err := s.issuer.IssuePair(user)
	if err != nil {
		return nil, err
	}

	if err := s.store.UpdateRefreshTokenHash(ctx, user.ID, HashToken(refresh)); err != nil {
		return nil, err
	}

	return &Session{
		User:         user.Public(),
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// isActiveToken reports whether the refresh token matches the user's stored
// session hash.
func (s *Service) isActiveToken(user *User, refreshToken string) bool {
	if user.RefreshTokenHash == "" {
		return false
	}
	stored := []byte(user.RefreshTokenHash)
	presented := []byte(HashToken(refreshToken))
	return subtle.ConstantTimeCompare(stored, presented) == 1
}
