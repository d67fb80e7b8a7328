package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/rolo-app/rolo/internal/domain"
	"github.com/rolo-app/rolo/internal/observability"
	"github.com/rolo-app/rolo/internal/repository"
	"github.com/rolo-app/rolo/internal/security"
)

const (
	minUsernameLength = 3
	minPasswordLength = 6
)

type AuthService struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	sessionTTL  time.Duration
}

func NewAuthService(userRepo repository.UserRepository, sessionRepo repository.SessionRepository, sessionTTL time.Duration) *AuthService {
	return &AuthService{userRepo: userRepo, sessionRepo: sessionRepo, sessionTTL: sessionTTL}
}

func (s *AuthService) Register(username, password string) (*domain.User, error) {
	if len(username) < minUsernameLength {
		observability.RecordAuthRegister("invalid")
		return nil, &ValidationError{Field: "username", Message: fmt.Sprintf("username must be at least %d characters", minUsernameLength)}
	}
	if len(password) < minPasswordLength {
		observability.RecordAuthRegister("invalid")
		return nil, &ValidationError{Field: "password", Message: fmt.Sprintf("password must be at least %d characters", minPasswordLength)}
	}

	_, err := s.userRepo.FindByUsername(username)
	switch {
	case err == nil:
		observability.RecordAuthRegister("duplicate")
		return nil, ErrDuplicateUsername
	case !errors.Is(err, repository.ErrUserNotFound):
		observability.RecordAuthRegister("error")
		return nil, err
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		observability.RecordAuthRegister("error")
		return nil, err
	}
	user := &domain.User{Username: username, PasswordHash: hash}
	if err := s.userRepo.Create(user); err != nil {
		observability.RecordAuthRegister("error")
		return nil, err
	}
	observability.RecordAuthRegister("success")
	return user, nil
}

func (s *AuthService) Login(username, password string) (*domain.Session, error) {
	user, err := s.userRepo.FindByUsername(username)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAuthLogin("invalid_credentials")
			return nil, ErrInvalidCredentials
		}
		observability.RecordAuthLogin("error")
		return nil, err
	}
	if !security.VerifyPassword(password, user.PasswordHash) {
		observability.RecordAuthLogin("invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	token, err := security.NewSessionToken()
	if err != nil {
		observability.RecordAuthLogin("error")
		return nil, err
	}
	session := &domain.Session{
		Token:     token,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}
	if err := s.sessionRepo.Create(session); err != nil {
		observability.RecordAuthLogin("error")
		return nil, err
	}
	observability.RecordAuthLogin("success")
	return session, nil
}

// ResolveSession maps a token to its user. An expired session is deleted as a
// side effect and reported as not found, so a second call on the same token
// also misses without reading stale state.
func (s *AuthService) ResolveSession(token string) (*domain.User, error) {
	session, err := s.sessionRepo.FindByToken(token)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if session.ExpiresAt.Before(time.Now()) {
		if err := s.sessionRepo.DeleteByToken(token); err != nil {
			return nil, err
		}
		return nil, ErrNotFound
	}
	user, err := s.userRepo.FindByID(session.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

// Logout deletes the session unconditionally; an unknown token is a no-op.
func (s *AuthService) Logout(token string) error {
	err := s.sessionRepo.DeleteByToken(token)
	if err != nil {
		observability.RecordAuthLogout("error")
		return err
	}
	observability.RecordAuthLogout("success")
	return nil
}

// SweepExpiredSessions removes every session past its expiry. Expired
// sessions are also rejected and deleted lazily on use; the sweep keeps the
// table from accumulating rows for users who never come back.
func (s *AuthService) SweepExpiredSessions() (int64, error) {
	return s.sessionRepo.DeleteExpired()
}
