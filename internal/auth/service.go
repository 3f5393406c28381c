package auth

import (
	"errors"

	"github.com/skaufmann/reading-challenge/internal/config"
	"github.com/skaufmann/reading-challenge/internal/entities"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthRequired       = errors.New("authentication required")
	ErrNotConfigured      = errors.New("no password hashes configured")
)

// Service authenticates the two fixed readers against bcrypt hashes from
// configuration. There is no user table: the set of principals is closed.
type Service struct {
	hashes map[entities.Reader]string
}

// NewService creates an authentication service from the configured hashes.
func NewService(cfg config.Auth) *Service {
	return &Service{
		hashes: map[entities.Reader]string{
			entities.ReaderSilas:  cfg.SilasPasswordHash,
			entities.ReaderNadine: cfg.NadinePasswordHash,
		},
	}
}

// IsConfigured reports whether both readers have a password hash set.
func (s *Service) IsConfigured() bool {
	for _, reader := range entities.Readers {
		if s.hashes[reader] == "" {
			return false
		}
	}
	return true
}

// Authenticate validates credentials and returns the reader identity.
// Usernames are the reader identifiers ("s", "n"), matched
// case-insensitively.
func (s *Service) Authenticate(username, password string) (entities.Reader, error) {
	reader, err := entities.ParseReader(username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	hash := s.hashes[reader]
	if hash == "" {
		return "", ErrNotConfigured
	}

	if err := CheckPassword(password, hash); err != nil {
		return "", ErrInvalidCredentials
	}
	return reader, nil
}
