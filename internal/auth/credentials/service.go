package credentials

import (
	"context"
	"errors"
	"strings"

	"github.com/Rinkore1/BookServer/internal/users"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyRegistered  = errors.New("username already registered")
)

type Service struct {
	users users.Repository
}

func NewService(repo users.Repository) *Service {
	return &Service{users: repo}
}

// Register digests the password and persists the credential record.
// Duplicate usernames fail with ErrAlreadyRegistered.
func (s *Service) Register(
	ctx context.Context,
	username string,
	password string,
) (string, error) {

	username = strings.TrimSpace(username)
	if username == "" {
		return "", errors.New("username is required")
	}

	hash, version, err := HashPassword(password)
	if err != nil {
		return "", err
	}

	userID, err := s.users.Create(ctx, &users.User{
		Username:     username,
		PasswordHash: hash,
		HashVersion:  version,
	})

	if errors.Is(err, users.ErrDuplicateUsername) {
		return "", ErrAlreadyRegistered
	}
	if err != nil {
		return "", err
	}

	return userID, nil
}

// Authenticate checks the password against the stored digest and
// returns the user id. Lookup and comparison failures collapse into
// ErrInvalidCredentials so the response does not reveal whether the
// username exists.
func (s *Service) Authenticate(
	ctx context.Context,
	username string,
	password string,
) (string, error) {

	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if err := VerifyPassword(u.PasswordHash, password); err != nil {
		return "", ErrInvalidCredentials
	}

	return u.ID, nil
}
