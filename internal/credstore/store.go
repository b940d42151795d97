// Package credstore persists the bearer token and cached user record across
// program runs. It is the only cross-run shared resource: read once at
// startup, written only by login and logout.
package credstore

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"eduassess/internal/domain"
	"eduassess/internal/dto"
)

// Credentials is what survives a restart.
type Credentials struct {
	AuthToken string           `json:"auth_token,omitempty"`
	User      *dto.UserPayload `json:"user,omitempty"`
}

// Store reads and writes the credential file.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Load reads the stored token and cached user. A missing file means no
// stored session, not an error.
func (s *Store) Load() (token string, user *domain.User, err error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil, nil
		}
		return "", nil, err
	}

	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		// A corrupt credential file is treated the same as an invalid token:
		// discard it and start unauthenticated.
		_ = s.Clear()
		return "", nil, nil
	}
	return creds.AuthToken, creds.User.ToDomain(), nil
}

// SaveToken writes the token, leaving any cached user in place.
func (s *Store) SaveToken(token string) error {
	creds, err := s.read()
	if err != nil {
		return err
	}
	creds.AuthToken = token
	return s.write(creds)
}

// SaveUser caches the fetched user record alongside the token.
func (s *Store) SaveUser(user *domain.User) error {
	creds, err := s.read()
	if err != nil {
		return err
	}
	creds.User = dto.UserPayloadFromDomain(user)
	return s.write(creds)
}

// Clear removes every stored credential key.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (s *Store) read() (Credentials, error) {
	var creds Credentials
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return creds, nil
		}
		return creds, err
	}
	if err := json.Unmarshal(data, &creds); err != nil {
		return Credentials{}, nil
	}
	return creds, nil
}

func (s *Store) write(creds Credentials) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return err
	}
	data, err := json.Marshal(creds)
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o600)
}
