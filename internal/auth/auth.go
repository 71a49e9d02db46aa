// Package auth implements password verification and opaque API tokens.
//
// Tokens are 40 hex characters (20 random bytes) and each user holds
// exactly one; logging in again returns the same key.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/storage"
)

var (
	// ErrInvalidCredentials covers both unknown usernames and wrong
	// passwords so responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrInvalidToken means the presented key matches no user.
	ErrInvalidToken = errors.New("invalid token")
)

// dummyHash keeps a bcrypt comparison on the unknown-username path so it
// takes as long as a wrong password.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no such user"), bcrypt.DefaultCost)

// Service authenticates users and issues tokens against a UserStore.
type Service struct {
	store storage.UserStore
}

// NewService creates an auth service backed by the given store.
func NewService(store storage.UserStore) *Service {
	return &Service{store: store}
}

// HashPassword hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// Authenticate verifies a username/password pair.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// IssueToken returns the user's token, creating one on first login.
func (s *Service) IssueToken(ctx context.Context, userID int64) (*models.Token, error) {
	key, err := generateKey()
	if err != nil {
		return nil, err
	}

	token, err := s.store.GetOrCreateToken(ctx, userID, key)
	if err != nil {
		return nil, fmt.Errorf("storing token: %w", err)
	}
	return token, nil
}

// ResolveToken maps a presented key to its user.
func (s *Service) ResolveToken(ctx context.Context, key string) (*models.User, error) {
	user, err := s.store.GetTokenUser(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("resolving token: %w", err)
	}
	return user, nil
}

// generateKey produces a 40-character hex key from 20 random bytes.
func generateKey() (string, error) {
	buf := make([]byte, 20)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating token key: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
