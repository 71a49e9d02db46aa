// Package storage persists users, tokens and datasets, and keeps the raw
// CSV blobs on disk. Two metadata backends share one interface: Postgres
// for deployments and an in-memory store for tests and demo mode.
package storage

import (
	"context"
	"errors"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrExists indicates a unique constraint violation (duplicate username).
	ErrExists = errors.New("record already exists")
)

// DatasetStore persists datasets and answers the bounded history query.
type DatasetStore interface {
	// CreateDataset assigns the id and uploaded_at timestamp and persists
	// the record atomically; the dataset is never observable half-written.
	// The stored summary carries the assigned dataset id.
	CreateDataset(ctx context.Context, ownerID int64, filename, storedName string, sum *models.Summary) (*models.Dataset, error)
	// GetDataset returns the full record including the cached summary,
	// or ErrNotFound. Ownership is the caller's concern.
	GetDataset(ctx context.Context, id int64) (*models.Dataset, error)
	// History returns at most limit entries for the owner, ordered by
	// uploaded_at descending with ties broken by id descending.
	History(ctx context.Context, ownerID int64, limit int) ([]models.HistoryEntry, error)
}

// UserStore persists accounts and their opaque tokens.
type UserStore interface {
	// CreateUser inserts a new account; ErrExists on a duplicate username.
	CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error)
	// GetUserByUsername returns the account or ErrNotFound.
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	// GetOrCreateToken returns the user's existing token, or persists
	// candidateKey as the new one. Tokens are 1:1 per user.
	GetOrCreateToken(ctx context.Context, userID int64, candidateKey string) (*models.Token, error)
	// GetTokenUser resolves a token key to its user, or ErrNotFound.
	GetTokenUser(ctx context.Context, key string) (*models.User, error)
}

// Store is the combined persistence surface the server wires up.
type Store interface {
	DatasetStore
	UserStore
}
