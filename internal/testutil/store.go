// store.go - Store test doubles
package testutil

import (
	"context"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/storage"
)

// FailingStore wraps a Store and fails selected operations, for
// exercising handler error paths.
type FailingStore struct {
	storage.Store

	CreateDatasetErr error
	GetDatasetErr    error
	HistoryErr       error
	GetTokenUserErr  error
}

// NewFailingStore wraps an in-memory store.
func NewFailingStore() *FailingStore {
	return &FailingStore{Store: storage.NewMemoryStore()}
}

func (f *FailingStore) CreateDataset(ctx context.Context, ownerID int64, filename, storedName string, sum *models.Summary) (*models.Dataset, error) {
	if f.CreateDatasetErr != nil {
		return nil, f.CreateDatasetErr
	}
	return f.Store.CreateDataset(ctx, ownerID, filename, storedName, sum)
}

func (f *FailingStore) GetDataset(ctx context.Context, id int64) (*models.Dataset, error) {
	if f.GetDatasetErr != nil {
		return nil, f.GetDatasetErr
	}
	return f.Store.GetDataset(ctx, id)
}

func (f *FailingStore) History(ctx context.Context, ownerID int64, limit int) ([]models.HistoryEntry, error) {
	if f.HistoryErr != nil {
		return nil, f.HistoryErr
	}
	return f.Store.History(ctx, ownerID, limit)
}

func (f *FailingStore) GetTokenUser(ctx context.Context, key string) (*models.User, error) {
	if f.GetTokenUserErr != nil {
		return nil, f.GetTokenUserErr
	}
	return f.Store.GetTokenUser(ctx, key)
}

// Ensure FailingStore implements storage.Store
var _ storage.Store = (*FailingStore)(nil)
