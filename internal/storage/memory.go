package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/deeppakhare/Chemical-Equipment-Parameter-Visualizer/internal/models"
)

// MemoryStore implements Store with maps. Used by tests and when the
// server runs without a database DSN (demo mode).
type MemoryStore struct {
	mu            sync.RWMutex
	users         map[int64]*models.User
	usersByName   map[string]int64
	tokensByKey   map[string]*models.Token
	tokensByUser  map[int64]*models.Token
	datasets      map[int64]*models.Dataset
	nextUserID    int64
	nextDatasetID int64
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[int64]*models.User),
		usersByName:  make(map[string]int64),
		tokensByKey:  make(map[string]*models.Token),
		tokensByUser: make(map[int64]*models.Token),
		datasets:     make(map[int64]*models.Dataset),
	}
}

func (s *MemoryStore) CreateDataset(ctx context.Context, ownerID int64, filename, storedName string, sum *models.Summary) (*models.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextDatasetID++
	id := s.nextDatasetID

	stored := *sum
	stored.DatasetID = id

	d := &models.Dataset{
		ID:               id,
		OwnerID:          ownerID,
		OriginalFilename: filename,
		StoredName:       storedName,
		UploadedAt:       time.Now().UTC(),
		RowCount:         stored.Rows,
		ColumnNames:      append([]string(nil), stored.ColumnNames...),
		NumericColumns:   append([]string(nil), stored.NumericColumns...),
		Summary:          &stored,
	}
	s.datasets[id] = d

	return d, nil
}

func (s *MemoryStore) GetDataset(ctx context.Context, id int64) (*models.Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.datasets[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *MemoryStore) History(ctx context.Context, ownerID int64, limit int) ([]models.HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var list []*models.Dataset
	for _, d := range s.datasets {
		if d.OwnerID == ownerID {
			list = append(list, d)
		}
	}

	// Sort by UploadedAt desc, ties by ID desc
	sort.Slice(list, func(i, j int) bool {
		if !list[i].UploadedAt.Equal(list[j].UploadedAt) {
			return list[i].UploadedAt.After(list[j].UploadedAt)
		}
		return list[i].ID > list[j].ID
	})

	if len(list) > limit {
		list = list[:limit]
	}

	entries := make([]models.HistoryEntry, 0, len(list))
	for _, d := range list {
		entries = append(entries, d.HistoryEntry())
	}
	return entries, nil
}

func (s *MemoryStore) CreateUser(ctx context.Context, username, passwordHash string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.usersByName[username]; exists {
		return nil, ErrExists
	}

	s.nextUserID++
	u := &models.User{
		ID:           s.nextUserID,
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	s.users[u.ID] = u
	s.usersByName[username] = u.ID

	return u, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usersByName[username]
	if !ok {
		return nil, ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemoryStore) GetOrCreateToken(ctx context.Context, userID int64, candidateKey string) (*models.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t, ok := s.tokensByUser[userID]; ok {
		return t, nil
	}

	t := &models.Token{
		Key:     candidateKey,
		UserID:  userID,
		Created: time.Now().UTC(),
	}
	s.tokensByKey[t.Key] = t
	s.tokensByUser[userID] = t

	return t, nil
}

func (s *MemoryStore) GetTokenUser(ctx context.Context, key string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tokensByKey[key]
	if !ok {
		return nil, ErrNotFound
	}
	return s.users[t.UserID], nil
}

// Ensure MemoryStore implements Store
var _ Store = (*MemoryStore)(nil)
