package store

import (
	"context"
	"sync"
	"time"

	"filesmanager/internal/util"
	"filesmanager/pkg/domain"
)

// MemoryStore keeps users and file records in-process.
// Intended for tests and local development.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[string]domain.User // key: user ID
	email  map[string]string      // email -> user ID
	files  map[string]domain.File
	orders []string // file IDs in insertion order
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]domain.User),
		email: make(map[string]string),
		files: make(map[string]domain.File),
	}
}

// InsertUser registers a user; the email must be unused.
func (m *MemoryStore) InsertUser(_ context.Context, email, passwordHash string) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.email[email]; exists {
		return domain.User{}, ErrDuplicateEmail
	}
	u := domain.User{
		ID:           util.NewID(),
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().UTC(),
	}
	m.users[u.ID] = u
	m.email[email] = u.ID
	return u, nil
}

// GetUserByEmail looks up a user by email.
func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[email]
	if !ok {
		return domain.User{}, false, nil
	}
	u, exists := m.users[id]
	return u, exists, nil
}

// GetUserByID returns a user by ID.
func (m *MemoryStore) GetUserByID(_ context.Context, id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// InsertFile stores a new record, assigning an ID when missing.
func (m *MemoryStore) InsertFile(_ context.Context, f domain.File) (domain.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if f.ID == "" {
		f.ID = util.NewID()
	}
	if f.CreatedAt.IsZero() {
		f.CreatedAt = time.Now().UTC()
	}
	if _, exists := m.files[f.ID]; !exists {
		m.orders = append(m.orders, f.ID)
	}
	m.files[f.ID] = f
	return f, nil
}

// GetFile retrieves a record by ID.
func (m *MemoryStore) GetFile(_ context.Context, id string) (domain.File, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	f, ok := m.files[id]
	return f, ok, nil
}

// UpdateFile applies a patch and returns the updated record.
func (m *MemoryStore) UpdateFile(_ context.Context, id string, patch FilePatch) (domain.File, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.files[id]
	if !ok {
		return domain.File{}, ErrFileNotFound
	}
	if patch.IsPublic != nil {
		f.IsPublic = *patch.IsPublic
	}
	m.files[id] = f
	return f, nil
}

// ListFiles returns matching records in insertion order.
func (m *MemoryStore) ListFiles(_ context.Context, filter FileFilter, page Pagination) ([]domain.File, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.File, 0, page.Limit)
	skipped := 0
	for _, id := range m.orders {
		f, ok := m.files[id]
		if !ok || f.UserID != filter.UserID || f.ParentID != filter.ParentID {
			continue
		}
		if skipped < page.Skip {
			skipped++
			continue
		}
		if page.Limit > 0 && len(res) >= page.Limit {
			break
		}
		res = append(res, f)
	}
	return res, nil
}

// UserCount returns number of users.
func (m *MemoryStore) UserCount(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}

// FileCount returns number of file records.
func (m *MemoryStore) FileCount(_ context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.files), nil
}

// Ping always succeeds.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}
