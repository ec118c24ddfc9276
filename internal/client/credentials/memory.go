package credentials

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/dmitrijs2005/postboard/internal/client/models"
)

// MemoryStore keeps the slots in process memory. The user slot is held in
// serialized form, same as on disk, so callers never share a pointer with it.
type MemoryStore struct {
	mu    sync.Mutex
	token string
	user  []byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Write(_ context.Context, token string, user *models.User) {
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = token, raw
}

func (m *MemoryStore) Read(_ context.Context) (string, *models.User) {
	m.mu.Lock()
	defer m.mu.Unlock()

	user, err := decodeUser(m.user)
	if err != nil {
		return m.token, nil
	}
	return m.token, user
}

func (m *MemoryStore) Token(_ context.Context) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

func (m *MemoryStore) Clear(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = "", nil
}

// SetRaw seeds the slots directly, including states Write would never
// produce (token without user, garbage user JSON).
func (m *MemoryStore) SetRaw(token string, user []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token, m.user = token, user
}
