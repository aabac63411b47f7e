package store

import (
	"context"
	"sort"
	"sync"

	"github.com/stoik/emailapi/internal/models"
)

// MemoryStore keeps emails in a map. Ids come from a counter that is never rewound.
type MemoryStore struct {
	mu     sync.RWMutex
	emails map[int64]models.Email
	lastID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		emails: make(map[int64]models.Email),
	}
}

func (m *MemoryStore) Sync(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Create(ctx context.Context, email models.NewEmail) (models.Email, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.insertLocked(email), nil
}

func (m *MemoryStore) BulkCreate(ctx context.Context, emails []models.NewEmail) ([]models.Email, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	created := make([]models.Email, 0, len(emails))
	for _, e := range emails {
		created = append(created, m.insertLocked(e))
	}
	return created, nil
}

func (m *MemoryStore) insertLocked(e models.NewEmail) models.Email {
	m.lastID++
	email := models.Email{ID: m.lastID, Subject: e.Subject, Message: e.Message}
	m.emails[email.ID] = email
	return email
}

func (m *MemoryStore) FindByID(ctx context.Context, id int64) (models.Email, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	email, ok := m.emails[id]
	if !ok {
		return models.Email{}, ErrNotFound
	}
	return email, nil
}

func (m *MemoryStore) FindOne(ctx context.Context, filter models.EmailFilter) (models.Email, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, email := range m.sortedLocked() {
		if filter.Matches(email) {
			return email, nil
		}
	}
	return models.Email{}, ErrNotFound
}

func (m *MemoryStore) FindAll(ctx context.Context) ([]models.Email, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sortedLocked(), nil
}

func (m *MemoryStore) sortedLocked() []models.Email {
	emails := make([]models.Email, 0, len(m.emails))
	for _, e := range m.emails {
		emails = append(emails, e)
	}
	sort.Slice(emails, func(i, j int) bool {
		return emails[i].ID < emails[j].ID
	})
	return emails
}

func (m *MemoryStore) Update(ctx context.Context, id int64, patch models.EmailPatch) (models.Email, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	email, ok := m.emails[id]
	if !ok {
		return models.Email{}, ErrNotFound
	}
	email = patch.Apply(email)
	m.emails[id] = email
	return email, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.emails[id]; !ok {
		return ErrNotFound
	}
	delete(m.emails, id)
	return nil
}

func (m *MemoryStore) Truncate(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.emails = make(map[int64]models.Email)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
