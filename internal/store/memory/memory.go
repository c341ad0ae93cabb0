// Package memory is a map-backed store for tests and single-process demos.
package memory

import (
	"context"
	"sync"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store"
)

// Store keeps users and notifications in memory.
type Store struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	notifications []domain.NotificationRecord
}

var _ store.Store = (*Store)(nil)

// New returns a store seeded with users.
func New(users ...domain.User) *Store {
	s := &Store{users: make(map[string]domain.User, len(users))}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) ListStaffAndAdmins(context.Context) ([]domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]domain.User, 0, len(s.users))
	for _, u := range s.users {
		all = append(all, u)
	}
	return store.StaffAndAdmins(all), nil
}

func (s *Store) UpsertUser(_ context.Context, u domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[u.ID] = u
	return nil
}

func (s *Store) SMSConsent(_ context.Context, userID string) (bool, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u := s.users[userID]
	return u.SMSConsent, u.SMSOptedOut, nil
}

func (s *Store) CreateNotification(_ context.Context, rec domain.NotificationRecord) (*domain.NotificationRecord, error) {
	rec = store.Prepare(rec)
	s.mu.Lock()
	s.notifications = append(s.notifications, rec)
	s.mu.Unlock()
	return &rec, nil
}

func (s *Store) ListNotifications(_ context.Context, userID string, limit int) ([]domain.NotificationRecord, error) {
	s.mu.RLock()
	out := make([]domain.NotificationRecord, 0)
	for _, rec := range s.notifications {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	s.mu.RUnlock()
	return store.NewestFirst(out, limit), nil
}

func (s *Store) MarkRead(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			s.notifications[i].IsRead = true
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) Close() error { return nil }
