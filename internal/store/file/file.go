// Package file persists users and notifications to a single JSON document.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store"
)

// DefaultFileName is used when Open is given a directory.
const DefaultFileName = "notifications.json"

type document struct {
	Users         map[string]domain.User      `json:"users"`
	Notifications []domain.NotificationRecord `json:"notifications"`
}

// Store is a JSON-file store. Every mutation is a locked read-modify-write of
// the whole file.
type Store struct {
	mu   sync.Mutex
	path string
}

var _ store.Store = (*Store)(nil)

// Open returns a store backed by path. If path is a directory the document
// lives at path/notifications.json. The file is created on first write.
func Open(path string) (*Store, error) {
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		path = filepath.Join(path, DefaultFileName)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir store dir: %w", err)
	}
	return &Store{path: path}, nil
}

// Path returns the document location.
func (s *Store) Path() string { return s.path }

// loadUnlocked reads the document. Caller must hold s.mu.
func (s *Store) loadUnlocked() (document, error) {
	doc := document{Users: make(map[string]domain.User)}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return doc, nil
		}
		return doc, fmt.Errorf("load store: %w", err)
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("unmarshal store: %w", err)
	}
	if doc.Users == nil {
		doc.Users = make(map[string]domain.User)
	}
	return doc, nil
}

// saveUnlocked writes the document through a temp file and rename. Caller
// must hold s.mu.
func (s *Store) saveUnlocked(doc document) error {
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal store: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o640); err != nil {
		return fmt.Errorf("write store file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace store file: %w", err)
	}
	return nil
}

func (s *Store) update(fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	doc, err := s.loadUnlocked()
	if err != nil {
		return err
	}
	if err := fn(&doc); err != nil {
		return err
	}
	return s.saveUnlocked(doc)
}

func (s *Store) read() (document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadUnlocked()
}

func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	u, ok := doc.Users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) ListStaffAndAdmins(context.Context) ([]domain.User, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	all := make([]domain.User, 0, len(doc.Users))
	for _, u := range doc.Users {
		all = append(all, u)
	}
	return store.StaffAndAdmins(all), nil
}

func (s *Store) UpsertUser(_ context.Context, u domain.User) error {
	return s.update(func(doc *document) error {
		doc.Users[u.ID] = u
		return nil
	})
}

func (s *Store) SMSConsent(ctx context.Context, userID string) (bool, bool, error) {
	u, err := s.GetUser(ctx, userID)
	if err != nil || u == nil {
		return false, false, err
	}
	return u.SMSConsent, u.SMSOptedOut, nil
}

func (s *Store) CreateNotification(_ context.Context, rec domain.NotificationRecord) (*domain.NotificationRecord, error) {
	rec = store.Prepare(rec)
	err := s.update(func(doc *document) error {
		doc.Notifications = append(doc.Notifications, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *Store) ListNotifications(_ context.Context, userID string, limit int) ([]domain.NotificationRecord, error) {
	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	out := make([]domain.NotificationRecord, 0)
	for _, rec := range doc.Notifications {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	return store.NewestFirst(out, limit), nil
}

func (s *Store) MarkRead(_ context.Context, id string) error {
	return s.update(func(doc *document) error {
		for i := range doc.Notifications {
			if doc.Notifications[i].ID == id {
				doc.Notifications[i].IsRead = true
				return nil
			}
		}
		return store.ErrNotFound
	})
}

func (s *Store) Close() error { return nil }
