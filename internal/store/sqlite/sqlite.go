// Package sqlite stores users and notifications in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL DEFAULT '',
		last_name TEXT NOT NULL DEFAULT '',
		business_name TEXT NOT NULL DEFAULT '',
		role TEXT NOT NULL DEFAULT 'customer',
		phone TEXT NOT NULL DEFAULT '',
		email TEXT NOT NULL DEFAULT '',
		alternative_email TEXT NOT NULL DEFAULT '',
		preferred_language TEXT NOT NULL DEFAULT '',
		email_notifications INTEGER NOT NULL DEFAULT 0,
		sms_notifications INTEGER NOT NULL DEFAULT 0,
		sms_consent INTEGER NOT NULL DEFAULT 0,
		sms_opted_out INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS users_role ON users(role);`,
	`CREATE TABLE IF NOT EXISTS notifications (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		message TEXT NOT NULL DEFAULT '',
		order_id TEXT NOT NULL DEFAULT '',
		data BLOB,
		is_read INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL
	);`,
	`CREATE INDEX IF NOT EXISTS notifications_user ON notifications(user_id, created_at);`,
}

// Store is a SQLite-backed store.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// Open opens (or creates) the database at dsn and applies the schema. Use
// ":memory:" for a throwaway database.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// one connection keeps ":memory:" databases alive and serializes writers
	db.SetMaxOpenConns(1)
	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
	}
	return &Store{db: db}, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+store.UserColumns+` FROM users WHERE id = ?`, id)
	u, err := store.ScanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *Store) ListStaffAndAdmins(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+store.UserColumns+` FROM users WHERE role IN (?, ?) ORDER BY id`,
		domain.RoleStaff, domain.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()
	var out []domain.User
	for rows.Next() {
		u, err := store.ScanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (s *Store) UpsertUser(ctx context.Context, u domain.User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (`+store.UserColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			username = excluded.username, first_name = excluded.first_name, last_name = excluded.last_name,
			business_name = excluded.business_name, role = excluded.role, phone = excluded.phone,
			email = excluded.email, alternative_email = excluded.alternative_email,
			preferred_language = excluded.preferred_language, email_notifications = excluded.email_notifications,
			sms_notifications = excluded.sms_notifications, sms_consent = excluded.sms_consent,
			sms_opted_out = excluded.sms_opted_out`,
		store.UserArgs(u)...)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (s *Store) SMSConsent(ctx context.Context, userID string) (bool, bool, error) {
	var consent, optedOut bool
	err := s.db.QueryRowContext(ctx, `SELECT sms_consent, sms_opted_out FROM users WHERE id = ?`, userID).
		Scan(&consent, &optedOut)
	if errors.Is(err, sql.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("sms consent: %w", err)
	}
	return consent, optedOut, nil
}

func (s *Store) CreateNotification(ctx context.Context, rec domain.NotificationRecord) (*domain.NotificationRecord, error) {
	rec = store.Prepare(rec)
	stored := rec
	stored.CreatedAt = rec.CreatedAt.UTC()
	stored.UpdatedAt = rec.UpdatedAt.UTC()
	_, err := s.db.ExecContext(ctx, `INSERT INTO notifications (`+store.NotificationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, store.NotificationArgs(stored)...)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return &rec, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.NotificationRecord, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+store.NotificationColumns+` FROM notifications
		WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	out := make([]domain.NotificationRecord, 0)
	for rows.Next() {
		rec, err := store.ScanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) MarkRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE notifications SET is_read = 1, updated_at = ? WHERE id = ?`, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }
