// Package postgres stores users and notifications in PostgreSQL through a
// pgx connection pool.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
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
	email_notifications BOOLEAN NOT NULL DEFAULT false,
	sms_notifications BOOLEAN NOT NULL DEFAULT false,
	sms_consent BOOLEAN NOT NULL DEFAULT false,
	sms_opted_out BOOLEAN NOT NULL DEFAULT false
);
CREATE INDEX IF NOT EXISTS users_role ON users(role);
CREATE TABLE IF NOT EXISTS notifications (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	type TEXT NOT NULL,
	title TEXT NOT NULL DEFAULT '',
	message TEXT NOT NULL DEFAULT '',
	order_id TEXT NOT NULL DEFAULT '',
	data JSONB,
	is_read BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS notifications_user ON notifications(user_id, created_at DESC);
`

// Store is a PostgreSQL-backed store.
type Store struct {
	db *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// Open connects to dsn and applies the schema.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return &Store{db: pool}, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+store.UserColumns+` FROM users WHERE id = $1`, id)
	u, err := store.ScanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &u, nil
}

func (s *Store) ListStaffAndAdmins(ctx context.Context) ([]domain.User, error) {
	rows, err := s.db.Query(ctx, `SELECT `+store.UserColumns+` FROM users WHERE role = ANY($1) ORDER BY id`,
		[]string{domain.RoleStaff, domain.RoleAdmin})
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
	_, err := s.db.Exec(ctx, `
		INSERT INTO users (`+store.UserColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			username = EXCLUDED.username, first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
			business_name = EXCLUDED.business_name, role = EXCLUDED.role, phone = EXCLUDED.phone,
			email = EXCLUDED.email, alternative_email = EXCLUDED.alternative_email,
			preferred_language = EXCLUDED.preferred_language, email_notifications = EXCLUDED.email_notifications,
			sms_notifications = EXCLUDED.sms_notifications, sms_consent = EXCLUDED.sms_consent,
			sms_opted_out = EXCLUDED.sms_opted_out`,
		store.UserArgs(u)...)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (s *Store) SMSConsent(ctx context.Context, userID string) (bool, bool, error) {
	var consent, optedOut bool
	err := s.db.QueryRow(ctx, `SELECT sms_consent, sms_opted_out FROM users WHERE id = $1`, userID).
		Scan(&consent, &optedOut)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("sms consent: %w", err)
	}
	return consent, optedOut, nil
}

func (s *Store) CreateNotification(ctx context.Context, rec domain.NotificationRecord) (*domain.NotificationRecord, error) {
	rec = store.Prepare(rec)
	_, err := s.db.Exec(ctx, `INSERT INTO notifications (`+store.NotificationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`, store.NotificationArgs(rec)...)
	if err != nil {
		return nil, fmt.Errorf("insert notification: %w", err)
	}
	return &rec, nil
}

func (s *Store) ListNotifications(ctx context.Context, userID string, limit int) ([]domain.NotificationRecord, error) {
	var lim any
	if limit > 0 {
		lim = limit
	}
	rows, err := s.db.Query(ctx, `SELECT `+store.NotificationColumns+` FROM notifications
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, lim)
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
	tag, err := s.db.Exec(ctx, `UPDATE notifications SET is_read = true, updated_at = $2 WHERE id = $1`, id, time.Now())
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}
