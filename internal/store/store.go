// Package store defines the persistence contract shared by the user directory
// and in-app notification backends.
package store

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/registry"
)

// ErrNotFound is returned when a notification id does not exist.
var ErrNotFound = errors.New("not found")

// Store is implemented by every backend.
type Store interface {
	registry.UserDirectory
	registry.NotificationStore

	// SMSConsent reports whether userID agreed to texts and whether they
	// later opted out. Unknown users have neither.
	SMSConsent(ctx context.Context, userID string) (consent, optedOut bool, err error)
	// ListNotifications returns a user's records newest first. limit <= 0
	// returns all of them.
	ListNotifications(ctx context.Context, userID string, limit int) ([]domain.NotificationRecord, error)
	// MarkRead flags a record as read.
	MarkRead(ctx context.Context, id string) error
	UpsertUser(ctx context.Context, u domain.User) error
	Close() error
}

// Prepare fills in the id and timestamps a backend needs before insert.
func Prepare(rec domain.NotificationRecord) domain.NotificationRecord {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = rec.CreatedAt
	}
	return rec
}

// NewestFirst sorts records by creation time, newest first, and applies limit.
func NewestFirst(recs []domain.NotificationRecord, limit int) []domain.NotificationRecord {
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].CreatedAt.After(recs[j].CreatedAt) })
	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs
}

// StaffAndAdmins filters users down to staff and admins, ordered by id.
func StaffAndAdmins(users []domain.User) []domain.User {
	out := make([]domain.User, 0, len(users))
	for _, u := range users {
		if u.IsStaff() {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Row is satisfied by *sql.Row, *sql.Rows and pgx.Row.
type Row interface {
	Scan(dest ...any) error
}

// UserColumns is the column list ScanUser expects.
const UserColumns = "id, username, first_name, last_name, business_name, role, phone, email, alternative_email, preferred_language, email_notifications, sms_notifications, sms_consent, sms_opted_out"

// NotificationColumns is the column list ScanNotification expects.
const NotificationColumns = "id, user_id, type, title, message, order_id, data, is_read, created_at, updated_at"

// ScanUser reads a row selected with UserColumns.
func ScanUser(r Row) (domain.User, error) {
	var u domain.User
	err := r.Scan(&u.ID, &u.Username, &u.FirstName, &u.LastName, &u.BusinessName, &u.Role,
		&u.Phone, &u.Email, &u.AlternativeEmail, &u.PreferredLanguage,
		&u.EmailNotifications, &u.SMSNotifications, &u.SMSConsent, &u.SMSOptedOut)
	return u, err
}

// UserArgs returns u's fields in UserColumns order.
func UserArgs(u domain.User) []any {
	return []any{u.ID, u.Username, u.FirstName, u.LastName, u.BusinessName, u.Role,
		u.Phone, u.Email, u.AlternativeEmail, u.PreferredLanguage,
		u.EmailNotifications, u.SMSNotifications, u.SMSConsent, u.SMSOptedOut}
}

// ScanNotification reads a row selected with NotificationColumns.
func ScanNotification(r Row) (domain.NotificationRecord, error) {
	var rec domain.NotificationRecord
	var typ string
	var data []byte
	err := r.Scan(&rec.ID, &rec.UserID, &typ, &rec.Title, &rec.Message, &rec.OrderID,
		&data, &rec.IsRead, &rec.CreatedAt, &rec.UpdatedAt)
	rec.Type = domain.EventType(typ)
	if len(data) > 0 {
		rec.Data = data
	}
	return rec, err
}

// NotificationArgs returns rec's fields in NotificationColumns order.
func NotificationArgs(rec domain.NotificationRecord) []any {
	var data []byte
	if len(rec.Data) > 0 {
		data = rec.Data
	}
	return []any{rec.ID, rec.UserID, string(rec.Type), rec.Title, rec.Message, rec.OrderID,
		data, rec.IsRead, rec.CreatedAt, rec.UpdatedAt}
}
