// Package storetest runs the same behavioural checks against every store
// backend.
package storetest

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store"
)

// Users seeded by Run.
var (
	Customer = domain.User{
		ID: "cust-1", Username: "corner", FirstName: "Ana", LastName: "Lopez", BusinessName: "Corner Market",
		Role: domain.RoleCustomer, Phone: "+15551234567", Email: "ana@example.com", PreferredLanguage: "es",
		EmailNotifications: true, SMSNotifications: true, SMSConsent: true,
	}
	OptedOut = domain.User{ID: "cust-2", Role: domain.RoleCustomer, SMSConsent: true, SMSOptedOut: true}
	Staff    = domain.User{ID: "staff-1", Role: domain.RoleStaff, Email: "s1@example.com"}
	Admin    = domain.User{ID: "admin-1", Role: domain.RoleAdmin, Email: "a1@example.com"}
)

// Run exercises s. It must start empty.
func Run(t *testing.T, s store.Store) {
	t.Helper()
	ctx := context.Background()
	for _, u := range []domain.User{Customer, OptedOut, Staff, Admin} {
		require.NoError(t, s.UpsertUser(ctx, u))
	}

	t.Run("users", func(t *testing.T) {
		got, err := s.GetUser(ctx, "cust-1")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, Customer, *got)

		missing, err := s.GetUser(ctx, "ghost")
		require.NoError(t, err)
		assert.Nil(t, missing)

		updated := Customer
		updated.PreferredLanguage = "en"
		require.NoError(t, s.UpsertUser(ctx, updated))
		got, err = s.GetUser(ctx, "cust-1")
		require.NoError(t, err)
		assert.Equal(t, "en", got.PreferredLanguage)
		require.NoError(t, s.UpsertUser(ctx, Customer))
	})

	t.Run("staff and admins", func(t *testing.T) {
		staff, err := s.ListStaffAndAdmins(ctx)
		require.NoError(t, err)
		ids := make([]string, 0, len(staff))
		for _, u := range staff {
			ids = append(ids, u.ID)
		}
		assert.Equal(t, []string{"admin-1", "staff-1"}, ids)
	})

	t.Run("sms consent", func(t *testing.T) {
		consent, optedOut, err := s.SMSConsent(ctx, "cust-1")
		require.NoError(t, err)
		assert.True(t, consent)
		assert.False(t, optedOut)

		consent, optedOut, err = s.SMSConsent(ctx, "cust-2")
		require.NoError(t, err)
		assert.True(t, consent)
		assert.True(t, optedOut)

		consent, optedOut, err = s.SMSConsent(ctx, "ghost")
		require.NoError(t, err)
		assert.False(t, consent)
		assert.False(t, optedOut)
	})

	t.Run("notifications", func(t *testing.T) {
		base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
		first, err := s.CreateNotification(ctx, domain.NotificationRecord{
			UserID: "cust-1", Type: domain.EventOrderConfirmation, Title: "Order Confirmed",
			Message: "Your order #42 has been confirmed. Total: $60.00", OrderID: "ord-42",
			Data: json.RawMessage(`{"order":{"id":"ord-42"}}`), CreatedAt: base,
		})
		require.NoError(t, err)
		require.NotNil(t, first)
		assert.NotEmpty(t, first.ID)
		assert.Equal(t, base, first.UpdatedAt)

		_, err = s.CreateNotification(ctx, domain.NotificationRecord{
			ID: "fixed-id", UserID: "cust-1", Type: domain.EventOrderStatusUpdate, Title: "Order Status Updated",
			CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour),
		})
		require.NoError(t, err)
		_, err = s.CreateNotification(ctx, domain.NotificationRecord{UserID: "staff-1", Type: domain.EventGeneral, CreatedAt: base})
		require.NoError(t, err)

		recs, err := s.ListNotifications(ctx, "cust-1", 0)
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "fixed-id", recs[0].ID)
		assert.Equal(t, first.ID, recs[1].ID)
		assert.Equal(t, "ord-42", recs[1].OrderID)
		assert.JSONEq(t, `{"order":{"id":"ord-42"}}`, string(recs[1].Data))
		assert.True(t, recs[1].CreatedAt.Equal(base))
		assert.False(t, recs[1].IsRead)

		limited, err := s.ListNotifications(ctx, "cust-1", 1)
		require.NoError(t, err)
		assert.Len(t, limited, 1)

		require.NoError(t, s.MarkRead(ctx, first.ID))
		recs, err = s.ListNotifications(ctx, "cust-1", 0)
		require.NoError(t, err)
		assert.True(t, recs[1].IsRead)

		assert.True(t, errors.Is(s.MarkRead(ctx, "nope"), store.ErrNotFound))

		none, err := s.ListNotifications(ctx, "ghost", 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})
}
