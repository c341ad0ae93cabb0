package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/store/storetest"
)

func TestSQLiteStore(t *testing.T) {
	s, err := Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer s.Close()
	storetest.Run(t, s)
}

func TestSQLiteSchemaIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notify.db")
	s, err := Open(context.Background(), path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if err := s.UpsertUser(context.Background(), domain.User{ID: "u1", Role: domain.RoleAdmin}); err != nil {
		t.Fatalf("UpsertUser failed: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	s, err = Open(context.Background(), path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer s.Close()
	staff, err := s.ListStaffAndAdmins(context.Background())
	if err != nil {
		t.Fatalf("ListStaffAndAdmins failed: %v", err)
	}
	if len(staff) != 1 || staff[0].ID != "u1" {
		t.Fatalf("expected persisted admin, got %+v", staff)
	}
}
