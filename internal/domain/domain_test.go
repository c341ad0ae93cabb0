package domain

import "testing"

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user User
		want string
	}{
		{"business wins", User{BusinessName: "Acme", FirstName: "A", Username: "u"}, "Acme"},
		{"full name", User{FirstName: "Ana", LastName: "Lopez", Username: "u"}, "Ana Lopez"},
		{"first only", User{FirstName: "Ana", Username: "u"}, "Ana"},
		{"username", User{Username: "u"}, "u"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.DisplayName(); got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestUserLanguageAndEmail(t *testing.T) {
	u := User{AlternativeEmail: "alt@x"}
	if u.Language() != DefaultLanguage {
		t.Fatalf("expected default language, got %q", u.Language())
	}
	if u.ContactEmail() != "alt@x" {
		t.Fatalf("expected alternative email fallback, got %q", u.ContactEmail())
	}
	u.Email = "main@x"
	u.PreferredLanguage = "es"
	if u.Language() != "es" || u.ContactEmail() != "main@x" {
		t.Fatalf("unexpected language/email: %q %q", u.Language(), u.ContactEmail())
	}
}

func TestIsStaff(t *testing.T) {
	for role, want := range map[string]bool{RoleStaff: true, RoleAdmin: true, RoleCustomer: false, "": false} {
		if got := (User{Role: role}).IsStaff(); got != want {
			t.Fatalf("role %q: expected %v, got %v", role, want, got)
		}
	}
}

func TestAddressString(t *testing.T) {
	var nilAddr *Address
	if nilAddr.String() != "" {
		t.Fatal("nil address should format as empty")
	}
	a := &Address{Line1: "123 Main St", City: "Springfield", State: "IL", PostalCode: "62701"}
	if got := a.String(); got != "123 Main St, Springfield, IL 62701" {
		t.Fatalf("unexpected address: %q", got)
	}
}

func TestOrderNumberFallback(t *testing.T) {
	if (Order{ID: "o-1"}).Number() != "o-1" {
		t.Fatal("expected id fallback")
	}
	if (Order{ID: "o-1", OrderNumber: "42"}).Number() != "42" {
		t.Fatal("expected order number")
	}
}
