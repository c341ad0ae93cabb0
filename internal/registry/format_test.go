package registry

import (
	"strings"
	"testing"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
)

func TestTitleAndMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload domain.Payload
		title   string
		message string
	}{
		{"confirmation", domain.OrderConfirmation{Order: order42}, "Order Confirmed", "Your order #42 has been confirmed. Total: $129.50"},
		{"confirmation fallback", domain.OrderConfirmation{}, "Order Confirmed", "Your order #N/A has been confirmed. Total: $0.00"},
		{"staff alert", domain.StaffOrderAlert{Order: order42, CustomerName: "Corner Market"}, "New Order Received", "New order #42 from Corner Market. Total: $129.50"},
		{"staff alert no name", domain.StaffOrderAlert{Order: order42}, "New Order Received", "New order #42 from a customer. Total: $129.50"},
		{"status", domain.OrderStatusUpdate{Order: order42, NewStatus: "shipped"}, "Order Status Updated", "Your order #42 status has been updated to: shipped"},
		{"status transition", domain.OrderStatusUpdate{Order: order42, NewStatus: "shipped", OldStatus: "pending"}, "Order Status Updated", "Your order #42 status changed from pending to shipped"},
		{"status fallback", domain.OrderStatusUpdate{}, "Order Status Updated", "Your order #N/A status has been updated to: unknown"},
		{"note", domain.OrderNote{Order: order42, Note: "Leave at back door", Author: "Dana"}, "New Order Note", "Dana added a note to order #42: Leave at back door"},
		{"note fallback", domain.OrderNote{}, "New Order Note", "staff added a note to order #N/A: (empty note)"},
		{"approval", domain.AccountApproval{Username: "u", Password: "p"}, "Account Approved", "Your account has been approved. Check your email for login details."},
		{"general", domain.General{Title: "Holiday hours", Message: "Closed Monday"}, "Holiday hours", "Closed Monday"},
		{"general fallback", domain.General{}, "Notification", "You have a new notification"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Title(tt.payload); got != tt.title {
				t.Errorf("title: expected %q, got %q", tt.title, got)
			}
			if got := Message(tt.payload); got != tt.message {
				t.Errorf("message: expected %q, got %q", tt.message, got)
			}
		})
	}
}

func TestApprovalMessageNeverContainsCredentials(t *testing.T) {
	p := domain.AccountApproval{Username: "corner", Password: "s3cret"}
	for _, s := range []string{Title(p), Message(p)} {
		if strings.Contains(s, "s3cret") || strings.Contains(s, "corner") {
			t.Fatalf("credentials leaked into in-app text: %q", s)
		}
	}
}

func TestShapeMessage(t *testing.T) {
	u := domain.User{ID: "c1", FirstName: "Ana", LastName: "Lopez"}
	d := shapeMessage(u, domain.OrderConfirmation{Order: order42, DeliveryAddress: &domain.Address{Line1: "1 Elm"}})
	if d.CustomerName != "Ana Lopez" || d.OrderNumber != "42" || d.OrderTotal != 129.5 || d.DeliveryAddress != "1 Elm" {
		t.Fatalf("unexpected shaped data: %+v", d)
	}
	d = shapeMessage(u, domain.StaffOrderAlert{Order: order42, CustomerName: "Corner Market"})
	if d.CustomerName != "Corner Market" {
		t.Fatalf("staff alert should name the ordering customer, got %q", d.CustomerName)
	}
	d = shapeMessage(u, domain.General{Title: "T", Message: "M", OrderID: "o1"})
	if d.Title != "T" || d.Message != "M" || d.OrderID != "o1" {
		t.Fatalf("unexpected general data: %+v", d)
	}
}
