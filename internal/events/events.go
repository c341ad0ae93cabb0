// Package events turns order and account events into registry calls. The
// same request types back the NATS consumer and the HTTP API.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/logging"
	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/registry"
)

// Subjects consumed from NATS.
const (
	SubjectOrderConfirmed     = "orders.confirmed"
	SubjectOrderStatusChanged = "orders.status_changed"
	SubjectOrderNoteAdded     = "orders.note_added"
	SubjectAccountApproved    = "accounts.approved"
)

// Subjects lists every subject Handle understands.
var Subjects = []string{
	SubjectOrderConfirmed,
	SubjectOrderStatusChanged,
	SubjectOrderNoteAdded,
	SubjectAccountApproved,
}

// ErrInvalid wraps decode and validation failures.
var ErrInvalid = errors.New("invalid event")

// ErrUnknownSubject is returned for subjects Handle does not route.
var ErrUnknownSubject = errors.New("unknown subject")

// Notifier is the registry surface the intake needs.
type Notifier interface {
	SendCustomerOrderConfirmation(ctx context.Context, customerID string, order domain.Order, items []domain.OrderItem, deliveryAddress *domain.Address) registry.Result
	SendStaffOrderAlert(ctx context.Context, order domain.Order, items []domain.OrderItem, customer *domain.User, deliveryAddress *domain.Address) registry.FanOutResult
	SendOrderStatusUpdate(ctx context.Context, customerID string, order domain.Order, newStatus, oldStatus string) registry.Result
	SendOrderNoteNotification(ctx context.Context, order domain.Order, note string, fromUser *domain.User, notifyCustomer bool) registry.FanOutResult
	SendAccountApprovalNotification(ctx context.Context, customer *domain.User, username, password string, customerLevel int, creditLimit float64) registry.Result
}

// OrderConfirmed is published once an order is placed.
type OrderConfirmed struct {
	Order           domain.Order       `json:"order"`
	Items           []domain.OrderItem `json:"items"`
	DeliveryAddress *domain.Address    `json:"delivery_address,omitempty"`
	// SkipStaffAlert suppresses the staff fan-out, e.g. for staff-entered orders.
	SkipStaffAlert bool `json:"skip_staff_alert,omitempty"`
}

// OrderStatusChanged is published on every status transition.
type OrderStatusChanged struct {
	Order     domain.Order `json:"order"`
	NewStatus string       `json:"new_status" validate:"required"`
	OldStatus string       `json:"old_status,omitempty"`
}

// OrderNoteAdded is published when staff or a customer annotates an order.
type OrderNoteAdded struct {
	Order          domain.Order `json:"order"`
	Note           string       `json:"note" validate:"required"`
	AuthorID       string       `json:"author_id,omitempty"`
	NotifyCustomer bool         `json:"notify_customer"`
}

// AccountApproved carries the credentials for a newly approved customer.
type AccountApproved struct {
	CustomerID    string  `json:"customer_id" validate:"required"`
	Username      string  `json:"username" validate:"required"`
	Password      string  `json:"password" validate:"required"`
	CustomerLevel int     `json:"customer_level" validate:"gte=0"`
	CreditLimit   float64 `json:"credit_limit" validate:"gte=0"`
}

// OrderConfirmedResult reports both halves of an order confirmation.
type OrderConfirmedResult struct {
	Customer registry.Result        `json:"customer"`
	Staff    *registry.FanOutResult `json:"staff,omitempty"`
}

var validate = validator.New()

// Validate checks struct tags and the cross-field rules tags cannot express.
func Validate(v any) error {
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if e, ok := v.(*OrderConfirmed); ok && e.Order.CustomerID == "" {
		return fmt.Errorf("%w: order.customer_id is required", ErrInvalid)
	}
	if e, ok := v.(*OrderStatusChanged); ok && e.Order.CustomerID == "" {
		return fmt.Errorf("%w: order.customer_id is required", ErrInvalid)
	}
	if e, ok := v.(*OrderNoteAdded); ok && e.NotifyCustomer && e.Order.CustomerID == "" {
		return fmt.Errorf("%w: order.customer_id is required to notify the customer", ErrInvalid)
	}
	return nil
}

// Handler routes decoded events to the registry.
type Handler struct {
	notifier Notifier
	users    registry.UserDirectory
}

// NewHandler builds a handler. users resolves the ordering customer and note
// authors for display names; it may be nil.
func NewHandler(n Notifier, users registry.UserDirectory) *Handler {
	return &Handler{notifier: n, users: users}
}

// Handle decodes data for subject, validates it and dispatches it. The
// returned value is the registry result, ready to be encoded as JSON.
func (h *Handler) Handle(ctx context.Context, subject string, data []byte) (any, error) {
	switch subject {
	case SubjectOrderConfirmed:
		var e OrderConfirmed
		if err := decode(data, &e); err != nil {
			return nil, err
		}
		return h.OrderConfirmed(ctx, e), nil
	case SubjectOrderStatusChanged:
		var e OrderStatusChanged
		if err := decode(data, &e); err != nil {
			return nil, err
		}
		return h.OrderStatusChanged(ctx, e), nil
	case SubjectOrderNoteAdded:
		var e OrderNoteAdded
		if err := decode(data, &e); err != nil {
			return nil, err
		}
		return h.OrderNoteAdded(ctx, e), nil
	case SubjectAccountApproved:
		var e AccountApproved
		if err := decode(data, &e); err != nil {
			return nil, err
		}
		return h.AccountApproved(ctx, e), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownSubject, subject)
	}
}

func decode(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return Validate(v)
}

// OrderConfirmed confirms the order to its customer and alerts staff.
func (h *Handler) OrderConfirmed(ctx context.Context, e OrderConfirmed) OrderConfirmedResult {
	res := OrderConfirmedResult{
		Customer: h.notifier.SendCustomerOrderConfirmation(ctx, e.Order.CustomerID, e.Order, e.Items, e.DeliveryAddress),
	}
	if !e.SkipStaffAlert {
		staff := h.notifier.SendStaffOrderAlert(ctx, e.Order, e.Items, h.DisplayUser(ctx, e.Order.CustomerID), e.DeliveryAddress)
		res.Staff = &staff
	}
	return res
}

func (h *Handler) OrderStatusChanged(ctx context.Context, e OrderStatusChanged) registry.Result {
	return h.notifier.SendOrderStatusUpdate(ctx, e.Order.CustomerID, e.Order, e.NewStatus, e.OldStatus)
}

func (h *Handler) OrderNoteAdded(ctx context.Context, e OrderNoteAdded) registry.FanOutResult {
	return h.notifier.SendOrderNoteNotification(ctx, e.Order, e.Note, h.DisplayUser(ctx, e.AuthorID), e.NotifyCustomer)
}

// AccountApproved resolves the customer so the registry can address the email.
// An unknown customer is passed through as nil and reported by the registry.
// A directory failure is reported as such, without calling the registry.
func (h *Handler) AccountApproved(ctx context.Context, e AccountApproved) registry.Result {
	customer, err := h.lookup(ctx, e.CustomerID)
	if err != nil {
		logging.Get().Error().Err(err).Str("event", string(domain.EventAccountApproved)).Msg("approval recipient could not be loaded")
		return registry.Result{Success: false, Error: err.Error()}
	}
	return h.notifier.SendAccountApprovalNotification(ctx, customer, e.Username, e.Password, e.CustomerLevel, e.CreditLimit)
}

// DisplayUser resolves a user whose only role is to provide a display name.
// Lookup failures are logged and yield nil.
func (h *Handler) DisplayUser(ctx context.Context, id string) *domain.User {
	u, err := h.lookup(ctx, id)
	if err != nil {
		logging.Get().Warn().Err(err).Msg("display user lookup failed")
		return nil
	}
	return u
}

// lookup returns nil, nil when the directory has no such user.
func (h *Handler) lookup(ctx context.Context, id string) (*domain.User, error) {
	if h.users == nil || id == "" {
		return nil, nil
	}
	u, err := h.users.GetUser(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup user %s: %w", id, err)
	}
	return u, nil
}
