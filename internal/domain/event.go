package domain

import (
	"encoding/json"
	"time"
)

// EventType names the business event a notification is about.
type EventType string

const (
	EventOrderConfirmation  EventType = "order_confirmation"
	EventStaffNewOrderAlert EventType = "staff_new_order_alert"
	EventOrderStatusUpdate  EventType = "order_status_update"
	EventOrderNote          EventType = "order_note"
	EventAccountApproved    EventType = "account_approved"
	EventGeneral            EventType = "general"
)

// Payload is the event-specific part of a notification. Each event type has
// its own struct so formatting never has to guess which fields exist.
type Payload interface {
	EventType() EventType
	// LanguageOverride returns a language that wins over the user's preference.
	LanguageOverride() string
	// OrderRef returns the related order id, or "".
	OrderRef() string
}

// Common carries fields every payload may set.
type Common struct {
	Language string `json:"language,omitempty"`
}

func (c Common) LanguageOverride() string { return c.Language }

// OrderConfirmation is sent to the customer who placed an order.
type OrderConfirmation struct {
	Common
	Order           Order       `json:"order"`
	Items           []OrderItem `json:"items,omitempty"`
	DeliveryAddress *Address    `json:"delivery_address,omitempty"`
}

func (OrderConfirmation) EventType() EventType { return EventOrderConfirmation }
func (p OrderConfirmation) OrderRef() string  { return p.Order.ID }

// StaffOrderAlert tells staff a new order arrived.
type StaffOrderAlert struct {
	Common
	Order           Order       `json:"order"`
	Items           []OrderItem `json:"items,omitempty"`
	CustomerName    string      `json:"customer_name"`
	DeliveryAddress *Address    `json:"delivery_address,omitempty"`
}

func (StaffOrderAlert) EventType() EventType { return EventStaffNewOrderAlert }
func (p StaffOrderAlert) OrderRef() string  { return p.Order.ID }

// OrderStatusUpdate reports a status transition. OldStatus may be empty.
type OrderStatusUpdate struct {
	Common
	Order     Order  `json:"order"`
	NewStatus string `json:"new_status"`
	OldStatus string `json:"old_status,omitempty"`
}

func (OrderStatusUpdate) EventType() EventType { return EventOrderStatusUpdate }
func (p OrderStatusUpdate) OrderRef() string  { return p.Order.ID }

// OrderNote carries a note added to an order.
type OrderNote struct {
	Common
	Order  Order  `json:"order"`
	Note   string `json:"note"`
	Author string `json:"author"`
}

func (OrderNote) EventType() EventType { return EventOrderNote }
func (p OrderNote) OrderRef() string  { return p.Order.ID }

// AccountApproval delivers login credentials. It must only ever travel by email.
type AccountApproval struct {
	Common
	Username      string  `json:"username"`
	Password      string  `json:"-"`
	CustomerLevel int     `json:"customer_level"`
	CreditLimit   float64 `json:"credit_limit"`
}

func (AccountApproval) EventType() EventType { return EventAccountApproved }
func (AccountApproval) OrderRef() string     { return "" }

// General is a free-form notification.
type General struct {
	Common
	Title   string `json:"title,omitempty"`
	Message string `json:"message,omitempty"`
	OrderID string `json:"order_id,omitempty"`
}

func (General) EventType() EventType { return EventGeneral }
func (p General) OrderRef() string  { return p.OrderID }

// NotificationRecord is a stored in-app notification. The registry only
// creates records; read state is toggled elsewhere.
type NotificationRecord struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Type      EventType       `json:"type"`
	Title     string          `json:"title"`
	Message   string          `json:"message"`
	OrderID   string          `json:"order_id,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	IsRead    bool            `json:"is_read"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}
