package domain

import (
	"strings"
	"time"
)

// Order is the subset of an order that notifications need.
type Order struct {
	ID          string    `json:"id" validate:"required"`
	OrderNumber string    `json:"order_number"`
	CustomerID  string    `json:"customer_id"`
	Total       float64   `json:"total"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// Number returns the human order number, falling back to the order id.
func (o Order) Number() string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	return o.ID
}

// OrderItem is one line of an order.
type OrderItem struct {
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// Subtotal is quantity times unit price.
func (i OrderItem) Subtotal() float64 {
	return float64(i.Quantity) * i.Price
}

// Address is a delivery address. A nil *Address means pickup or unknown.
type Address struct {
	Name       string `json:"name,omitempty"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city,omitempty"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code,omitempty"`
}

// String joins the non-empty parts on one line.
func (a *Address) String() string {
	if a == nil {
		return ""
	}
	cityLine := strings.TrimSpace(strings.Join(nonEmpty(a.City, strings.TrimSpace(a.State+" "+a.PostalCode)), ", "))
	return strings.Join(nonEmpty(a.Name, a.Line1, a.Line2, cityLine), ", ")
}

func nonEmpty(parts ...string) []string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return out
}
