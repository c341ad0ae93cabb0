package registry

import (
	"fmt"

	"github.com/gokulwholesaleinc-web/wholesale-management-system-sub003/internal/domain"
)

const (
	unknownOrder  = "N/A"
	unknownStatus = "unknown"
	unknownAuthor = "staff"
)

// Title returns the in-app title for a payload. These strings are not localized.
func Title(p domain.Payload) string {
	switch v := p.(type) {
	case domain.OrderConfirmation:
		return "Order Confirmed"
	case domain.StaffOrderAlert:
		return "New Order Received"
	case domain.OrderStatusUpdate:
		return "Order Status Updated"
	case domain.OrderNote:
		return "New Order Note"
	case domain.AccountApproval:
		return "Account Approved"
	case domain.General:
		if v.Title != "" {
			return v.Title
		}
	}
	return "Notification"
}

// Message returns the in-app body for a payload, substituting fallback text
// for missing fields.
func Message(p domain.Payload) string {
	switch v := p.(type) {
	case domain.OrderConfirmation:
		return fmt.Sprintf("Your order #%s has been confirmed. Total: %s", orderNumber(v.Order), money(v.Order.Total))
	case domain.StaffOrderAlert:
		return fmt.Sprintf("New order #%s from %s. Total: %s", orderNumber(v.Order), orDefault(v.CustomerName, "a customer"), money(v.Order.Total))
	case domain.OrderStatusUpdate:
		status := orDefault(v.NewStatus, unknownStatus)
		if v.OldStatus != "" {
			return fmt.Sprintf("Your order #%s status changed from %s to %s", orderNumber(v.Order), v.OldStatus, status)
		}
		return fmt.Sprintf("Your order #%s status has been updated to: %s", orderNumber(v.Order), status)
	case domain.OrderNote:
		return fmt.Sprintf("%s added a note to order #%s: %s", orDefault(v.Author, unknownAuthor), orderNumber(v.Order), orDefault(v.Note, "(empty note)"))
	case domain.AccountApproval:
		return "Your account has been approved. Check your email for login details."
	case domain.General:
		if v.Message != "" {
			return v.Message
		}
	}
	return "You have a new notification"
}

func orderNumber(o domain.Order) string {
	return orDefault(o.Number(), unknownOrder)
}

func money(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// shapeMessage flattens a payload into the structured data email and SMS
// providers render from. CustomerName is the recipient's name except for
// staff alerts, where it names the ordering customer.
func shapeMessage(user domain.User, p domain.Payload) domain.MessageData {
	d := domain.MessageData{CustomerName: user.DisplayName()}
	switch v := p.(type) {
	case domain.OrderConfirmation:
		fillOrder(&d, v.Order)
		d.Items = v.Items
		d.DeliveryAddress = v.DeliveryAddress.String()
	case domain.StaffOrderAlert:
		fillOrder(&d, v.Order)
		d.CustomerName = orDefault(v.CustomerName, d.CustomerName)
		d.Items = v.Items
		d.DeliveryAddress = v.DeliveryAddress.String()
	case domain.OrderStatusUpdate:
		fillOrder(&d, v.Order)
		d.NewStatus = orDefault(v.NewStatus, unknownStatus)
		d.OldStatus = v.OldStatus
	case domain.OrderNote:
		fillOrder(&d, v.Order)
		d.Note = v.Note
		d.Author = orDefault(v.Author, unknownAuthor)
	case domain.AccountApproval:
		d.Username = v.Username
		d.Password = v.Password
		d.CustomerLevel = v.CustomerLevel
		d.CreditLimit = v.CreditLimit
	case domain.General:
		d.OrderID = v.OrderID
		d.Title = Title(v)
		d.Message = Message(v)
	}
	return d
}

func fillOrder(d *domain.MessageData, o domain.Order) {
	d.OrderID = o.ID
	d.OrderNumber = orderNumber(o)
	d.OrderTotal = o.Total
}
