package domain

// MessageData is the structured content handed to email and SMS providers.
// Providers render their own localized bodies from it.
type MessageData struct {
	CustomerName    string      `json:"customer_name"`
	OrderID         string      `json:"order_id,omitempty"`
	OrderNumber     string      `json:"order_number,omitempty"`
	OrderTotal      float64     `json:"order_total,omitempty"`
	NewStatus       string      `json:"new_status,omitempty"`
	OldStatus       string      `json:"old_status,omitempty"`
	Items           []OrderItem `json:"items,omitempty"`
	DeliveryAddress string      `json:"delivery_address,omitempty"`
	Note            string      `json:"note,omitempty"`
	Author          string      `json:"author,omitempty"`
	Username        string      `json:"username,omitempty"`
	Password        string      `json:"-"`
	CustomerLevel   int         `json:"customer_level,omitempty"`
	CreditLimit     float64     `json:"credit_limit,omitempty"`
	Title           string      `json:"title,omitempty"`
	Message         string      `json:"message,omitempty"`
}

// EmailRequest asks an email provider to render Template in Language and send it to To.
type EmailRequest struct {
	Template EventType
	Language string
	To       string
	MessageData
}

// SMSRequest asks an SMS provider to text To. UserID is used for consent checks.
type SMSRequest struct {
	Template EventType
	Language string
	UserID   string
	To       string
	MessageData
}

// SMSResult is what an SMS provider reports back on success.
type SMSResult struct {
	MessageID string
}
