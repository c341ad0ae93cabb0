// Package domain holds the order, user and notification types shared by the
// registry, the stores and the delivery providers.
package domain

import "strings"

// Role values stored on a user record.
const (
	RoleCustomer = "customer"
	RoleStaff    = "staff"
	RoleAdmin    = "admin"
)

// DefaultLanguage is used when neither the event nor the user names a language.
const DefaultLanguage = "en"

// User is a customer or staff account together with its notification preferences.
type User struct {
	ID                 string `json:"id" yaml:"id"`
	Username           string `json:"username" yaml:"username"`
	FirstName          string `json:"first_name,omitempty" yaml:"first_name"`
	LastName           string `json:"last_name,omitempty" yaml:"last_name"`
	BusinessName       string `json:"business_name,omitempty" yaml:"business_name"`
	Role               string `json:"role" yaml:"role"`
	Phone              string `json:"phone,omitempty" yaml:"phone"`
	Email              string `json:"email,omitempty" yaml:"email"`
	AlternativeEmail   string `json:"alternative_email,omitempty" yaml:"alternative_email"`
	PreferredLanguage  string `json:"preferred_language,omitempty" yaml:"preferred_language"`
	EmailNotifications bool   `json:"email_notifications" yaml:"email_notifications"`
	SMSNotifications   bool   `json:"sms_notifications" yaml:"sms_notifications"`
	SMSConsent         bool   `json:"sms_consent" yaml:"sms_consent"`
	SMSOptedOut        bool   `json:"sms_opted_out" yaml:"sms_opted_out"`
}

// IsStaff reports whether the user receives staff alerts.
func (u User) IsStaff() bool {
	return u.Role == RoleStaff || u.Role == RoleAdmin
}

// Language returns the preferred language or DefaultLanguage.
func (u User) Language() string {
	if l := strings.TrimSpace(u.PreferredLanguage); l != "" {
		return l
	}
	return DefaultLanguage
}

// ContactEmail returns the primary email, falling back to the alternative one.
func (u User) ContactEmail() string {
	if u.Email != "" {
		return u.Email
	}
	return u.AlternativeEmail
}

// DisplayName is the name used in greetings: business name, full name, then username.
func (u User) DisplayName() string {
	if u.BusinessName != "" {
		return u.BusinessName
	}
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.Username
}
