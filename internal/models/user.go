package models

import "time"

// User captures application-facing fields for an authenticated identity.
// KiteToken/KiteTokenExpiry hold the broker credential set by the session
// exchange; trading operations never mutate them.
type User struct {
	ID              int64      `json:"id"`
	Email           string     `json:"email"`
	Role            string     `json:"role"`
	PasswordHash    string     `json:"-"`
	KiteToken       *string    `json:"-"`
	KiteTokenExpiry *time.Time `json:"-"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Customer is the one-to-one KYC profile attached to a User.
type Customer struct {
	UserID    int64  `json:"user_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	KYCStatus string `json:"kyc_status"`
}

// BrokerCredential is the token/expiry projection of a User used by the
// session binder. It is derived, never stored as its own row.
type BrokerCredential struct {
	Token  *string
	Expiry *time.Time
}
