package dto

// UpdateProfileRequest carries the KYC contact fields. Both are required;
// a successful update resets the customer's KYC status to pending.
type UpdateProfileRequest struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// SessionRequest carries the one-time request token from the Kite redirect.
type SessionRequest struct {
	RequestToken string `json:"requestToken"`
}

// SessionInfo is the redacted session summary returned to the browser.
type SessionInfo struct {
	AccessToken string `json:"access_token"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	Email       string `json:"email"`
}

// QuotesRequest carries EXCHANGE:SYMBOL instrument keys.
type QuotesRequest struct {
	Instruments []string `json:"instruments"`
}
