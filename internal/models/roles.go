package models

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

// KYC review states. Any contact-info change drops the profile back to pending.
const (
	KYCPending  = "pending"
	KYCApproved = "approved"
	KYCRejected = "rejected"
)
