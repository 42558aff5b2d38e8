package storage

import (
	"context"
	"time"

	"github.com/arthamatics/arthamatics-be/internal/models"
)

// UserStore captures persistence operations needed by handlers and the
// session binder. The store is the only shared state between requests;
// updates are last-write-wins with no optimistic concurrency.
type UserStore interface {
	// CreateUser inserts a user and its one-to-one customer profile.
	CreateUser(ctx context.Context, user models.User, customer models.Customer) (models.User, error)

	// FindByEmail fetches a user by email address.
	FindByEmail(ctx context.Context, email string) (models.User, error)

	// FindByID fetches a user by id.
	FindByID(ctx context.Context, id int64) (models.User, error)

	// BrokerCredential reads the stored Kite token and expiry for a user.
	BrokerCredential(ctx context.Context, userID int64) (models.BrokerCredential, error)

	// SaveBrokerToken overwrites the user's Kite token and expiry.
	SaveBrokerToken(ctx context.Context, userID int64, token string, expiry time.Time) error

	// UpdateCustomerContact persists phone and address and unconditionally
	// resets the customer's KYC status to pending.
	UpdateCustomerContact(ctx context.Context, userID int64, phone, address string) error
}
