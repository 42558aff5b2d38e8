package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/arthamatics/arthamatics-be/internal/errs"
	"github.com/arthamatics/arthamatics-be/internal/models"
	"github.com/arthamatics/arthamatics-be/internal/storage"
)

// Ensure Store satisfies the storage.UserStore interface at compile time.
var _ storage.UserStore = (*Store)(nil)

// Store provides Postgres-backed persistence for users and customer profiles.
type Store struct {
	pool PgxPool
}

// NewStore wraps an existing pool. Migrations run separately at startup.
func NewStore(pool PgxPool) *Store {
	return &Store{pool: pool}
}

// Close releases database resources.
func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// CreateUser inserts a user row and its customer profile.
func (s *Store) CreateUser(ctx context.Context, user models.User, customer models.Customer) (models.User, error) {
	const userQuery = `
		INSERT INTO users (email, password_hash, role)
		VALUES ($1, $2, $3)
		RETURNING id, email, role, created_at;`
	row := s.pool.QueryRow(ctx, userQuery, user.Email, user.PasswordHash, user.Role)
	var created models.User
	if err := row.Scan(&created.ID, &created.Email, &created.Role, &created.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return models.User{}, errs.ErrAlreadyExists
		}
		return models.User{}, err
	}

	const customerQuery = `
		INSERT INTO customers (user_id, first_name, last_name, phone, address, kyc_status)
		VALUES ($1, $2, $3, $4, $5, $6);`
	kycStatus := customer.KYCStatus
	if kycStatus == "" {
		kycStatus = models.KYCPending
	}
	if _, err := s.pool.Exec(ctx, customerQuery,
		created.ID, customer.FirstName, customer.LastName, customer.Phone, customer.Address, kycStatus); err != nil {
		return models.User{}, err
	}

	return created, nil
}

// FindByEmail fetches a user by email address.
func (s *Store) FindByEmail(ctx context.Context, email string) (models.User, error) {
	const query = `
	SELECT id, email, role, password_hash, kite_token, kite_token_expiry, created_at
	FROM users
	WHERE email = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, email))
}

// FindByID fetches a user by id.
func (s *Store) FindByID(ctx context.Context, id int64) (models.User, error) {
	const query = `
	SELECT id, email, role, password_hash, kite_token, kite_token_expiry, created_at
	FROM users
	WHERE id = $1;`
	return scanUser(s.pool.QueryRow(ctx, query, id))
}

// BrokerCredential reads the stored Kite token and expiry for a user.
func (s *Store) BrokerCredential(ctx context.Context, userID int64) (models.BrokerCredential, error) {
	const query = `
	SELECT kite_token, kite_token_expiry
	FROM users
	WHERE id = $1;`
	row := s.pool.QueryRow(ctx, query, userID)
	var cred models.BrokerCredential
	if err := row.Scan(&cred.Token, &cred.Expiry); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.BrokerCredential{}, errs.ErrNotFound
		}
		return models.BrokerCredential{}, err
	}
	return cred, nil
}

// SaveBrokerToken overwrites the user's Kite token and expiry.
func (s *Store) SaveBrokerToken(ctx context.Context, userID int64, token string, expiry time.Time) error {
	const query = `
	UPDATE users
	SET kite_token = $2, kite_token_expiry = $3
	WHERE id = $1;`
	tag, err := s.pool.Exec(ctx, query, userID, token, expiry)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

// UpdateCustomerContact persists phone and address and resets KYC to pending,
// even if it was previously approved.
func (s *Store) UpdateCustomerContact(ctx context.Context, userID int64, phone, address string) error {
	const query = `
	UPDATE customers
	SET phone = $2, address = $3, kyc_status = 'pending'
	WHERE user_id = $1;`
	tag, err := s.pool.Exec(ctx, query, userID, phone, address)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	if err := row.Scan(&user.ID, &user.Email, &user.Role, &user.PasswordHash,
		&user.KiteToken, &user.KiteTokenExpiry, &user.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, errs.ErrNotFound
		}
		return models.User{}, err
	}
	return user, nil
}
