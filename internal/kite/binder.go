package kite

import (
	"context"
	"time"

	"github.com/arthamatics/arthamatics-be/internal/errs"
	"github.com/arthamatics/arthamatics-be/internal/storage"
)

// Binder resolves a signed-in user to a gateway handle bound to their stored
// access token, enforcing presence and expiry. Read-only: it never refreshes
// or renews the token; renewal happens solely via the session exchange.
type Binder struct {
	store storage.UserStore
	svc   *Service
	now   func() time.Time
}

// NewBinder constructs a session binder over the given store and gateway.
func NewBinder(store storage.UserStore, svc *Service) *Binder {
	return &Binder{store: store, svc: svc, now: time.Now}
}

// ResolveTradingContext looks up the user's broker credential and returns a
// freshly bound handle. Fails with errs.ErrNoToken if no token is stored and
// errs.ErrTokenExpired if the expiry instant has passed; a token is still
// valid at exactly its expiry instant.
func (b *Binder) ResolveTradingContext(ctx context.Context, userID int64) (*Handle, error) {
	cred, err := b.store.BrokerCredential(ctx, userID)
	if err != nil {
		return nil, err
	}
	if cred.Token == nil || *cred.Token == "" {
		return nil, errs.ErrNoToken
	}
	if cred.Expiry != nil && b.now().After(*cred.Expiry) {
		return nil, errs.ErrTokenExpired
	}
	return b.svc.BindSession(*cred.Token), nil
}
