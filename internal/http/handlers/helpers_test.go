package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/arthamatics/arthamatics-be/internal/auth"
	"github.com/arthamatics/arthamatics-be/internal/errs"
	"github.com/arthamatics/arthamatics-be/internal/kite"
	"github.com/arthamatics/arthamatics-be/internal/models"
	"github.com/arthamatics/arthamatics-be/internal/storage"
)

// stubStore is an in-memory UserStore for handler tests.
type stubStore struct {
	mu        sync.Mutex
	nextID    int64
	users     map[int64]models.User
	customers map[int64]models.Customer
}

var _ storage.UserStore = (*stubStore)(nil)

func newStubStore() *stubStore {
	return &stubStore{
		nextID:    1,
		users:     make(map[int64]models.User),
		customers: make(map[int64]models.Customer),
	}
}

func (s *stubStore) CreateUser(ctx context.Context, user models.User, customer models.Customer) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return models.User{}, errs.ErrAlreadyExists
		}
	}
	user.ID = s.nextID
	user.CreatedAt = time.Now()
	s.nextID++
	customer.UserID = user.ID
	s.users[user.ID] = user
	s.customers[user.ID] = customer
	return user, nil
}

func (s *stubStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return user, nil
		}
	}
	return models.User{}, errs.ErrNotFound
}

func (s *stubStore) FindByID(ctx context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return models.User{}, errs.ErrNotFound
	}
	return user, nil
}

func (s *stubStore) BrokerCredential(ctx context.Context, userID int64) (models.BrokerCredential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return models.BrokerCredential{}, errs.ErrNotFound
	}
	return models.BrokerCredential{Token: user.KiteToken, Expiry: user.KiteTokenExpiry}, nil
}

func (s *stubStore) SaveBrokerToken(ctx context.Context, userID int64, token string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[userID]
	if !ok {
		return errs.ErrNotFound
	}
	user.KiteToken = &token
	user.KiteTokenExpiry = &expiry
	s.users[userID] = user
	return nil
}

func (s *stubStore) UpdateCustomerContact(ctx context.Context, userID int64, phone, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	customer, ok := s.customers[userID]
	if !ok {
		return errs.ErrNotFound
	}
	customer.Phone = phone
	customer.Address = address
	customer.KYCStatus = models.KYCPending
	s.customers[userID] = customer
	return nil
}

func (s *stubStore) setBrokerToken(userID int64, token *string, expiry *time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[userID]
	user.KiteToken = token
	user.KiteTokenExpiry = expiry
	s.users[userID] = user
}

func (s *stubStore) customer(userID int64) models.Customer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.customers[userID]
}

func (s *stubStore) user(userID int64) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID]
}

// fakeKiteAPI serves the Kite Connect endpoints the handlers exercise.
func fakeKiteAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/session/token", func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		w.Header().Set("Content-Type", "application/json")
		if r.PostFormValue("request_token") != "valid-token" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"status":"error","message":"Token is invalid or has expired.","error_type":"TokenException","data":null}`))
			return
		}
		w.Write([]byte(`{"status":"success","data":{
			"user_id":"AB1234","user_name":"Test Customer","email":"customer@example.com",
			"access_token":"live-access-token","refresh_token":""
		}}`))
	})

	mux.HandleFunc("/quote", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{
			"NSE:RELIANCE":{"instrument_token":738561,"last_price":2954.5,"volume":123456,
				"net_change":12.3,"ohlc":{"open":2940.0,"high":2960.0,"low":2931.2,"close":2942.2}}
		}}`))
	})

	mux.HandleFunc("/portfolio/holdings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":[
			{"tradingsymbol":"RELIANCE","exchange":"NSE","product":"CNC","quantity":10,
				"average_price":2800.0,"last_price":2954.5,"pnl":1545.0}
		]}`))
	})

	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":[
			{"order_id":"220728000000001","status":"COMPLETE","tradingsymbol":"RELIANCE"}
		]}`))
	})

	mux.HandleFunc("/orders/regular", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":{"order_id":"220728000000042"}}`))
	})

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

type fixture struct {
	ts     *httptest.Server
	store  *stubStore
	tokens *auth.TokenManager
	bearer string
	userID int64
}

// newFixture wires the full route surface against a stub store and a fake
// broker API, and signs in one customer.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	api := fakeKiteAPI(t)

	store := newStubStore()
	tokens := auth.NewTokenManager("test-secret", "test-issuer", time.Hour)
	svc := kite.NewService(kite.Params{APIKey: "test-key", APISecret: "test-secret"}, kite.WithBaseURI(api.URL))
	binder := kite.NewBinder(store, svc)
	log := zap.NewNop()

	mux := http.NewServeMux()
	NewHealthHandler(time.Now()).Register(mux)
	NewAuthHandler(store, tokens, log).Register(mux)
	NewCustomerHandler(store, tokens, log).Register(mux)
	NewKiteHandler(store, svc, binder, tokens, log).Register(mux)

	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)

	user, err := store.CreateUser(context.Background(),
		models.User{Email: "customer@example.com", Role: models.RoleCustomer, PasswordHash: "x"},
		models.Customer{FirstName: "Test", LastName: "Customer", KYCStatus: models.KYCApproved},
	)
	require.NoError(t, err)
	bearer, err := tokens.Generate(user)
	require.NoError(t, err)

	return &fixture{ts: ts, store: store, tokens: tokens, bearer: bearer, userID: user.ID}
}

// doJSON issues a request and decodes the JSON response body.
func (f *fixture) doJSON(t *testing.T, method, path string, payload any, bearer string) (int, map[string]any) {
	t.Helper()
	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, f.ts.URL+path, body)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

// doRaw posts a raw body, used for the webhook endpoint.
func (f *fixture) doRaw(t *testing.T, path string, raw string) (int, map[string]any) {
	t.Helper()
	resp, err := http.Post(f.ts.URL+path, "application/json", bytes.NewReader([]byte(raw)))
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func strPtr(s string) *string        { return &s }
func timePtr(t time.Time) *time.Time { return &t }
