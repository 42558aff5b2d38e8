// Package kite wraps the Kite Connect SDK behind a typed gateway. A Service
// holds the app's broker credentials; per-user calls go through a Handle
// constructed from the user's stored access token on every request, so there
// is no process-wide mutable broker state.
package kite

import (
	"github.com/arthamatics/arthamatics-be/internal/errs"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

// Params configures the gateway service.
type Params struct {
	APIKey    string
	APISecret string
}

// Service is the broker gateway. It is safe for concurrent use; every method
// builds its own SDK client.
type Service struct {
	apiKey    string
	apiSecret string
	baseURI   string
}

// Option configures optional service behavior.
type Option func(*Service)

// WithBaseURI points the SDK at a different API host. Used in tests.
func WithBaseURI(uri string) Option {
	return func(s *Service) { s.baseURI = uri }
}

// NewService constructs the gateway from validated configuration.
func NewService(p Params, opts ...Option) *Service {
	s := &Service{apiKey: p.APIKey, apiSecret: p.APISecret}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) newClient() *kiteconnect.Client {
	kc := kiteconnect.New(s.apiKey)
	if s.baseURI != "" {
		kc.SetBaseURI(s.baseURI)
	}
	return kc
}

// LoginURL builds the Kite Connect login URL from the configured API key.
// Deterministic, no network call.
func (s *Service) LoginURL() string {
	return s.newClient().GetLoginURL()
}

// APIKeyConfigured reports whether the API key is set.
func (s *Service) APIKeyConfigured() bool { return s.apiKey != "" }

// APISecretConfigured reports whether the API secret is set.
func (s *Service) APISecretConfigured() bool { return s.apiSecret != "" }

// GenerateSession trades the one-time request token plus the server-held
// secret for an access token. Callers persist the result; nothing is stored
// here and failures are not retried.
func (s *Service) GenerateSession(requestToken string) (kiteconnect.UserSession, error) {
	session, err := s.newClient().GenerateSession(requestToken, s.apiSecret)
	if err != nil {
		return kiteconnect.UserSession{}, &errs.RemoteError{Op: "generate session", Err: err}
	}
	return session, nil
}

// Quote fetches snapshots for the given EXCHANGE:SYMBOL keys. Unknown keys
// simply produce no entry in the result. The list must be non-empty.
func (s *Service) Quote(instruments []string) (kiteconnect.Quote, error) {
	if len(instruments) == 0 {
		return nil, &errs.ValidationError{Field: "instruments"}
	}
	quotes, err := s.newClient().GetQuote(instruments...)
	if err != nil {
		return nil, &errs.RemoteError{Op: "quotes", Err: err}
	}
	return quotes, nil
}

// BindSession returns a gateway handle bound to the given access token.
// Pure factory: each call site constructs a fresh handle from the stored
// token and uses it for the rest of the request only.
func (s *Service) BindSession(accessToken string) *Handle {
	kc := s.newClient()
	kc.SetAccessToken(accessToken)
	return &Handle{kc: kc}
}

// Handle is a gateway bound to one user's access token.
type Handle struct {
	kc *kiteconnect.Client
}

// Holdings returns the user's holdings verbatim from the broker.
func (h *Handle) Holdings() ([]kiteconnect.Holding, error) {
	holdings, err := h.kc.GetHoldings()
	if err != nil {
		return nil, &errs.RemoteError{Op: "holdings", Err: err}
	}
	return holdings, nil
}

// Orders returns the user's order book verbatim from the broker.
func (h *Handle) Orders() ([]kiteconnect.Order, error) {
	orders, err := h.kc.GetOrders()
	if err != nil {
		return nil, &errs.RemoteError{Op: "orders", Err: err}
	}
	return orders, nil
}

// PlaceOrder validates the request locally and forwards it as a regular
// variety order. Validation failures never reach the remote API.
func (h *Handle) PlaceOrder(req OrderRequest) (kiteconnect.OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return kiteconnect.OrderResponse{}, err
	}
	resp, err := h.kc.PlaceOrder(kiteconnect.VarietyRegular, kiteconnect.OrderParams{
		Tradingsymbol:   req.Tradingsymbol,
		Exchange:        req.Exchange,
		TransactionType: req.TransactionType,
		OrderType:       req.OrderType,
		Quantity:        req.Quantity,
		Product:         req.Product,
		Price:           req.Price,
		TriggerPrice:    req.TriggerPrice,
	})
	if err != nil {
		return kiteconnect.OrderResponse{}, &errs.RemoteError{Op: "place order", Err: err}
	}
	return resp, nil
}

// OrderRequest carries the fields accepted for order placement.
type OrderRequest struct {
	Tradingsymbol   string  `json:"tradingsymbol"`
	Exchange        string  `json:"exchange"`
	TransactionType string  `json:"transaction_type"`
	OrderType       string  `json:"order_type"`
	Quantity        int     `json:"quantity"`
	Product         string  `json:"product"`
	Price           float64 `json:"price,omitempty"`
	TriggerPrice    float64 `json:"trigger_price,omitempty"`
}

// Validate checks required fields in declaration order and names the first
// missing one. A zero quantity counts as missing.
func (r OrderRequest) Validate() error {
	required := []struct {
		name  string
		empty bool
	}{
		{"tradingsymbol", r.Tradingsymbol == ""},
		{"exchange", r.Exchange == ""},
		{"transaction_type", r.TransactionType == ""},
		{"order_type", r.OrderType == ""},
		{"quantity", r.Quantity == 0},
		{"product", r.Product == ""},
	}
	for _, field := range required {
		if field.empty {
			return &errs.ValidationError{Field: field.name}
		}
	}
	return nil
}
