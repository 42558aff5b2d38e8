package kite

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arthamatics/arthamatics-be/internal/errs"
)

// fakeKiteAPI serves just enough of the Kite Connect REST surface for the
// SDK to talk to.
func fakeKiteAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/session/token", func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if r.PostFormValue("request_token") != "valid-token" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"status":"error","message":"Token is invalid or has expired.","error_type":"TokenException","data":null}`))
			return
		}
		w.Write([]byte(`{"status":"success","data":{
			"user_id":"AB1234","user_name":"Test Customer","user_shortname":"Test",
			"email":"customer@example.com","access_token":"live-access-token","refresh_token":""
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
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"status":"error","message":"Invalid token","error_type":"TokenException","data":null}`))
			return
		}
		w.Write([]byte(`{"status":"success","data":[
			{"tradingsymbol":"RELIANCE","exchange":"NSE","isin":"INE002A01018","product":"CNC",
				"quantity":10,"average_price":2800.0,"last_price":2954.5,"pnl":1545.0}
		]}`))
	})

	mux.HandleFunc("/orders", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","data":[
			{"order_id":"220728000000001","status":"COMPLETE","tradingsymbol":"RELIANCE",
				"exchange":"NSE","transaction_type":"BUY","order_type":"MARKET","product":"CNC","quantity":10}
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

func newTestService(t *testing.T) *Service {
	t.Helper()
	api := fakeKiteAPI(t)
	return NewService(Params{APIKey: "test-key", APISecret: "test-secret"}, WithBaseURI(api.URL))
}

func TestLoginURLContainsAPIKey(t *testing.T) {
	svc := NewService(Params{APIKey: "test-key", APISecret: "test-secret"})
	url := svc.LoginURL()
	require.Contains(t, url, "api_key=test-key")
	require.True(t, strings.HasPrefix(url, "https://"))
}

func TestGenerateSession(t *testing.T) {
	svc := newTestService(t)

	session, err := svc.GenerateSession("valid-token")
	require.NoError(t, err)
	require.Equal(t, "live-access-token", session.UserSessionTokens.AccessToken)
	require.Equal(t, "AB1234", session.UserID)
	require.Equal(t, "Test Customer", session.UserProfile.UserName)
	require.Equal(t, "customer@example.com", session.UserProfile.Email)
}

func TestGenerateSessionRejectedUpstream(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.GenerateSession("stale-token")
	require.Error(t, err)
	var remoteErr *errs.RemoteError
	require.ErrorAs(t, err, &remoteErr)
}

func TestQuoteUnknownKeyProducesNoEntry(t *testing.T) {
	svc := newTestService(t)

	quotes, err := svc.Quote([]string{"NSE:RELIANCE", "NSE:FAKESYM"})
	require.NoError(t, err)
	require.Contains(t, quotes, "NSE:RELIANCE")
	require.NotContains(t, quotes, "NSE:FAKESYM")
	require.Equal(t, 2954.5, quotes["NSE:RELIANCE"].LastPrice)
}

func TestQuoteEmptyListIsValidationError(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Quote(nil)
	var vErr *errs.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "instruments", vErr.Field)
}

func TestHandleHoldingsAndOrders(t *testing.T) {
	svc := newTestService(t)
	handle := svc.BindSession("live-access-token")

	holdings, err := handle.Holdings()
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	require.Equal(t, "RELIANCE", holdings[0].Tradingsymbol)

	orders, err := handle.Orders()
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, "220728000000001", orders[0].OrderID)
}

func TestPlaceOrderForwardsValidRequest(t *testing.T) {
	svc := newTestService(t)
	handle := svc.BindSession("live-access-token")

	resp, err := handle.PlaceOrder(OrderRequest{
		Tradingsymbol:   "RELIANCE",
		Exchange:        "NSE",
		TransactionType: "BUY",
		OrderType:       "MARKET",
		Quantity:        10,
		Product:         "CNC",
	})
	require.NoError(t, err)
	require.Equal(t, "220728000000042", resp.OrderID)
}

func TestOrderRequestValidationNamesFirstMissingField(t *testing.T) {
	complete := OrderRequest{
		Tradingsymbol:   "RELIANCE",
		Exchange:        "NSE",
		TransactionType: "BUY",
		OrderType:       "MARKET",
		Quantity:        10,
		Product:         "CNC",
	}
	require.NoError(t, complete.Validate())

	cases := []struct {
		name   string
		mutate func(*OrderRequest)
		field  string
	}{
		{"missing tradingsymbol", func(r *OrderRequest) { r.Tradingsymbol = "" }, "tradingsymbol"},
		{"missing exchange", func(r *OrderRequest) { r.Exchange = "" }, "exchange"},
		{"missing transaction_type", func(r *OrderRequest) { r.TransactionType = "" }, "transaction_type"},
		{"missing order_type", func(r *OrderRequest) { r.OrderType = "" }, "order_type"},
		{"zero quantity", func(r *OrderRequest) { r.Quantity = 0 }, "quantity"},
		{"missing product", func(r *OrderRequest) { r.Product = "" }, "product"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := complete
			tc.mutate(&req)
			err := req.Validate()
			var vErr *errs.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Equal(t, tc.field, vErr.Field)
		})
	}

	// Several fields missing: the first in declaration order wins.
	empty := OrderRequest{}
	err := empty.Validate()
	var vErr *errs.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "tradingsymbol", vErr.Field)
}
