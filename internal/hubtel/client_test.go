package hubtel_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bubblebliss/internal/config"
	"bubblebliss/internal/hubtel"
	"bubblebliss/internal/money"
)

func testConfig(base string) config.Hubtel {
	return config.Hubtel{
		APIID:           "api-id",
		APIKey:          "api-key",
		ClientID:        "sms-id",
		ClientSecret:    "sms-secret",
		MerchantAccount: "2020",
		SenderID:        "BubbleBliss",
		CheckoutURL:     base + "/items/initiate",
		SMSURL:          base + "/v1/messages/send",
		StatusURL:       base + "/transactions/2020/status",
		Timeout:         2 * time.Second,
	}
}

func checkoutReq() hubtel.CheckoutRequest {
	return hubtel.CheckoutRequest{
		TotalAmount:           money.Pesewas(13400).GHS(),
		Description:           "Bubble Bliss Order",
		ClientReference:       "ref123",
		CallbackURL:           "https://example.test/orders/callback",
		ReturnURL:             "https://example.test/ok",
		CancellationURL:       "https://example.test/cancel",
		MerchantAccountNumber: "2020",
		PayeeMobileNumber:     "0241234567",
	}
}

func TestInitiateCheckout_Accepted(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/items/initiate", r.URL.Path)
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("api-id:api-key"))
		assert.Equal(t, want, r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"responseCode":"0000","status":"Success","data":{
			"checkoutUrl":"https://pay.test/c/abc","checkoutId":"abc","clientReference":"ref123",
			"checkoutDirectUrl":"https://pay.test/d/abc"}}`))
	}))
	defer srv.Close()

	c := hubtel.NewClient(testConfig(srv.URL), nil)
	res, err := c.InitiateCheckout(context.Background(), checkoutReq())
	require.NoError(t, err)
	assert.Equal(t, "abc", res.CheckoutID)
	assert.Equal(t, "https://pay.test/c/abc", res.CheckoutURL)
	assert.Equal(t, "https://pay.test/d/abc", res.CheckoutDirectURL)

	assert.Equal(t, 134.0, got["totalAmount"])
	assert.Equal(t, "ref123", got["clientReference"])
	assert.Equal(t, "0241234567", got["payeeMobileNumber"])
	_, hasName := got["payeeName"]
	assert.False(t, hasName, "empty payee fields must be omitted")
}

func TestInitiateCheckout_Failures(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		errText string
	}{
		{"non-2xx", http.StatusInternalServerError, `{"responseCode":"0000"}`, "http 500"},
		{"empty body", http.StatusOK, ``, "http 200"},
		{"not json", http.StatusOK, `<html>oops</html>`, "unexpected response"},
		{"rejected", http.StatusOK, `{"responseCode":"2001","status":"Error"}`, "rejected"},
		{"accepted without data", http.StatusOK, `{"responseCode":"0000"}`, "rejected"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			_, err := hubtel.NewClient(testConfig(srv.URL), nil).InitiateCheckout(context.Background(), checkoutReq())
			require.Error(t, err)
			assert.ErrorIs(t, err, hubtel.ErrGateway)
			assert.Contains(t, err.Error(), tc.errText)
		})
	}
}

func TestInitiateCheckout_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := hubtel.NewClient(testConfig(base), nil).InitiateCheckout(context.Background(), checkoutReq())
	assert.ErrorIs(t, err, hubtel.ErrGateway)
	assert.Contains(t, err.Error(), "unreachable")
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"0241234567":       "233241234567",
		"024 123 4567":     "233241234567",
		"233241234567":     "233241234567",
		"+233241234567":    "233241234567",
		"+233 24 123 4567": "233241234567",
		"241234567":        "233241234567",
		" 0 20 000 0000":   "233200000000",
	}
	for in, want := range cases {
		assert.Equal(t, want, hubtel.NormalizePhone(in), in)
	}
}

func TestSendSMS_BuildsQueryAndAuth(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		q := r.URL.Query()
		assert.Equal(t, "sms-id", q.Get("clientid"))
		assert.Equal(t, "sms-secret", q.Get("clientsecret"))
		assert.Equal(t, "BubbleBliss", q.Get("from"))
		assert.Equal(t, "233241234567", q.Get("to"))
		assert.Equal(t, "hello there", q.Get("content"))
		assert.Equal(t, "true", q.Get("registeredDelivery"))
		want := "Basic " + base64.StdEncoding.EncodeToString([]byte("sms-id:sms-secret"))
		assert.Equal(t, want, r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	hubtel.NewClient(testConfig(srv.URL), nil).SendSMS(context.Background(), "0241234567", "hello there")
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestSendSMS_FailuresAreSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()
	assert.NotPanics(t, func() {
		hubtel.NewClient(testConfig(srv.URL), nil).SendSMS(context.Background(), "0241234567", "x")
	})

	dead := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := dead.URL
	dead.Close()
	assert.NotPanics(t, func() {
		hubtel.NewClient(testConfig(base), nil).SendSMS(context.Background(), "0241234567", "x")
	})
}

func TestTransactionStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/transactions/2020/status", r.URL.Path)
		ref := r.URL.Query().Get("clientReference")
		switch {
		case strings.HasPrefix(ref, "paid"):
			_, _ = w.Write([]byte(`{"responseCode":"0000","data":{"status":"Paid","clientReference":"` + ref + `","amount":134.5,"transactionId":"t1"}}`))
		case strings.HasPrefix(ref, "odd"):
			_, _ = w.Write([]byte(`{"responseCode":"0000","data":{"status":"Pending"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	c := hubtel.NewClient(testConfig(srv.URL), nil)

	st, err := c.TransactionStatus(context.Background(), "paid-1")
	require.NoError(t, err)
	assert.Equal(t, hubtel.TxnPaid, st.State)
	assert.Equal(t, money.Pesewas(13450), st.Amount.Pesewas())

	st, err = c.TransactionStatus(context.Background(), "odd-1")
	require.NoError(t, err)
	assert.Equal(t, hubtel.TxnUnknown, st.State)

	_, err = c.TransactionStatus(context.Background(), "missing")
	assert.ErrorIs(t, err, hubtel.ErrGateway)
}
