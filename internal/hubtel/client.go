// Package hubtel talks to the Hubtel online checkout, SMS and transaction
// status APIs.
package hubtel

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"bubblebliss/internal/config"
	applog "bubblebliss/internal/log"
	"bubblebliss/internal/metrics"
	"bubblebliss/internal/money"
)

// ResponseCodeAccepted is the responseCode Hubtel returns when a checkout
// session was created.
const ResponseCodeAccepted = "0000"

// ErrGateway covers every way the provider can fail us: unreachable,
// non-2xx, empty or unparseable body, or an explicit rejection.
var ErrGateway = errors.New("payment provider error")

type CheckoutRequest struct {
	TotalAmount           money.GHS `json:"totalAmount"`
	Description           string    `json:"description"`
	CallbackURL           string    `json:"callbackUrl"`
	ReturnURL             string    `json:"returnUrl"`
	MerchantAccountNumber string    `json:"merchantAccountNumber"`
	CancellationURL       string    `json:"cancellationUrl"`
	ClientReference       string    `json:"clientReference"`
	PayeeName             string    `json:"payeeName,omitempty"`
	PayeeMobileNumber     string    `json:"payeeMobileNumber,omitempty"`
	PayeeEmail            string    `json:"payeeEmail,omitempty"`
}

type CheckoutResult struct {
	CheckoutURL       string `json:"checkoutUrl"`
	CheckoutID        string `json:"checkoutId"`
	ClientReference   string `json:"clientReference"`
	CheckoutDirectURL string `json:"checkoutDirectUrl"`
}

type checkoutResponse struct {
	ResponseCode string          `json:"responseCode"`
	Status       string          `json:"status"`
	Data         *CheckoutResult `json:"data"`
}

// Client holds the provider settings; it reads nothing from the
// environment itself.
type Client struct {
	cfg  config.Hubtel
	http *http.Client
	m    *metrics.Metrics
}

func NewClient(cfg config.Hubtel, m *metrics.Metrics) *Client {
	return &Client{cfg: cfg, http: &http.Client{Timeout: cfg.Timeout}, m: m}
}

// WithHTTPClient swaps the transport, mostly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

// InitiateCheckout creates a hosted checkout session. Any failure is
// reported as ErrGateway with detail in the wrapped message.
func (c *Client) InitiateCheckout(ctx context.Context, req CheckoutRequest) (CheckoutResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("%w: encode request: %v", ErrGateway, err)
	}

	applog.Info(nil, "hubtel.checkout.initiate", map[string]any{"client_reference": req.ClientReference})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.CheckoutURL, bytes.NewReader(body))
	if err != nil {
		return CheckoutResult{}, fmt.Errorf("%w: build request: %v", ErrGateway, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", basicAuth(c.cfg.APIID, c.cfg.APIKey))

	resp, err := c.http.Do(httpReq)
	if err != nil {
		applog.Error(nil, "hubtel.checkout.unreachable", err, map[string]any{"client_reference": req.ClientReference})
		c.m.GatewayCall("checkout", "unreachable")
		return CheckoutResult{}, fmt.Errorf("%w: unreachable: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode > 299 || len(bytes.TrimSpace(raw)) == 0 {
		applog.Error(nil, "hubtel.checkout.http_fail", nil, map[string]any{
			"client_reference": req.ClientReference, "http_status": resp.StatusCode, "body": string(raw),
		})
		c.m.GatewayCall("checkout", "http_error")
		return CheckoutResult{}, fmt.Errorf("%w: http %d", ErrGateway, resp.StatusCode)
	}

	var parsed checkoutResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		applog.Error(nil, "hubtel.checkout.bad_body", err, map[string]any{"client_reference": req.ClientReference, "body": string(raw)})
		c.m.GatewayCall("checkout", "bad_body")
		return CheckoutResult{}, fmt.Errorf("%w: unexpected response", ErrGateway)
	}
	if parsed.ResponseCode != ResponseCodeAccepted || parsed.Data == nil {
		applog.Error(nil, "hubtel.checkout.rejected", nil, map[string]any{
			"client_reference": req.ClientReference, "response_code": parsed.ResponseCode, "status": parsed.Status,
		})
		c.m.GatewayCall("checkout", "rejected")
		return CheckoutResult{}, fmt.Errorf("%w: rejected with code %q", ErrGateway, parsed.ResponseCode)
	}

	c.m.GatewayCall("checkout", "accepted")
	return *parsed.Data, nil
}

// NormalizePhone turns a local or +233 number into the 233XXXXXXXXX form
// the SMS API expects.
func NormalizePhone(phone string) string {
	p := strings.TrimPrefix(strings.Join(strings.Fields(phone), ""), "+")
	if strings.HasPrefix(p, "0") {
		p = "233" + p[1:]
	}
	if !strings.HasPrefix(p, "233") {
		p = "233" + p
	}
	return p
}

// SendSMS is best-effort: failures are logged and never returned.
func (c *Client) SendSMS(ctx context.Context, phone, message string) {
	to := NormalizePhone(phone)

	u, err := url.Parse(c.cfg.SMSURL)
	if err != nil {
		applog.Error(nil, "hubtel.sms.fail", err, map[string]any{"to": to})
		c.m.GatewayCall("sms", "error")
		return
	}
	q := u.Query()
	q.Set("clientid", c.cfg.ClientID)
	q.Set("clientsecret", c.cfg.ClientSecret)
	q.Set("from", c.cfg.SenderID)
	q.Set("to", to)
	q.Set("content", message)
	q.Set("registeredDelivery", "true")
	u.RawQuery = q.Encode()

	applog.Info(nil, "hubtel.sms.send", map[string]any{"to": to})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		applog.Error(nil, "hubtel.sms.fail", err, map[string]any{"to": to})
		c.m.GatewayCall("sms", "error")
		return
	}
	req.Header.Set("Authorization", basicAuth(c.cfg.ClientID, c.cfg.ClientSecret))

	resp, err := c.http.Do(req)
	if err != nil {
		applog.Error(nil, "hubtel.sms.fail", err, map[string]any{"to": to})
		c.m.GatewayCall("sms", "unreachable")
		return
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		applog.Error(nil, "hubtel.sms.fail", nil, map[string]any{"to": to, "http_status": resp.StatusCode, "body": string(raw)})
		c.m.GatewayCall("sms", "http_error")
		return
	}
	applog.Info(nil, "hubtel.sms.sent", map[string]any{"to": to})
	c.m.GatewayCall("sms", "sent")
}
