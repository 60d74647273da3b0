package hubtel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	applog "bubblebliss/internal/log"
	"bubblebliss/internal/money"
)

// TxnState is the provider's view of a checkout session.
type TxnState string

const (
	TxnPaid     TxnState = "Paid"
	TxnUnpaid   TxnState = "Unpaid"
	TxnRefunded TxnState = "Refunded"
	TxnUnknown  TxnState = "Unknown"
)

type TxnStatus struct {
	State           TxnState
	ClientReference string
	Amount          money.GHS
	TransactionID   string
}

type statusResponse struct {
	ResponseCode string `json:"responseCode"`
	Message      string `json:"message"`
	Data         *struct {
		Status          string    `json:"status"`
		ClientReference string    `json:"clientReference"`
		TransactionID   string    `json:"transactionId"`
		Amount          money.GHS `json:"amount"`
	} `json:"data"`
}

// TransactionStatus asks the provider what happened to a session. Used by
// the orphan sweep only; checkout never blocks on it.
func (c *Client) TransactionStatus(ctx context.Context, clientReference string) (TxnStatus, error) {
	if c.cfg.StatusURL == "" {
		return TxnStatus{}, fmt.Errorf("%w: status endpoint not configured", ErrGateway)
	}
	u, err := url.Parse(c.cfg.StatusURL)
	if err != nil {
		return TxnStatus{}, fmt.Errorf("%w: bad status url: %v", ErrGateway, err)
	}
	q := u.Query()
	q.Set("clientReference", clientReference)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return TxnStatus{}, fmt.Errorf("%w: build request: %v", ErrGateway, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", basicAuth(c.cfg.APIID, c.cfg.APIKey))

	resp, err := c.http.Do(req)
	if err != nil {
		c.m.GatewayCall("status", "unreachable")
		return TxnStatus{}, fmt.Errorf("%w: unreachable: %v", ErrGateway, err)
	}
	defer resp.Body.Close()
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.m.GatewayCall("status", "http_error")
		return TxnStatus{}, fmt.Errorf("%w: http %d", ErrGateway, resp.StatusCode)
	}

	var parsed statusResponse
	if err := json.Unmarshal(raw, &parsed); err != nil || parsed.Data == nil {
		applog.Warn(nil, "hubtel.status.bad_body", err, map[string]any{"client_reference": clientReference, "body": string(raw)})
		c.m.GatewayCall("status", "bad_body")
		return TxnStatus{}, fmt.Errorf("%w: unexpected response", ErrGateway)
	}

	st := TxnStatus{
		State:           TxnUnknown,
		ClientReference: parsed.Data.ClientReference,
		Amount:          parsed.Data.Amount,
		TransactionID:   parsed.Data.TransactionID,
	}
	switch TxnState(parsed.Data.Status) {
	case TxnPaid, TxnUnpaid, TxnRefunded:
		st.State = TxnState(parsed.Data.Status)
	}
	c.m.GatewayCall("status", "ok")
	return st, nil
}
