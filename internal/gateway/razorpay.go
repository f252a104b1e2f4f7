package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultBaseURL = "https://api.razorpay.com/v1"

type RazorpayClient struct {
	baseURL    string
	keyID      string
	keySecret  string
	httpClient *http.Client
}

func NewRazorpayClient(keyID string, keySecret string) *RazorpayClient {
	return &RazorpayClient{
		baseURL:   defaultBaseURL,
		keyID:     keyID,
		keySecret: keySecret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// NewRazorpayClientWithBaseURL is used by tests to point the client at
// a local server.
func NewRazorpayClientWithBaseURL(keyID string, keySecret string, baseURL string) *RazorpayClient {
	client := NewRazorpayClient(keyID, keySecret)
	client.baseURL = baseURL
	return client
}

func (c *RazorpayClient) KeyID() string {
	return c.keyID
}

func (c *RazorpayClient) CreateOrder(ctx context.Context, amountPaise int64, currency string, receipt string) (*Order, error) {
	if amountPaise < 1 {
		return nil, fmt.Errorf("amount must be at least 1 paise")
	}

	payload, err := json.Marshal(map[string]any{
		"amount":   amountPaise,
		"currency": currency,
		"receipt":  receipt,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/orders", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.keySecret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var order Order
	if err := json.NewDecoder(resp.Body).Decode(&order); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if order.ID == "" {
		return nil, fmt.Errorf("%w: empty order id", ErrUnavailable)
	}
	return &order, nil
}

func (c *RazorpayClient) VerifySignature(gatewayOrderID string, paymentID string, signature string) bool {
	return verify(c.keySecret, gatewayOrderID, paymentID, signature)
}
