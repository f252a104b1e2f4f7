// Package gateway talks to the payment provider. Checkout opens a
// gateway order before anything is written, and settlement only runs
// after the provider's payment signature verifies.
package gateway

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

var ErrUnavailable = errors.New("payment gateway unavailable")

type Order struct {
	ID          string `json:"id"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Status      string `json:"status"`
}

type Client interface {
	CreateOrder(ctx context.Context, amountPaise int64, currency string, receipt string) (*Order, error)
	KeyID() string
	VerifySignature(gatewayOrderID string, paymentID string, signature string) bool
}

// Sign computes the provider's payment signature: HMAC-SHA256 over
// "<gatewayOrderID>|<paymentID>" with the key secret, hex encoded.
func Sign(secret string, gatewayOrderID string, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func verify(secret string, gatewayOrderID string, paymentID string, signature string) bool {
	expected := Sign(secret, gatewayOrderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}
