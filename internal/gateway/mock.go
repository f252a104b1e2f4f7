package gateway

import (
	"context"
	"sync"

	"henheaven/backend/internal/xid"
)

// Mock is an in-process gateway for development and tests. Orders
// exist only in memory and any payment signed with the mock secret
// verifies.
type Mock struct {
	mu     sync.Mutex
	secret string
	orders map[string]Order
	Fail   bool
}

func NewMock(secret string) *Mock {
	return &Mock{
		secret: secret,
		orders: make(map[string]Order),
	}
}

func (m *Mock) KeyID() string {
	return "rzp_test_mock"
}

func (m *Mock) CreateOrder(_ context.Context, amountPaise int64, currency string, _ string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.Fail {
		return nil, ErrUnavailable
	}
	order := Order{
		ID:          xid.New("order_mock"),
		AmountPaise: amountPaise,
		Currency:    currency,
		Status:      "created",
	}
	m.orders[order.ID] = order
	saved := order
	return &saved, nil
}

func (m *Mock) VerifySignature(gatewayOrderID string, paymentID string, signature string) bool {
	return verify(m.secret, gatewayOrderID, paymentID, signature)
}

// Sign produces a valid signature for a mock payment.
func (m *Mock) Sign(gatewayOrderID string, paymentID string) string {
	return Sign(m.secret, gatewayOrderID, paymentID)
}
