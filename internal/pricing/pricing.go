// Package pricing computes order totals from cart lines. All amounts
// are rupees as float64; rounding happens only at the gateway boundary
// where the total converts to paise.
package pricing

import (
	"fmt"
	"math"

	"henheaven/backend/internal/domain"
)

const (
	GSTRate            = 0.18
	ConvenienceFeeRate = 0.02
)

type Quote struct {
	TotalProducts  int     `json:"total_products"`
	ProductPrice   float64 `json:"product_price"`
	GST            float64 `json:"gst"`
	ConvenienceFee float64 `json:"convenience_fee"`
	TotalAmount    float64 `json:"total_amount"`
}

// AmountPaise converts the total to the smallest currency unit for the
// payment gateway.
func (q Quote) AmountPaise() int64 {
	return int64(math.Round(q.TotalAmount * 100))
}

func Compute(lines []domain.OrderLine) (Quote, error) {
	var quote Quote
	for _, line := range lines {
		if line.Qty < 1 {
			return Quote{}, fmt.Errorf("line %s: quantity must be at least 1", line.ProductID)
		}
		if line.UnitPrice < 0 {
			return Quote{}, fmt.Errorf("line %s: negative unit price", line.ProductID)
		}
		quote.TotalProducts += line.Qty
		quote.ProductPrice += line.UnitPrice * float64(line.Qty)
	}
	quote.GST = quote.ProductPrice * GSTRate
	quote.ConvenienceFee = quote.ProductPrice * ConvenienceFeeRate
	quote.TotalAmount = quote.ProductPrice + quote.GST + quote.ConvenienceFee
	return quote, nil
}

// FinalPrice derives the selling price after discount, clamped at zero.
// Callers reject products whose discount would clamp.
func FinalPrice(actualPrice float64, discount domain.Discount) float64 {
	price := actualPrice
	switch discount.Type {
	case domain.DiscountPercentage:
		price = actualPrice - actualPrice*(discount.Value/100)
	case domain.DiscountAmount:
		price = actualPrice - discount.Value
	}
	if price < 0 {
		return 0
	}
	return price
}

// Round2 rounds to two decimals for display payloads.
func Round2(val float64) float64 {
	return math.Round(val*100) / 100
}
