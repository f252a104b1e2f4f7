package pricing

import (
	"math"
	"testing"

	"henheaven/backend/internal/domain"
)

func TestComputeSingleLine(t *testing.T) {
	quote, err := Compute([]domain.OrderLine{
		{ProductID: "prod-eggs-01", UnitPrice: 150, Qty: 2},
	})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if quote.TotalProducts != 2 {
		t.Fatalf("expected 2 products, got %d", quote.TotalProducts)
	}
	if quote.ProductPrice != 300 {
		t.Fatalf("expected product price 300, got %v", quote.ProductPrice)
	}
	if math.Abs(quote.GST-54) > 0.001 {
		t.Fatalf("expected gst 54, got %v", quote.GST)
	}
	if math.Abs(quote.ConvenienceFee-6) > 0.001 {
		t.Fatalf("expected convenience fee 6, got %v", quote.ConvenienceFee)
	}
	if math.Abs(quote.TotalAmount-360) > 0.001 {
		t.Fatalf("expected total 360, got %v", quote.TotalAmount)
	}
	if quote.AmountPaise() != 36000 {
		t.Fatalf("expected 36000 paise, got %d", quote.AmountPaise())
	}
}

func TestComputeTotalIsSumOfParts(t *testing.T) {
	quote, err := Compute([]domain.OrderLine{
		{ProductID: "a", UnitPrice: 99.99, Qty: 3},
		{ProductID: "b", UnitPrice: 12.5, Qty: 1},
	})
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	sum := quote.ProductPrice + quote.GST + quote.ConvenienceFee
	if math.Abs(quote.TotalAmount-sum) > 0.01 {
		t.Fatalf("total %v does not match parts %v", quote.TotalAmount, sum)
	}
}

func TestComputeEmptyLines(t *testing.T) {
	quote, err := Compute(nil)
	if err != nil {
		t.Fatalf("compute failed: %v", err)
	}
	if quote.TotalAmount != 0 || quote.TotalProducts != 0 {
		t.Fatalf("expected zero quote, got %+v", quote)
	}
}

func TestComputeRejectsBadLines(t *testing.T) {
	if _, err := Compute([]domain.OrderLine{{ProductID: "a", UnitPrice: 10, Qty: 0}}); err == nil {
		t.Fatalf("expected error for zero quantity")
	}
	if _, err := Compute([]domain.OrderLine{{ProductID: "a", UnitPrice: -1, Qty: 1}}); err == nil {
		t.Fatalf("expected error for negative price")
	}
}

func TestFinalPrice(t *testing.T) {
	price := FinalPrice(200, domain.Discount{Type: domain.DiscountPercentage, Value: 25})
	if price != 150 {
		t.Fatalf("expected 150, got %v", price)
	}
	price = FinalPrice(200, domain.Discount{Type: domain.DiscountAmount, Value: 30})
	if price != 170 {
		t.Fatalf("expected 170, got %v", price)
	}
	price = FinalPrice(200, domain.Discount{})
	if price != 200 {
		t.Fatalf("expected 200 with no discount, got %v", price)
	}
}

func TestFinalPriceClampsAtZero(t *testing.T) {
	price := FinalPrice(100, domain.Discount{Type: domain.DiscountAmount, Value: 250})
	if price != 0 {
		t.Fatalf("expected clamp to 0, got %v", price)
	}
}

func TestRound2(t *testing.T) {
	if got := Round2(10.006); got != 10.01 {
		t.Fatalf("expected 10.01, got %v", got)
	}
	if got := Round2(10.004); got != 10.0 {
		t.Fatalf("expected 10, got %v", got)
	}
}
