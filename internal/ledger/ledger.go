// Package ledger holds the update rules for the financial summary
// singleton. The rules are pure; repositories apply them inside the
// same transaction as the write that triggered them.
package ledger

import (
	"henheaven/backend/internal/domain"
	"henheaven/backend/internal/pricing"
	"henheaven/backend/internal/store"
)

// ApplySale records a settled order. GST and the convenience fee are
// pass-through charges, so only the product price lands in net profit.
func ApplySale(sum *domain.FinancialSummary, quote pricing.Quote) {
	sum.TotalRevenue += quote.TotalAmount
	sum.NetProfit += quote.TotalAmount - quote.GST - quote.ConvenienceFee
}

// ApplyInventoryChange moves costDelta between revenue and inventory
// holdings. A positive delta is a purchase funded out of revenue and
// fails when revenue cannot cover it; a negative delta reverses one.
func ApplyInventoryChange(sum *domain.FinancialSummary, costDelta float64) error {
	if costDelta > 0 && costDelta > sum.TotalRevenue {
		return store.ErrInsufficientFunds
	}
	sum.TotalRevenue -= costDelta
	sum.Expense += costDelta
	sum.TotalInventoryCost += costDelta
	sum.NetProfit -= costDelta
	return nil
}

// ApplyExpense records an operating expense such as a medicine
// purchase and recomputes net profit from the running aggregates.
func ApplyExpense(sum *domain.FinancialSummary, cost float64) {
	sum.Expense += cost
	sum.NetProfit = sum.TotalRevenue - sum.Expense - sum.TotalInventoryCost
}
