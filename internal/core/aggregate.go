package core

import "github.com/shopspring/decimal"

// TotalStockValue returns Σ quantity × unit price over the stock ledger.
// Recomputed on every read; ledger sizes are one shop's catalog.
func TotalStockValue(stock []StockItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range stock {
		total = total.Add(item.LineTotal())
	}
	return total
}

// TotalCreditOutstanding returns the sum of all credit amounts.
func TotalCreditOutstanding(credits []CreditEntry) decimal.Decimal {
	total := decimal.Zero
	for _, entry := range credits {
		total = total.Add(entry.Amount)
	}
	return total
}
