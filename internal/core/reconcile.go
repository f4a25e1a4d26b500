package core

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Reconcile folds a batch of line items into the two ledgers and returns the
// new ledger states plus the credit entries created by this batch.
// Pure: the input slices are never mutated, so callers can swap the returned
// ledgers in atomically. No error paths — malformed items degrade to no-ops.
//
// Stock side, per item in batch order:
//   - empty names and credit items never touch the stock ledger
//   - delete removes a matching item; deleting an absent name is a no-op
//   - a sale subtracts quantity, floored at zero; a sale for an unknown
//     name creates nothing
//   - a stock item replaces quantity outright; an unknown name is inserted
//     at the front of the ledger
//   - a positive price replaces the stored price; zero preserves it
//
// Credit side: every credit item yields exactly one new entry, stamped now,
// prepended as a block in batch order.
func Reconcile(stock []StockItem, credits []CreditEntry, batch []LineItem, now time.Time) (newStock []StockItem, newCredits []CreditEntry, created []CreditEntry) {
	newStock = append([]StockItem(nil), stock...)

	for _, item := range batch {
		kind := item.kind()
		key := FoldName(item.Name)
		if key == "" || kind == KindCredit {
			continue
		}

		idx := -1
		for i := range newStock {
			if FoldName(newStock[i].Name) == key {
				idx = i
				break
			}
		}

		if item.action() == ActionDelete {
			if idx >= 0 {
				newStock = append(newStock[:idx], newStock[idx+1:]...)
			}
			continue
		}

		price := decimal.NewFromFloat(item.UnitPrice)

		if idx >= 0 {
			existing := &newStock[idx]
			switch kind {
			case KindSale:
				q := existing.Quantity - item.Quantity
				if q < 0 {
					q = 0
				}
				existing.Quantity = q
			case KindStock:
				existing.Quantity = item.Quantity
			}
			if price.IsPositive() {
				existing.UnitPrice = price
			}
			continue
		}

		if kind != KindStock {
			// Selling an unknown item creates nothing. The interpreter is
			// expected to have filtered these out already.
			continue
		}

		newStock = append([]StockItem{{
			Name:      strings.TrimSpace(item.Name),
			Quantity:  item.Quantity,
			UnitPrice: price,
		}}, newStock...)
	}

	for _, item := range batch {
		if item.kind() != KindCredit {
			continue
		}
		created = append(created, newCreditEntry(item, now))
	}

	newCredits = make([]CreditEntry, 0, len(created)+len(credits))
	newCredits = append(newCredits, created...)
	newCredits = append(newCredits, credits...)
	return newStock, newCredits, created
}

func newCreditEntry(item LineItem, now time.Time) CreditEntry {
	customer := strings.TrimSpace(item.CustomerName)
	if customer == "" {
		customer = UnknownCustomer
	}
	phone := strings.TrimSpace(item.Phone)
	if phone == "" {
		phone = UnknownPhone
	}
	return CreditEntry{
		CustomerName: customer,
		Phone:        phone,
		Amount:       decimal.NewFromFloat(item.UnitPrice),
		Product:      strings.TrimSpace(item.Name),
		CreatedAt:    now,
	}
}
